package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"
)

// GraphQLHandler serves the GraphQL endpoint
type GraphQLHandler struct {
	schema graphql.Schema
	logger *logrus.Logger
}

// NewGraphQLHandler creates a new GraphQL handler
func NewGraphQLHandler(schema graphql.Schema, logger *logrus.Logger) *GraphQLHandler {
	return &GraphQLHandler{
		schema: schema,
		logger: logger,
	}
}

// graphQLRequest is the standard GraphQL-over-HTTP request body
type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// ServeHTTP handles the GraphQL endpoint
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.WithError(err).Error("Failed to decode GraphQL request")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  request.Query,
		OperationName:  request.OperationName,
		VariableValues: request.Variables,
		Context:        r.Context(),
	})

	if result.HasErrors() {
		h.logger.WithFields(logrus.Fields{
			"operation": request.OperationName,
			"errors":    result.Errors,
		}).Warn("GraphQL request returned errors")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
