package graph

import (
	"errors"
	"fmt"

	"github.com/cherry0021/ryot/internal/controllers"
	"github.com/cherry0021/ryot/internal/models"
	"github.com/cherry0021/ryot/internal/providers"
	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
)

// Resolver holds the dependencies of the GraphQL resolvers
type Resolver struct {
	db       *models.Database
	registry providers.Registry
	details  *controllers.DetailsController
	progress *controllers.ProgressController
	commit   *controllers.CommitController
	logger   *logrus.Logger
}

// NewResolver creates a new resolver
func NewResolver(
	db *models.Database,
	registry providers.Registry,
	details *controllers.DetailsController,
	progress *controllers.ProgressController,
	commit *controllers.CommitController,
	logger *logrus.Logger,
) *Resolver {
	return &Resolver{
		db:       db,
		registry: registry,
		details:  details,
		progress: progress,
		commit:   commit,
		logger:   logger,
	}
}

var lotEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "MetadataLot",
	Values: graphql.EnumValueConfigMap{
		"AUDIO_BOOK": {Value: models.LotAudioBook},
		"ANIME":      {Value: models.LotAnime},
		"BOOK":       {Value: models.LotBook},
		"MANGA":      {Value: models.LotManga},
		"MOVIE":      {Value: models.LotMovie},
		"PODCAST":    {Value: models.LotPodcast},
		"SHOW":       {Value: models.LotShow},
		"VIDEO_GAME": {Value: models.LotVideoGame},
	},
})

var sourceEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "MetadataSource",
	Values: graphql.EnumValueConfigMap{
		"AUDIBLE": {Value: models.SourceAudible},
		"ANILIST": {Value: models.SourceAnilist},
		"CUSTOM":  {Value: models.SourceCustom},
	},
})

var actionEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ProgressUpdateAction",
	Values: graphql.EnumValueConfigMap{
		"NOW":         {Value: models.ActionNow},
		"IN_THE_PAST": {Value: models.ActionInThePast},
	},
})

var creatorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MetadataCreator",
	Fields: graphql.Fields{
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"role": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var showEpisodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ShowEpisode",
	Fields: graphql.Fields{
		"episodeNumber": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":          &graphql.Field{Type: graphql.String},
		"overview":      &graphql.Field{Type: graphql.String},
		"publishDate":   &graphql.Field{Type: graphql.String},
		"runtime":       &graphql.Field{Type: graphql.Int},
	},
})

var showSeasonType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ShowSeason",
	Fields: graphql.Fields{
		"seasonNumber": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":         &graphql.Field{Type: graphql.String},
		"overview":     &graphql.Field{Type: graphql.String},
		"publishDate":  &graphql.Field{Type: graphql.String},
		"episodes":     &graphql.Field{Type: graphql.NewList(showEpisodeType)},
	},
})

var showSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ShowSpecifics",
	Fields: graphql.Fields{
		"seasons": &graphql.Field{Type: graphql.NewList(showSeasonType)},
	},
})

var podcastEpisodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PodcastEpisode",
	Fields: graphql.Fields{
		"number":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":       &graphql.Field{Type: graphql.String},
		"overview":    &graphql.Field{Type: graphql.String},
		"publishDate": &graphql.Field{Type: graphql.String},
		"runtime":     &graphql.Field{Type: graphql.Int},
	},
})

var podcastSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PodcastSpecifics",
	Fields: graphql.Fields{
		"totalEpisodes": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"episodes":      &graphql.Field{Type: graphql.NewList(podcastEpisodeType)},
	},
})

var audioBookSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AudioBookSpecifics",
	Fields: graphql.Fields{
		"runtime": &graphql.Field{Type: graphql.Int},
	},
})

var animeSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AnimeSpecifics",
	Fields: graphql.Fields{
		"episodes": &graphql.Field{Type: graphql.Int},
	},
})

var bookSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BookSpecifics",
	Fields: graphql.Fields{
		"pages": &graphql.Field{Type: graphql.Int},
	},
})

var mangaSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MangaSpecifics",
	Fields: graphql.Fields{
		"chapters": &graphql.Field{Type: graphql.Int},
		"volumes":  &graphql.Field{Type: graphql.Int},
	},
})

var movieSpecificsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MovieSpecifics",
	Fields: graphql.Fields{
		"runtime": &graphql.Field{Type: graphql.Int},
	},
})

var mediaDetailsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MediaDetails",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"identifier":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"lot":          &graphql.Field{Type: graphql.NewNonNull(lotEnum)},
		"source":       &graphql.Field{Type: graphql.NewNonNull(sourceEnum)},
		"title":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description":  &graphql.Field{Type: graphql.String},
		"publishYear":  &graphql.Field{Type: graphql.Int},
		"publishDate":  &graphql.Field{Type: graphql.String},
		"genres":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"creators":     &graphql.Field{Type: graphql.NewList(creatorType)},
		"posterImages": &graphql.Field{Type: graphql.NewList(graphql.String)},

		"audioBookSpecifics": &graphql.Field{Type: audioBookSpecificsType},
		"animeSpecifics":     &graphql.Field{Type: animeSpecificsType},
		"bookSpecifics":      &graphql.Field{Type: bookSpecificsType},
		"mangaSpecifics":     &graphql.Field{Type: mangaSpecificsType},
		"movieSpecifics":     &graphql.Field{Type: movieSpecificsType},
		"podcastSpecifics":   &graphql.Field{Type: podcastSpecificsType},
		"showSpecifics":      &graphql.Field{Type: showSpecificsType},
	},
})

var seenType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Seen",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"metadataId":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"progress":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"showSeason":  &graphql.Field{Type: graphql.Int},
		"showEpisode": &graphql.Field{Type: graphql.Int},
		"finishedOn":  &graphql.Field{Type: graphql.DateTime},
		"createdAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var searchResultsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MediaSearchResults",
	Fields: graphql.Fields{
		"total":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"nextPage": &graphql.Field{Type: graphql.Int},
		"items":    &graphql.Field{Type: graphql.NewList(mediaDetailsType)},
	},
})

var progressUpdateInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProgressUpdateInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"metadataId":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"action":              &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(actionEnum)},
		"date":                &graphql.InputObjectFieldConfig{Type: graphql.String},
		"seasonNumber":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"episodeNumber":       &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"allEpisodesOfSeason": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

var progressUpdateResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProgressUpdateResult",
	Fields: graphql.Fields{
		"metadataId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"recorded":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"episodes":   &graphql.Field{Type: graphql.NewList(graphql.Int)},
	},
})

// NewSchema builds the GraphQL schema served on /graphql
func NewSchema(r *Resolver) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"mediaDetails": &graphql.Field{
				Type: mediaDetailsType,
				Args: graphql.FieldConfigArgument{
					"metadataId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.resolveMediaDetails,
			},
			"mediaList": &graphql.Field{
				Type:    graphql.NewList(mediaDetailsType),
				Resolve: r.resolveMediaList,
			},
			"latestSeen": &graphql.Field{
				Type: seenType,
				Args: graphql.FieldConfigArgument{
					"metadataId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.resolveLatestSeen,
			},
			"mediaSearch": &graphql.Field{
				Type: searchResultsType,
				Args: graphql.FieldConfigArgument{
					"lot":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(lotEnum)},
					"source": &graphql.ArgumentConfig{Type: graphql.NewNonNull(sourceEnum)},
					"query":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.resolveMediaSearch,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"progressUpdate": &graphql.Field{
				Type: progressUpdateResultType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(progressUpdateInputType)},
				},
				Resolve: r.resolveProgressUpdate,
			},
			"commitMedia": &graphql.Field{
				Type: mediaDetailsType,
				Args: graphql.FieldConfigArgument{
					"lot":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(lotEnum)},
					"source":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(sourceEnum)},
					"identifier": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveCommitMedia,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func (r *Resolver) resolveMediaDetails(p graphql.ResolveParams) (interface{}, error) {
	id, ok := p.Args["metadataId"].(int)
	if !ok || id < 0 {
		return nil, fmt.Errorf("invalid metadataId")
	}
	return r.details.GetDetails(uint64(id))
}

func (r *Resolver) resolveMediaList(p graphql.ResolveParams) (interface{}, error) {
	return r.db.GetAllMetadata()
}

func (r *Resolver) resolveLatestSeen(p graphql.ResolveParams) (interface{}, error) {
	id, ok := p.Args["metadataId"].(int)
	if !ok || id < 0 {
		return nil, fmt.Errorf("invalid metadataId")
	}

	seen, err := r.db.LatestSeen(uint64(id))
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return seen, nil
}

func (r *Resolver) resolveMediaSearch(p graphql.ResolveParams) (interface{}, error) {
	lot, ok := p.Args["lot"].(models.MetadataLot)
	if !ok {
		return nil, fmt.Errorf("invalid lot")
	}
	source, ok := p.Args["source"].(models.MetadataSource)
	if !ok {
		return nil, fmt.Errorf("invalid source")
	}
	query, ok := p.Args["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("invalid query")
	}

	page := 1
	if n, ok := p.Args["page"].(int); ok {
		page = n
	}

	provider := r.registry.For(source, lot)
	if provider == nil {
		return nil, fmt.Errorf("%w for source %q and lot %q", controllers.ErrNoProvider, source, lot)
	}

	return provider.Search(p.Context, query, page)
}

func (r *Resolver) resolveProgressUpdate(p graphql.ResolveParams) (interface{}, error) {
	raw, ok := p.Args["input"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid progress update input")
	}

	input := controllers.ProgressInput{}

	if id, ok := raw["metadataId"].(int); ok {
		input.MetadataID = uint64(id)
	}
	if action, ok := raw["action"].(models.ProgressAction); ok {
		input.Action = action
	}
	if date, ok := raw["date"].(string); ok {
		input.Date = &date
	}
	if season, ok := raw["seasonNumber"].(int); ok {
		input.SeasonNumber = &season
	}
	if episode, ok := raw["episodeNumber"].(int); ok {
		input.EpisodeNumber = &episode
	}
	if all, ok := raw["allEpisodesOfSeason"].(bool); ok {
		input.AllEpisodesOfSeason = all
	}

	return r.progress.Submit(p.Context, input)
}

func (r *Resolver) resolveCommitMedia(p graphql.ResolveParams) (interface{}, error) {
	lot, ok := p.Args["lot"].(models.MetadataLot)
	if !ok {
		return nil, fmt.Errorf("invalid lot")
	}
	source, ok := p.Args["source"].(models.MetadataSource)
	if !ok {
		return nil, fmt.Errorf("invalid source")
	}
	identifier, ok := p.Args["identifier"].(string)
	if !ok || identifier == "" {
		return nil, fmt.Errorf("invalid identifier")
	}

	return r.commit.CommitMedia(p.Context, lot, source, identifier)
}
