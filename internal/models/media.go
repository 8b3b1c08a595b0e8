package models

import "time"

// Metadata represents one media item's descriptive record
type Metadata struct {
	ID         uint64         `boltholdKey:"ID" json:"id"`
	Identifier string         `boltholdIndex:"Identifier" json:"identifier"` // provider identifier (ASIN, AniList id, ...)
	Lot        MetadataLot    `json:"lot"`
	Source     MetadataSource `json:"source"`

	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	PublishYear  *int              `json:"publishYear,omitempty"`
	PublishDate  string            `json:"publishDate,omitempty"` // ISO date, YYYY-MM-DD
	Genres       []string          `json:"genres,omitempty"`
	Creators     []MetadataCreator `json:"creators,omitempty"`
	PosterImages []string          `json:"posterImages,omitempty"`

	// Lot-specific sub-records, at most one set
	AudioBookSpecifics *AudioBookSpecifics `json:"audioBookSpecifics,omitempty"`
	AnimeSpecifics     *AnimeSpecifics     `json:"animeSpecifics,omitempty"`
	BookSpecifics      *BookSpecifics      `json:"bookSpecifics,omitempty"`
	MangaSpecifics     *MangaSpecifics     `json:"mangaSpecifics,omitempty"`
	MovieSpecifics     *MovieSpecifics     `json:"movieSpecifics,omitempty"`
	PodcastSpecifics   *PodcastSpecifics   `json:"podcastSpecifics,omitempty"`
	ShowSpecifics      *ShowSpecifics      `json:"showSpecifics,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MetadataCreator represents a person credited on a media item
type MetadataCreator struct {
	Name string `json:"name"`
	Role string `json:"role"` // "Author", "Narrator", "Director", ...
}

// AudioBookSpecifics holds audiobook-only fields
type AudioBookSpecifics struct {
	Runtime *int `json:"runtime,omitempty"` // minutes
}

// AnimeSpecifics holds anime-only fields
type AnimeSpecifics struct {
	Episodes *int `json:"episodes,omitempty"`
}

// BookSpecifics holds book-only fields
type BookSpecifics struct {
	Pages *int `json:"pages,omitempty"`
}

// MangaSpecifics holds manga-only fields
type MangaSpecifics struct {
	Chapters *int `json:"chapters,omitempty"`
	Volumes  *int `json:"volumes,omitempty"`
}

// MovieSpecifics holds movie-only fields
type MovieSpecifics struct {
	Runtime *int `json:"runtime,omitempty"` // minutes
}

// PodcastSpecifics holds podcast-only fields
type PodcastSpecifics struct {
	TotalEpisodes int              `json:"totalEpisodes"`
	Episodes      []PodcastEpisode `json:"episodes,omitempty"`
}

// PodcastEpisode represents one episode of a podcast
type PodcastEpisode struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Overview    string `json:"overview,omitempty"`
	PublishDate string `json:"publishDate,omitempty"`
	Runtime     *int   `json:"runtime,omitempty"`
}

// ShowSpecifics holds show-only fields. Seasons keep the order the
// provider listed them in, same for episodes within a season.
type ShowSpecifics struct {
	Seasons []ShowSeason `json:"seasons"`
}

// ShowSeason represents one season of a show
type ShowSeason struct {
	SeasonNumber int           `json:"seasonNumber"`
	Name         string        `json:"name,omitempty"`
	Overview     string        `json:"overview,omitempty"`
	PublishDate  string        `json:"publishDate,omitempty"`
	Episodes     []ShowEpisode `json:"episodes"`
}

// ShowEpisode represents one episode of a show season
type ShowEpisode struct {
	EpisodeNumber int    `json:"episodeNumber"`
	Name          string `json:"name,omitempty"`
	Overview      string `json:"overview,omitempty"`
	PublishDate   string `json:"publishDate,omitempty"`
	Runtime       *int   `json:"runtime,omitempty"` // minutes
}

// Season returns the season with the given number, or nil
func (s *ShowSpecifics) Season(number int) *ShowSeason {
	if s == nil {
		return nil
	}
	for i := range s.Seasons {
		if s.Seasons[i].SeasonNumber == number {
			return &s.Seasons[i]
		}
	}
	return nil
}

// Episode returns the episode with the given number, or nil
func (s *ShowSeason) Episode(number int) *ShowEpisode {
	for i := range s.Episodes {
		if s.Episodes[i].EpisodeNumber == number {
			return &s.Episodes[i]
		}
	}
	return nil
}
