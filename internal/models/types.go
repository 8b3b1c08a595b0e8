package models

// MetadataLot represents the kind of a media item
type MetadataLot string

const (
	LotAudioBook MetadataLot = "audiobook"
	LotAnime     MetadataLot = "anime"
	LotBook      MetadataLot = "book"
	LotManga     MetadataLot = "manga"
	LotMovie     MetadataLot = "movie"
	LotPodcast   MetadataLot = "podcast"
	LotShow      MetadataLot = "show"
	LotVideoGame MetadataLot = "video_game"
)

// MetadataSource represents which provider a metadata record came from
type MetadataSource string

const (
	SourceAudible MetadataSource = "audible"
	SourceAnilist MetadataSource = "anilist"
	SourceCustom  MetadataSource = "custom"
)

// ProgressAction represents when a consumption event happened
type ProgressAction string

const (
	ActionNow       ProgressAction = "now"
	ActionInThePast ProgressAction = "in_the_past"
)
