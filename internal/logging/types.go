package logging

import (
	"time"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

// #region decisions
// Decision records what a run did with one scene.
type Decision string

const (
	DecisionAnalysed Decision = "analysed" // detectors ran
	DecisionCached   Decision = "cached"   // content hash matched, record reused
	DecisionPruned   Decision = "pruned"   // scene no longer in the chapter
	DecisionRejected Decision = "rejected" // snapshot failed the gate, not cached
)
// #endregion decisions

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	ID          int64
	RunID       string
	ChapterID   string
	SceneName   string
	ContentHash string
	Decision    Decision
	SourcesJSON string
	Reason      string
	CreatedAt   time.Time
}
// #endregion provenance-entry

// #region field-sources
// FieldSources captures the provenance of every tracked field of a
// scene. Serialized as JSON into provenance_log.sources_json.
type FieldSources struct {
	POV        metadata.Source `json:"pov"`
	Characters metadata.Source `json:"characters"`
	Locations  metadata.Source `json:"locations"`
	Items      metadata.Source `json:"items"`
	Lore       metadata.Source `json:"lore"`
	Emotion    metadata.Source `json:"emotion"`
	Intensity  metadata.Source `json:"intensity"`
	Conflict   metadata.Source `json:"conflict"`
	Tags       metadata.Source `json:"tags"`
}

// SourcesOf extracts the field sources of md.
func SourcesOf(md metadata.SceneMetadata) FieldSources {
	return FieldSources{
		POV:        md.POV.Source,
		Characters: md.Characters.Source,
		Locations:  md.Locations.Source,
		Items:      md.Items.Source,
		Lore:       md.Lore.Source,
		Emotion:    md.Emotion.Source,
		Intensity:  md.Intensity.Source,
		Conflict:   md.Conflict.Source,
		Tags:       md.Tags.Source,
	}
}
// #endregion field-sources
