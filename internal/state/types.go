package state

import (
	"time"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

// #region run-record
// RunRecord is one analysis run over a chapter.
type RunRecord struct {
	RunID       string
	ChapterID   string
	ChapterPath string
	Locale      string
	StartedAt   time.Time
}
// #endregion run-record

// #region scene-record
// SceneRecord is a cached scene analysis keyed by (ChapterID, SceneName).
// ContentHash covers every input the analysis depends on.
type SceneRecord struct {
	ChapterID   string
	SceneName   string
	Position    int
	ContentHash string
	Metadata    metadata.SceneMetadata
	RunID       string
	AnalysedAt  time.Time
}
// #endregion scene-record

// #region aggregate-record
// AggregateRecord is the stored chapter aggregate.
type AggregateRecord struct {
	ChapterID string
	Aggregate metadata.ChapterAggregate
	RunID     string
	UpdatedAt time.Time
}
// #endregion aggregate-record

// #region chapter-summary
// ChapterSummary is one row of ListChapters.
type ChapterSummary struct {
	ChapterID  string
	SceneCount int
	LastRun    string
	UpdatedAt  time.Time
}
// #endregion chapter-summary
