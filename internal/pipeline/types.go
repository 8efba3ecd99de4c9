package pipeline

import (
	"github.com/danielpatrickdp/scene-metadata/internal/manuscript"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

// #region chapter-input
// ChapterInput is one chapter plus the project context it is analysed
// against. Notes, PlotBoard and Overrides may be nil.
type ChapterInput struct {
	ChapterID   string
	ChapterPath string
	Locale      string
	Scenes      []manuscript.Scene
	Entities    manuscript.Entities
	Notes       *metadata.ChapterNotes
	PlotBoard   *metadata.PlotBoard
	Overrides   map[string]metadata.Overrides // keyed by scene name
	Force       bool                          // ignore cached records
}
// #endregion chapter-input

// #region results
// SceneResult is the outcome for one scene.
type SceneResult struct {
	Metadata    metadata.SceneMetadata `json:"metadata"`
	ContentHash string                 `json:"content_hash"`
	Cached      bool                   `json:"cached"`
	Rejected    bool                   `json:"rejected,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
}

// ChapterResult is the outcome of one RunChapter call.
type ChapterResult struct {
	RunID     string                    `json:"run_id"`
	Scenes    []SceneResult             `json:"scenes"`
	Aggregate metadata.ChapterAggregate `json:"aggregate"`
	Pruned    []string                  `json:"pruned,omitempty"`
}

// Rejected returns the names of scenes the gate refused to cache.
func (r ChapterResult) Rejected() []string {
	var out []string
	for _, s := range r.Scenes {
		if s.Rejected {
			out = append(out, s.Metadata.SceneName)
		}
	}
	return out
}

// Analysed counts scenes whose detectors ran in this run.
func (r ChapterResult) Analysed() int {
	n := 0
	for _, s := range r.Scenes {
		if !s.Cached {
			n++
		}
	}
	return n
}
// #endregion results

// #region hash-input
// hashInput is everything a scene analysis depends on. Changing any
// field invalidates the cached record.
type hashInput struct {
	LexiconLocale  string              `json:"lexicon_locale"`
	LexiconVersion int                 `json:"lexicon_version"`
	ChapterPath    string              `json:"chapter_path"`
	Text           string              `json:"text"`
	Mentions       metadata.Mentions   `json:"mentions"`
	ChapterNote    string              `json:"chapter_note"`
	SceneNote      string              `json:"scene_note"`
	PlotBoard      *metadata.PlotBoard `json:"plot_board"`
	Overrides      *metadata.Overrides `json:"overrides"`
}
// #endregion hash-input
