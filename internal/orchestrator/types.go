package orchestrator

// #region imports
import (
	"github.com/danielpatrickdp/scene-metadata/internal/conflict"
	"github.com/danielpatrickdp/scene-metadata/internal/emotion"
	"github.com/danielpatrickdp/scene-metadata/internal/intensity"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/pov"
	"github.com/danielpatrickdp/scene-metadata/internal/tags"
)

// #endregion

// #region scene-input

// SceneInput is everything the caller supplies for one scene. Notes,
// PlotBoard and Overrides may be nil.
type SceneInput struct {
	Text        string
	SceneName   string
	ChapterID   string
	ChapterPath string
	Mentions    metadata.Mentions
	Notes       *metadata.ChapterNotes
	PlotBoard   *metadata.PlotBoard
	Overrides   *metadata.Overrides
	Locale      string
}

// #endregion scene-input

// #region detectors

// Detectors are the per-field auto-detectors. A nil field falls back to
// the package default.
type Detectors struct {
	POV       func(text string, candidates []string, locale string) metadata.TrackedValue[string]
	Emotion   func(text, locale string) metadata.TrackedValue[metadata.Emotion]
	Intensity func(text string, e metadata.Emotion, locale string) metadata.TrackedValue[int]
	Conflict  func(in conflict.Input) metadata.TrackedValue[string]
	Tags      func(in tags.Input) metadata.TrackedValue[[]string]
}

// DefaultDetectors wires the heuristic detectors.
func DefaultDetectors() Detectors {
	return Detectors{
		POV:       pov.Detect,
		Emotion:   emotion.Detect,
		Intensity: intensity.Detect,
		Conflict:  conflict.Detect,
		Tags:      tags.Detect,
	}
}

func (d Detectors) withDefaults() Detectors {
	def := DefaultDetectors()
	if d.POV == nil {
		d.POV = def.POV
	}
	if d.Emotion == nil {
		d.Emotion = def.Emotion
	}
	if d.Intensity == nil {
		d.Intensity = def.Intensity
	}
	if d.Conflict == nil {
		d.Conflict = def.Conflict
	}
	if d.Tags == nil {
		d.Tags = def.Tags
	}
	return d
}

// #endregion detectors
