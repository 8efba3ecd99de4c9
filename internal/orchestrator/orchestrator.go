package orchestrator

// #region imports
import (
	"github.com/danielpatrickdp/scene-metadata/internal/conflict"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/tags"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// #region analyzer-struct

// Analyzer runs the detectors for one scene and applies overrides.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	detect Detectors
}

// #endregion

// #region constructor

// NewAnalyzer creates an analyzer. Nil detector fields use the defaults.
func NewAnalyzer(d Detectors) *Analyzer {
	return &Analyzer{detect: d.withDefaults()}
}

var defaultAnalyzer = NewAnalyzer(Detectors{})

// AnalyseScene analyses one scene with the default detectors.
func AnalyseScene(in SceneInput) metadata.SceneMetadata {
	return defaultAnalyzer.AnalyseScene(in)
}

// #endregion

// #region analyse

// AnalyseScene produces the metadata snapshot for one scene. A field
// present in the overrides is taken as manual and its detector is not
// called. Intensity is scored against the resolved emotion, manual or
// not.
func (a *Analyzer) AnalyseScene(in SceneInput) metadata.SceneMetadata {
	ov := in.Overrides
	if ov == nil {
		ov = &metadata.Overrides{}
	}
	stats := textstats.Compute(in.Text)

	md := metadata.SceneMetadata{
		ChapterID:   in.ChapterID,
		SceneName:   in.SceneName,
		ChapterPath: in.ChapterPath,

		Characters: metadata.Auto(nonNil(in.Mentions.Characters)),
		Locations:  metadata.Auto(nonNil(in.Mentions.Locations)),
		Items:      metadata.Auto(nonNil(in.Mentions.Items)),
		Lore:       metadata.Auto(nonNil(in.Mentions.Lore)),

		WordCount:            stats.WordCount,
		DialogueRatio:        stats.DialogueRatio,
		AvgSentenceLength:    stats.AvgSentenceLength,
		PunctuationIntensity: stats.PunctuationIntensity,
	}

	if ov.POV != nil {
		md.POV = metadata.Manual(*ov.POV)
	} else {
		md.POV = a.detect.POV(in.Text, md.Characters.Value, in.Locale)
	}

	if ov.Emotion != nil {
		md.Emotion = metadata.Manual(*ov.Emotion)
	} else {
		md.Emotion = a.detect.Emotion(in.Text, in.Locale)
	}

	if ov.Intensity != nil {
		md.Intensity = metadata.Manual(metadata.ClampIntensity(*ov.Intensity))
	} else {
		md.Intensity = a.detect.Intensity(in.Text, md.Emotion.Value, in.Locale)
	}

	if ov.Conflict != nil {
		md.Conflict = metadata.Manual(*ov.Conflict)
	} else {
		md.Conflict = a.detect.Conflict(conflict.Input{
			Text:       in.Text,
			Candidates: md.Characters.Value,
			Notes:      in.Notes,
			SceneName:  in.SceneName,
			Locale:     in.Locale,
		})
	}

	if ov.Tags != nil {
		md.Tags = metadata.Manual(nonNil(*ov.Tags))
	} else {
		md.Tags = a.detect.Tags(tags.Input{
			Text:      in.Text,
			ChapterID: in.ChapterID,
			SceneName: in.SceneName,
			Notes:     in.Notes,
			PlotBoard: in.PlotBoard,
		})
	}

	return md
}

// #endregion analyse

// #region helpers

// nonNil copies s so the snapshot never aliases caller slices.
func nonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// #endregion helpers
