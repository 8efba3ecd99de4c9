package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/orchestrator"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description       string                 `json:"description"`
	ChapterID         string                 `json:"chapter_id"`
	ChapterPath       string                 `json:"chapter_path"`
	Locale            string                 `json:"locale"`
	Notes             *metadata.ChapterNotes `json:"notes"`
	PlotBoard         *metadata.PlotBoard    `json:"plot_board"`
	Scenes            []FixtureScene         `json:"scenes"`
	ExpectedResults   []FixtureExpected      `json:"expected_results"`
	ExpectedAggregate *FixtureAggregate      `json:"expected_aggregate"`
}

// FixtureScene is one recorded scene with its caller-supplied context.
type FixtureScene struct {
	Name      string              `json:"name"`
	Text      string              `json:"text"`
	Mentions  metadata.Mentions   `json:"mentions"`
	Overrides *metadata.Overrides `json:"overrides"`
}

// FixtureExpected lists the expected values for one scene. Nil fields
// are not checked.
type FixtureExpected struct {
	SceneName string            `json:"scene_name"`
	POV       *string           `json:"pov"`
	Emotion   *metadata.Emotion `json:"emotion"`
	Intensity *int              `json:"intensity"`
	Conflict  *string           `json:"conflict"`
	Tags      []string          `json:"tags"`
	WordCount *int              `json:"word_count"`
}

// FixtureAggregate lists the expected chapter aggregate. Nil fields are
// not checked.
type FixtureAggregate struct {
	DominantPOV     *string           `json:"dominant_pov"`
	DominantEmotion *metadata.Emotion `json:"dominant_emotion"`
	AvgIntensity    *float64          `json:"avg_intensity"`
	TotalWordCount  *int              `json:"total_word_count"`
	IntensityArc    []int             `json:"intensity_arc"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSceneInput converts a FixtureScene to the analyser's input.
func (f *Fixture) ToSceneInput(s FixtureScene) orchestrator.SceneInput {
	return orchestrator.SceneInput{
		Text:        s.Text,
		SceneName:   s.Name,
		ChapterID:   f.ChapterID,
		ChapterPath: f.ChapterPath,
		Mentions:    s.Mentions,
		Notes:       f.Notes,
		PlotBoard:   f.PlotBoard,
		Overrides:   s.Overrides,
		Locale:      f.Locale,
	}
}

// expectedFor returns the expectation for sceneName, if any.
func (f *Fixture) expectedFor(sceneName string) (FixtureExpected, bool) {
	for _, e := range f.ExpectedResults {
		if e.SceneName == sceneName {
			return e, true
		}
	}
	return FixtureExpected{}, false
}

// #endregion fixture-loader
