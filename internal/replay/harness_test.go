package replay

import (
	"testing"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/orchestrator"
)

func ptr[T any](v T) *T { return &v }

func TestReplay_ReportsMismatches(t *testing.T) {
	f := &Fixture{
		ChapterID: "ch1",
		Locale:    "en",
		Scenes: []FixtureScene{
			{Name: "A", Text: "Plain words here."},
			{Name: "B", Text: "No expectation."},
		},
		ExpectedResults: []FixtureExpected{
			{SceneName: "A", POV: ptr("Mara"), Emotion: ptr(metadata.EmotionTense), Tags: []string{"x"}},
		},
	}
	results := Replay(f, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := len(results[0].Mismatches); got != 2 {
		t.Fatalf("expected pov and tags mismatches, got %+v", results[0].Mismatches)
	}
	if results[0].Mismatches[0].Field != "pov" || results[0].Mismatches[1].Field != "tags" {
		t.Errorf("unexpected fields: %+v", results[0].Mismatches)
	}
	if !results[1].Passed() {
		t.Error("expected scene without expectations to pass")
	}

	sum := Summarize(f, results)
	if sum.TotalScenes != 2 || sum.Passed != 1 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.ByField["pov"] != 1 || sum.ByField["tags"] != 1 {
		t.Errorf("unexpected per-field counts: %v", sum.ByField)
	}
	if sum.AggregateMismatches != nil {
		t.Errorf("expected no aggregate check, got %+v", sum.AggregateMismatches)
	}
}

func TestReplay_CustomAnalyzer(t *testing.T) {
	d := orchestrator.Detectors{
		Emotion: func(string, string) metadata.TrackedValue[metadata.Emotion] {
			return metadata.Auto(metadata.EmotionChaotic)
		},
	}
	f := &Fixture{
		Scenes:          []FixtureScene{{Name: "A", Text: "Anything."}},
		ExpectedResults: []FixtureExpected{{SceneName: "A", Emotion: ptr(metadata.EmotionChaotic)}},
		ExpectedAggregate: &FixtureAggregate{
			DominantEmotion: ptr(metadata.EmotionChaotic),
			IntensityArc:    []int{1},
		},
	}
	results := Replay(f, orchestrator.NewAnalyzer(d))
	if !results[0].Passed() {
		t.Errorf("expected pass, got %+v", results[0].Mismatches)
	}
	sum := Summarize(f, results)
	if len(sum.AggregateMismatches) != 1 || sum.AggregateMismatches[0].Field != "intensity_arc" {
		t.Errorf("expected only an arc mismatch, got %+v", sum.AggregateMismatches)
	}
}
