package replay

import (
	"fmt"
	"slices"

	"github.com/danielpatrickdp/scene-metadata/internal/chapter"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/orchestrator"
)

// #region types
// Mismatch is one field whose analysed value differs from the fixture.
type Mismatch struct {
	Field    string
	Expected string
	Actual   string
}

// ReplayResult captures the outcome of replaying one scene.
type ReplayResult struct {
	SceneName  string
	Metadata   metadata.SceneMetadata
	Mismatches []Mismatch
}

// Passed reports whether every checked field matched.
func (r ReplayResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalScenes         int
	Passed              int
	Failed              int
	ByField             map[string]int
	Aggregate           metadata.ChapterAggregate
	AggregateMismatches []Mismatch
}
// #endregion types

// #region replay
// Replay analyses every fixture scene with analyzer (nil for the
// defaults) and compares the result against the expectations.
func Replay(f *Fixture, analyzer *orchestrator.Analyzer) []ReplayResult {
	if analyzer == nil {
		analyzer = orchestrator.NewAnalyzer(orchestrator.DefaultDetectors())
	}
	results := make([]ReplayResult, 0, len(f.Scenes))
	for _, s := range f.Scenes {
		md := analyzer.AnalyseScene(f.ToSceneInput(s))
		r := ReplayResult{SceneName: s.Name, Metadata: md}
		if exp, ok := f.expectedFor(s.Name); ok {
			r.Mismatches = compareScene(exp, md)
		}
		results = append(results, r)
	}
	return results
}

// Summarize computes aggregate stats from replay results and checks the
// chapter aggregate when the fixture expects one.
func Summarize(f *Fixture, results []ReplayResult) ReplaySummary {
	s := ReplaySummary{
		TotalScenes: len(results),
		ByField:     map[string]int{},
	}
	scenes := make([]metadata.SceneMetadata, 0, len(results))
	for _, r := range results {
		scenes = append(scenes, r.Metadata)
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		for _, m := range r.Mismatches {
			s.ByField[m.Field]++
		}
	}
	s.Aggregate = chapter.Compute(scenes)
	if f.ExpectedAggregate != nil {
		s.AggregateMismatches = compareAggregate(*f.ExpectedAggregate, s.Aggregate)
	}
	return s
}
// #endregion replay

// #region compare
func compareScene(exp FixtureExpected, md metadata.SceneMetadata) []Mismatch {
	var out []Mismatch
	check := func(field string, want, got any) {
		w, g := fmt.Sprint(want), fmt.Sprint(got)
		if w != g {
			out = append(out, Mismatch{Field: field, Expected: w, Actual: g})
		}
	}
	if exp.POV != nil {
		check("pov", *exp.POV, md.POV.Value)
	}
	if exp.Emotion != nil {
		check("emotion", *exp.Emotion, md.Emotion.Value)
	}
	if exp.Intensity != nil {
		check("intensity", *exp.Intensity, md.Intensity.Value)
	}
	if exp.Conflict != nil {
		check("conflict", *exp.Conflict, md.Conflict.Value)
	}
	if exp.Tags != nil && !slices.Equal(exp.Tags, md.Tags.Value) {
		out = append(out, Mismatch{Field: "tags", Expected: fmt.Sprint(exp.Tags), Actual: fmt.Sprint(md.Tags.Value)})
	}
	if exp.WordCount != nil {
		check("word_count", *exp.WordCount, md.WordCount)
	}
	return out
}

func compareAggregate(exp FixtureAggregate, agg metadata.ChapterAggregate) []Mismatch {
	var out []Mismatch
	check := func(field string, want, got any) {
		w, g := fmt.Sprint(want), fmt.Sprint(got)
		if w != g {
			out = append(out, Mismatch{Field: field, Expected: w, Actual: g})
		}
	}
	if exp.DominantPOV != nil {
		check("dominant_pov", *exp.DominantPOV, agg.DominantPOV)
	}
	if exp.DominantEmotion != nil {
		check("dominant_emotion", *exp.DominantEmotion, agg.DominantEmotion)
	}
	if exp.AvgIntensity != nil {
		check("avg_intensity", *exp.AvgIntensity, agg.AvgIntensity)
	}
	if exp.TotalWordCount != nil {
		check("total_word_count", *exp.TotalWordCount, agg.TotalWordCount)
	}
	if exp.IntensityArc != nil {
		check("intensity_arc", exp.IntensityArc, agg.IntensityArc)
	}
	return out
}
// #endregion compare
