package chapter

// #region imports
import (
	"math"
	"strings"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

// #endregion

// #region compute

// Compute derives the chapter aggregate from scenes in chapter order.
// An empty chapter yields empty lists, a blank POV and neutral emotion.
func Compute(scenes []metadata.SceneMetadata) metadata.ChapterAggregate {
	agg := metadata.ChapterAggregate{
		AllCharacters:   []string{},
		AllLocations:    []string{},
		DominantEmotion: metadata.EmotionNeutral,
		IntensityArc:    make([]int, 0, len(scenes)),
	}
	if len(scenes) == 0 {
		return agg
	}

	characters := newUnion()
	locations := newUnion()
	povs := newTally()
	emotions := newTally()
	sum := 0

	for _, s := range scenes {
		characters.add(s.Characters.Value)
		locations.add(s.Locations.Value)
		povs.add(strings.TrimSpace(s.POV.Value))
		emotions.add(string(s.Emotion.Value))
		sum += s.Intensity.Value
		agg.TotalWordCount += s.WordCount
		agg.IntensityArc = append(agg.IntensityArc, s.Intensity.Value)
	}

	agg.AllCharacters = characters.items
	agg.AllLocations = locations.items
	agg.DominantPOV = povs.top()
	if e := emotions.top(); e != "" {
		agg.DominantEmotion = metadata.Emotion(e)
	}
	agg.AvgIntensity = roundTenth(float64(sum) / float64(len(scenes)))
	return agg
}

// ComputeOrdered aggregates scenes held by name, visiting them in the
// given order. Names missing from byName are skipped and scenes not
// named in order are left out.
func ComputeOrdered(byName map[string]metadata.SceneMetadata, order []string) metadata.ChapterAggregate {
	scenes := make([]metadata.SceneMetadata, 0, len(order))
	for _, name := range order {
		if s, ok := byName[name]; ok {
			scenes = append(scenes, s)
		}
	}
	return Compute(scenes)
}

// #endregion compute

// #region helpers

// roundTenth rounds half-up to one decimal.
func roundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

type union struct {
	seen  map[string]struct{}
	items []string
}

func newUnion() *union {
	return &union{seen: map[string]struct{}{}, items: []string{}}
}

func (u *union) add(values []string) {
	for _, v := range values {
		if _, ok := u.seen[v]; ok || v == "" {
			continue
		}
		u.seen[v] = struct{}{}
		u.items = append(u.items, v)
	}
}

// tally counts values; ties go to the value encountered first.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(v string) {
	if v == "" {
		return
	}
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

func (t *tally) top() string {
	best, bestCount := "", 0
	for _, v := range t.order {
		if c := t.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

// #endregion helpers
