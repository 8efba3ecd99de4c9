package metadata

// #region source

// Source records how a tracked value was determined.
type Source string

const (
	SourceAuto   Source = "auto"   // inferred by the heuristic engine
	SourceManual Source = "manual" // user override, never overwritten
	SourceAI     Source = "ai"     // external pipeline, never produced here
)

// #endregion source

// #region tracked-value

// TrackedValue pairs a value with its provenance.
type TrackedValue[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
}

// Auto wraps v with SourceAuto.
func Auto[T any](v T) TrackedValue[T] {
	return TrackedValue[T]{Value: v, Source: SourceAuto}
}

// Manual wraps v with SourceManual.
func Manual[T any](v T) TrackedValue[T] {
	return TrackedValue[T]{Value: v, Source: SourceManual}
}

// IsManual reports whether the value came from a user override.
func (tv TrackedValue[T]) IsManual() bool {
	return tv.Source == SourceManual
}

// #endregion tracked-value

// #region emotion

// Emotion is the dominant emotional tone of a scene.
type Emotion string

const (
	EmotionTense       Emotion = "tense"
	EmotionAngry       Emotion = "angry"
	EmotionFearful     Emotion = "fearful"
	EmotionJoyful      Emotion = "joyful"
	EmotionRomantic    Emotion = "romantic"
	EmotionMelancholic Emotion = "melancholic"
	EmotionSorrowful   Emotion = "sorrowful"
	EmotionHopeful     Emotion = "hopeful"
	EmotionPeaceful    Emotion = "peaceful"
	EmotionMysterious  Emotion = "mysterious"
	EmotionChaotic     Emotion = "chaotic"
	EmotionTriumphant  Emotion = "triumphant"
	EmotionDesperate   Emotion = "desperate"
	EmotionHumorous    Emotion = "humorous"
	EmotionNeutral     Emotion = "neutral"
)

// canonicalEmotions fixes the scan order used for every tie-break.
var canonicalEmotions = [...]Emotion{
	EmotionTense,
	EmotionAngry,
	EmotionFearful,
	EmotionJoyful,
	EmotionRomantic,
	EmotionMelancholic,
	EmotionSorrowful,
	EmotionHopeful,
	EmotionPeaceful,
	EmotionMysterious,
	EmotionChaotic,
	EmotionTriumphant,
	EmotionDesperate,
	EmotionHumorous,
	EmotionNeutral,
}

// Emotions returns all fifteen emotions in canonical order, neutral last.
func Emotions() []Emotion {
	out := make([]Emotion, len(canonicalEmotions))
	copy(out, canonicalEmotions[:])
	return out
}

// ScoredEmotions returns the canonical order without neutral, which is
// only ever a fallback.
func ScoredEmotions() []Emotion {
	out := make([]Emotion, len(canonicalEmotions)-1)
	copy(out, canonicalEmotions[:len(canonicalEmotions)-1])
	return out
}

// Valid reports whether e is one of the fifteen known emotions.
func (e Emotion) Valid() bool {
	for _, c := range canonicalEmotions {
		if c == e {
			return true
		}
	}
	return false
}

// #endregion emotion

// #region intensity-bounds

const (
	MinIntensity = -10
	MaxIntensity = 10
)

// ClampIntensity restricts v to [MinIntensity, MaxIntensity].
func ClampIntensity(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

// #endregion intensity-bounds

// #region scene-metadata

// SceneMetadata is the immutable analysis snapshot of one scene.
type SceneMetadata struct {
	ChapterID   string `json:"chapter_id"`
	SceneName   string `json:"scene_name"`
	ChapterPath string `json:"chapter_path,omitempty"`

	POV        TrackedValue[string]   `json:"pov"`
	Characters TrackedValue[[]string] `json:"characters"`
	Locations  TrackedValue[[]string] `json:"locations"`
	Items      TrackedValue[[]string] `json:"items"`
	Lore       TrackedValue[[]string] `json:"lore"`
	Emotion    TrackedValue[Emotion]  `json:"emotion"`
	Intensity  TrackedValue[int]      `json:"intensity"`
	Conflict   TrackedValue[string]   `json:"conflict"`
	Tags       TrackedValue[[]string] `json:"tags"`

	WordCount            int     `json:"word_count"`
	DialogueRatio        float64 `json:"dialogue_ratio"`
	AvgSentenceLength    float64 `json:"avg_sentence_length"`
	PunctuationIntensity float64 `json:"punctuation_intensity"`
}

// #endregion scene-metadata

// #region chapter-aggregate

// ChapterAggregate is derived from the scenes of one chapter.
type ChapterAggregate struct {
	AllCharacters   []string `json:"all_characters"`
	AllLocations    []string `json:"all_locations"`
	DominantPOV     string   `json:"dominant_pov"`
	AvgIntensity    float64  `json:"avg_intensity"`
	DominantEmotion Emotion  `json:"dominant_emotion"`
	TotalWordCount  int      `json:"total_word_count"`
	IntensityArc    []int    `json:"intensity_arc"`
}

// #endregion chapter-aggregate

// #region overrides

// Overrides holds caller-owned manual values. A nil field means "detect".
type Overrides struct {
	POV       *string   `json:"pov,omitempty"`
	Emotion   *Emotion  `json:"emotion,omitempty"`
	Intensity *int      `json:"intensity,omitempty"`
	Conflict  *string   `json:"conflict,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
}

// #endregion overrides

// #region mentions

// Mentions lists entity names already detected in a scene, each in
// detection order.
type Mentions struct {
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	Items      []string `json:"items"`
	Lore       []string `json:"lore"`
}

// #endregion mentions

// #region notes

// ChapterNotes is a read-only snapshot of the chapter's note file.
type ChapterNotes struct {
	ChapterNote string            `json:"chapter_note"`
	SceneNotes  map[string]string `json:"scene_notes"` // keyed by scene name
}

// SceneNote returns the note for sceneName, or "".
func (n *ChapterNotes) SceneNote(sceneName string) string {
	if n == nil || n.SceneNotes == nil {
		return ""
	}
	return n.SceneNotes[sceneName]
}

// #endregion notes

// #region plot-board

// PlotBoard is a read-only snapshot of the plot board.
type PlotBoard struct {
	Cards    []PlotCard             `json:"cards"`
	Chapters map[string]PlotChapter `json:"chapters"` // keyed by chapter ID
	Cells    []PlotCell             `json:"cells"`
}

// PlotCard is a board card that may touch several chapters.
type PlotCard struct {
	Title      string   `json:"title"`
	ChapterIDs []string `json:"chapter_ids"`
	Labels     []string `json:"labels"`
}

// PlotChapter carries chapter-level plotline labels.
type PlotChapter struct {
	Labels []string `json:"labels"`
}

// PlotCell is free text in one board cell. SceneName is empty for
// chapter-wide cells.
type PlotCell struct {
	ChapterID string `json:"chapter_id"`
	SceneName string `json:"scene_name,omitempty"`
	Text      string `json:"text"`
}

// #endregion plot-board
