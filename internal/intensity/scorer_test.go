package intensity

import (
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/scene-metadata/internal/lexicon"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

const quietScene = "The old house stood quietly at the end of the lane where the grass grew tall and the evening light settled slowly over the silent garden and its empty benches."

const actionScene = "Run! Jump! Strike! Punch! Kick! Grab! Shove! Slash! Stab! Fire! Dodge!"

// #region range-tests

func TestDetect_AlwaysInRange(t *testing.T) {
	texts := []string{
		"",
		"   ",
		quietScene,
		actionScene,
		strings.Repeat("Fight! ", 400),
		strings.Repeat("a ", 1000) + ".",
		`"Go." "No." "Now!" "Why?" "Because." "Fine." "Run!"`,
		"— — — -- ?? !! ...",
		"Er rannte, sprang und schlug zu! Warum?",
	}
	for _, text := range texts {
		for _, e := range metadata.Emotions() {
			for _, locale := range []string{"en", "de", "xx"} {
				got := Detect(text, e, locale)
				if got.Value < metadata.MinIntensity || got.Value > metadata.MaxIntensity {
					t.Errorf("Detect(%q, %s, %s) = %d, out of range", text, e, locale, got.Value)
				}
				if got.Source != metadata.SourceAuto {
					t.Errorf("expected auto source, got %s", got.Source)
				}
			}
		}
	}
}

func TestDetect_EmptyIsZero(t *testing.T) {
	if got := Detect("", metadata.EmotionChaotic, "en").Value; got != 0 {
		t.Errorf("expected 0 for empty text, got %d", got)
	}
}

// #endregion range-tests

// #region score-tests

func TestScore_QuietScene(t *testing.T) {
	b := Score(quietScene, metadata.EmotionSorrowful, lexicon.Select("en"))
	if b.Action != 0 || b.Rhythm != 0 || b.Punctuation != 0 || b.Dialogue != 0 {
		t.Errorf("expected only valence to contribute, got %+v", b)
	}
	if math.Abs(b.Valence-(-0.8)) > 1e-9 {
		t.Errorf("expected valence -0.8, got %f", b.Valence)
	}
	if b.Score != -4 {
		t.Errorf("expected -4, got %d", b.Score)
	}

	if got := Score(quietScene, metadata.EmotionNeutral, lexicon.Select("en")).Score; got != -2 {
		t.Errorf("expected -2 for a neutral quiet scene, got %d", got)
	}
}

func TestScore_ActionSceneSaturates(t *testing.T) {
	b := Score(actionScene, metadata.EmotionChaotic, lexicon.Select("en"))
	if math.Abs(b.Action-3) > 1e-9 {
		t.Errorf("expected capped action component 3, got %f", b.Action)
	}
	if math.Abs(b.Rhythm-1.6) > 1e-9 {
		t.Errorf("expected max rhythm 1.6, got %f", b.Rhythm)
	}
	if math.Abs(b.Punctuation-1.2) > 1e-9 {
		t.Errorf("expected max punctuation 1.2, got %f", b.Punctuation)
	}
	if b.Score != 10 {
		t.Errorf("expected clamp to 10, got %d (raw %f)", b.Score, b.Raw)
	}
}

func TestScore_EmotionShiftsScore(t *testing.T) {
	lex := lexicon.Select("en")
	text := "She walked to the window and looked down at the street below for a while."
	calm := Score(text, metadata.EmotionPeaceful, lex).Score
	wild := Score(text, metadata.EmotionChaotic, lex).Score
	if wild <= calm {
		t.Errorf("expected chaotic (%d) to outscore peaceful (%d)", wild, calm)
	}
}

// #endregion score-tests

// #region component-tests

func TestSentenceRhythm(t *testing.T) {
	cases := map[float64]float64{0: 8, 5: 8, 10: 6, 25: 0, 40: 0}
	for avg, want := range cases {
		if got := sentenceRhythm(avg); math.Abs(got-want) > 1e-9 {
			t.Errorf("sentenceRhythm(%f): expected %f, got %f", avg, want, got)
		}
	}
}

func TestDialogueSignal(t *testing.T) {
	rapid := `"Go." "No." "Now!" "Why?" "Because." "Fine."`
	if got := dialogueSignal(rapid, 0.9); got != 5 {
		t.Errorf("expected rapid exchange signal 5, got %f", got)
	}
	five := `"Go." "No." "Now!" "Why?" "Because."`
	if got := dialogueSignal(five, 0.5); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("expected ratio-based signal 1.5, got %f", got)
	}
	long := `"` + strings.Repeat("word ", 20) + `"`
	if got := dialogueSignal(strings.Repeat(long+" ", 6), 0.5); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("expected long quotes to use the ratio, got %f", got)
	}
}

func TestActionDensity_Capped(t *testing.T) {
	lex := lexicon.Select("en")
	if got := actionDensity(strings.Join(lex.ActionVerbs, " "), lex); got != 10 {
		t.Errorf("expected capped density 10, got %f", got)
	}
	if got := actionDensity("He sat quietly.", lex); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestNormalize_HalfUp(t *testing.T) {
	cases := map[float64]int{0: -2, 1.25: 1, -0.25: -2, 100: 10, -100: -10}
	for raw, want := range cases {
		if got := normalize(raw); got != want {
			t.Errorf("normalize(%f): expected %d, got %d", raw, want, got)
		}
	}
}

// #endregion component-tests
