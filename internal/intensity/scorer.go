package intensity

// #region imports
import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/danielpatrickdp/scene-metadata/internal/lexicon"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// #region weights

const (
	weightAction      = 0.30
	weightRhythm      = 0.20
	weightPunctuation = 0.15
	weightDialogue    = 0.15
	weightValence     = 0.20

	maxActionHits       = 10
	maxRhythm           = 8.0
	maxPunctuation      = 8.0
	shortQuoteRunes     = 60
	rapidExchangeQuotes = 5
	rapidExchangeSignal = 5.0
)

// #endregion weights

// #region breakdown

// Breakdown exposes the weighted components behind a score.
type Breakdown struct {
	Action      float64
	Rhythm      float64
	Punctuation float64
	Dialogue    float64
	Valence     float64
	Raw         float64
	Score       int
}

// #endregion breakdown

// #region detect

// Detect scores how narratively charged text is, in [-10, 10].
func Detect(text string, emotion metadata.Emotion, locale string) metadata.TrackedValue[int] {
	return metadata.Auto(Score(text, emotion, lexicon.Select(locale)).Score)
}

// Score computes the five weighted components and rescales their sum.
// Text without words scores 0.
func Score(text string, emotion metadata.Emotion, lex *lexicon.Lexicon) Breakdown {
	st := textstats.Compute(text)
	if st.WordCount == 0 {
		return Breakdown{}
	}

	b := Breakdown{
		Action:      actionDensity(text, lex) * weightAction,
		Rhythm:      sentenceRhythm(st.AvgSentenceLength) * weightRhythm,
		Punctuation: punctuationSignal(st) * weightPunctuation,
		Dialogue:    dialogueSignal(text, st.DialogueRatio) * weightDialogue,
		Valence:     float64(lexicon.Valence(emotion)) * weightValence,
	}
	b.Raw = b.Action + b.Rhythm + b.Punctuation + b.Dialogue + b.Valence
	b.Score = normalize(b.Raw)
	return b
}

// #endregion detect

// #region components

// actionDensity counts distinct action verbs present as substrings,
// capped at ten, on a 0..10 scale.
func actionDensity(text string, lex *lexicon.Lexicon) float64 {
	folded := textstats.Fold(text)
	hits := 0
	for _, verb := range lex.ActionVerbs {
		if strings.Contains(folded, verb) {
			hits++
			if hits == maxActionHits {
				break
			}
		}
	}
	return float64(hits) / maxActionHits * 10
}

// sentenceRhythm rewards short sentences.
func sentenceRhythm(avg float64) float64 {
	return clamp(maxRhythm-(avg-5)*0.4, 0, maxRhythm)
}

func punctuationSignal(st textstats.Stats) float64 {
	marks := float64(st.Exclamations) + 0.7*float64(st.Questions) + 0.5*float64(st.Dashes)
	return math.Min(marks/float64(st.WordCount)*100, maxPunctuation)
}

// dialogueSignal saturates on rapid exchanges of short lines.
func dialogueSignal(text string, ratio float64) float64 {
	short := 0
	for _, span := range textstats.QuotedSpans(text) {
		if utf8.RuneCountInString(span) <= shortQuoteRunes {
			short++
		}
	}
	if short > rapidExchangeQuotes {
		return rapidExchangeSignal
	}
	return ratio * 3
}

// #endregion components

// #region helpers

// normalize maps the raw 0..~8 scale onto [-10, 10], rounding half up.
func normalize(raw float64) int {
	scaled := raw/5*10 - 2
	return metadata.ClampIntensity(int(math.Floor(scaled + 0.5)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
