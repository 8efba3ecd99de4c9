package emotion

// #region imports
import (
	"github.com/danielpatrickdp/scene-metadata/internal/lexicon"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// #region thresholds

const (
	// MinScore is the score an emotion needs before it beats neutral.
	MinScore = 2

	shortSentenceWords = 8
	longSentenceWords  = 20
	exclamationLimit   = 3
	questionLimit      = 3
	ellipsisLimit      = 2
)

// #endregion thresholds

// #region result

// Result is the full classification, including the score table that
// produced it.
type Result struct {
	Emotion     metadata.Emotion
	Scores      map[metadata.Emotion]int
	TopScore    int
	SecondScore int
}

// #endregion result

// #region detect

// Detect classifies the dominant emotion of text using the lexicon
// selected for locale.
func Detect(text, locale string) metadata.TrackedValue[metadata.Emotion] {
	return metadata.Auto(Classify(text, lexicon.Select(locale)).Emotion)
}

// Classify scores every emotion and picks the winner. Ties go to the
// emotion that comes first in canonical order.
func Classify(text string, lex *lexicon.Lexicon) Result {
	scores := lexiconScores(text, lex)
	applyStructure(scores, textstats.Compute(text))

	res := Result{Emotion: metadata.EmotionNeutral, Scores: scores}
	var top metadata.Emotion
	for _, e := range metadata.ScoredEmotions() {
		s := scores[e]
		switch {
		case top == "" || s > res.TopScore:
			if top != "" {
				res.SecondScore = res.TopScore
			}
			top, res.TopScore = e, s
		case s > res.SecondScore:
			res.SecondScore = s
		}
	}

	// Near-ties are still resolved to the top emotion once it clears
	// the threshold.
	if res.TopScore >= MinScore {
		res.Emotion = top
	}
	return res
}

// #endregion detect

// #region scoring

// lexiconScores sums keyword weights over whole-word occurrences.
func lexiconScores(text string, lex *lexicon.Lexicon) map[metadata.Emotion]int {
	folded := textstats.Fold(text)
	scores := make(map[metadata.Emotion]int, len(metadata.ScoredEmotions()))
	for _, e := range metadata.ScoredEmotions() {
		total := 0
		for _, kw := range lex.Keywords(e) {
			total += kw.Weight * textstats.CountFolded(folded, kw.Word)
		}
		scores[e] = total
	}
	return scores
}

// applyStructure adds rhythm and punctuation cues. Text without any
// sentence gets no structural boost, so empty scenes stay neutral.
func applyStructure(scores map[metadata.Emotion]int, st textstats.Stats) {
	if st.Sentences == 0 {
		return
	}
	if st.AvgSentenceLength < shortSentenceWords {
		scores[metadata.EmotionTense] += 3
		scores[metadata.EmotionChaotic] += 2
	}
	if st.AvgSentenceLength > longSentenceWords {
		scores[metadata.EmotionPeaceful] += 2
		scores[metadata.EmotionMelancholic]++
		scores[metadata.EmotionRomantic]++
	}
	if st.Exclamations > exclamationLimit {
		scores[metadata.EmotionAngry] += 2
		scores[metadata.EmotionChaotic]++
		scores[metadata.EmotionJoyful]++
	}
	if st.Questions > questionLimit {
		scores[metadata.EmotionMysterious] += 2
	}
	if st.Ellipses > ellipsisLimit {
		scores[metadata.EmotionMelancholic]++
		scores[metadata.EmotionMysterious]++
	}
}

// #endregion scoring
