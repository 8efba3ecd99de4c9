package conflict

// #region imports
import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielpatrickdp/scene-metadata/internal/lexicon"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// #region limits

const (
	MaxRunes         = 90
	minSentenceRunes = 10
)

// #endregion limits

// #region input

// Input bundles what the extractor reads. Notes may be nil.
type Input struct {
	Text       string
	Candidates []string
	Notes      *metadata.ChapterNotes
	SceneName  string
	Locale     string
}

// #endregion input

// #region detect

// Detect returns a one-line conflict summary, or "" when nothing fits.
// The cascade is: goal/obstacle sentence, turning-point sentence, first
// line of the scene note.
func Detect(in Input) metadata.TrackedValue[string] {
	return metadata.Auto(Extract(in, lexicon.Select(in.Locale)))
}

// Extract is Detect without the provenance wrapper.
func Extract(in Input, lex *lexicon.Lexicon) string {
	sentences := candidateSentences(in.Text)

	if s, ok := goalSentence(sentences, firstNames(in.Candidates), lex); ok {
		return shorten(s)
	}
	if s, ok := turningSentence(sentences, lex); ok {
		return shorten(s)
	}
	if line := firstNoteLine(in.Notes.SceneNote(in.SceneName)); line != "" {
		return shorten(line)
	}
	return ""
}

// #endregion detect

// #region cascade

func candidateSentences(text string) []string {
	var out []string
	for _, s := range textstats.Sentences(textstats.CleanProse(text)) {
		if utf8.RuneCountInString(s) > minSentenceRunes {
			out = append(out, s)
		}
	}
	return out
}

// goalSentence prefers a goal sentence naming a candidate. Without
// candidates the first goal sentence is accepted.
func goalSentence(sentences, names []string, lex *lexicon.Lexicon) (string, bool) {
	for _, s := range sentences {
		if !matchesGoal(s, lex) {
			continue
		}
		if len(names) == 0 {
			return s, true
		}
		for _, n := range names {
			if textstats.ContainsWholeWord(s, n) {
				return s, true
			}
		}
	}
	return "", false
}

func matchesGoal(s string, lex *lexicon.Lexicon) bool {
	for _, re := range lex.GoalPattern {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func turningSentence(sentences []string, lex *lexicon.Lexicon) (string, bool) {
	for _, s := range sentences {
		head := leadingWord(s)
		for _, w := range lex.TurningWord {
			if head == w {
				return s, true
			}
		}
	}
	return "", false
}

func firstNoteLine(note string) string {
	for _, line := range strings.Split(note, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#-*>"))
		if line != "" {
			return line
		}
	}
	return ""
}

// #endregion cascade

// #region helpers

// leadingWord returns the folded first word of s, skipping opening
// quotes and punctuation.
func leadingWord(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if end >= 0 {
		s = s[:end]
	}
	return textstats.Fold(s)
}

func firstNames(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if fields := strings.Fields(c); len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

// shorten caps s at MaxRunes and capitalizes the first letter.
func shorten(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > MaxRunes {
		runes = append([]rune(strings.TrimRightFunc(string(runes[:MaxRunes-1]), unicode.IsSpace)), '…')
	}
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// #endregion helpers
