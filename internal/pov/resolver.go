package pov

// #region imports
import (
	"strings"

	"github.com/danielpatrickdp/scene-metadata/internal/lexicon"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// #region tuning

const (
	// firstPersonDensity above which the scene is treated as narrated by
	// the first-listed character.
	firstPersonDensity = 0.015
	// ambiguityRatio: a lead smaller than this over the runner-up falls
	// back to the first-listed character.
	ambiguityRatio   = 1.3
	openingSentences = 5
	openingBonus     = 2.0
)

// #endregion tuning

// #region detect

// Detect picks the point-of-view character among candidates, which must
// be in detection order. Names are never invented: the result is always
// "" or one of the candidates.
func Detect(text string, candidates []string, locale string) metadata.TrackedValue[string] {
	return metadata.Auto(Resolve(text, candidates, lexicon.Select(locale)))
}

// Resolve is Detect without the provenance wrapper.
func Resolve(text string, candidates []string, lex *lexicon.Lexicon) string {
	names := cleanCandidates(candidates)
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}

	if isFirstPerson(text, lex) {
		return names[0]
	}

	scores := Scores(text, names)
	best, top, second := 0, scores[0], 0.0
	for i := 1; i < len(scores); i++ {
		s := scores[i]
		if s > top {
			second = top
			best, top = i, s
			continue
		}
		if s > second {
			second = s
		}
	}

	if top == 0 {
		return names[0]
	}
	if second > 0 && top/second < ambiguityRatio {
		return names[0]
	}
	return names[best]
}

// #endregion detect

// #region scoring

// Scores returns one score per name, in the same order.
func Scores(text string, names []string) []float64 {
	folded := textstats.Fold(text)

	var firstPara string
	if paras := textstats.Paragraphs(text); len(paras) > 0 {
		firstPara = textstats.Fold(paras[0])
	}
	opening := textstats.Sentences(text)
	if len(opening) > openingSentences {
		opening = opening[:openingSentences]
	}
	openingText := textstats.Fold(strings.Join(opening, " "))

	out := make([]float64, len(names))
	for i, name := range names {
		full := textstats.Fold(name)
		first := firstToken(full)

		count := textstats.CountFolded(folded, full)
		if first != full {
			count += textstats.CountFolded(folded, first)
		}
		score := float64(count)

		if mentions(firstPara, full, first) {
			score += float64(count) * 0.5
		}
		if mentions(openingText, full, first) {
			score += openingBonus
		}
		out[i] = score
	}
	return out
}

func mentions(folded, full, first string) bool {
	return textstats.CountFolded(folded, full) > 0 || textstats.CountFolded(folded, first) > 0
}

// isFirstPerson reports whether first-person pronouns make up more than
// 1.5% of the words.
func isFirstPerson(text string, lex *lexicon.Lexicon) bool {
	words := textstats.Words(text)
	if len(words) == 0 {
		return false
	}
	pronouns := make(map[string]struct{}, len(lex.FirstPerson))
	for _, p := range lex.FirstPerson {
		pronouns[p] = struct{}{}
	}
	hits := 0
	for _, w := range words {
		if _, ok := pronouns[textstats.Fold(w)]; ok {
			hits++
		}
	}
	return float64(hits)/float64(len(words)) > firstPersonDensity
}

// #endregion scoring

// #region helpers

func firstToken(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

func cleanCandidates(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// #endregion helpers
