package textstats

// #region imports
import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// #endregion

// #region patterns

var (
	headingLine = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t].*$`)
	imageMarkup = regexp.MustCompile(`!\[\[[^\]]*\]\]|!\[[^\]]*\]\([^)]*\)`)
	wikiLink    = regexp.MustCompile(`\[\[([^\]|]*)(?:\|([^\]]*))?\]\]`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdPunct     = regexp.MustCompile("[*_~`>|=\\[\\]#]")
	wordToken   = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)
	whitespace  = regexp.MustCompile(`\s+`)
	sentenceEnd = regexp.MustCompile(`\.\.\.|…|[.!?]`)
	blankLines  = regexp.MustCompile(`\n[ \t]*\n`)
	emphasis    = regexp.MustCompile("[*_~`]+")
	quoteMarker = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	innerSpaces = regexp.MustCompile(`[ \t]+`)

	// Three quoting conventions: "…", „…“ and «…».
	quotedSpan = regexp.MustCompile(`"[^"\n]*"|„[^“”"\n]*[“”]|«[^»\n]*»`)
)

// #endregion patterns

// #region stats

// Stats bundles every raw statistic the detectors need, so callers
// scan the text once.
type Stats struct {
	WordCount            int
	DialogueRatio        float64
	AvgSentenceLength    float64
	PunctuationIntensity float64
	Sentences            int
	Exclamations         int
	Questions            int
	Ellipses             int
	Dashes               int
}

// Compute extracts all statistics from text.
func Compute(text string) Stats {
	words := CountWords(text)
	avg, sentences := sentenceStats(text)
	s := Stats{
		WordCount:         words,
		DialogueRatio:     DialogueRatio(text),
		AvgSentenceLength: avg,
		Sentences:         sentences,
		Exclamations:      strings.Count(text, "!"),
		Questions:         strings.Count(text, "?"),
		Ellipses:          strings.Count(text, "...") + strings.Count(text, "…"),
		Dashes:            strings.Count(text, "—") + strings.Count(text, "–") + strings.Count(text, "--"),
	}
	s.PunctuationIntensity = punctuationPer100(s.Exclamations+s.Questions, words)
	return s
}

// #endregion stats

// #region words

// StripMarkup removes heading lines, image markup and markdown
// punctuation. Link labels are kept as plain text.
func StripMarkup(text string) string {
	return mdPunct.ReplaceAllString(stripLinks(headingLine.ReplaceAllString(text, "")), " ")
}

// CleanProse strips markdown but keeps prose punctuation and line
// breaks, for callers that quote sentences back to the user.
func CleanProse(text string) string {
	s := stripLinks(headingLine.ReplaceAllString(text, ""))
	s = quoteMarker.ReplaceAllString(s, "")
	s = emphasis.ReplaceAllString(s, "")
	return innerSpaces.ReplaceAllString(s, " ")
}

func stripLinks(s string) string {
	s = imageMarkup.ReplaceAllString(s, "")
	s = wikiLink.ReplaceAllStringFunc(s, func(m string) string {
		sub := wikiLink.FindStringSubmatch(m)
		if sub[2] != "" {
			return sub[2]
		}
		return sub[1]
	})
	return mdLink.ReplaceAllString(s, "$1")
}

// Words tokenizes text after stripping markup.
func Words(text string) []string {
	return wordToken.FindAllString(StripMarkup(text), -1)
}

// CountWords returns the number of word tokens in text.
func CountWords(text string) int {
	return len(Words(text))
}

// #endregion words

// #region dialogue

// QuotedSpans returns every quoted substring, quotes included.
func QuotedSpans(text string) []string {
	return quotedSpan.FindAllString(text, -1)
}

// DialogueRatio returns the share of text inside quotes, in [0, 1].
func DialogueRatio(text string) float64 {
	collapsed := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	total := utf8.RuneCountInString(collapsed)
	if total == 0 {
		return 0
	}
	quoted := 0
	for _, span := range QuotedSpans(text) {
		quoted += utf8.RuneCountInString(span)
	}
	ratio := float64(quoted) / float64(total)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// #endregion dialogue

// #region sentences

// AvgSentenceLength returns the mean word count per sentence fragment.
func AvgSentenceLength(text string) float64 {
	avg, _ := sentenceStats(text)
	return avg
}

// sentenceStats splits on terminal punctuation and ignores fragments
// without words.
func sentenceStats(text string) (float64, int) {
	fragments := sentenceEnd.Split(StripMarkup(text), -1)
	total, n := 0, 0
	for _, f := range fragments {
		c := len(wordToken.FindAllString(f, -1))
		if c == 0 {
			continue
		}
		total += c
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return float64(total) / float64(n), n
}

// Sentences splits text into trimmed sentences, keeping terminal
// punctuation and closing quotes. A single line break is a soft wrap;
// blank lines and headings end a sentence.
func Sentences(text string) []string {
	var out []string
	for _, p := range Paragraphs(text) {
		out = append(out, splitParagraph(strings.Join(strings.Fields(p), " "))...)
	}
	return out
}

func splitParagraph(text string) []string {
	runes := []rune(text)
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for i, r := range runes {
		b.WriteRune(r)
		closesSentence := isTerminal(r) || (isClosingQuote(r) && i > 0 && isTerminal(runes[i-1]))
		if closesSentence && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	flush()
	return out
}

// Paragraphs splits text on blank lines after dropping heading lines.
func Paragraphs(text string) []string {
	body := headingLine.ReplaceAllString(strings.ReplaceAll(text, "\r\n", "\n"), "")
	var out []string
	for _, p := range blankLines.Split(body, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isClosingQuote(r rune) bool {
	return r == '"' || r == '“' || r == '”' || r == '»' || r == '\''
}

// #endregion sentences

// #region punctuation

// PunctuationIntensity returns '!' plus '?' occurrences per 100 words.
func PunctuationIntensity(text string) float64 {
	marks := strings.Count(text, "!") + strings.Count(text, "?")
	return punctuationPer100(marks, CountWords(text))
}

func punctuationPer100(marks, words int) float64 {
	if words == 0 {
		return 0
	}
	return float64(marks) / float64(words) * 100
}

// #endregion punctuation

// #region whole-word

// Fold prepares text for case-insensitive matching: NFC normalization
// then lower case.
func Fold(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}

// CountWholeWord counts case-insensitive occurrences of phrase in text
// bounded by non-alphanumeric runes on both sides.
func CountWholeWord(text, phrase string) int {
	return CountFolded(Fold(text), Fold(phrase))
}

// ContainsWholeWord reports whether phrase occurs as a whole word.
func ContainsWholeWord(text, phrase string) bool {
	return CountWholeWord(text, phrase) > 0
}

// CountFolded is CountWholeWord for inputs already passed through Fold.
func CountFolded(folded, phrase string) int {
	count := 0
	scanFolded(folded, phrase, func(int) bool {
		count++
		return true
	})
	return count
}

// IndexFolded returns the byte offset of the first whole-word
// occurrence of phrase in folded, or -1.
func IndexFolded(folded, phrase string) int {
	idx := -1
	scanFolded(folded, phrase, func(start int) bool {
		idx = start
		return false
	})
	return idx
}

// scanFolded calls yield with the offset of each non-overlapping
// whole-word match until yield returns false.
func scanFolded(folded, phrase string, yield func(start int) bool) {
	if phrase == "" {
		return
	}
	offset := 0
	for offset < len(folded) {
		i := strings.Index(folded[offset:], phrase)
		if i < 0 {
			return
		}
		start := offset + i
		end := start + len(phrase)
		if boundaryBefore(folded, start) && boundaryAfter(folded, end) {
			if !yield(start) {
				return
			}
			offset = end
			continue
		}
		_, width := utf8.DecodeRuneInString(folded[start:])
		offset = start + width
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// #endregion whole-word
