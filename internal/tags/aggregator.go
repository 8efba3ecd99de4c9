package tags

// #region imports
import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// maxLabelRunes: longer chapter labels are descriptions, not tags.
const maxLabelRunes = 40

// hashtag requires a letter after '#', so headings ("# Title") and
// numbers ("#3") are not tags, and "page#anchor" is skipped.
var hashtag = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&/])#(\p{L}[\p{L}\p{N}_/-]*)`)

// #region input

// Input bundles the tag sources for one scene. PlotBoard and Notes may
// be nil.
type Input struct {
	Text      string
	ChapterID string
	SceneName string
	Notes     *metadata.ChapterNotes
	PlotBoard *metadata.PlotBoard
}

// #endregion input

// #region detect

// Detect unions plot-board labels and hashtags from every source.
func Detect(in Input) metadata.TrackedValue[[]string] {
	return metadata.Auto(Collect(in))
}

// Collect is Detect without the provenance wrapper. The result is never
// nil.
func Collect(in Input) []string {
	set := newOrderedSet()

	if board := in.PlotBoard; board != nil {
		for _, card := range board.Cards {
			if touches(card.ChapterIDs, in.ChapterID) {
				set.add(card.Labels...)
			}
		}
		if ch, ok := board.Chapters[in.ChapterID]; ok {
			for _, label := range ch.Labels {
				if utf8.RuneCountInString(strings.TrimSpace(label)) < maxLabelRunes {
					set.add(label)
				}
			}
		}
		for _, cell := range board.Cells {
			if cell.ChapterID != in.ChapterID {
				continue
			}
			if cell.SceneName == "" || cell.SceneName == in.SceneName {
				set.add(Hashtags(cell.Text)...)
			}
		}
	}

	if in.Notes != nil {
		set.add(Hashtags(in.Notes.ChapterNote)...)
		set.add(Hashtags(in.Notes.SceneNote(in.SceneName))...)
	}

	set.add(Hashtags(in.Text)...)
	return set.items
}

// Hashtags returns the tag names in text, without '#', in order.
func Hashtags(text string) []string {
	matches := hashtag.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimRight(m[1], "/-"))
	}
	return out
}

// #endregion detect

// #region helpers

func touches(chapterIDs []string, chapterID string) bool {
	for _, id := range chapterIDs {
		if id == chapterID {
			return true
		}
	}
	return false
}

// orderedSet dedupes case-insensitively; the first spelling wins.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]struct{}{}, items: []string{}}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "#"))
		if v == "" {
			continue
		}
		key := textstats.Fold(v)
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		s.items = append(s.items, v)
	}
}

// #endregion helpers
