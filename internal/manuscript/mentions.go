package manuscript

// #region imports
import (
	"slices"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

// #region types

// Entity is a known name with optional aliases. Mentions always report
// the canonical Name.
type Entity struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Entities is the project's entity catalogue, per category.
type Entities struct {
	Characters []Entity `json:"characters"`
	Locations  []Entity `json:"locations"`
	Items      []Entity `json:"items"`
	Lore       []Entity `json:"lore"`
}

// #endregion types

// #region detect

// DetectMentions finds catalogue entries named in text, whole-word and
// case-insensitive. Each list is ordered by first occurrence; entries
// first seen at the same offset keep catalogue order.
func DetectMentions(text string, ents Entities) metadata.Mentions {
	folded := textstats.Fold(textstats.StripMarkup(text))
	return metadata.Mentions{
		Characters: mentioned(folded, ents.Characters),
		Locations:  mentioned(folded, ents.Locations),
		Items:      mentioned(folded, ents.Items),
		Lore:       mentioned(folded, ents.Lore),
	}
}

type hit struct {
	name string
	at   int
}

func mentioned(folded string, list []Entity) []string {
	var hits []hit
	for _, e := range list {
		at := -1
		for _, n := range append([]string{e.Name}, e.Aliases...) {
			i := textstats.IndexFolded(folded, textstats.Fold(n))
			if i >= 0 && (at < 0 || i < at) {
				at = i
			}
		}
		if at >= 0 && e.Name != "" {
			hits = append(hits, hit{name: e.Name, at: at})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.at - b.at })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if !slices.Contains(out, h.name) {
			out = append(out, h.name)
		}
	}
	return out
}

// #endregion detect
