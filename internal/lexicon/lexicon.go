package lexicon

// #region imports
import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/textstats"
)

// #endregion

//go:embed data/*.yaml
var embeddedData embed.FS

const valenceFile = "data/valence.yaml"

// #region types

// Keyword is one weighted lexicon entry, stored folded for matching.
type Keyword struct {
	Word   string
	Weight int
}

// UnmarshalYAML decodes the compact `[word, weight]` form.
func (k *Keyword) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: keyword must be [word, weight]", node.Line)
	}
	weight, err := strconv.Atoi(node.Content[1].Value)
	if err != nil {
		return fmt.Errorf("line %d: weight: %w", node.Line, err)
	}
	k.Word = node.Content[0].Value
	k.Weight = weight
	return nil
}

// Lexicon is one read-only locale variant. Never mutate a Lexicon
// returned by Select; it is shared by all callers.
type Lexicon struct {
	Locale      string
	Version     int
	Default     bool
	Prefixes    []string
	FirstPerson []string
	ActionVerbs []string
	GoalPattern []*regexp.Regexp
	TurningWord []string

	emotions map[metadata.Emotion][]Keyword
}

// Keywords returns the weighted keywords of e in declaration order.
func (l *Lexicon) Keywords(e metadata.Emotion) []Keyword {
	return l.emotions[e]
}

type lexiconFile struct {
	Locale      string                         `yaml:"locale"`
	Version     int                            `yaml:"version"`
	Default     bool                           `yaml:"default"`
	Prefixes    []string                       `yaml:"prefixes"`
	FirstPerson []string                       `yaml:"first_person"`
	ActionVerbs []string                       `yaml:"action_verbs"`
	Conflict    conflictFile                   `yaml:"conflict"`
	Emotions    map[metadata.Emotion][]Keyword `yaml:"emotions"`
}

type conflictFile struct {
	GoalPatterns []string `yaml:"goal_patterns"`
	TurningWords []string `yaml:"turning_words"`
}

type valenceData struct {
	Version int                      `yaml:"version"`
	Valence map[metadata.Emotion]int `yaml:"valence"`
}

// Set is a loaded collection of lexicon variants plus the valence table.
type Set struct {
	variants []*Lexicon
	byPrefix map[string]*Lexicon
	fallback *Lexicon
	valence  map[metadata.Emotion]int
}

// #endregion types

// #region default-set

var defaultSet = sync.OnceValue(func() *Set {
	s, err := Load(embeddedData)
	if err != nil {
		panic(fmt.Sprintf("lexicon: embedded data: %v", err))
	}
	return s
})

// Select returns the embedded lexicon variant for locale.
func Select(locale string) *Lexicon {
	return defaultSet().Select(locale)
}

// Valence returns the embedded base intensity of e.
func Valence(e metadata.Emotion) int {
	return defaultSet().Valence(e)
}

// Variants returns the locales of all embedded variants, sorted.
func Variants() []string {
	return defaultSet().Variants()
}

// #endregion default-set

// #region load

// Load parses every data/*.yaml lexicon in fsys plus data/valence.yaml.
func Load(fsys fs.FS) (*Set, error) {
	paths, err := fs.Glob(fsys, "data/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob lexicons: %w", err)
	}
	sort.Strings(paths)

	set := &Set{byPrefix: map[string]*Lexicon{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if path == valenceFile {
			if err := set.loadValence(data); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			continue
		}
		lex, err := parseLexicon(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := set.add(lex); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if set.fallback == nil {
		return nil, fmt.Errorf("no default lexicon defined")
	}
	if set.valence == nil {
		return nil, fmt.Errorf("%s is missing", valenceFile)
	}
	return set, nil
}

func parseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Locale) == "" {
		return nil, fmt.Errorf("locale is required")
	}
	if len(f.Prefixes) == 0 {
		return nil, fmt.Errorf("locale %s: at least one prefix is required", f.Locale)
	}

	lex := &Lexicon{
		Locale:      f.Locale,
		Version:     f.Version,
		Default:     f.Default,
		Prefixes:    f.Prefixes,
		FirstPerson: foldAll(f.FirstPerson),
		ActionVerbs: foldAll(f.ActionVerbs),
		TurningWord: foldAll(f.Conflict.TurningWords),
		emotions:    make(map[metadata.Emotion][]Keyword, len(f.Emotions)),
	}

	for _, p := range f.Conflict.GoalPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("locale %s: goal pattern %q: %w", f.Locale, p, err)
		}
		lex.GoalPattern = append(lex.GoalPattern, re)
	}

	for emotion, keywords := range f.Emotions {
		if !emotion.Valid() || emotion == metadata.EmotionNeutral {
			return nil, fmt.Errorf("locale %s: unknown emotion %q", f.Locale, emotion)
		}
		folded := make([]Keyword, 0, len(keywords))
		for _, kw := range keywords {
			if kw.Weight < 1 || kw.Weight > 3 {
				return nil, fmt.Errorf("locale %s: %s/%q: weight %d outside 1..3", f.Locale, emotion, kw.Word, kw.Weight)
			}
			word := textstats.Fold(strings.TrimSpace(kw.Word))
			if word == "" {
				return nil, fmt.Errorf("locale %s: %s: blank keyword", f.Locale, emotion)
			}
			folded = append(folded, Keyword{Word: word, Weight: kw.Weight})
		}
		lex.emotions[emotion] = folded
	}
	return lex, nil
}

func (s *Set) add(lex *Lexicon) error {
	for _, p := range lex.Prefixes {
		key := strings.ToLower(strings.TrimSpace(p))
		if prev, ok := s.byPrefix[key]; ok {
			return fmt.Errorf("prefix %q claimed by both %s and %s", key, prev.Locale, lex.Locale)
		}
		s.byPrefix[key] = lex
	}
	if lex.Default {
		if s.fallback != nil {
			return fmt.Errorf("locales %s and %s are both marked default", s.fallback.Locale, lex.Locale)
		}
		s.fallback = lex
	}
	s.variants = append(s.variants, lex)
	return nil
}

func (s *Set) loadValence(data []byte) error {
	var v valenceData
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	for _, e := range metadata.Emotions() {
		if _, ok := v.Valence[e]; !ok {
			return fmt.Errorf("valence for %s is missing", e)
		}
	}
	s.valence = v.Valence
	return nil
}

func foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = textstats.Fold(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// #endregion load

// #region select

// Select dispatches on the base language of locale. Unknown or
// unparseable locales get the default variant.
func (s *Set) Select(locale string) *Lexicon {
	if lex, ok := s.byPrefix[basePrefix(locale)]; ok {
		return lex
	}
	return s.fallback
}

// Valence returns the base intensity of e; unknown emotions score 0.
func (s *Set) Valence(e metadata.Emotion) int {
	return s.valence[e]
}

// Variants returns the locales of all loaded variants, sorted.
func (s *Set) Variants() []string {
	out := make([]string, 0, len(s.variants))
	for _, l := range s.variants {
		out = append(out, l.Locale)
	}
	sort.Strings(out)
	return out
}

// basePrefix reduces "de_CH", "de-AT" or "DE" to "de".
func basePrefix(locale string) string {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return ""
	}
	if tag, err := language.Parse(locale); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	head, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(head)
}

// #endregion select
