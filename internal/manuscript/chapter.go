package manuscript

// #region imports
import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// #endregion

// OpeningScene names the untitled text before the first scene heading.
const OpeningScene = "Opening"

var (
	sceneHeading   = regexp.MustCompile(`^#{2,6}[ \t]+(.*?)[ \t#]*$`)
	chapterHeading = regexp.MustCompile(`^#[ \t]+(.*?)[ \t#]*$`)
)

// ErrFrontMatter is returned for an unterminated front matter block.
var ErrFrontMatter = errors.New("unterminated front matter")

// #region types

// Chapter is one parsed markdown chapter file.
type Chapter struct {
	ID     string
	Title  string
	Locale string
	Scenes []Scene
}

// Scene is the text under one scene heading.
type Scene struct {
	Name     string
	Position int
	Text     string
}

// Names returns scene names in document order.
func (c Chapter) Names() []string {
	out := make([]string, len(c.Scenes))
	for i, s := range c.Scenes {
		out[i] = s.Name
	}
	return out
}

type frontMatter struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Locale string `yaml:"locale"`
}

// #endregion types

// #region parse

// Parse splits a chapter into scenes at level-2 and deeper headings.
// Optional YAML front matter supplies id, title and locale. A level-1
// heading before the first scene sets the title when front matter does
// not. Duplicate scene names get a " (n)" suffix.
func Parse(markdown string) (Chapter, error) {
	text := strings.TrimPrefix(strings.ReplaceAll(markdown, "\r\n", "\n"), "\ufeff")

	var ch Chapter
	body, fm, err := splitFrontMatter(text)
	if err != nil {
		return ch, err
	}
	ch.ID, ch.Title, ch.Locale = fm.ID, fm.Title, fm.Locale

	var (
		name    = OpeningScene
		lines   []string
		started bool
		seen    = map[string]int{}
	)
	flush := func() {
		content := strings.TrimSpace(strings.Join(lines, "\n"))
		lines = lines[:0]
		if !started && content == "" {
			return
		}
		seen[name]++
		unique := name
		if n := seen[name]; n > 1 {
			unique = name + " (" + strconv.Itoa(n) + ")"
		}
		ch.Scenes = append(ch.Scenes, Scene{Name: unique, Position: len(ch.Scenes), Text: content})
	}

	for _, line := range strings.Split(body, "\n") {
		if m := sceneHeading.FindStringSubmatch(line); m != nil {
			flush()
			started = true
			name = strings.TrimSpace(m[1])
			if name == "" {
				name = "Scene " + strconv.Itoa(len(ch.Scenes)+1)
			}
			continue
		}
		if !started {
			if m := chapterHeading.FindStringSubmatch(line); m != nil {
				if ch.Title == "" {
					ch.Title = strings.TrimSpace(m[1])
				}
				continue
			}
		}
		lines = append(lines, line)
	}
	flush()
	return ch, nil
}

func splitFrontMatter(text string) (string, frontMatter, error) {
	var fm frontMatter
	if !strings.HasPrefix(text, "---\n") {
		return text, fm, nil
	}
	rest := text[len("---\n"):]
	end := -1
	if strings.HasPrefix(rest, "---\n") || rest == "---" {
		end = 0
	} else if i := strings.Index(rest, "\n---\n"); i >= 0 {
		end = i + 1
	} else if strings.HasSuffix(rest, "\n---") {
		end = len(rest) - len("---")
	}
	if end < 0 {
		return "", fm, ErrFrontMatter
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return "", fm, fmt.Errorf("front matter: %w", err)
	}
	body := strings.TrimPrefix(rest[end:], "---")
	return strings.TrimPrefix(body, "\n"), fm, nil
}

// #endregion parse
