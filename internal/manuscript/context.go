package manuscript

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

// Context is the project-side input for a chapter: the entity catalogue,
// note and plot-board snapshots, and manual overrides by scene name.
type Context struct {
	Entities  Entities                      `json:"entities"`
	Notes     *metadata.ChapterNotes        `json:"notes"`
	PlotBoard *metadata.PlotBoard           `json:"plot_board"`
	Overrides map[string]metadata.Overrides `json:"overrides"`
}

// LoadContext reads a context JSON file. An empty path yields an empty
// context.
func LoadContext(path string) (Context, error) {
	var c Context
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read context %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse context %s: %w", path, err)
	}
	return c, nil
}
