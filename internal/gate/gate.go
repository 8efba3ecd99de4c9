package gate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danielpatrickdp/scene-metadata/internal/conflict"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

const conflictCap = conflict.MaxRunes

// #region gate
// Gate decides whether an analysed snapshot may be cached.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate runs every hard check against md. Manual values are checked
// for range and membership only; the POV and conflict rules apply to
// auto-detected values.
func (g *Gate) Evaluate(md metadata.SceneMetadata) GateDecision {
	var vetoes []VetoSignal

	if strings.TrimSpace(md.ChapterID) == "" || strings.TrimSpace(md.SceneName) == "" {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoIdentity,
			Reason: fmt.Sprintf("missing identity (chapter %q, scene %q)", md.ChapterID, md.SceneName),
		})
	}

	if !md.Emotion.Value.Valid() {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoEmotion,
			Reason: fmt.Sprintf("unknown emotion %q (%s)", md.Emotion.Value, md.Emotion.Source),
		})
	}

	if v := md.Intensity.Value; v < metadata.MinIntensity || v > metadata.MaxIntensity {
		vetoes = append(vetoes, VetoSignal{
			Type: VetoIntensity,
			Reason: fmt.Sprintf("intensity %d outside [%d, %d]",
				v, metadata.MinIntensity, metadata.MaxIntensity),
		})
	}

	if g.config.RequirePOVMember && !md.POV.IsManual() && md.POV.Value != "" &&
		!contains(md.Characters.Value, md.POV.Value) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoPOV,
			Reason: fmt.Sprintf("pov %q not among detected characters", md.POV.Value),
		})
	}

	if n := utf8.RuneCountInString(md.Conflict.Value); !md.Conflict.IsManual() && g.config.MaxConflictRunes > 0 && n > g.config.MaxConflictRunes {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoConflict,
			Reason: fmt.Sprintf("conflict summary %d runes exceeds cap %d", n, g.config.MaxConflictRunes),
		})
	}

	for _, f := range []struct {
		name string
		v    []string
	}{
		{"characters", md.Characters.Value},
		{"locations", md.Locations.Value},
		{"items", md.Items.Value},
		{"lore", md.Lore.Value},
		{"tags", md.Tags.Value},
	} {
		if f.v == nil {
			vetoes = append(vetoes, VetoSignal{Type: VetoShape, Reason: f.name + " is nil"})
		}
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	return GateDecision{Action: "commit", Reason: "passed gate"}
}

// #endregion gate

// #region helpers
func contains(names []string, name string) bool {
	name = strings.TrimSpace(name)
	for _, n := range names {
		if strings.TrimSpace(n) == name {
			return true
		}
	}
	return false
}

// #endregion helpers
