package pov

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

const hallScene = "Kael drew his sword and stepped into the hall.\n\n" +
	"The guards watched him. Kael did not look at them. Somewhere behind the pillars, Mara was hiding.\n\n" +
	"Kael raised the blade."

// #region candidate-count-tests

func TestDetect_NoCandidates(t *testing.T) {
	got := Detect("Anything at all.", nil, "en")
	want := metadata.TrackedValue[string]{Value: "", Source: metadata.SourceAuto}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestDetect_SingleCandidate(t *testing.T) {
	for _, text := range []string{"", "Nobody is named here.", "I I I I me my"} {
		got := Detect(text, []string{"Alice"}, "en")
		want := metadata.TrackedValue[string]{Value: "Alice", Source: metadata.SourceAuto}
		if got != want {
			t.Errorf("Detect(%q): expected %+v, got %+v", text, want, got)
		}
	}
}

func TestDetect_BlankCandidatesIgnored(t *testing.T) {
	if got := Detect("text", []string{"", "  ", "Alice"}, "en").Value; got != "Alice" {
		t.Errorf("expected Alice, got %q", got)
	}
}

// #endregion candidate-count-tests

// #region first-person-tests

func TestDetect_FirstPersonNarrator(t *testing.T) {
	text := "I ran to the door. My hands shook as Kael shouted behind me. Kael was close."
	got := Detect(text, []string{"Mara", "Kael"}, "en").Value
	if got != "Mara" {
		t.Errorf("expected first-listed narrator Mara, got %q", got)
	}
}

func TestDetect_FirstPersonGerman(t *testing.T) {
	text := "Ich rannte zur Tür. Meine Hände zitterten, als Kael hinter mir schrie. Kael war nah."
	got := Detect(text, []string{"Mara", "Kael"}, "de").Value
	if got != "Mara" {
		t.Errorf("expected first-listed narrator Mara, got %q", got)
	}
}

// #endregion first-person-tests

// #region scoring-tests

func TestScores(t *testing.T) {
	got := Scores(hallScene, []string{"Mara", "Kael"})
	// Mara: 1 mention + opening bonus. Kael: 3 mentions + half for the
	// first paragraph + opening bonus.
	if diff := cmp.Diff([]float64{3, 6.5}, got); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestScores_WrappedOpeningSentence(t *testing.T) {
	text := "The long road\nwound past\nthe mill and\nthe river and\nthe broken fence\nuntil Tom reached home."
	// One sentence over six lines: Tom gets the mention, the first
	// paragraph half and the opening bonus.
	if diff := cmp.Diff([]float64{3.5, 0}, Scores(text, []string{"Tom", "Ilsa"})); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_HighestScoreWins(t *testing.T) {
	if got := Detect(hallScene, []string{"Mara", "Kael"}, "en").Value; got != "Kael" {
		t.Errorf("expected Kael, got %q", got)
	}
}

func TestDetect_AmbiguousFallsBackToFirst(t *testing.T) {
	text := "Mara and Kael crossed the bridge together. Kael spoke first, and Mara answered."
	if got := Detect(text, []string{"Kael", "Mara"}, "en").Value; got != "Kael" {
		t.Errorf("expected first-listed Kael on a tie, got %q", got)
	}
	if got := Detect(text, []string{"Mara", "Kael"}, "en").Value; got != "Mara" {
		t.Errorf("expected first-listed Mara on a tie, got %q", got)
	}
}

func TestDetect_NobodyMentioned(t *testing.T) {
	if got := Detect("The wind blew across the moor.", []string{"Ann", "Bob"}, "en").Value; got != "Ann" {
		t.Errorf("expected first-listed Ann, got %q", got)
	}
}

func TestDetect_MultiWordName(t *testing.T) {
	text := "Ilsa Varn boarded the ship. Ilsa checked the ropes while Tomas slept below deck. Ilsa smiled."
	scores := Scores(text, []string{"Ilsa Varn", "Tomas"})
	if diff := cmp.Diff([]float64{8, 3.5}, scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
	if got := Detect(text, []string{"Tomas", "Ilsa Varn"}, "en").Value; got != "Ilsa Varn" {
		t.Errorf("expected Ilsa Varn, got %q", got)
	}
}

// #endregion scoring-tests
