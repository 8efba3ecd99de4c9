package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sceneRecord(run RunRecord, name string, pos int, hash string) SceneRecord {
	return SceneRecord{
		ChapterID:   run.ChapterID,
		SceneName:   name,
		Position:    pos,
		ContentHash: hash,
		RunID:       run.RunID,
		Metadata: metadata.SceneMetadata{
			ChapterID:  run.ChapterID,
			SceneName:  name,
			POV:        metadata.Auto("Mara"),
			Characters: metadata.Auto([]string{"Mara"}),
			Emotion:    metadata.Manual(metadata.EmotionTense),
			Intensity:  metadata.Auto(4),
			Tags:       metadata.Auto([]string{"heist"}),
			WordCount:  12,
		},
	}
}

func TestBeginRunAndListRuns(t *testing.T) {
	s := tempDB(t)

	r1, err := s.BeginRun("ch1", "chapters/01.md", "en")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if r1.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}
	time.Sleep(2 * time.Millisecond)
	r2, err := s.BeginRun("ch1", "", "")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if _, err := s.BeginRun("ch2", "", ""); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	runs, err := s.ListRuns("ch1", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != r2.RunID || runs[1].RunID != r1.RunID {
		t.Errorf("expected newest first, got %s, %s", runs[0].RunID, runs[1].RunID)
	}
	if runs[1].ChapterPath != "chapters/01.md" || runs[1].Locale != "en" {
		t.Errorf("unexpected run fields: %+v", runs[1])
	}
}

func TestPutAndGetScene(t *testing.T) {
	s := tempDB(t)
	run, _ := s.BeginRun("ch1", "", "en")

	want := sceneRecord(run, "Dawn", 0, "h1")
	if err := s.PutScene(want); err != nil {
		t.Fatalf("PutScene: %v", err)
	}

	got, err := s.GetScene("ch1", "Dawn")
	if err != nil {
		t.Fatalf("GetScene: %v", err)
	}
	if diff := cmp.Diff(want.Metadata, got.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	if got.ContentHash != "h1" || got.RunID != run.RunID {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.AnalysedAt.IsZero() {
		t.Error("expected analysed_at to be set")
	}

	// Upsert replaces the analysis
	updated := sceneRecord(run, "Dawn", 3, "h2")
	updated.Metadata.Intensity = metadata.Auto(-2)
	if err := s.PutScene(updated); err != nil {
		t.Fatalf("PutScene: %v", err)
	}
	got, _ = s.GetScene("ch1", "Dawn")
	if got.ContentHash != "h2" || got.Position != 3 || got.Metadata.Intensity.Value != -2 {
		t.Errorf("expected updated record, got %+v", got)
	}
}

func TestGetScene_NotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetScene("ch1", "Nowhere")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetPosition("ch1", "Nowhere", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from SetPosition, got %v", err)
	}
}

func TestPutScene_UnknownRunRejected(t *testing.T) {
	s := tempDB(t)
	rec := sceneRecord(RunRecord{RunID: "missing", ChapterID: "ch1"}, "Dawn", 0, "h")
	if err := s.PutScene(rec); err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestPutScene_ForeignKeysOnEveryConnection(t *testing.T) {
	s := tempDB(t)
	s.DB().SetMaxOpenConns(4)

	// Pin one connection so the write below has to open another.
	conn, err := s.DB().Conn(context.Background())
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer conn.Close()

	var fk int
	if err := conn.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1 on pinned connection, got %d", fk)
	}

	rec := sceneRecord(RunRecord{RunID: "missing", ChapterID: "ch1"}, "Dawn", 0, "h")
	if err := s.PutScene(rec); err == nil {
		t.Fatal("expected foreign key error on a second connection")
	}
}

func TestDSN(t *testing.T) {
	if got := dsn("a.db"); got != "a.db?_pragma=foreign_keys(1)" {
		t.Errorf("expected pragma query, got %q", got)
	}
	if got := dsn("file:a.db?mode=rwc"); got != "file:a.db?mode=rwc&_pragma=foreign_keys(1)" {
		t.Errorf("expected appended pragma, got %q", got)
	}
}

func TestListAndPruneScenes(t *testing.T) {
	s := tempDB(t)
	run, _ := s.BeginRun("ch1", "", "en")
	for i, name := range []string{"Dusk", "Dawn", "Night"} {
		if err := s.PutScene(sceneRecord(run, name, i, "h")); err != nil {
			t.Fatalf("PutScene: %v", err)
		}
	}
	if err := s.SetPosition("ch1", "Night", -1); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	scenes, err := s.ListScenes("ch1")
	if err != nil {
		t.Fatalf("ListScenes: %v", err)
	}
	var names []string
	for _, sc := range scenes {
		names = append(names, sc.SceneName)
	}
	if diff := cmp.Diff([]string{"Night", "Dusk", "Dawn"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	pruned, err := s.PruneScenes("ch1", []string{"Dawn"})
	if err != nil {
		t.Fatalf("PruneScenes: %v", err)
	}
	if diff := cmp.Diff([]string{"Night", "Dusk"}, pruned); diff != "" {
		t.Errorf("pruned mismatch (-want +got):\n%s", diff)
	}
	scenes, _ = s.ListScenes("ch1")
	if len(scenes) != 1 || scenes[0].SceneName != "Dawn" {
		t.Errorf("expected only Dawn left, got %+v", scenes)
	}
}

func TestAggregateRoundTrip(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetAggregate("ch1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	run, _ := s.BeginRun("ch1", "", "en")
	agg := metadata.ChapterAggregate{
		AllCharacters:   []string{"Mara"},
		AllLocations:    []string{},
		DominantPOV:     "Mara",
		AvgIntensity:    1.0,
		DominantEmotion: metadata.EmotionTense,
		TotalWordCount:  200,
		IntensityArc:    []int{4, -2},
	}
	if err := s.PutAggregate(AggregateRecord{ChapterID: "ch1", Aggregate: agg, RunID: run.RunID}); err != nil {
		t.Fatalf("PutAggregate: %v", err)
	}
	got, err := s.GetAggregate("ch1")
	if err != nil {
		t.Fatalf("GetAggregate: %v", err)
	}
	if diff := cmp.Diff(agg, got.Aggregate); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestListChapters(t *testing.T) {
	s := tempDB(t)
	r1, _ := s.BeginRun("ch2", "", "en")
	r2, _ := s.BeginRun("ch1", "", "en")
	s.PutScene(sceneRecord(r1, "A", 0, "h"))
	s.PutScene(sceneRecord(r1, "B", 1, "h"))
	s.PutScene(sceneRecord(r2, "A", 0, "h"))
	s.PutAggregate(AggregateRecord{ChapterID: "ch1", RunID: r2.RunID})

	chapters, err := s.ListChapters()
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].ChapterID != "ch1" || chapters[0].SceneCount != 1 || chapters[0].LastRun != r2.RunID {
		t.Errorf("unexpected ch1 summary: %+v", chapters[0])
	}
	if chapters[1].ChapterID != "ch2" || chapters[1].SceneCount != 2 || chapters[1].LastRun != "" {
		t.Errorf("unexpected ch2 summary: %+v", chapters[1])
	}
}

func TestContentHash(t *testing.T) {
	a, err := ContentHash(map[string]string{"text": "Mara ran."})
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	b, _ := ContentHash(map[string]string{"text": "Mara ran."})
	c, _ := ContentHash(map[string]string{"text": "Mara ran!"})
	if a != b {
		t.Error("expected equal hashes for equal input")
	}
	if a == c {
		t.Error("expected different hashes for different input")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
