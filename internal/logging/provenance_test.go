package logging

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE provenance_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       TEXT NOT NULL,
		chapter_id   TEXT NOT NULL,
		scene_name   TEXT NOT NULL,
		content_hash TEXT,
		decision     TEXT NOT NULL,
		sources_json TEXT,
		reason       TEXT,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-analysis-tests
func TestLogAnalysis_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ProvenanceEntry{
		RunID:       "r1",
		ChapterID:   "ch1",
		SceneName:   "Dawn",
		ContentHash: "abc123",
		Decision:    DecisionAnalysed,
		SourcesJSON: `{"pov":"auto"}`,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogAnalysis(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM provenance_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var runID, decision string
	db.QueryRow("SELECT run_id, decision FROM provenance_log").Scan(&runID, &decision)
	if runID != "r1" {
		t.Errorf("expected run_id 'r1', got %q", runID)
	}
	if decision != "analysed" {
		t.Errorf("expected decision 'analysed', got %q", decision)
	}
}

func TestLogAnalysis_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	err := LogAnalysis(db, ProvenanceEntry{RunID: "r2", ChapterID: "ch1", SceneName: "Dusk", Decision: DecisionCached})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := ListProvenance(db, "ch1", 10)
	if err != nil {
		t.Fatalf("ListProvenance: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].CreatedAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogAnalysis_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	err := LogAnalysis(db, ProvenanceEntry{RunID: "r3", ChapterID: "ch1", SceneName: "Gone", Decision: DecisionPruned})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var contentHash, sourcesJSON, reason sql.NullString
	db.QueryRow("SELECT content_hash, sources_json, reason FROM provenance_log").Scan(
		&contentHash, &sourcesJSON, &reason,
	)
	if contentHash.Valid {
		t.Error("expected NULL content_hash for empty string")
	}
	if sourcesJSON.Valid {
		t.Error("expected NULL sources_json for empty string")
	}
	if reason.Valid {
		t.Error("expected NULL reason for empty string")
	}
}

func TestLogAnalysis_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogAnalysis(db, ProvenanceEntry{RunID: "r4", ChapterID: "ch1", SceneName: "x", Decision: DecisionAnalysed})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-analysis-tests

// #region list-provenance-tests
func TestListProvenance_FilterAndOrder(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for _, e := range []ProvenanceEntry{
		{RunID: "r1", ChapterID: "ch1", SceneName: "A", Decision: DecisionAnalysed},
		{RunID: "r1", ChapterID: "ch2", SceneName: "B", Decision: DecisionAnalysed},
		{RunID: "r2", ChapterID: "ch1", SceneName: "A", Decision: DecisionCached, Reason: "hash match"},
	} {
		if err := LogAnalysis(db, e); err != nil {
			t.Fatalf("LogAnalysis: %v", err)
		}
	}

	ch1, err := ListProvenance(db, "ch1", 10)
	if err != nil {
		t.Fatalf("ListProvenance: %v", err)
	}
	if len(ch1) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ch1))
	}
	if ch1[0].RunID != "r2" || ch1[0].Decision != DecisionCached || ch1[0].Reason != "hash match" {
		t.Errorf("expected newest entry first, got %+v", ch1[0])
	}

	all, _ := ListProvenance(db, "", 10)
	if len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}
	limited, _ := ListProvenance(db, "", 1)
	if len(limited) != 1 {
		t.Errorf("expected 1 entry, got %d", len(limited))
	}
}

// #endregion list-provenance-tests

// #region entry-tests
func TestEntryFor(t *testing.T) {
	md := metadata.SceneMetadata{
		ChapterID: "ch1",
		SceneName: "Dawn",
		POV:       metadata.Manual("Ilsa"),
		Emotion:   metadata.Auto(metadata.EmotionTense),
	}
	e, err := EntryFor("r1", "h", DecisionAnalysed, md)
	if err != nil {
		t.Fatalf("EntryFor: %v", err)
	}
	if e.ChapterID != "ch1" || e.SceneName != "Dawn" || e.ContentHash != "h" {
		t.Errorf("unexpected entry: %+v", e)
	}
	var sources FieldSources
	if err := json.Unmarshal([]byte(e.SourcesJSON), &sources); err != nil {
		t.Fatalf("unmarshal sources: %v", err)
	}
	if sources.POV != metadata.SourceManual || sources.Emotion != metadata.SourceAuto {
		t.Errorf("unexpected sources: %+v", sources)
	}
}

// #endregion entry-tests

// #region null-if-empty-tests
func TestNullIfEmpty_Empty(t *testing.T) {
	result := nullIfEmpty("")
	if result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestNullIfEmpty_NonEmpty(t *testing.T) {
	result := nullIfEmpty("hello")
	if result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
