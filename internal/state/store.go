package state

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a scene or aggregate is not cached.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id        TEXT PRIMARY KEY,
	chapter_id    TEXT NOT NULL,
	chapter_path  TEXT,
	locale        TEXT,
	started_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scene_metadata (
	chapter_id    TEXT NOT NULL,
	scene_name    TEXT NOT NULL,
	position      INTEGER NOT NULL,
	content_hash  TEXT NOT NULL,
	metadata_json TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	analysed_at   TEXT NOT NULL,
	PRIMARY KEY (chapter_id, scene_name),
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);

CREATE TABLE IF NOT EXISTS chapter_aggregates (
	chapter_id     TEXT PRIMARY KEY,
	aggregate_json TEXT NOT NULL,
	run_id         TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	chapter_id    TEXT NOT NULL,
	scene_name    TEXT NOT NULL,
	content_hash  TEXT,
	decision      TEXT NOT NULL,
	sources_json  TEXT,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store caches scene analyses and chapter aggregates in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// dsn enables foreign keys on every pooled connection.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)"
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region runs
// BeginRun records a new analysis run and returns it.
func (s *Store) BeginRun(chapterID, chapterPath, locale string) (RunRecord, error) {
	rec := RunRecord{
		RunID:       uuid.New().String(),
		ChapterID:   chapterID,
		ChapterPath: chapterPath,
		Locale:      locale,
		StartedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO analysis_runs (run_id, chapter_id, chapter_path, locale, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.ChapterID, nullIfEmpty(chapterPath), nullIfEmpty(locale),
		rec.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs for a chapter.
func (s *Store) ListRuns(chapterID string, limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, chapter_id, chapter_path, locale, started_at
		 FROM analysis_runs WHERE chapter_id = ? ORDER BY started_at DESC LIMIT ?`,
		chapterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var path, locale sql.NullString
		var startedStr string
		if err := rows.Scan(&rec.RunID, &rec.ChapterID, &path, &locale, &startedStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.ChapterPath = path.String
		rec.Locale = locale.String
		rec.StartedAt, _ = time.Parse(timeLayout, startedStr)
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}
// #endregion runs

// #region get-scene
// GetScene returns the cached analysis of one scene, or ErrNotFound.
func (s *Store) GetScene(chapterID, sceneName string) (SceneRecord, error) {
	row := s.db.QueryRow(
		`SELECT chapter_id, scene_name, position, content_hash, metadata_json, run_id, analysed_at
		 FROM scene_metadata WHERE chapter_id = ? AND scene_name = ?`, chapterID, sceneName,
	)
	rec, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SceneRecord{}, fmt.Errorf("scene %s/%s: %w", chapterID, sceneName, ErrNotFound)
	}
	if err != nil {
		return SceneRecord{}, fmt.Errorf("get scene %s/%s: %w", chapterID, sceneName, err)
	}
	return rec, nil
}
// #endregion get-scene

// #region put-scene
// PutScene inserts or replaces a scene record.
func (s *Store) PutScene(rec SceneRecord) error {
	mdJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if rec.AnalysedAt.IsZero() {
		rec.AnalysedAt = time.Now().UTC()
	}
	_, err = s.db.Exec(
		`INSERT INTO scene_metadata (chapter_id, scene_name, position, content_hash, metadata_json, run_id, analysed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chapter_id, scene_name) DO UPDATE SET
		   position = excluded.position,
		   content_hash = excluded.content_hash,
		   metadata_json = excluded.metadata_json,
		   run_id = excluded.run_id,
		   analysed_at = excluded.analysed_at`,
		rec.ChapterID, rec.SceneName, rec.Position, rec.ContentHash, string(mdJSON),
		rec.RunID, rec.AnalysedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("put scene %s/%s: %w", rec.ChapterID, rec.SceneName, err)
	}
	return nil
}

// SetPosition moves a cached scene without touching its analysis.
func (s *Store) SetPosition(chapterID, sceneName string, position int) error {
	res, err := s.db.Exec(
		`UPDATE scene_metadata SET position = ? WHERE chapter_id = ? AND scene_name = ?`,
		position, chapterID, sceneName,
	)
	if err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scene %s/%s: %w", chapterID, sceneName, ErrNotFound)
	}
	return nil
}
// #endregion put-scene

// #region list-scenes
// ListScenes returns a chapter's cached scenes in position order.
func (s *Store) ListScenes(chapterID string) ([]SceneRecord, error) {
	rows, err := s.db.Query(
		`SELECT chapter_id, scene_name, position, content_hash, metadata_json, run_id, analysed_at
		 FROM scene_metadata WHERE chapter_id = ? ORDER BY position, scene_name`, chapterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var records []SceneRecord
	for rows.Next() {
		rec, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-scenes

// #region prune-scenes
// PruneScenes deletes the chapter's scenes whose names are not in keep
// and returns the deleted names.
func (s *Store) PruneScenes(chapterID string, keep []string) ([]string, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT scene_name FROM scene_metadata WHERE chapter_id = ? ORDER BY position`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list scene names: %w", err)
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan scene name: %w", err)
		}
		if _, ok := keepSet[name]; !ok {
			stale = append(stale, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scene names: %w", err)
	}

	for _, name := range stale {
		if _, err := tx.Exec(`DELETE FROM scene_metadata WHERE chapter_id = ? AND scene_name = ?`, chapterID, name); err != nil {
			return nil, fmt.Errorf("delete scene %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stale, nil
}
// #endregion prune-scenes

// #region aggregates
// PutAggregate inserts or replaces the chapter aggregate.
func (s *Store) PutAggregate(rec AggregateRecord) error {
	aggJSON, err := json.Marshal(rec.Aggregate)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	_, err = s.db.Exec(
		`INSERT INTO chapter_aggregates (chapter_id, aggregate_json, run_id, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(chapter_id) DO UPDATE SET
		   aggregate_json = excluded.aggregate_json,
		   run_id = excluded.run_id,
		   updated_at = excluded.updated_at`,
		rec.ChapterID, string(aggJSON), rec.RunID, rec.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("put aggregate %s: %w", rec.ChapterID, err)
	}
	return nil
}

// GetAggregate returns the stored aggregate, or ErrNotFound.
func (s *Store) GetAggregate(chapterID string) (AggregateRecord, error) {
	var rec AggregateRecord
	var aggJSON, updatedStr string
	err := s.db.QueryRow(
		`SELECT chapter_id, aggregate_json, run_id, updated_at
		 FROM chapter_aggregates WHERE chapter_id = ?`, chapterID,
	).Scan(&rec.ChapterID, &aggJSON, &rec.RunID, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return AggregateRecord{}, fmt.Errorf("aggregate %s: %w", chapterID, ErrNotFound)
	}
	if err != nil {
		return AggregateRecord{}, fmt.Errorf("get aggregate %s: %w", chapterID, err)
	}
	if err := json.Unmarshal([]byte(aggJSON), &rec.Aggregate); err != nil {
		return AggregateRecord{}, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	rec.UpdatedAt, _ = time.Parse(timeLayout, updatedStr)
	return rec, nil
}
// #endregion aggregates

// #region list-chapters
// ListChapters summarizes every chapter with cached scenes, by ID.
func (s *Store) ListChapters() ([]ChapterSummary, error) {
	rows, err := s.db.Query(
		`SELECT sm.chapter_id, COUNT(*), MAX(sm.analysed_at), COALESCE(ca.run_id, '')
		 FROM scene_metadata sm
		 LEFT JOIN chapter_aggregates ca ON ca.chapter_id = sm.chapter_id
		 GROUP BY sm.chapter_id ORDER BY sm.chapter_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var out []ChapterSummary
	for rows.Next() {
		var sum ChapterSummary
		var updatedStr string
		if err := rows.Scan(&sum.ChapterID, &sum.SceneCount, &updatedStr, &sum.LastRun); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(timeLayout, updatedStr)
		out = append(out, sum)
	}
	return out, rows.Err()
}
// #endregion list-chapters

// #region content-hash
// ContentHash returns the hex SHA-256 of v's JSON encoding.
func ContentHash(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal hash input: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
// #endregion content-hash

// #region helpers
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(r rowScanner) (SceneRecord, error) {
	var rec SceneRecord
	var mdJSON, analysedStr string
	if err := r.Scan(&rec.ChapterID, &rec.SceneName, &rec.Position, &rec.ContentHash, &mdJSON, &rec.RunID, &analysedStr); err != nil {
		return SceneRecord{}, err
	}
	if err := json.Unmarshal([]byte(mdJSON), &rec.Metadata); err != nil {
		return SceneRecord{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	rec.AnalysedAt, _ = time.Parse(timeLayout, analysedStr)
	return rec, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
