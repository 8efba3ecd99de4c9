package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region log-analysis
// LogAnalysis writes a provenance entry to the provenance_log table.
func LogAnalysis(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (run_id, chapter_id, scene_name, content_hash, decision, sources_json, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.ChapterID,
		entry.SceneName,
		nullIfEmpty(entry.ContentHash),
		string(entry.Decision),
		nullIfEmpty(entry.SourcesJSON),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("log analysis: %w", err)
	}
	return nil
}

// EntryFor builds the provenance entry for one scene result.
func EntryFor(runID, hash string, decision Decision, md metadata.SceneMetadata) (ProvenanceEntry, error) {
	sources, err := json.Marshal(SourcesOf(md))
	if err != nil {
		return ProvenanceEntry{}, fmt.Errorf("marshal sources: %w", err)
	}
	return ProvenanceEntry{
		RunID:       runID,
		ChapterID:   md.ChapterID,
		SceneName:   md.SceneName,
		ContentHash: hash,
		Decision:    decision,
		SourcesJSON: string(sources),
	}, nil
}
// #endregion log-analysis

// #region list-provenance
// ListProvenance returns the newest entries for a chapter, newest first.
// An empty chapterID lists every chapter.
func ListProvenance(db *sql.DB, chapterID string, limit int) ([]ProvenanceEntry, error) {
	rows, err := db.Query(
		`SELECT id, run_id, chapter_id, scene_name, content_hash, decision, sources_json, reason, created_at
		 FROM provenance_log
		 WHERE ? = '' OR chapter_id = ?
		 ORDER BY id DESC LIMIT ?`,
		chapterID, chapterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list provenance: %w", err)
	}
	defer rows.Close()

	var out []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var hash, sources, reason sql.NullString
		var decision, createdStr string
		if err := rows.Scan(&e.ID, &e.RunID, &e.ChapterID, &e.SceneName, &hash, &decision, &sources, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan provenance: %w", err)
		}
		e.ContentHash = hash.String
		e.Decision = Decision(decision)
		e.SourcesJSON = sources.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(timeLayout, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-provenance

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
