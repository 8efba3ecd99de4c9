package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/scene-metadata/internal/config"
	"github.com/danielpatrickdp/scene-metadata/internal/logging"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	dbPath := flag.String("db", cfg.DBPath, "path to scene metadata db (env SCENE_DB)")
	chapterID := flag.String("chapter", "", "show scenes and aggregate of one chapter")
	scene := flag.String("scene", "", "show one scene in detail (requires --chapter)")
	provenance := flag.Bool("provenance", false, "show provenance log instead of metadata")
	last := flag.Int("last", 20, "show N most recent provenance entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || (*scene != "" && *chapterID == "") {
		fmt.Fprintln(os.Stderr, "usage: inspect [--db path] [--chapter id [--scene name]] [--provenance [--last N]] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *provenance:
		err = runProvenanceMode(store, *chapterID, *last, *jsonOut)
	case *scene != "":
		err = runSceneMode(store, *chapterID, *scene, *jsonOut)
	case *chapterID != "":
		err = runChapterMode(store, *chapterID, *jsonOut)
	default:
		err = runListMode(store, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ChapterID  string `json:"chapter_id"`
	SceneCount int    `json:"scene_count"`
	LastRun    string `json:"last_run,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

func runListMode(store *state.Store, jsonOut bool) error {
	chapters, err := store.ListChapters()
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		fmt.Fprintln(os.Stderr, "no chapters found")
		return nil
	}

	rows := make([]listRow, len(chapters))
	for i, c := range chapters {
		rows[i] = listRow{
			ChapterID:  c.ChapterID,
			SceneCount: c.SceneCount,
			LastRun:    c.LastRun,
			UpdatedAt:  c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-24s  %6s  %-8s  %s\n", "Chapter", "Scenes", "Run", "Updated")
	fmt.Printf("%-24s+-%6s+-%-8s+-%s\n", strings.Repeat("-", 24), "------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-24s  %6d  %-8s  %s\n", r.ChapterID, r.SceneCount, shortID(r.LastRun), r.UpdatedAt)
	}
	return nil
}

// #endregion list-mode

// #region chapter-mode

type chapterView struct {
	ChapterID string                     `json:"chapter_id"`
	Scenes    []metadata.SceneMetadata   `json:"scenes"`
	Aggregate *metadata.ChapterAggregate `json:"aggregate,omitempty"`
}

func runChapterMode(store *state.Store, chapterID string, jsonOut bool) error {
	records, err := store.ListScenes(chapterID)
	if err != nil {
		return err
	}
	view := chapterView{ChapterID: chapterID}
	for _, r := range records {
		view.Scenes = append(view.Scenes, r.Metadata)
	}
	agg, err := store.GetAggregate(chapterID)
	switch {
	case err == nil:
		view.Aggregate = &agg.Aggregate
	case !errors.Is(err, state.ErrNotFound):
		return err
	}
	if len(view.Scenes) == 0 && view.Aggregate == nil {
		return fmt.Errorf("chapter %s: %w", chapterID, state.ErrNotFound)
	}

	if jsonOut {
		return printJSON(view)
	}

	fmt.Printf("%-3s  %-20s  %-14s  %-12s  %4s  %6s  %s\n", "#", "Scene", "POV", "Emotion", "Int", "Words", "Conflict")
	fmt.Printf("%-3s+-%-20s+-%-14s+-%-12s+-%4s+-%6s+-%s\n",
		"---", strings.Repeat("-", 20), strings.Repeat("-", 14), strings.Repeat("-", 12), "----", "------", "--------------------")
	for i, md := range view.Scenes {
		fmt.Printf("%-3d  %-20s  %-14s  %-12s  %4d  %6d  %s\n",
			i+1, md.SceneName, md.POV.Value, md.Emotion.Value, md.Intensity.Value, md.WordCount, md.Conflict.Value)
	}
	if a := view.Aggregate; a != nil {
		fmt.Printf("\nAggregate: POV=%s Emotion=%s AvgIntensity=%.1f Words=%d Arc=%v\n",
			a.DominantPOV, a.DominantEmotion, a.AvgIntensity, a.TotalWordCount, a.IntensityArc)
	}
	return nil
}

// #endregion chapter-mode

// #region scene-mode

func runSceneMode(store *state.Store, chapterID, sceneName string, jsonOut bool) error {
	rec, err := store.GetScene(chapterID, sceneName)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(rec.Metadata)
	}

	md := rec.Metadata
	fmt.Printf("Scene:      %s / %s\n", md.ChapterID, md.SceneName)
	fmt.Printf("Position:   %d\n", rec.Position)
	fmt.Printf("Run:        %s (%s)\n", rec.RunID, rec.AnalysedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Hash:       %s\n", rec.ContentHash)
	fmt.Println()
	printField("POV", md.POV.Value, md.POV.Source)
	printField("Emotion", string(md.Emotion.Value), md.Emotion.Source)
	printField("Intensity", fmt.Sprint(md.Intensity.Value), md.Intensity.Source)
	printField("Conflict", md.Conflict.Value, md.Conflict.Source)
	printField("Tags", strings.Join(md.Tags.Value, ", "), md.Tags.Source)
	printField("Characters", strings.Join(md.Characters.Value, ", "), md.Characters.Source)
	printField("Locations", strings.Join(md.Locations.Value, ", "), md.Locations.Source)
	printField("Items", strings.Join(md.Items.Value, ", "), md.Items.Source)
	printField("Lore", strings.Join(md.Lore.Value, ", "), md.Lore.Source)
	fmt.Println()
	fmt.Printf("Words: %d | Dialogue: %.2f | Avg sentence: %.1f | Punctuation: %.1f/100w\n",
		md.WordCount, md.DialogueRatio, md.AvgSentenceLength, md.PunctuationIntensity)
	return nil
}

func printField(name, value string, src metadata.Source) {
	fmt.Printf("  %-11s %-7s %s\n", name+":", "["+string(src)+"]", value)
}

// #endregion scene-mode

// #region provenance-mode

func runProvenanceMode(store *state.Store, chapterID string, last int, jsonOut bool) error {
	entries, err := logging.ListProvenance(store.DB(), chapterID, last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no provenance entries found")
		return nil
	}
	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-8s  %-16s  %-20s  %-9s  %-12s  %s\n", "Run", "Chapter", "Scene", "Decision", "Hash", "Time")
	fmt.Printf("%-8s+-%-16s+-%-20s+-%-9s+-%-12s+-%s\n",
		"--------", strings.Repeat("-", 16), strings.Repeat("-", 20), "---------", "------------", "--------------------")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Printf("%-8s  %-16s  %-20s  %-9s  %-12s  %s\n",
			shortID(e.RunID), e.ChapterID, e.SceneName, e.Decision, shortHash(e.ContentHash),
			e.CreatedAt.Format("2006-01-02T15:04:05Z"))
		if e.Reason != "" {
			fmt.Printf("%-8s  reason: %s\n", "", e.Reason)
		}
	}
	return nil
}

// #endregion provenance-mode

// #region helpers

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// #endregion helpers
