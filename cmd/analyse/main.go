package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/scene-metadata/internal/config"
	"github.com/danielpatrickdp/scene-metadata/internal/manuscript"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/pipeline"
	"github.com/danielpatrickdp/scene-metadata/internal/state"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	chapterPath := flag.String("chapter", "", "path to chapter markdown file")
	contextPath := flag.String("context", "", "path to project context JSON (entities, notes, plot_board, overrides)")
	dbPath := flag.String("db", cfg.DBPath, "path to scene metadata db (env SCENE_DB)")
	chapterID := flag.String("id", "", "chapter ID (default: front matter id, then file name)")
	locale := flag.String("locale", "", "locale (default: front matter locale, then SCENE_LOCALE)")
	workers := flag.Int("workers", cfg.Workers, "parallel scene analyses (env SCENE_WORKERS)")
	force := flag.Bool("force", false, "re-analyse scenes even when cached")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *chapterPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyse --chapter path/to/chapter.md [--context ctx.json] [--db path] [--id id] [--locale tag] [--workers N] [--force] [--json]")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*chapterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: read chapter: %v\n", err)
		os.Exit(1)
	}
	ch, err := manuscript.Parse(string(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: parse chapter %s: %v\n", *chapterPath, err)
		os.Exit(1)
	}

	pc, err := manuscript.LoadContext(*contextPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	in := pipeline.ChapterInput{
		ChapterID:   firstNonEmpty(*chapterID, ch.ID, chapterIDFromPath(*chapterPath)),
		ChapterPath: *chapterPath,
		Locale:      firstNonEmpty(*locale, ch.Locale, cfg.Locale),
		Scenes:      ch.Scenes,
		Entities:    pc.Entities,
		Notes:       pc.Notes,
		PlotBoard:   pc.PlotBoard,
		Overrides:   pc.Overrides,
		Force:       *force,
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.NewRunner(store, nil, *workers).RunChapter(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("run %s: chapter=%s scenes=%d analysed=%d pruned=%d",
		shortID(res.RunID), in.ChapterID, len(res.Scenes), res.Analysed(), len(res.Pruned))
	for _, sc := range res.Scenes {
		if sc.Rejected {
			log.Printf("rejected %q: %s", sc.Metadata.SceneName, sc.Reason)
		}
	}

	if *jsonOut {
		err = printJSON(res)
	} else {
		printTable(in.ChapterID, res)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
// #endregion main

// #region output
func printTable(chapterID string, res pipeline.ChapterResult) {
	fmt.Printf("%-20s  %-14s  %-12s  %4s  %6s  %5s  %-6s  %s\n",
		"Scene", "POV", "Emotion", "Int", "Words", "Dlg", "Cache", "Conflict")
	fmt.Printf("%-20s+-%-14s+-%-12s+-%4s+-%6s+-%5s+-%-6s+-%s\n",
		strings.Repeat("-", 20), strings.Repeat("-", 14), strings.Repeat("-", 12),
		"----", "------", "-----", "------", "--------------------")
	for _, s := range res.Scenes {
		md := s.Metadata
		cache := "new"
		if s.Cached {
			cache = "hit"
		}
		fmt.Printf("%-20s  %-14s  %-12s  %4s  %6d  %5.2f  %-6s  %s\n",
			truncate(md.SceneName, 20),
			truncate(mark(md.POV.Value, md.POV.Source), 14),
			mark(string(md.Emotion.Value), md.Emotion.Source),
			mark(fmt.Sprint(md.Intensity.Value), md.Intensity.Source),
			md.WordCount, md.DialogueRatio, cache,
			mark(md.Conflict.Value, md.Conflict.Source))
		if len(md.Tags.Value) > 0 {
			fmt.Printf("%-20s  tags: %s\n", "", strings.Join(md.Tags.Value, ", "))
		}
	}

	agg := res.Aggregate
	fmt.Printf("\nChapter %s\n", chapterID)
	fmt.Printf("  POV: %s | Emotion: %s | Avg intensity: %.1f | Words: %d\n",
		agg.DominantPOV, agg.DominantEmotion, agg.AvgIntensity, agg.TotalWordCount)
	fmt.Printf("  Arc: %v\n", agg.IntensityArc)
	if len(agg.AllCharacters) > 0 {
		fmt.Printf("  Characters: %s\n", strings.Join(agg.AllCharacters, ", "))
	}
	if len(agg.AllLocations) > 0 {
		fmt.Printf("  Locations: %s\n", strings.Join(agg.AllLocations, ", "))
	}
	if len(res.Pruned) > 0 {
		fmt.Printf("  Pruned: %s\n", strings.Join(res.Pruned, ", "))
	}
	if rejected := res.Rejected(); len(rejected) > 0 {
		fmt.Printf("  Rejected (not cached): %s\n", strings.Join(rejected, ", "))
	}
	fmt.Println("  (* = manual override)")
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
// #endregion output

// #region helpers
func mark(v string, src metadata.Source) string {
	if src == metadata.SourceManual {
		return v + "*"
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func chapterIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
// #endregion helpers
