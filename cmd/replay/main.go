package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/scene-metadata/internal/manuscript"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/replay"
	"github.com/danielpatrickdp/scene-metadata/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	dbPath := flag.String("db", "", "path to scene metadata db (drift mode)")
	chapterPath := flag.String("chapter", "", "chapter markdown to re-analyse (drift mode)")
	contextPath := flag.String("context", "", "project context JSON (drift mode)")
	chapterID := flag.String("id", "", "chapter ID (drift mode; default: front matter id)")
	flag.Parse()

	fixtureMode := *fixturePath != ""
	driftMode := *dbPath != "" || *chapterPath != ""
	if fixtureMode == driftMode || (driftMode && (*dbPath == "" || *chapterPath == "")) {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/scene-metadata.db --chapter chapter.md [--context ctx.json] [--id id]")
		os.Exit(2)
	}

	var exitCode int
	if fixtureMode {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDriftMode(*dbPath, *chapterPath, *contextPath, *chapterID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(f, replay.Replay(f, nil))
}

// #endregion fixture-mode

// #region drift-mode

// runDriftMode re-analyses a chapter with the current lexicons and
// compares each scene against its cached record.
func runDriftMode(dbPath, chapterPath, contextPath, chapterID string) int {
	store, err := state.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	raw, err := os.ReadFile(chapterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read chapter: %v\n", err)
		return 2
	}
	ch, err := manuscript.Parse(string(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse chapter: %v\n", err)
		return 2
	}
	pc, err := manuscript.LoadContext(contextPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load context: %v\n", err)
		return 2
	}
	if chapterID == "" {
		chapterID = ch.ID
	}

	records, err := store.ListScenes(chapterID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list scenes: %v\n", err)
		return 2
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "no cached scenes for chapter %q\n", chapterID)
		return 2
	}

	f := &replay.Fixture{
		ChapterID:   chapterID,
		ChapterPath: chapterPath,
		Locale:      ch.Locale,
		Notes:       pc.Notes,
		PlotBoard:   pc.PlotBoard,
	}
	for _, r := range records {
		f.ExpectedResults = append(f.ExpectedResults, expectedFrom(r.Metadata))
	}
	for _, sc := range ch.Scenes {
		fs := replay.FixtureScene{
			Name:     sc.Name,
			Text:     sc.Text,
			Mentions: manuscript.DetectMentions(sc.Text, pc.Entities),
		}
		if ov, ok := pc.Overrides[sc.Name]; ok {
			fs.Overrides = &ov
		}
		f.Scenes = append(f.Scenes, fs)
	}

	return printComparison(f, replay.Replay(f, nil))
}

func expectedFrom(md metadata.SceneMetadata) replay.FixtureExpected {
	pov := md.POV.Value
	emo := md.Emotion.Value
	intensity := md.Intensity.Value
	conflict := md.Conflict.Value
	words := md.WordCount
	return replay.FixtureExpected{
		SceneName: md.SceneName,
		POV:       &pov,
		Emotion:   &emo,
		Intensity: &intensity,
		Conflict:  &conflict,
		Tags:      md.Tags.Value,
		WordCount: &words,
	}
}

// #endregion drift-mode

// #region output

// printComparison outputs a per-scene table and returns the exit code.
func printComparison(f *replay.Fixture, results []replay.ReplayResult) int {
	fmt.Printf("%-20s| %-12s| %-12s| %-12s| %s\n", "Scene", "Field", "Expected", "Replayed", "Match")
	fmt.Printf("%-20s+%-13s+%-13s+%-13s+%s\n",
		"--------------------", "-------------", "-------------", "-------------", "------")

	for _, r := range results {
		if r.Passed() {
			fmt.Printf("%-20s| %-12s| %-12s| %-12s| %s\n", r.SceneName, "*", "", "", "OK")
			continue
		}
		for _, m := range r.Mismatches {
			fmt.Printf("%-20s| %-12s| %-12s| %-12s| %s\n", r.SceneName, m.Field, m.Expected, m.Actual, "DIFF")
		}
	}

	sum := replay.Summarize(f, results)
	for _, m := range sum.AggregateMismatches {
		fmt.Printf("%-20s| %-12s| %-12s| %-12s| %s\n", "(aggregate)", m.Field, m.Expected, m.Actual, "DIFF")
	}

	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", sum.TotalScenes, sum.Passed, sum.Failed)
	for field, n := range sum.ByField {
		fmt.Printf("  %s: %d\n", field, n)
	}

	if sum.Failed > 0 || len(sum.AggregateMismatches) > 0 {
		return 1
	}
	return 0
}

// #endregion output
