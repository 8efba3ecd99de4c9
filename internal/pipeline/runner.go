package pipeline

// #region imports
import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/scene-metadata/internal/chapter"
	"github.com/danielpatrickdp/scene-metadata/internal/gate"
	"github.com/danielpatrickdp/scene-metadata/internal/lexicon"
	"github.com/danielpatrickdp/scene-metadata/internal/logging"
	"github.com/danielpatrickdp/scene-metadata/internal/manuscript"
	"github.com/danielpatrickdp/scene-metadata/internal/metadata"
	"github.com/danielpatrickdp/scene-metadata/internal/orchestrator"
	"github.com/danielpatrickdp/scene-metadata/internal/state"
)

// #endregion

// #region runner-struct

// Runner analyses chapters against a SQLite cache.
type Runner struct {
	store    *state.Store
	analyzer *orchestrator.Analyzer
	gate     *gate.Gate
	workers  int
}

// NewRunner creates a runner. A nil analyzer uses the default detectors;
// workers <= 0 means no concurrency limit.
func NewRunner(store *state.Store, analyzer *orchestrator.Analyzer, workers int) *Runner {
	if analyzer == nil {
		analyzer = orchestrator.NewAnalyzer(orchestrator.DefaultDetectors())
	}
	return &Runner{
		store:    store,
		analyzer: analyzer,
		gate:     gate.NewGate(gate.DefaultGateConfig()),
		workers:  workers,
	}
}

// #endregion runner-struct

// #region run-chapter

type job struct {
	position int
	input    orchestrator.SceneInput
	hash     string
	cached   *state.SceneRecord
}

// RunChapter analyses every scene whose inputs changed since the cached
// record, prunes scenes no longer in the chapter and stores the new
// aggregate. Unchanged scenes are reused. A snapshot the gate rejects is
// reported but neither cached nor counted in the aggregate.
func (r *Runner) RunChapter(ctx context.Context, in ChapterInput) (ChapterResult, error) {
	if err := ctx.Err(); err != nil {
		return ChapterResult{}, err
	}
	if in.ChapterID == "" {
		return ChapterResult{}, errors.New("run chapter: empty chapter id")
	}

	run, err := r.store.BeginRun(in.ChapterID, in.ChapterPath, in.Locale)
	if err != nil {
		return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
	}

	jobs, err := r.plan(in)
	if err != nil {
		return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
	}

	results := make([]SceneResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}
	for i, j := range jobs {
		if j.cached != nil {
			results[i] = SceneResult{Metadata: j.cached.Metadata, ContentHash: j.hash, Cached: true}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			md := r.analyzer.AnalyseScene(j.input)
			res := SceneResult{Metadata: md, ContentHash: j.hash}
			if d := r.gate.Evaluate(md); d.Vetoed {
				res.Rejected = true
				res.Reason = d.Reason
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
	}

	if err := r.persist(run.RunID, jobs, results); err != nil {
		return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
	}

	names := make([]string, len(jobs))
	scenes := make([]metadata.SceneMetadata, 0, len(results))
	for i := range jobs {
		names[i] = jobs[i].input.SceneName
		if !results[i].Rejected {
			scenes = append(scenes, results[i].Metadata)
		}
	}

	pruned, err := r.store.PruneScenes(in.ChapterID, names)
	if err != nil {
		return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
	}
	for _, name := range pruned {
		err := logging.LogAnalysis(r.store.DB(), logging.ProvenanceEntry{
			RunID:     run.RunID,
			ChapterID: in.ChapterID,
			SceneName: name,
			Decision:  logging.DecisionPruned,
			Reason:    "scene no longer in chapter",
		})
		if err != nil {
			return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
		}
	}

	agg := chapter.Compute(scenes)
	if err := r.store.PutAggregate(state.AggregateRecord{ChapterID: in.ChapterID, Aggregate: agg, RunID: run.RunID}); err != nil {
		return ChapterResult{}, fmt.Errorf("run chapter %s: %w", in.ChapterID, err)
	}

	return ChapterResult{RunID: run.RunID, Scenes: results, Aggregate: agg, Pruned: pruned}, nil
}

// #endregion run-chapter

// #region plan

// plan builds one job per scene and attaches the cached record when its
// content hash still matches.
func (r *Runner) plan(in ChapterInput) ([]job, error) {
	lex := lexicon.Select(in.Locale)
	var chapterNote string
	if in.Notes != nil {
		chapterNote = in.Notes.ChapterNote
	}

	jobs := make([]job, 0, len(in.Scenes))
	for pos, sc := range in.Scenes {
		var ov *metadata.Overrides
		if o, ok := in.Overrides[sc.Name]; ok {
			ov = &o
		}
		input := orchestrator.SceneInput{
			Text:        sc.Text,
			SceneName:   sc.Name,
			ChapterID:   in.ChapterID,
			ChapterPath: in.ChapterPath,
			Mentions:    manuscript.DetectMentions(sc.Text, in.Entities),
			Notes:       in.Notes,
			PlotBoard:   in.PlotBoard,
			Overrides:   ov,
			Locale:      in.Locale,
		}

		hash, err := state.ContentHash(hashInput{
			LexiconLocale:  lex.Locale,
			LexiconVersion: lex.Version,
			ChapterPath:    in.ChapterPath,
			Text:           sc.Text,
			Mentions:       input.Mentions,
			ChapterNote:    chapterNote,
			SceneNote:      in.Notes.SceneNote(sc.Name),
			PlotBoard:      in.PlotBoard,
			Overrides:      ov,
		})
		if err != nil {
			return nil, fmt.Errorf("hash scene %s: %w", sc.Name, err)
		}

		j := job{position: pos, input: input, hash: hash}
		if !in.Force {
			rec, err := r.store.GetScene(in.ChapterID, sc.Name)
			switch {
			case err == nil && rec.ContentHash == hash:
				j.cached = &rec
			case err != nil && !errors.Is(err, state.ErrNotFound):
				return nil, err
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// #endregion plan

// #region persist

// persist writes analysed records, moves cached ones and logs one
// provenance row per scene.
func (r *Runner) persist(runID string, jobs []job, results []SceneResult) error {
	for i, j := range jobs {
		res := results[i]
		decision := logging.DecisionAnalysed
		if res.Rejected {
			entry, err := logging.EntryFor(runID, res.ContentHash, logging.DecisionRejected, res.Metadata)
			if err != nil {
				return err
			}
			entry.Reason = res.Reason
			if err := logging.LogAnalysis(r.store.DB(), entry); err != nil {
				return err
			}
			continue
		}
		if j.cached != nil {
			decision = logging.DecisionCached
			if j.cached.Position != j.position {
				if err := r.store.SetPosition(j.input.ChapterID, j.input.SceneName, j.position); err != nil {
					return err
				}
			}
		} else {
			err := r.store.PutScene(state.SceneRecord{
				ChapterID:   j.input.ChapterID,
				SceneName:   j.input.SceneName,
				Position:    j.position,
				ContentHash: res.ContentHash,
				Metadata:    res.Metadata,
				RunID:       runID,
			})
			if err != nil {
				return err
			}
		}

		entry, err := logging.EntryFor(runID, res.ContentHash, decision, res.Metadata)
		if err != nil {
			return err
		}
		if err := logging.LogAnalysis(r.store.DB(), entry); err != nil {
			return err
		}
	}
	return nil
}

// #endregion persist
