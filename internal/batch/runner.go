// Package batch runs many random village scenarios against the model server
// and keeps a running record of the outcomes.
package batch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/metrics"
	"github.com/joestump/village-forge/internal/prompt"
	"github.com/joestump/village-forge/internal/store"
	"github.com/joestump/village-forge/internal/village"
)

// scenarioChoice is the choice sent with every batch scenario.
const scenarioChoice = "Describe a village"

// Options controls a batch run.
type Options struct {
	Count       int
	Interval    time.Duration // minimum gap between generation starts; 0 disables pacing
	Concurrency int
	OutputDir   string
	Sampling    llm.Sampling
}

// Runner draws scenarios, sends them to a Generator and records the results.
type Runner struct {
	gen       llm.Generator
	store     store.GenerationStoreIface
	catalog   *village.Catalog
	scenarios *village.Generator
	opts      Options
	limiter   *rate.Limiter
	logger    *zap.Logger
	now       func() time.Time
}

// NewRunner returns a Runner. st may be nil, in which case results only go to
// the result files.
func NewRunner(gen llm.Generator, st store.GenerationStoreIface, catalog *village.Catalog, scenarios *village.Generator, opts Options, logger *zap.Logger) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Runner{
		gen:       gen,
		store:     st,
		catalog:   catalog,
		scenarios: scenarios,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
		now:       time.Now,
	}
}

type item struct {
	number     int
	scenario   village.Scenario
	userPrompt string
}

// Run generates opts.Count scenarios. Failed generations are counted in the
// returned Results and never stop the run; only context cancellation or a
// failure to write the final result file returns an error. The returned
// Results are valid even when err is non-nil.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	start := r.now()
	res := newResults(start, r.opts.Count)

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	r.logger.Info("batch started",
		zap.Int("count", r.opts.Count),
		zap.Int("concurrency", r.opts.Concurrency),
		zap.Duration("interval", r.opts.Interval))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	var runErr error
	for i := 1; i <= r.opts.Count; i++ {
		if err := r.limiter.Wait(gctx); err != nil {
			runErr = err
			break
		}

		// The scenario generator is not safe for concurrent use, so draw here.
		sc, err := r.scenarios.RandomScenario()
		if err != nil {
			r.logger.Error("draw scenario", zap.Int("generation", i), zap.Error(err))
			res.add(GenerationResult{GenerationNumber: i, Error: err.Error()})
			r.saveIntermediate(res, start)
			continue
		}
		it := item{number: i, scenario: sc, userPrompt: r.scenarios.RandomUserPrompt()}

		g.Go(func() error {
			res.add(r.generate(gctx, it))
			r.saveIntermediate(res, start)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		runErr = err
	}

	path, err := res.writeFile(r.opts.OutputDir, start, true)
	if err != nil {
		return res, err
	}
	metrics.BatchRunsTotal.Inc()
	r.logger.Info("batch finished",
		zap.Int("successful", res.SuccessfulGenerations),
		zap.Int("failed", res.FailedGenerations),
		zap.String("results", path))
	return res, runErr
}

func (r *Runner) generate(ctx context.Context, it item) GenerationResult {
	fields := ScenarioFields(r.catalog, it.scenario, it.userPrompt)
	formatted := prompt.Compose(fields)

	began := time.Now()
	response, err := r.gen.Generate(ctx, formatted, r.opts.Sampling)
	elapsed := time.Since(began)
	metrics.ObserveGeneration(store.SourceBatch, elapsed.Seconds(), err)

	sc := it.scenario
	out := GenerationResult{
		SystemData:       &sc,
		UserPrompt:       it.userPrompt,
		FormattedPrompt:  formatted,
		Response:         response,
		GenerationNumber: it.number,
		GenerationTime:   formatSeconds(elapsed),
		Success:          err == nil,
	}
	if err != nil {
		out.Error = err.Error()
		r.logger.Warn("generation failed", zap.Int("generation", it.number), zap.Error(err))
	} else {
		r.logger.Info("generation completed",
			zap.Int("generation", it.number),
			zap.String("biome", sc.Biome),
			zap.String("style", sc.Style),
			zap.Duration("elapsed", elapsed))
	}

	if r.store != nil {
		g := &store.Generation{
			Source:          store.SourceBatch,
			Choice:          fields.Choice,
			Biome:           fields.Biome,
			Features:        fields.Features,
			Constriction:    fields.Constriction,
			TextStyle:       fields.TextStyle,
			Message:         fields.Message,
			SystemMessage:   sc.SystemMessage,
			FormattedPrompt: formatted,
			Response:        response,
			Success:         out.Success,
			Error:           out.Error,
			DurationMS:      elapsed.Milliseconds(),
		}
		// Recording uses the parent context's values but must outlive a
		// cancelled run so the attempt is not lost.
		if err := r.store.Record(context.WithoutCancel(ctx), g); err != nil {
			metrics.GenerationRecordErrorsTotal.Inc()
			r.logger.Error("record generation", zap.Int("generation", it.number), zap.Error(err))
		} else {
			out.ID = g.ID
		}
	}
	return out
}

func (r *Runner) saveIntermediate(res *Results, start time.Time) {
	path, err := res.writeFile(r.opts.OutputDir, start, false)
	if err != nil {
		r.logger.Warn("save intermediate results", zap.Error(err))
		return
	}
	r.logger.Debug("saved intermediate results", zap.String("path", path))
}

// ScenarioFields turns a drawn scenario into prompt fields. Settings found in
// the system message win; the rest come from the scenario itself.
func ScenarioFields(c *village.Catalog, sc village.Scenario, userPrompt string) prompt.Fields {
	f := prompt.Parse(sc.SystemMessage)
	if f.Choice == "" {
		f.Choice = scenarioChoice
	}
	if f.Biome == "" {
		f.Biome = sc.Biome
		if e, ok := c.Biome(sc.Biome); ok {
			f.Biome = sc.Biome + ": " + e.Text
		}
	}
	if f.Features == "" {
		f.Features = strings.Join(sc.Features, "; ")
	}
	if f.Constriction == "" {
		constraints := make([]string, 0, len(sc.Cultures))
		for _, key := range sc.Cultures {
			if e, ok := c.Culture(key); ok {
				constraints = append(constraints, e.Text)
			} else {
				constraints = append(constraints, key)
			}
		}
		f.Constriction = strings.Join(constraints, " ")
	}
	if f.TextStyle == "" {
		f.TextStyle = sc.Style
	}
	f.Message = userPrompt
	return f
}
