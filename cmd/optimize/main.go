// Optimize tunes colony parameters with CMA-ES, maximizing food delivered
// in headless runs while rewarding steady deliveries and moderate trails.
//
// Usage: go run ./cmd/optimize -output dir [-config path] [-max-evals n]
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/emergent/config"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results (required)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 7200, "Ticks per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Evaluation budget")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population (0 = 4 + 3*dim/2)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	seeds := make([]uint64, max(opts.seeds, 1))
	for i := range seeds {
		seeds[i] = uint64(42 + 1000*i)
	}
	evaluator := NewFitnessEvaluator(params, int64(opts.maxTicks), seeds, baseCfg)

	track, err := newTracker(filepath.Join(opts.outputDir, "optimize_log.csv"), params, evaluator, opts.maxEvals)
	if err != nil {
		return err
	}
	defer track.close()

	popSize := opts.population
	if popSize <= 0 {
		popSize = 4 + 3*params.Dim()/2
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			return track.record(raw, evaluator.Evaluate(raw))
		},
	}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	slog.Info("starting CMA-ES",
		"params", params.Dim(), "population", popSize, "max_evals", opts.maxEvals,
		"seeds", len(seeds), "ticks", opts.maxTicks)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization stopped", "error", err)
	}

	best := track.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluation completed")
	}

	slog.Info("optimization complete",
		"evals", track.evals, "elapsed", time.Since(track.start).Round(time.Second).String(),
		"best_fitness", track.bestFitness)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "value", best[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	if err := bestCfg.WriteYAML(filepath.Join(opts.outputDir, "best_config.yaml")); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	return writeBestWindows(filepath.Join(opts.outputDir, "best_windows.csv"), evaluator)
}

// tracker logs every evaluation to CSV and keeps the best parameters seen.
type tracker struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	budget    int

	file *os.File
	w    *csv.Writer

	start       time.Time
	evals       int
	best        []float64
	bestFitness float64
}

func newTracker(path string, params *ParamVector, evaluator *FitnessEvaluator, budget int) (*tracker, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	w := csv.NewWriter(f)

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}

	return &tracker{
		params:      params,
		evaluator:   evaluator,
		budget:      budget,
		file:        f,
		w:           w,
		start:       time.Now(),
		bestFitness: 1e9,
	}, nil
}

// record logs one evaluation of raw and passes fitness through.
func (t *tracker) record(raw []float64, fitness float64) float64 {
	t.evals++
	used := t.params.Clamp(raw)
	if fitness < t.bestFitness {
		t.bestFitness = fitness
		t.best = used
	}

	quality := t.evaluator.LastQuality()
	row := []string{strconv.Itoa(t.evals), strconv.FormatFloat(fitness, 'f', 6, 64), strconv.FormatFloat(quality, 'f', 4, 64)}
	for _, v := range used {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := t.w.Write(row); err != nil {
		slog.Warn("eval log write failed", "error", err)
	}
	t.w.Flush()

	elapsed := time.Since(t.start)
	eta := time.Duration(t.budget-t.evals) * (elapsed / time.Duration(t.evals))
	slog.Info("eval",
		"n", t.evals, "of", t.budget,
		"food", -fitness/(1+0.2*quality), "quality", quality, "best_fitness", t.bestFitness,
		"elapsed", elapsed.Round(time.Second).String(), "eta", max(eta, 0).Round(time.Second).String())

	return fitness
}

func (t *tracker) close() {
	t.w.Flush()
	t.file.Close()
}

// writeBestWindows saves the telemetry windows of the best run.
func writeBestWindows(path string, evaluator *FitnessEvaluator) error {
	windows := evaluator.BestWindows()
	if len(windows) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating best windows: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(windows, f); err != nil {
		return fmt.Errorf("writing best windows: %w", err)
	}
	return nil
}
