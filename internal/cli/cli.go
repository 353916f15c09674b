// Package cli implements the maxweight command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/food"
	"github.com/eugenenazirov/maxweight/internal/loader"
	"github.com/eugenenazirov/maxweight/internal/logging"
	"github.com/eugenenazirov/maxweight/internal/report"
	"github.com/eugenenazirov/maxweight/internal/solver"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type filterFlags struct {
	minWeight float64
	maxWeight float64
	limit     int
}

func (f filterFlags) apply(catalog food.Catalog) food.Catalog {
	limit := f.limit
	if limit < 0 {
		limit = len(catalog)
	}
	return catalog.Filter(f.minWeight, f.maxWeight, limit)
}

type commonFlags struct {
	catalog     string
	output      string
	logLevel    string
	s3Region    string
	s3Endpoint  string
	s3PathStyle bool
	filter      filterFlags
}

func registerCommon(cmd *kingpin.CmdClause, c *commonFlags) {
	cmd.Flag("catalog", "Catalog source: a local file or s3://bucket/key").Short('c').Required().Envar("CATALOG_SOURCE").StringVar(&c.catalog)
	cmd.Flag("min-weight", "Lowest item weight to consider (inclusive)").Default("-Inf").Float64Var(&c.filter.minWeight)
	cmd.Flag("max-weight", "Highest item weight to consider (inclusive)").Default("+Inf").Float64Var(&c.filter.maxWeight)
	cmd.Flag("limit", "Maximum number of items taken from the catalog (negative means all)").Default("-1").IntVar(&c.filter.limit)
	cmd.Flag("output", "Output format").Short('o').Default(string(report.FormatTable)).EnumVar(&c.output, report.Formats()...)
	cmd.Flag("log-level", "Log level").Default("warn").Envar("LOG_LEVEL").StringVar(&c.logLevel)
	cmd.Flag("s3-region", "Region for s3:// catalogs").Default("us-east-1").Envar("S3_REGION").StringVar(&c.s3Region)
	cmd.Flag("s3-endpoint", "Custom endpoint for s3:// catalogs").Envar("S3_ENDPOINT").StringVar(&c.s3Endpoint)
	cmd.Flag("s3-path-style", "Use path-style S3 addressing").Envar("S3_PATH_STYLE").BoolVar(&c.s3PathStyle)
}

type solveFlags struct {
	commonFlags
	budget   float64
	strategy string
	workers  int
	maxItems int
}

// Runner executes CLI invocations.
type Runner struct {
	stdout  io.Writer
	stderr  io.Writer
	objects loader.ObjectGetter
}

// Option configures a Runner.
type Option func(*Runner)

// WithObjectGetter supplies the object store used for s3:// catalogs instead
// of building an S3 client from the flags.
func WithObjectGetter(objects loader.ObjectGetter) Option {
	return func(r *Runner) {
		r.objects = objects
	}
}

// NewRunner builds a Runner writing results to stdout and diagnostics to stderr.
func NewRunner(stdout, stderr io.Writer, opts ...Option) *Runner {
	r := &Runner{stdout: stdout, stderr: stderr}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run parses args (without the program name) and executes the selected
// command, returning a process exit code.
func (r *Runner) Run(ctx context.Context, args []string) int {
	app := kingpin.New("maxweight", "Pick the heaviest set of foods that fits a calorie budget")
	app.UsageWriter(r.stdout)
	app.ErrorWriter(r.stderr)

	exitCode := -1
	app.Terminate(func(code int) {
		if exitCode < 0 {
			exitCode = code
		}
	})

	var solve solveFlags
	solveCmd := app.Command("solve", "Select items within a calorie budget")
	registerCommon(solveCmd, &solve.commonFlags)
	solveCmd.Flag("budget", "Calorie budget").Short('b').Required().Float64Var(&solve.budget)
	solveCmd.Flag("strategy", "Selection strategy").Short('s').Default(string(solver.StrategyGreedy)).
		EnumVar(&solve.strategy, strategyNames()...)
	solveCmd.Flag("workers", "Goroutines used by exhaustive search").Default("1").IntVar(&solve.workers)
	solveCmd.Flag("max-items", "Largest catalog exhaustive search accepts").Default(fmt.Sprint(solver.DefaultMaxItems)).IntVar(&solve.maxItems)

	var filter commonFlags
	filterCmd := app.Command("filter", "List catalog items within a weight window")
	registerCommon(filterCmd, &filter)

	if len(args) == 0 {
		app.Usage(nil)
		return ExitUsage
	}

	command, err := app.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		app.Errorf("%s, try --help", err)
		return ExitUsage
	}
	if command == "" {
		app.Errorf("command not specified, try --help")
		return ExitUsage
	}

	switch command {
	case solveCmd.FullCommand():
		err = r.runSolve(ctx, solve)
	case filterCmd.FullCommand():
		err = r.runFilter(ctx, filter)
	}
	if err != nil {
		fmt.Fprintf(r.stderr, "maxweight: %v\n", err)
		return ExitError
	}
	return ExitOK
}

func (r *Runner) runSolve(ctx context.Context, flags solveFlags) error {
	strategy, err := solver.ParseStrategy(flags.strategy)
	if err != nil {
		return err
	}
	if math.IsNaN(flags.budget) {
		return fmt.Errorf("budget must be a number")
	}

	catalog, err := r.loadCatalog(ctx, flags.commonFlags)
	if err != nil {
		return err
	}

	s, err := solver.New(strategy, solver.WithMaxItems(flags.maxItems), solver.WithWorkers(flags.workers))
	if err != nil {
		return err
	}
	result, err := solver.Run(ctx, s, strategy, flags.filter.apply(catalog), flags.budget)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	summary := report.NewSummary(fmt.Sprintf("%s solution", strategy), result.Items)
	summary.Strategy = string(strategy)
	summary.CalorieBudget = &flags.budget
	return r.render(flags.output, summary)
}

func (r *Runner) runFilter(ctx context.Context, flags commonFlags) error {
	catalog, err := r.loadCatalog(ctx, flags)
	if err != nil {
		return err
	}
	return r.render(flags.output, report.NewSummary("filtered catalog", flags.filter.apply(catalog)))
}

func (r *Runner) render(output string, summary report.Summary) error {
	format, err := report.ParseFormat(output)
	if err != nil {
		return err
	}
	return report.Render(r.stdout, format, summary)
}

func (r *Runner) loadCatalog(ctx context.Context, flags commonFlags) (food.Catalog, error) {
	logger, err := logging.NewConsole(r.stderr, flags.logLevel)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = logger.Sync()
	}()

	objects := r.objects
	if objects == nil && loader.IsRemote(flags.catalog) {
		client, err := loader.NewS3Client(ctx, loader.S3Config{
			Region:    flags.s3Region,
			Endpoint:  flags.s3Endpoint,
			PathStyle: flags.s3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		objects = client
	}

	var opts []loader.Option
	if objects != nil {
		opts = append(opts, loader.WithObjectGetter(objects))
	}
	catalog, err := loader.New(logger, opts...).Load(ctx, flags.catalog)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog ready", zap.Int("items", len(catalog)))
	return catalog, nil
}

func strategyNames() []string {
	names := make([]string, 0, len(solver.Strategies()))
	for _, s := range solver.Strategies() {
		names = append(names, string(s))
	}
	return names
}
