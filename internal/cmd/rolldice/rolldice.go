// Package rolldice parses CLI flags and evaluates a dice notation expression,
// either in process or through a notation server.
package rolldice

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	notationservice "github.com/subsigma/rolldice/internal/api/grpc/notation"
	"github.com/subsigma/rolldice/internal/core/random"
	"github.com/subsigma/rolldice/internal/notation"
	"github.com/subsigma/rolldice/internal/notation/stats"
	entrypoint "github.com/subsigma/rolldice/internal/platform/cmd"
	platformgrpc "github.com/subsigma/rolldice/internal/platform/grpc"
	"github.com/subsigma/rolldice/internal/platform/timeouts"
)

// Output views.
const (
	ViewTrace   = "trace"
	ViewResults = "results"
	ViewTotal   = "total"
	ViewStats   = "stats"
)

// Config holds rolldice command configuration.
type Config struct {
	Expr string `env:"ROLLDICE_EXPR"`
	View string `env:"ROLLDICE_VIEW" envDefault:"trace"`
	// Seed replays an earlier evaluation; nil draws a fresh seed.
	Seed *int64 `env:"ROLLDICE_SEED"`
	// Addr evaluates through a notation server instead of in process.
	Addr string `env:"ROLLDICE_REMOTE_ADDR"`
}

// ParseConfig parses environment and flags into a Config. Positional
// arguments, when present, are joined with spaces and replace -expr.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Expr, "expr", cfg.Expr, "dice notation expression, e.g. 4d6x1+2")
	fs.StringVar(&cfg.View, "view", cfg.View, "output view: trace, results, total or stats")
	fs.Func("seed", "seed for a replayable evaluation", func(value string) error {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("seed must be a decimal integer: %w", err)
		}
		cfg.Seed = &seed
		return nil
	})
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "notation server address (empty evaluates in process)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		cfg.Expr = strings.Join(rest, " ")
	}
	cfg.View = strings.ToLower(strings.TrimSpace(cfg.View))
	return cfg, nil
}

// Validate reports configuration errors that need no evaluation.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Expr) == "" {
		return errors.New("expression is required (-expr or positional arguments)")
	}
	switch c.View {
	case ViewTrace, ViewResults, ViewTotal, ViewStats:
		return nil
	default:
		return fmt.Errorf("view %q is not one of trace, results, total, stats", c.View)
	}
}

// Run evaluates the configured expression and writes the selected view to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRolldice, func(ctx context.Context) error {
		var engine evaluator = localEvaluator{}
		if strings.TrimSpace(cfg.Addr) != "" {
			conn, err := platformgrpc.DialWithHealth(ctx, nil, cfg.Addr, timeouts.GRPCDial, nil)
			if err != nil {
				return err
			}
			defer conn.Close()
			engine = remoteEvaluator{client: notationservice.NewClient(conn)}
		}

		text, err := render(ctx, engine, cfg)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err
	})
}

func render(ctx context.Context, evaluator evaluator, cfg Config) (string, error) {
	if cfg.View == ViewStats {
		summary, err := evaluator.statistics(ctx, cfg.Expr, cfg.Seed)
		if err != nil {
			return "", err
		}
		return summary + "\n", nil
	}

	result, err := evaluator.evaluate(ctx, cfg.Expr, cfg.Seed)
	if err != nil {
		return "", err
	}
	log.Printf("seed %d (%s)", result.seed, result.seedSource)
	switch cfg.View {
	case ViewResults:
		return result.results + "\n", nil
	case ViewTotal:
		return notationservice.FormatTotal(result.total) + "\n", nil
	default:
		return result.trace, nil
	}
}

type evaluation struct {
	trace      string
	results    string
	total      float64
	seed       int64
	seedSource random.SeedSource
}

type evaluator interface {
	evaluate(ctx context.Context, expr string, seed *int64) (evaluation, error)
	statistics(ctx context.Context, expr string, seed *int64) (string, error)
}

type localEvaluator struct{}

func (localEvaluator) evaluate(_ context.Context, expr string, requested *int64) (evaluation, error) {
	seed, source, err := random.ResolveSeed(requested, nil)
	if err != nil {
		return evaluation{}, err
	}
	result, err := notation.Evaluate(expr, notation.NewSource(seed))
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{
		trace:      result.Trace(),
		results:    result.Results(),
		total:      result.Total(),
		seed:       seed,
		seedSource: source,
	}, nil
}

func (localEvaluator) statistics(ctx context.Context, expr string, requested *int64) (string, error) {
	seed, _, err := random.ResolveSeed(requested, nil)
	if err != nil {
		return "", err
	}
	summary, err := stats.Compute(ctx, expr, seed)
	if err != nil {
		return "", err
	}
	return summary.String(), nil
}

type remoteEvaluator struct {
	client *notationservice.Client
}

func (r remoteEvaluator) evaluate(ctx context.Context, expr string, seed *int64) (evaluation, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
	defer cancel()
	resp, err := r.client.Evaluate(callCtx, notationservice.EvaluateRequest{Expression: expr, Seed: seed})
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{
		trace:      strings.Join(resp.Trace, "\n") + "\n",
		results:    resp.Results,
		total:      resp.Total,
		seed:       resp.SeedUsed,
		seedSource: resp.SeedSource,
	}, nil
}

func (r remoteEvaluator) statistics(ctx context.Context, expr string, seed *int64) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeouts.StatisticsRequest)
	defer cancel()
	resp, err := r.client.Statistics(callCtx, notationservice.StatisticsRequest{Expression: expr, Seed: seed})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
