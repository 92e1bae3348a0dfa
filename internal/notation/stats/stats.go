// Package stats samples a dice notation expression repeatedly and summarizes
// the grand totals.
package stats

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/subsigma/rolldice/internal/core/dice"
	"github.com/subsigma/rolldice/internal/core/random"
	"github.com/subsigma/rolldice/internal/notation"
)

// SampleSize is the number of independent evaluations per summary.
const SampleSize = 1000

// chunkSize is the number of samples drawn from one source.
const chunkSize = 50

// Summary aggregates the sampled grand totals of one expression.
type Summary struct {
	Expression string
	Samples    []float64 // in sampling order
	Sum        float64
	Mean       float64
	Median     float64
	Mode       float64
	Max        float64
	Min        float64
}

// Compute evaluates text SampleSize times and summarizes the totals.
//
// Samples are drawn in fixed chunks, each from its own source seeded from
// seed, so a summary is reproducible for a given seed regardless of how the
// chunks are scheduled. The first evaluation error aborts the whole batch.
func Compute(ctx context.Context, text string, seed int64) (Summary, error) {
	ctx, span := otel.Tracer("github.com/subsigma/rolldice/internal/notation/stats").Start(ctx, "stats.Compute")
	defer span.End()
	span.SetAttributes(attribute.String("notation.expression", text))

	samples := make([]float64, SampleSize)
	seeds := chunkSeeds(seed)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for chunk, chunkSeed := range seeds {
		start := chunk * chunkSize
		end := min(start+chunkSize, SampleSize)
		source := random.NewSource(chunkSeed)
		group.Go(func() error {
			return sample(groupCtx, text, source, samples[start:end])
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		return Summary{}, err
	}

	return Summarize(text, samples), nil
}

// sample fills out with grand totals drawn from source.
func sample(ctx context.Context, text string, source dice.Source, out []float64) error {
	for i := range out {
		if err := ctx.Err(); err != nil {
			return err
		}
		total, err := notation.Total(text, source)
		if err != nil {
			return err
		}
		out[i] = total
	}
	return nil
}

func chunkSeeds(seed int64) []int64 {
	rng := rand.New(rand.NewSource(seed))
	seeds := make([]int64, (SampleSize+chunkSize-1)/chunkSize)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return seeds
}

// Summarize derives the aggregates of samples. The median averages the two
// central sorted samples; mode ties go to the value seen first.
func Summarize(text string, samples []float64) Summary {
	summary := Summary{
		Expression: text,
		Samples:    append([]float64(nil), samples...),
	}
	if len(samples) == 0 {
		return summary
	}

	summary.Max = samples[0]
	summary.Min = samples[0]
	// NaN keys never match on lookup, so NaN totals are counted apart.
	counts := make(map[float64]int, len(samples))
	nanCount := 0
	var firstSeen []float64
	for _, value := range samples {
		summary.Sum += value
		summary.Max = max(summary.Max, value)
		summary.Min = min(summary.Min, value)
		if math.IsNaN(value) {
			if nanCount == 0 {
				firstSeen = append(firstSeen, value)
			}
			nanCount++
			continue
		}
		if counts[value] == 0 {
			firstSeen = append(firstSeen, value)
		}
		counts[value]++
	}
	bestCount := 0
	for _, value := range firstSeen {
		count := counts[value]
		if math.IsNaN(value) {
			count = nanCount
		}
		if count > bestCount {
			bestCount = count
			summary.Mode = value
		}
	}
	summary.Mean = summary.Sum / float64(len(samples))

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	n := len(sorted)
	summary.Median = (sorted[n/2] + sorted[(n-1)/2]) / 2

	return summary
}

// String renders the summary as a header line, a column line and the values.
func (s Summary) String() string {
	return fmt.Sprintf("Statistics for %d rolls of: %s\nAverage | Median | Mode | Max | Min\n%s | %s | %s | %s | %s",
		len(s.Samples), s.Expression,
		format(s.Mean), format(s.Median), format(s.Mode), format(s.Max), format(s.Min))
}

func format(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
