// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orderfile

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/discount-engine/internal/discount"
	"github.com/pdiddy/discount-engine/pkg/types"
)

const defaultWorkers = 4

// BatchResult holds the counts of a batch evaluation run.
type BatchResult struct {
	Evaluated     int
	Failed        int
	TotalDiscount float64
}

// Total returns the number of orders processed.
func (r BatchResult) Total() int {
	return r.Evaluated + r.Failed
}

// HasFailures reports whether any order failed evaluation.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Assessment pairs an order with its engine outcome. Err is set instead of
// Outcome when the engine rejected the order.
type Assessment struct {
	Order   Order
	Outcome discount.Outcome
	Err     error
}

// AssessAll evaluates every order under p using at most workers goroutines
// (default 4 when workers <= 0). The returned slice is in input order. An
// invalid order is reported in its Assessment and does not stop the batch;
// only context cancellation returns an error.
func AssessAll(ctx context.Context, p discount.Policy, orders []Order, workers int) ([]Assessment, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}

	out := make([]Assessment, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, o := range orders {
		i, o := i, o
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tier, err := types.ParseCustomerTier(o.Tier)
			if err != nil {
				out[i] = Assessment{Order: o, Err: err}
				return nil
			}
			outcome, err := p.Assess(o.Subtotal, tier)
			out[i] = Assessment{Order: o, Outcome: outcome, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateAll runs AssessAll and then Report.
func EvaluateAll(ctx context.Context, p discount.Policy, orders []Order, workers int, w io.Writer) ([]Line, BatchResult, error) {
	assessments, err := AssessAll(ctx, p, orders, workers)
	if err != nil {
		return nil, BatchResult{}, err
	}
	lines, result := Report(ctx, assessments, w)
	return lines, result, nil
}

// Report writes one progress line per assessment to w, followed by a
// summary line, and returns the result lines in the same order.
func Report(ctx context.Context, assessments []Assessment, w io.Writer) ([]Line, BatchResult) {
	log := zerolog.Ctx(ctx)

	var (
		result BatchResult
		sum    decimal.Decimal
		lines  = make([]Line, len(assessments))
	)
	for i, a := range assessments {
		lines[i] = Line{OrderID: a.Order.ID, Tier: a.Order.Tier}
		if a.Err != nil {
			lines[i].Error = a.Err.Error()
			result.Failed++
			fmt.Fprintf(w, "failed:    %s (%v)\n", a.Order.ID, a.Err)
			log.Debug().Str("order", a.Order.ID).Err(a.Err).Msg("order rejected")
			continue
		}

		res := a.Outcome.DiscountResult
		lines[i].Tier = string(a.Outcome.Tier)
		lines[i].Result = &res
		result.Evaluated++
		sum = sum.Add(decimal.NewFromFloat(res.Discount))
		fmt.Fprintf(w, "evaluated: %s %s subtotal=%.2f discount=%.2f total=%.2f\n",
			a.Order.ID, a.Outcome.Tier, res.Subtotal, res.Discount, res.Total)
	}
	result.TotalDiscount = sum.InexactFloat64()

	fmt.Fprintf(w, "\nBatch summary: %d evaluated, %d failed (total: %d), discount granted: %.2f\n",
		result.Evaluated, result.Failed, result.Total(), result.TotalDiscount)
	log.Debug().Int("evaluated", result.Evaluated).Int("failed", result.Failed).Msg("batch complete")

	return lines, result
}
