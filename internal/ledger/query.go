// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/discount-engine/pkg/types"
)

// QueryOptions holds filters for listing journal entries.
type QueryOptions struct {
	// Tier filters by customer tier.
	Tier types.CustomerTier

	// OrderID filters by order.
	OrderID string

	// Since keeps entries created at or after this time.
	Since time.Time

	// MaxResults limits result count. Zero uses the store default and a
	// negative value returns every match.
	MaxResults int
}

// List returns journal entries matching opts, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults == 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, order_id, tier, subtotal, discount, total, rate, bonus, reason, created_at
		FROM evaluations
		WHERE 1=1`)

	if opts.Tier != "" {
		qb.WriteString(` AND tier = ?`)
		args = append(args, string(opts.Tier))
	}
	if opts.OrderID != "" {
		qb.WriteString(` AND order_id = ?`)
		args = append(args, opts.OrderID)
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND created_at >= ?`)
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}

	qb.WriteString(` ORDER BY created_at DESC, id`)
	if maxResults > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, maxResults)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			tier      string
			createdAt string
		)
		if err := rows.Scan(
			&e.ID, &e.OrderID, &tier, &e.Subtotal, &e.Discount, &e.Total,
			&e.Rate, &e.Bonus, &e.Reason, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Tier = types.CustomerTier(tier)
		e.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// TierSummary aggregates journal entries for one tier.
type TierSummary struct {
	Tier     types.CustomerTier `json:"tier" yaml:"tier"`
	Count    int                `json:"count" yaml:"count"`
	Subtotal float64            `json:"subtotal" yaml:"subtotal"`
	Discount float64            `json:"discount" yaml:"discount"`
}

// Summary returns per-tier counts and sums, ordered by tier name.
func (s *Store) Summary(ctx context.Context) ([]TierSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tier, count(*), ROUND(SUM(subtotal), 2), ROUND(SUM(discount), 2)
		FROM evaluations
		GROUP BY tier
		ORDER BY tier`)
	if err != nil {
		return nil, fmt.Errorf("summarizing ledger: %w", err)
	}
	defer rows.Close()

	var out []TierSummary
	for rows.Next() {
		var (
			ts   TierSummary
			tier string
		)
		if err := rows.Scan(&tier, &ts.Count, &ts.Subtotal, &ts.Discount); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ts.Tier = types.CustomerTier(tier)
		out = append(out, ts)
	}
	return out, rows.Err()
}
