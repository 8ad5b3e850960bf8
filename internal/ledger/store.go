// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger journals discount evaluations in a local SQLite database
// so they can be listed, summarized, and exported later. The engine itself
// never writes here; callers record what they evaluated.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/discount-engine/internal/discount"
	"github.com/pdiddy/discount-engine/pkg/types"
)

const (
	dbFile = "ledger.db"

	// timeLayout has fixed-width fractional seconds so stored timestamps
	// sort lexically in time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z"

	defaultMaxResults = 50
)

// Entry is one journaled evaluation.
type Entry struct {
	ID        string             `json:"id" yaml:"id"`
	OrderID   string             `json:"order_id,omitempty" yaml:"order_id,omitempty"`
	Tier      types.CustomerTier `json:"tier" yaml:"tier"`
	Subtotal  float64            `json:"subtotal" yaml:"subtotal"`
	Discount  float64            `json:"discount" yaml:"discount"`
	Total     float64            `json:"total" yaml:"total"`
	Rate      float64            `json:"rate" yaml:"rate"`
	Bonus     bool               `json:"bonus" yaml:"bonus"`
	Reason    string             `json:"reason" yaml:"reason"`
	CreatedAt time.Time          `json:"created_at" yaml:"created_at"`
}

// NewEntry builds a journal entry for an engine outcome with a fresh ID
// and the current time.
func NewEntry(orderID string, o discount.Outcome) Entry {
	return Entry{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Tier:      o.Tier,
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Total:     o.Total,
		Rate:      o.Rate,
		Bonus:     o.Bonus,
		Reason:    o.Reason,
		CreatedAt: time.Now().UTC(),
	}
}

// Store manages the ledger SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the ledger database at cfg.Dir/ledger.db and
// creates the schema if it does not exist.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			order_id TEXT,
			tier TEXT NOT NULL,
			subtotal REAL NOT NULL,
			discount REAL NOT NULL,
			total REAL NOT NULL,
			rate REAL NOT NULL,
			bonus INTEGER NOT NULL,
			reason TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_tier ON evaluations(tier)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores entries in a single transaction.
func (s *Store) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evaluations (id, order_id, tier, subtotal, discount, total, rate, bonus, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		_, err := stmt.ExecContext(ctx,
			e.ID, e.OrderID, string(e.Tier), e.Subtotal, e.Discount, e.Total,
			e.Rate, e.Bonus, e.Reason, e.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Int("entries", len(entries)).Str("dir", s.dir).Msg("recorded evaluations")
	return nil
}
