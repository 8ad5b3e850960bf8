// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orderfile reads batches of orders from YAML or JSON files,
// evaluates them concurrently under a discount policy, and writes the
// results back out.
package orderfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/discount-engine/pkg/types"
)

// Order is one line of an order file. Tier is kept as written and parsed
// when the order is assessed, so a bad tier fails only its own order.
type Order struct {
	ID       string  `json:"id" yaml:"id"`
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`
	Tier     string  `json:"tier" yaml:"tier"`
}

// OrderFile is the on-disk batch of orders.
type OrderFile struct {
	Orders []Order `json:"orders" yaml:"orders"`
}

// Line is the evaluation outcome of one order. Exactly one of Result and
// Error is set. Tier is normalized for evaluated orders and verbatim for
// failed ones.
type Line struct {
	OrderID string                `json:"order_id" yaml:"order_id"`
	Tier    string                `json:"tier" yaml:"tier"`
	Result  *types.DiscountResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error   string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// ResultFile is the on-disk form of a batch run.
type ResultFile struct {
	Results []Line      `json:"results" yaml:"results"`
	Summary FileSummary `json:"summary" yaml:"summary"`
}

// FileSummary stores result counts and the run timestamp.
type FileSummary struct {
	Evaluated     int       `json:"evaluated" yaml:"evaluated"`
	Failed        int       `json:"failed" yaml:"failed"`
	TotalDiscount float64   `json:"total_discount" yaml:"total_discount"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// ReadOrderFile loads orders from path. Files ending in .json are decoded
// as JSON, anything else as YAML. Orders without an ID are numbered
// order-1, order-2, ... by position.
func ReadOrderFile(path string) (*OrderFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}

	var of OrderFile
	if isJSON(path) {
		err = json.Unmarshal(data, &of)
	} else {
		err = yaml.Unmarshal(data, &of)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing order file %s: %w", path, err)
	}
	if len(of.Orders) == 0 {
		return nil, fmt.Errorf("order file %s contains no orders", path)
	}

	for i := range of.Orders {
		if of.Orders[i].ID == "" {
			of.Orders[i].ID = fmt.Sprintf("order-%d", i+1)
		}
	}
	return &of, nil
}

// WriteResultFile saves batch lines and a summary to path, as JSON for
// .json paths and YAML otherwise.
func WriteResultFile(path string, lines []Line, result BatchResult) error {
	rf := ResultFile{
		Results: lines,
		Summary: FileSummary{
			Evaluated:     result.Evaluated,
			Failed:        result.Failed,
			TotalDiscount: result.TotalDiscount,
			Timestamp:     time.Now().UTC(),
		},
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(&rf, "", "  ")
	} else {
		data, err = yaml.Marshal(&rf)
	}
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
