//go:build mage

// Package main contains Mage build targets for discount-engine developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "discount-engine"
	cmdPkg  = "./cmd/discount-engine"

	configFile = "discount-engine.yaml"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"ledger",
	"orders",
}

// sampleConfig is written by Init when no config file exists.
const sampleConfig = `policy:
  tier_rates:
    standard: 0.00
    gold: 0.05
    platinum: 0.10
  bonus_threshold: 500
  bonus_rate: 0.05
  rate_cap: 0.25
  rounding: half-even
ledger:
  dir: ledger
  max_results: 50
batch:
  workers: 4
log:
  level: warn
`

// sampleOrders is written by Init to orders/sample.yaml.
const sampleOrders = `orders:
  - id: sample-1
    subtotal: 650
    tier: standard
  - id: sample-2
    subtotal: 650
    tier: gold
  - id: sample-3
    subtotal: 650
    tier: platinum
  - id: sample-4
    subtotal: 120.5
    tier: gold
`

// Init creates the working directories, a default config file, and a
// sample order file. Existing files are left alone.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if err := writeIfMissing(configFile, sampleConfig); err != nil {
		return err
	}
	if err := writeIfMissing(filepath.Join("orders", "sample.yaml"), sampleOrders); err != nil {
		return err
	}
	fmt.Println("Project initialized.")
	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Println("   exists:", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Println("  ", path)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + strings.TrimSpace(version)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Demo builds the CLI and evaluates the sample amount at every tier.
func Demo() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "demo")
}

// Batch builds the CLI and evaluates orders/sample.yaml.
func Batch() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "batch", filepath.Join("orders", "sample.yaml"))
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
// Directories starting with "_" or "." are skipped, as the go tool does.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && (strings.HasPrefix(info.Name(), "_") || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts words in the Markdown files at the top of root.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
