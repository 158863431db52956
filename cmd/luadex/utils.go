package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/luadex/luadex"
)

// newLogger builds the CLI logger; verbose switches to development
// output with debug level.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

var slotPairRe = regexp.MustCompile(`([A-Za-z0-9_]+)\s*[:=]\s*([0-9]+)`)

// parseSlotSpec parses a slot spec into id -> count.
//
// Accepted forms:
//
//	"twigs=2,flint=1"
//	"twigs:2 flint:1"
//	"twigs flint"      (each counts 1)
func parseSlotSpec(spec string) map[string]int {
	out := map[string]int{}
	s := strings.TrimSpace(spec)
	if s == "" {
		return out
	}

	for _, m := range slotPairRe.FindAllStringSubmatch(s, -1) {
		if n, err := strconv.Atoi(m[2]); err == nil {
			out[m[1]] += n
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	}) {
		if tok != "" {
			out[tok]++
		}
	}
	return out
}

// parseList splits a comma/space separated id list.
func parseList(spec string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(spec, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	}) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// outputJSON prints data as formatted JSON.
func outputJSON(data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling to JSON: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

// loadCatalogFlag reads the catalog given by --catalog.
func loadCatalogFlag(path string) (*luadex.Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog not found: %w", err)
	}
	return luadex.LoadCatalog(path)
}
