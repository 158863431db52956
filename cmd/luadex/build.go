package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/catalog"
	"github.com/luadex/luadex/index"
	"github.com/luadex/luadex/mount"
	"github.com/luadex/luadex/renderers"
)

var (
	buildScripts   string
	buildOut       string
	buildSummary   string
	buildOverrides string
	buildTrace     bool
	buildSQLite    string
	buildForce     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the extraction pipeline and write the catalog",
	Long: `Build mounts the scripts source, runs every extractor, joins the
results into the catalog, and writes the JSON artifacts (plus the
optional tuning trace index, Markdown summary, and SQLite export).

Examples:
  luadex build --scripts ./scripts --out ./out
  luadex build --scripts ./scripts --out ./out --summary ./out/summary.md --trace
  luadex build --scripts ./scripts --out ./out --sqlite ./out/catalog.db`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildScripts, "scripts", "", "Scripts directory (defaults to config paths.scripts_dir)")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "Output directory (defaults to config paths.out_dir)")
	buildCmd.Flags().StringVar(&buildSummary, "summary", "", "Write a Markdown build summary to this path")
	buildCmd.Flags().StringVar(&buildOverrides, "overrides", "", "Tag-override rules file (defaults to config paths.overrides)")
	buildCmd.Flags().BoolVar(&buildTrace, "trace", false, "Write the tuning trace index")
	buildCmd.Flags().StringVar(&buildSQLite, "sqlite", "", "Also export the catalog to this SQLite database")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "Rebuild even when outputs look up to date")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	scripts := buildScripts
	if scripts == "" {
		scripts = cfg.Paths.ScriptsDir
	}
	outDir := buildOut
	if outDir == "" {
		outDir = cfg.Paths.OutDir
	}
	overrides := buildOverrides
	if overrides == "" {
		overrides = cfg.Paths.Overrides
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := mount.OpenDir(scripts)
	if err != nil {
		return err
	}

	b := catalog.NewBuilder(m, catalog.Options{
		OverridesPath: overrides,
		IncludeTrace:  buildTrace,
		Parallelism:   cfg.Build.Parallelism,
		Logger:        log,
	})
	cat, traces, err := b.Build()
	if err != nil {
		return err
	}

	catalogPath := filepath.Join(outDir, "catalog.json")
	if err := luadex.SaveJSON(catalogPath, cat); err != nil {
		return err
	}
	fmt.Printf("catalog: %s (%d items)\n", catalogPath, len(cat.Items))

	if buildTrace && traces != nil {
		tracePath := filepath.Join(outDir, "tuning_trace.json")
		if err := luadex.SaveJSON(tracePath, traces); err != nil {
			return err
		}
		fmt.Printf("traces:  %s (%d keys)\n", tracePath, traces.Len())
	}

	if buildSummary != "" {
		md := renderers.MarkdownSummary{}.RenderCatalog(cat)
		if err := os.WriteFile(buildSummary, []byte(md), 0o644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		fmt.Printf("summary: %s\n", buildSummary)
	}

	if buildSQLite != "" {
		db, err := index.Open(buildSQLite)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Export(context.Background(), cat); err != nil {
			return err
		}
		fmt.Printf("sqlite:  %s\n", buildSQLite)
	}

	return nil
}
