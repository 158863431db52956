package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luadex/luadex"
)

var (
	configPath string
	verbose    bool

	cfg *luadex.Config
)

var rootCmd = &cobra.Command{
	Use:   "luadex",
	Short: "Extract a queryable catalog from a game's Lua scripting layer",
	Long: `luadex ingests the data-driven Lua scripts of a game (prefabs,
recipes, tuning constants, cooking rules) and produces a coherent,
queryable catalog of entities and their relationships.

Typical workflow:
  luadex build --scripts ./scripts --out ./out --summary ./out/summary.md
  luadex simulate --catalog ./out/catalog.json meat=3,berries=1
  luadex explore  --catalog ./out/catalog.json carrot=1 --available meat,berries
  luadex trace    --scripts ./scripts TUNING.CALORIES_MED
  luadex show     --catalog ./out/catalog.json spear`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = luadex.LoadConfig(configPath)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "luadex.toml", "Tool config file (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
