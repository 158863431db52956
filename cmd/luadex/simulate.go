package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luadex/luadex/cookpot"
)

var (
	simulateCatalog string
	simulateJSON    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <slots>",
	Short: "Simulate a full 4-slot cook pot",
	Long: `Simulate decides which recipe a pot of exactly four ingredients
produces. Slots are given as id=count pairs.

Examples:
  luadex simulate --catalog out/catalog.json meat=3,berries=1
  luadex simulate --catalog out/catalog.json "monstermeat=1 berries=1 carrot=1 twigs=1" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateCatalog, "catalog", "", "Catalog JSON path")
	simulateCmd.Flags().BoolVarP(&simulateJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogFlag(simulateCatalog)
	if err != nil {
		return err
	}

	slots := parseSlotSpec(strings.Join(args, " "))
	out := cookpot.Simulate(cat.CookingRecipeList(), slots, cat.CookingIngredients)

	if simulateJSON {
		return outputJSON(out)
	}

	if !out.OK {
		fmt.Printf("no result: %s (total %d)\n", out.Error, out.Total)
		return nil
	}

	fmt.Printf("result: %s (%s)\n", out.Result, out.Reason)
	if len(out.Candidates) > 0 {
		fmt.Println("\ncandidates:")
		for _, c := range out.Candidates {
			fmt.Printf("  %-24s priority %g, weight %g\n", c.Name, c.Priority, c.Weight)
		}
	}
	if len(out.NearMiss) > 0 {
		fmt.Println("\nnear misses:")
		for _, row := range out.NearMiss {
			fmt.Printf("  [%s] %-24s score %.1f, missing %d\n",
				row.NearTier, row.Name, row.Score, len(row.Missing))
		}
	}
	return nil
}
