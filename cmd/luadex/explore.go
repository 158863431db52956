package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luadex/luadex/cookpot"
)

var (
	exploreCatalog   string
	exploreAvailable string
	exploreJSON      bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore <slots>",
	Short: "Explore what a partial pot could still become",
	Long: `Explore evaluates a pot with up to four ingredients. With
--available it enumerates pantry extensions of the free slots and
reports, per recipe, the best reachable outcome; without it (or past
the combinatorial cap) it reports which recipes remain feasible.

Examples:
  luadex explore --catalog out/catalog.json carrot=1 --available meat,berries
  luadex explore --catalog out/catalog.json meat=2,berries=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().StringVar(&exploreCatalog, "catalog", "", "Catalog JSON path")
	exploreCmd.Flags().StringVar(&exploreAvailable, "available", "", "Pantry ids (comma separated)")
	exploreCmd.Flags().BoolVarP(&exploreJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogFlag(exploreCatalog)
	if err != nil {
		return err
	}

	if comboCap := cfg.Cookpot.ExploreComboCap; comboCap > 0 {
		cookpot.MaxAvailableCombos = comboCap
	}

	slots := parseSlotSpec(strings.Join(args, " "))
	out := cookpot.Explore(cat.CookingRecipeList(), slots, cat.CookingIngredients, parseList(exploreAvailable))

	if exploreJSON {
		return outputJSON(out)
	}

	if !out.OK {
		fmt.Printf("no result: %s (total %d)\n", out.Error, out.Total)
		return nil
	}

	fmt.Printf("slots filled: %d, remaining: %d\n", out.Total, out.Remaining)
	if len(out.Cookable) > 0 {
		fmt.Println("\ncookable:")
		for _, row := range out.Cookable {
			fmt.Printf("  %-24s score %.1f\n", row.Name, row.Score)
		}
	}
	if len(out.NearMissTiers) > 0 {
		fmt.Println("\nnear misses:")
		for _, tier := range out.NearMissTiers {
			fmt.Printf("  %s (%d):\n", tier.Key, tier.Count)
			for _, row := range tier.Items {
				fmt.Printf("    %-22s missing %d\n", row.Name, len(row.Missing))
			}
		}
	}
	return nil
}
