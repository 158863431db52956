package main

import (
	"fmt"

	units "github.com/bcicen/go-units"
	"github.com/spf13/cobra"

	"github.com/luadex/luadex/renderers"
)

var (
	showCatalog string
	showJSON    bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one catalog item",
	Long: `Show prints the catalog record of one item: its kind and tag
profile, components, inferred stats, and (for cooking recipes) the
rule and durations in human units.

Examples:
  luadex show --catalog out/catalog.json spear
  luadex show --catalog out/catalog.json meatballs --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showCatalog, "catalog", "", "Catalog JSON path")
	showCmd.Flags().BoolVarP(&showJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
}

// humanDuration renders a second count in days when it is large enough
// to be meaningful that way.
func humanDuration(seconds float64) string {
	if seconds >= 3600 {
		if v, err := units.ConvertFloat(seconds, units.Second, units.Day); err == nil {
			return fmt.Sprintf("%.1f days", v.Float())
		}
	}
	return fmt.Sprintf("%g s", seconds)
}

func numericStat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case map[string]any:
		if f, ok := x["value"].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

func runShow(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogFlag(showCatalog)
	if err != nil {
		return err
	}
	id := args[0]

	item := cat.Items[id]
	recipe := cat.Cooking[id]
	if item == nil && recipe == nil {
		return fmt.Errorf("no catalog entry for %q", id)
	}

	if showJSON {
		return outputJSON(map[string]any{"item": item, "cooking": recipe})
	}

	if item != nil {
		fmt.Print(renderers.MarkdownSummary{}.RenderItem(item))
	}

	if recipe != nil {
		fmt.Printf("\n## Cooking\n\n")
		fmt.Printf("- priority: %g, weight: %g\n", recipe.Priority, recipe.Weight)
		if recipe.Foodtype != "" {
			fmt.Printf("- foodtype: %s\n", recipe.Foodtype)
		}
		if v, ok := numericStat(recipe.Perishtime); ok {
			fmt.Printf("- perish time: %s\n", humanDuration(v))
		}
		if v, ok := numericStat(recipe.Cooktime); ok {
			fmt.Printf("- cook time: %g\n", v)
		}
		if recipe.Rule != nil {
			fmt.Printf("- rule: %s\n", recipe.Rule.Expr)
		}
		for _, ci := range recipe.CardIngredients {
			fmt.Printf("- card: %s x%g\n", ci.Item, ci.Count)
		}
	}

	return nil
}
