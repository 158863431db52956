package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luadex/luadex/catalog"
)

var (
	listCatalog  string
	listKind     string
	listCategory string
	listTag      string
	listSource   string
	listSearch   string
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items by kind, category, tag or search",
	Long: `List queries the built catalog through its secondary indexes.

Examples:
  luadex list --catalog out/catalog.json --kind creature
  luadex list --catalog out/catalog.json --category weapon
  luadex list --catalog out/catalog.json --search spear`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCatalog, "catalog", "", "Catalog JSON path")
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by prefab tag")
	listCmd.Flags().StringVar(&listSource, "source", "", "Filter by source membership")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Substring search over ids and names")
	listCmd.Flags().BoolVarP(&listJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listCatalog == "" {
		return fmt.Errorf("--catalog is required")
	}
	store, err := catalog.OpenStore(listCatalog)
	if err != nil {
		return err
	}

	var ids []string
	switch {
	case listSearch != "":
		ids = store.Search(listSearch, 200)
	case listKind != "":
		ids = store.ByKind(listKind)
	case listCategory != "":
		ids = store.ByCategory(listCategory)
	case listTag != "":
		ids = store.ByTag(listTag)
	case listSource != "":
		ids = store.BySource(listSource)
	default:
		ids = store.IDs()
	}

	if listJSON {
		return outputJSON(ids)
	}

	for _, id := range ids {
		item, ok := store.Item(id)
		if !ok {
			continue
		}
		name := item.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%-28s %-10s %s\n", id, item.Kind, name)
	}
	fmt.Printf("%d items\n", len(ids))
	return nil
}
