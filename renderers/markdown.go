// Package renderers turns build artifacts into human-readable output
// formats. The Markdown renderer produces the per-build summary the
// CLI writes next to the catalog.
package renderers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luadex/luadex"
)

// MarkdownSummary renders catalog build summaries as Markdown.
type MarkdownSummary struct{}

// RenderCatalog renders the build summary for a catalog.
func (MarkdownSummary) RenderCatalog(cat *luadex.Catalog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Catalog build summary\n\n")
	fmt.Fprintf(&b, "- schema: %d\n", cat.SchemaVersion)
	fmt.Fprintf(&b, "- generated: %s\n", cat.Meta.Generated)
	fmt.Fprintf(&b, "- tool: %s %s\n", cat.Meta.Tool, cat.Meta.Version)
	b.WriteString("\n## Counts\n\n")

	statKeys := make([]string, 0, len(cat.Stats))
	for k := range cat.Stats {
		statKeys = append(statKeys, k)
	}
	sort.Strings(statKeys)
	b.WriteString("| stat | count |\n|---|---|\n")
	for _, k := range statKeys {
		fmt.Fprintf(&b, "| %s | %d |\n", k, cat.Stats[k])
	}

	b.WriteString("\n## Items by kind\n\n")
	kinds := map[string]int{}
	for _, item := range cat.Items {
		kinds[item.Kind]++
	}
	kindKeys := make([]string, 0, len(kinds))
	for k := range kinds {
		kindKeys = append(kindKeys, k)
	}
	sort.Strings(kindKeys)
	b.WriteString("| kind | count |\n|---|---|\n")
	for _, k := range kindKeys {
		fmt.Fprintf(&b, "| %s | %d |\n", k, kinds[k])
	}

	if len(cat.Cooking) > 0 {
		b.WriteString("\n## Cooking recipes\n\n")
		names := make([]string, 0, len(cat.Cooking))
		for name := range cat.Cooking {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("| recipe | priority | weight | rule |\n|---|---|---|---|\n")
		for _, name := range names {
			r := cat.Cooking[name]
			rule := "card"
			if r.Rule != nil {
				rule = "test"
			} else if len(r.CardIngredients) == 0 {
				rule = "none"
			}
			fmt.Fprintf(&b, "| %s | %g | %g | %s |\n", name, r.Priority, r.Weight, rule)
		}
	}

	return b.String()
}

// RenderItem renders one item card.
func (MarkdownSummary) RenderItem(item *luadex.Item) string {
	var b strings.Builder

	title := item.ID
	if item.Name != "" {
		title = fmt.Sprintf("%s (%s)", item.Name, item.ID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- kind: %s\n", item.Kind)
	if len(item.Categories) > 0 {
		fmt.Fprintf(&b, "- categories: %s\n", strings.Join(item.Categories, ", "))
	}
	if len(item.Behaviors) > 0 {
		fmt.Fprintf(&b, "- behaviors: %s\n", strings.Join(item.Behaviors, ", "))
	}
	if len(item.Sources) > 0 {
		fmt.Fprintf(&b, "- sources: %s\n", strings.Join(item.Sources, ", "))
	}
	if len(item.Components) > 0 {
		fmt.Fprintf(&b, "- components: %s\n", strings.Join(item.Components, ", "))
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "- tags: %s\n", strings.Join(item.Tags, ", "))
	}

	if len(item.Stats) > 0 {
		b.WriteString("\n## Stats\n\n| stat | expr | value |\n|---|---|---|\n")
		keys := make([]string, 0, len(item.Stats))
		for k := range item.Stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			st := item.Stats[k]
			val := ""
			if st.Value != nil {
				val = fmt.Sprintf("%v", st.Value)
			}
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", k, st.Expr, val)
		}
	}

	return b.String()
}
