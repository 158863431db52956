package extract

import (
	"regexp"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
)

// stableKeys are the cooking recipe fields copied verbatim from the
// recipe table.
var stableKeys = []string{
	"priority", "weight", "foodtype",
	"hunger", "health", "sanity", "perishtime", "cooktime",
}

// namedTableBlock is one `name = { ... }` entry of a parent table body.
type namedTableBlock struct {
	Name string
	Body string
}

// iterNamedTableBlocks walks the top-level `name = { ... }` blocks
// inside a parent table body (without its outer braces), by
// bracket-matched scanning rather than regex so nested braces, strings
// and comments cannot mislead it.
func iterNamedTableBlocks(parentBody string) []namedTableBlock {
	text := parentBody
	n := len(text)
	i := 0
	depth := 0
	var out []namedTableBlock

	for i < n {
		if text[i] == '-' && i+1 < n && text[i+1] == '-' {
			i = luascan.SkipComment(text, i)
			continue
		}
		if nxt, ok := luascan.SkipStringOrLongString(text, i); ok {
			i = nxt
			continue
		}

		ch := text[i]
		if ch == '{' {
			depth++
			i++
			continue
		}
		if ch == '}' {
			if depth > 0 {
				depth--
			}
			i++
			continue
		}

		if depth == 0 {
			if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == ',' {
				i++
				continue
			}
			if luascan.IsIdentStart(ch) {
				j := i + 1
				for j < n && luascan.IsIdentChar(text[j]) {
					j++
				}
				name := text[i:j]

				k := j
				for k < n && isWS(text[k]) {
					k++
				}
				if k < n && text[k] == '=' {
					k++
					for k < n && isWS(text[k]) {
						k++
					}
					if k < n && text[k] == '{' {
						close, ok := luascan.FindMatching(text, k, '{', '}')
						if !ok {
							i = j
							continue
						}
						out = append(out, namedTableBlock{Name: name, Body: text[k+1 : close]})
						i = close + 1
						continue
					}
				}
				i = j
				continue
			}
		}
		i++
	}

	return out
}

func isWS(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

var testFnRe = regexp.MustCompile(`\btest\s*=\s*function\b`)
var returnExprRe = regexp.MustCompile(`(?s)\breturn\b\s*(.*?)\bend\b`)

// testReturnExpr extracts the boolean return expression from a recipe
// body's `test = function(...) return <expr> end`, single-line
// normalized. Returns "" when the body has no parseable test function.
func testReturnExpr(entryBody string) string {
	m := testFnRe.FindStringIndex(entryBody)
	if m == nil {
		return ""
	}
	fnStart := m[1] - len("function")
	fnEnd, ok := luascan.FindFunctionEnd(entryBody, fnStart)
	if !ok {
		return ""
	}
	clean := luascan.StripComments(entryBody[fnStart:fnEnd])
	mr := returnExprRe.FindStringSubmatch(clean)
	if mr == nil {
		return ""
	}
	return luaexpr.NormalizeSpace(mr[1])
}

var foodsTableRe = regexp.MustCompile(`local\s+foods\s*=\s*\{`)

// ParseCookingRecipes parses a prepared-foods script: it locates the
// top-level foods table, iterates its named sub-tables, and reads per
// recipe the stable fields, the card ingredients, and the test rule
// with its best-effort constraint decomposition.
func ParseCookingRecipes(content, source string) map[string]*luadex.CookingRecipe {
	out := map[string]*luadex.CookingRecipe{}

	m := foodsTableRe.FindStringIndex(content)
	if m == nil {
		return out
	}
	open := m[1] - 1
	close, ok := luascan.FindMatching(content, open, '{', '}')
	if !ok {
		return out
	}
	inner := content[open+1 : close]

	for _, block := range iterNamedTableBlocks(inner) {
		tbl := luaexpr.ParseTable(block.Body)
		rec := &luadex.CookingRecipe{Name: block.Name, Source: source}
		found := false

		for _, key := range stableKeys {
			v, ok := tbl.Get(key)
			if !ok {
				continue
			}
			found = true
			switch key {
			case "priority":
				if f, ok := v.AsNumber(); ok {
					rec.Priority = f
				}
			case "weight":
				if f, ok := v.AsNumber(); ok {
					rec.Weight = f
				}
			case "foodtype":
				if s, ok := v.AsString(); ok {
					rec.Foodtype = s
				} else if v.Kind == luaexpr.KindRaw {
					rec.Foodtype = normalizeFoodtype(v.Raw)
				}
			case "hunger":
				rec.Hunger = v.ToAny()
			case "health":
				rec.Health = v.ToAny()
			case "sanity":
				rec.Sanity = v.ToAny()
			case "perishtime":
				rec.Perishtime = v.ToAny()
			case "cooktime":
				rec.Cooktime = v.ToAny()
			}
		}

		if tagsTbl, ok := tbl.GetTable("tags"); ok {
			rec.Tags = tagsTbl.StringArray()
			found = true
		}

		if card, ok := tbl.GetTable("card_def"); ok {
			if ing, ok := card.GetTable("ingredients"); ok {
				for _, rowVal := range ing.Array {
					row, ok := rowVal.AsTable()
					if !ok || len(row.Array) < 2 {
						continue
					}
					item, okItem := row.Array[0].AsString()
					count, okCount := row.Array[1].AsNumber()
					if okItem && okCount && count > 0 {
						rec.CardIngredients = append(rec.CardIngredients, luadex.CardIngredient{
							Item:  item,
							Count: count,
						})
					}
				}
				if len(rec.CardIngredients) > 0 {
					found = true
				}
			}
		}

		if expr := testReturnExpr(block.Body); expr != "" {
			rec.Rule = &luadex.Rule{
				Kind:        "test_return",
				Expr:        expr,
				Constraints: DecomposeRule(expr),
			}
			found = true
		}

		if found {
			out[block.Name] = rec
		}
	}

	return out
}

// MergeCookingRecipes overlays extra onto base, with extra winning on
// name collisions (the prefab-side table is authoritative when a recipe
// appears in both scripts).
func MergeCookingRecipes(base, extra map[string]*luadex.CookingRecipe) map[string]*luadex.CookingRecipe {
	out := make(map[string]*luadex.CookingRecipe, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// normalizeFoodtype trims FOODTYPE. prefixes left raw by the parser.
func normalizeFoodtype(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "FOODTYPE.")
}
