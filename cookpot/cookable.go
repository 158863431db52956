package cookpot

import (
	"sort"
	"strings"

	"github.com/luadex/luadex"
)

// FindCookable returns the recipes whose card ingredients the
// inventory covers, sorted by priority (descending) then name. Only
// card-backed recipes can be evaluated this way; rule-only recipes are
// skipped (use Explore for those). limit <= 0 defaults to 200.
func FindCookable(
	recipes []*luadex.CookingRecipe,
	inventory map[string]float64,
	limit int,
) []*luadex.CookingRecipe {
	if limit <= 0 {
		limit = 200
	}

	inv := map[string]float64{}
	for k, v := range inventory {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" || v <= 0 {
			continue
		}
		inv[key] += v
	}

	var out []*luadex.CookingRecipe
	for _, r := range recipes {
		if len(r.CardIngredients) == 0 {
			continue
		}
		satisfied := true
		for _, ci := range r.CardIngredients {
			if inv[ci.Item]+epsilon < ci.Count {
				satisfied = false
				break
			}
		}
		if satisfied {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
