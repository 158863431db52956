package cookpot

import (
	"math"
	"strings"

	"github.com/luadex/luadex"
)

// guessedTags supplies tag maps for well-known base ingredients that
// appear in pots without a parsed definition (the scripts declare them
// far from the cooking tables). Unknown ids simply get no tags.
var guessedTags = map[string]map[string]float64{
	"twigs":             {"inedible": 1},
	"ice":               {"frozen": 1},
	"boneshard":         {"inedible": 1},
	"lightninggoathorn": {"inedible": 1},
}

// guessTags returns a copy of the guessed tag map for id, or nil.
func guessTags(id string) map[string]float64 {
	src, ok := guessedTags[id]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// BuildIngredientIndex flattens the catalog's cooking ingredients into
// a per-item tag map plus the per-tag maximum weight (used by the
// feasibility check). extraItems adds ids seen only in slots or the
// pantry; ids without a parsed definition fall back to guessTags.
func BuildIngredientIndex(
	ingredients map[string]*luadex.CookingIngredient,
	extraItems []string,
) (map[string]map[string]float64, map[string]float64) {
	tagsByItem := map[string]map[string]float64{}
	maxByTag := map[string]float64{}

	merge := func(id string, tags map[string]float64) {
		if len(tags) == 0 {
			return
		}
		out := tagsByItem[id]
		if out == nil {
			out = map[string]float64{}
		}
		for k, v := range tags {
			key := strings.ToLower(strings.TrimSpace(k))
			if key == "" {
				continue
			}
			out[key] = v
			if cur, ok := maxByTag[key]; !ok || v > cur {
				maxByTag[key] = v
			}
		}
		if len(out) > 0 {
			tagsByItem[id] = out
		}
	}

	for id, ing := range ingredients {
		iid := strings.ToLower(strings.TrimSpace(id))
		if iid == "" || ing == nil {
			continue
		}
		tags := ing.Tags
		if len(tags) == 0 && len(ing.TagsExpr) == 0 {
			tags = guessTags(iid)
		}
		merge(iid, tags)
	}

	for _, id := range extraItems {
		iid := strings.ToLower(strings.TrimSpace(id))
		if iid == "" {
			continue
		}
		if _, ok := tagsByItem[iid]; ok {
			continue
		}
		merge(iid, guessTags(iid))
	}

	return tagsByItem, maxByTag
}

// NormalizeSlots keeps only positive slot counts, lowercasing ids and
// merging duplicates.
func NormalizeSlots(slots map[string]int) map[string]int {
	out := map[string]int{}
	for k, v := range slots {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" || v <= 0 {
			continue
		}
		out[key] += v
	}
	return out
}

func normalizeAvailable(items []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range items {
		iid := strings.ToLower(strings.TrimSpace(item))
		if iid == "" || seen[iid] {
			continue
		}
		seen[iid] = true
		out = append(out, iid)
	}
	return out
}

func sumTags(slots map[string]int, tagsByItem map[string]map[string]float64) map[string]float64 {
	totals := map[string]float64{}
	for id, count := range slots {
		for tag, val := range tagsByItem[id] {
			totals[tag] += val * float64(count)
		}
	}
	return totals
}

func sumNames(slots map[string]int) map[string]int {
	out := make(map[string]int, len(slots))
	for id, count := range slots {
		out[id] += count
	}
	return out
}

func slotTotal(slots map[string]int) int {
	total := 0
	for _, v := range slots {
		total += v
	}
	return total
}

// comboCount is the number of multisets of size k drawn from n items.
func comboCount(n, k int) int {
	if k <= 0 {
		return 1
	}
	if n <= 0 {
		return 0
	}
	num, den := 1.0, 1.0
	for i := 1; i <= k; i++ {
		num *= float64(n + i - 1)
		den *= float64(i)
	}
	v := num / den
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// buildSlotCombos enumerates every multiset of size remaining drawn
// from items. Returns nil (and false) when the count exceeds maxCount.
func buildSlotCombos(items []string, remaining, maxCount int) ([]map[string]int, bool) {
	if remaining <= 0 {
		return []map[string]int{{}}, true
	}
	if len(items) == 0 {
		return nil, true
	}
	if comboCount(len(items), remaining) > maxCount {
		return nil, false
	}

	var combos []map[string]int
	cur := map[string]int{}
	var walk func(start, rem int)
	walk = func(start, rem int) {
		if rem <= 0 {
			snapshot := make(map[string]int, len(cur))
			for k, v := range cur {
				snapshot[k] = v
			}
			combos = append(combos, snapshot)
			return
		}
		for idx := start; idx < len(items); idx++ {
			iid := items[idx]
			cur[iid]++
			walk(idx, rem-1)
			if cur[iid] <= 1 {
				delete(cur, iid)
			} else {
				cur[iid]--
			}
		}
	}
	walk(0, remaining)
	return combos, true
}

func mergeSlots(base, extra map[string]int) map[string]int {
	out := make(map[string]int, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] += v
	}
	return out
}
