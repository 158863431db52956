package cookpot

import (
	"sort"

	"github.com/luadex/luadex"
)

// ReturnTop bounds the candidate/cookable lists in Simulate results.
const ReturnTop = 25

// ExploreLimit bounds the cookable/near-miss lists in Explore results.
const ExploreLimit = 200

func buildRow(
	r *luadex.CookingRecipe,
	ev *evaluation,
	req requirements,
) *Row {
	score, penalty := scoreRecipe(r.Priority, r.Weight, ev.missing)
	return &Row{
		Name:         r.Name,
		Priority:     r.Priority,
		Weight:       r.Weight,
		Score:        score,
		Penalty:      penalty,
		OK:           ev.ok,
		RuleMode:     ev.ruleMode,
		Missing:      ev.missing,
		Warnings:     ev.warnings,
		ReqNames:     req.names,
		ReqGroups:    req.groups,
		ReqTags:      req.tags,
		Conditions:   buildConditions(r, ev.tagsTotal, ev.namesTotal),
		ConditionsOK: ev.ok,
		Attrs:        recipeAttrs(r),
	}
}

func sortRowsByScore(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Name < rows[j].Name
	})
}

// Simulate decides what a full 4-slot pot produces. Passing recipes are
// ranked by priority, then weight, then name; when nothing passes the
// wetgoop sentinel is returned if the recipe list has one.
func Simulate(
	recipes []*luadex.CookingRecipe,
	slots map[string]int,
	ingredients map[string]*luadex.CookingIngredient,
) *SimulateResult {
	slotsN := NormalizeSlots(slots)
	total := slotTotal(slotsN)
	if total != SlotTotal {
		return &SimulateResult{
			OK:    false,
			Error: "cookpot_requires_4_items",
			Total: total,
			Slots: slotsN,
		}
	}

	extra := make([]string, 0, len(slotsN))
	for id := range slotsN {
		extra = append(extra, id)
	}
	tagsByItem, _ := BuildIngredientIndex(ingredients, extra)

	var passing []*luadex.CookingRecipe
	var cookable []*Row
	var nearMiss []*Row

	for _, r := range recipes {
		ev := evaluateRecipe(r, slotsN, tagsByItem)
		row := buildRow(r, ev, extractRequirements(r))
		if ev.ok {
			passing = append(passing, r)
			cookable = append(cookable, row)
		} else {
			nearMiss = append(nearMiss, row)
		}
	}

	if len(passing) > 0 {
		sort.SliceStable(passing, func(i, j int) bool {
			a, b := passing[i], passing[j]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			if a.Weight != b.Weight {
				return a.Weight > b.Weight
			}
			return a.Name < b.Name
		})

		candidates := make([]Candidate, 0, len(passing))
		for i, r := range passing {
			if i >= ReturnTop {
				break
			}
			candidates = append(candidates, Candidate{Name: r.Name, Priority: r.Priority, Weight: r.Weight})
		}

		sortRowsByScore(cookable)
		if len(cookable) > ReturnTop {
			cookable = cookable[:ReturnTop]
		}

		poolNames, poolTags := collectPool(extra, tagsByItem)
		nearSorted, nearTiers := rankNearMiss(nearMiss, poolNames, poolTags, tagsByItem, ReturnTop)

		return &SimulateResult{
			OK:            true,
			Result:        passing[0].Name,
			Reason:        "matched_constraints",
			Slots:         slotsN,
			Candidates:    candidates,
			Cookable:      cookable,
			NearMiss:      nearSorted,
			NearMissTiers: nearTiers,
			Formula:       Formula,
		}
	}

	for _, r := range recipes {
		if r.Name == Wetgoop {
			return &SimulateResult{
				OK:      true,
				Result:  Wetgoop,
				Reason:  "fallback_wetgoop",
				Slots:   slotsN,
				Formula: Formula,
			}
		}
	}

	return &SimulateResult{
		OK:    false,
		Error: "no_match_and_no_wetgoop",
		Slots: slotsN,
	}
}

// Explore evaluates a partial pot. With a pantry it enumerates every
// extension of the slots by the remaining count (up to
// MaxAvailableCombos multisets) and keeps, per recipe, its best
// extension; otherwise — or past the cap — it falls back to a
// single-snapshot feasibility check of what the free slots could still
// contribute.
func Explore(
	recipes []*luadex.CookingRecipe,
	slots map[string]int,
	ingredients map[string]*luadex.CookingIngredient,
	available []string,
) *ExploreResult {
	slotsN := NormalizeSlots(slots)
	total := slotTotal(slotsN)
	if total > SlotTotal {
		return &ExploreResult{
			OK:    false,
			Error: "cookpot_requires_max_4_items",
			Total: total,
			Slots: slotsN,
		}
	}
	remaining := SlotTotal - total

	avail := normalizeAvailable(available)
	availSet := map[string]bool{}
	for _, id := range avail {
		availSet[id] = true
	}

	extra := make([]string, 0, len(slotsN)+len(avail))
	for id := range slotsN {
		extra = append(extra, id)
	}
	extra = append(extra, avail...)

	tagsByItem, maxByTag := BuildIngredientIndex(ingredients, extra)
	if len(avail) > 0 {
		// the free slots can only draw from the pantry
		maxByTag = map[string]float64{}
		for _, id := range avail {
			for tag, val := range tagsByItem[id] {
				if cur, ok := maxByTag[tag]; !ok || val > cur {
					maxByTag[tag] = val
				}
			}
		}
	}

	if len(avail) > 0 {
		if combos, ok := buildSlotCombos(avail, remaining, MaxAvailableCombos); ok {
			return exploreCombos(recipes, slotsN, total, remaining, avail, combos, tagsByItem)
		}
	}

	return exploreSnapshot(recipes, slotsN, total, remaining, avail, availSet, tagsByItem, maxByTag)
}

// exploreCombos runs the exhaustive-extension path: per recipe the
// best-scoring passing extension goes to cookable, else its best
// overall extension to near-miss.
func exploreCombos(
	recipes []*luadex.CookingRecipe,
	slots map[string]int,
	total, remaining int,
	avail []string,
	combos []map[string]int,
	tagsByItem map[string]map[string]float64,
) *ExploreResult {
	var cookable []*Row
	var nearMiss []*Row

	for _, r := range recipes {
		req := extractRequirements(r)
		var bestOK, bestAny *Row
		for _, combo := range combos {
			full := mergeSlots(slots, combo)
			ev := evaluateRecipe(r, full, tagsByItem)
			row := buildRow(r, ev, req)
			if bestAny == nil || row.Score > bestAny.Score {
				bestAny = row
			}
			if ev.ok && (bestOK == nil || row.Score > bestOK.Score) {
				bestOK = row
			}
		}
		if bestOK != nil {
			cookable = append(cookable, bestOK)
		} else if bestAny != nil {
			nearMiss = append(nearMiss, bestAny)
		}
	}

	sortRowsByScore(cookable)
	if len(cookable) > ExploreLimit {
		cookable = cookable[:ExploreLimit]
	}

	pool := make([]string, 0, len(slots)+len(avail))
	for id := range slots {
		pool = append(pool, id)
	}
	pool = append(pool, avail...)
	poolNames, poolTags := collectPool(pool, tagsByItem)
	nearSorted, nearTiers := rankNearMiss(nearMiss, poolNames, poolTags, tagsByItem, ExploreLimit)

	return &ExploreResult{
		OK:            true,
		Total:         total,
		Remaining:     remaining,
		Slots:         slots,
		Available:     avail,
		Cookable:      cookable,
		NearMiss:      nearSorted,
		NearMissTiers: nearTiers,
		Formula:       Formula,
	}
}

// exploreSnapshot runs the feasibility path: a rule recipe stays
// cookable if it is passing or its unmet constraints could close within
// the remaining slots.
func exploreSnapshot(
	recipes []*luadex.CookingRecipe,
	slots map[string]int,
	total, remaining int,
	avail []string,
	availSet map[string]bool,
	tagsByItem map[string]map[string]float64,
	maxByTag map[string]float64,
) *ExploreResult {
	var cookable []*Row
	var nearMiss []*Row

	var namesFilter map[string]bool
	if len(availSet) > 0 {
		namesFilter = availSet
	}

	for _, r := range recipes {
		ev := evaluateRecipe(r, slots, tagsByItem)
		row := buildRow(r, ev, extractRequirements(r))

		switch {
		case ev.ruleMode == "rule":
			possible := ev.ok || possibleWithRemaining(
				recipeConstraints(r),
				ev.tagsTotal, ev.namesTotal,
				remaining, maxByTag, namesFilter,
			)
			if possible {
				cookable = append(cookable, row)
			} else {
				nearMiss = append(nearMiss, row)
			}
		case ev.ruleMode == "card" && total == SlotTotal:
			if ev.ok {
				cookable = append(cookable, row)
			} else {
				nearMiss = append(nearMiss, row)
			}
		default:
			nearMiss = append(nearMiss, row)
		}
	}

	sortRowsByScore(cookable)
	if len(cookable) > ExploreLimit {
		cookable = cookable[:ExploreLimit]
	}

	pool := make([]string, 0, len(slots)+len(avail))
	for id := range slots {
		pool = append(pool, id)
	}
	pool = append(pool, avail...)
	poolNames, poolTags := collectPool(pool, tagsByItem)
	nearSorted, nearTiers := rankNearMiss(nearMiss, poolNames, poolTags, tagsByItem, ExploreLimit)

	return &ExploreResult{
		OK:            true,
		Total:         total,
		Remaining:     remaining,
		Slots:         slots,
		Available:     avail,
		Cookable:      cookable,
		NearMiss:      nearSorted,
		NearMissTiers: nearTiers,
		Formula:       Formula,
	}
}
