package cookpot

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/luadex/luadex"
)

// compare applies a constraint operator with the evaluator's epsilon on
// equality and strict-inequality boundaries.
func compare(lhs float64, op string, rhs float64) bool {
	switch op {
	case luadex.OpEq:
		return math.Abs(lhs-rhs) <= epsilon
	case luadex.OpNe:
		return math.Abs(lhs-rhs) > epsilon
	case luadex.OpGt:
		return lhs > rhs+epsilon
	case luadex.OpGe:
		return lhs+epsilon >= rhs
	case luadex.OpLt:
		return lhs+epsilon < rhs
	case luadex.OpLe:
		return lhs <= rhs+epsilon
	}
	return true
}

// constraintDelta measures how far a failing comparison is from
// holding, with the direction of the miss.
func constraintDelta(lhs float64, op string, rhs float64) (float64, string) {
	switch op {
	case luadex.OpGt, luadex.OpGe:
		return math.Max(0, rhs-lhs), "under"
	case luadex.OpLt, luadex.OpLe:
		return math.Max(0, lhs-rhs), "over"
	case luadex.OpEq:
		return math.Abs(lhs - rhs), "mismatch"
	case luadex.OpNe:
		if math.Abs(lhs-rhs) > epsilon {
			return 0, "equal"
		}
		return 1, "equal"
	}
	return 0, "unknown"
}

// constraintValue coerces a constraint RHS to a number; nil counts as
// zero. The second return is false for non-numeric barewords.
func constraintValue(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func isPositiveRequirement(op string, rhs float64, ok bool) bool {
	if !ok {
		return false
	}
	switch op {
	case luadex.OpGt, luadex.OpGe:
		return rhs >= 0
	case luadex.OpEq:
		return rhs > 0
	}
	return false
}

// filterConstraints returns a copy of cons with redundant rows dropped:
// positive tag constraints shadowed by an explicit `not tags.X` row,
// and positive name constraints covered by a names_sum over the same
// ids.
func filterConstraints(cons *luadex.Constraints) *luadex.Constraints {
	out := &luadex.Constraints{
		Raw:      cons.Raw,
		Tags:     append([]luadex.Constraint(nil), cons.Tags...),
		Names:    append([]luadex.Constraint(nil), cons.Names...),
		NamesAny: append([]luadex.NamesAny(nil), cons.NamesAny...),
		NamesSum: append([]luadex.NamesSum(nil), cons.NamesSum...),
		Unparsed: append([]string(nil), cons.Unparsed...),
	}

	notKeys := map[string]bool{}
	for _, c := range out.Tags {
		if c.Key != "" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Text)), "not ") {
			notKeys[c.Key] = true
		}
	}
	if len(notKeys) > 0 {
		var filtered []luadex.Constraint
		for _, c := range out.Tags {
			isNotText := strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Text)), "not ")
			if notKeys[c.Key] && !isNotText && (c.Op == luadex.OpGt || c.Op == luadex.OpGe) {
				continue
			}
			filtered = append(filtered, c)
		}
		out.Tags = filtered
	}

	sumKeys := map[string]bool{}
	for _, g := range out.NamesSum {
		for _, k := range g.Keys {
			sumKeys[strings.ToLower(strings.TrimSpace(k))] = true
		}
	}
	if len(sumKeys) > 0 && len(out.Names) > 0 {
		var filtered []luadex.Constraint
		for _, c := range out.Names {
			rhs, okRHS := constraintValue(c.Value)
			if sumKeys[c.Key] && isPositiveRequirement(c.Op, rhs, okRHS) {
				continue
			}
			filtered = append(filtered, c)
		}
		out.Names = filtered
	}

	return out
}

// evaluation is the internal result of one recipe evaluation.
type evaluation struct {
	ok         bool
	missing    []Missing
	warnings   []string
	tagsTotal  map[string]float64
	namesTotal map[string]int
	ruleMode   string
}

// evaluateConstraints checks every constraint group against the totals.
// A recipe passes iff every names_any group has a present id, every
// names_sum meets its minimum, and every tag/name comparison holds.
func evaluateConstraints(
	cons *luadex.Constraints,
	tagsTotal map[string]float64,
	namesTotal map[string]int,
) (bool, []Missing, []string) {
	var missing []Missing
	var warnings []string

	for _, g := range cons.NamesAny {
		keys := cleanKeys(g.Keys)
		if len(keys) == 0 {
			warnings = append(warnings, warnText(g.Text, "names_any_unparsed"))
			continue
		}
		if anyPresent(keys, namesTotal) {
			continue
		}
		missing = append(missing, Missing{
			Type:      "name_any",
			Key:       strings.Join(keys, "|"),
			Options:   keys,
			Op:        luadex.OpGt,
			Required:  1,
			Actual:    0,
			Delta:     1,
			Direction: "under",
			Text:      g.Text,
		})
	}

	for _, g := range cons.NamesSum {
		keys := cleanKeys(g.Keys)
		if len(keys) == 0 {
			warnings = append(warnings, warnText(g.Text, "names_sum_unparsed"))
			continue
		}
		min := float64(g.Min)
		total := float64(sumOver(keys, namesTotal))
		if total+epsilon < min {
			missing = append(missing, Missing{
				Type:      "name_sum",
				Key:       strings.Join(keys, "|"),
				Options:   keys,
				Required:  min,
				Actual:    total,
				Delta:     min - total,
				Direction: "under",
				Text:      g.Text,
			})
		}
	}

	for _, c := range cons.Tags {
		rhs, okRHS := constraintValue(c.Value)
		if c.Key == "" || !okRHS {
			warnings = append(warnings, warnText(c.Text, "tag_constraint_unparsed"))
			continue
		}
		lhs := tagsTotal[c.Key]
		if !compare(lhs, c.Op, rhs) {
			delta, direction := constraintDelta(lhs, c.Op, rhs)
			missing = append(missing, Missing{
				Type: "tag", Key: c.Key, Op: c.Op,
				Required: rhs, Actual: lhs, Delta: delta,
				Direction: direction, Text: c.Text,
			})
		}
	}

	for _, c := range cons.Names {
		rhs, okRHS := constraintValue(c.Value)
		if c.Key == "" || !okRHS {
			warnings = append(warnings, warnText(c.Text, "name_constraint_unparsed"))
			continue
		}
		lhs := float64(namesTotal[c.Key])
		if !compare(lhs, c.Op, rhs) {
			delta, direction := constraintDelta(lhs, c.Op, rhs)
			missing = append(missing, Missing{
				Type: "name", Key: c.Key, Op: c.Op,
				Required: rhs, Actual: lhs, Delta: delta,
				Direction: direction, Text: c.Text,
			})
		}
	}

	return len(missing) == 0, missing, warnings
}

// evaluateRecipe evaluates one recipe against the slots: by its rule
// constraints when it has any, else by its card ingredients, else it
// cannot match.
func evaluateRecipe(
	r *luadex.CookingRecipe,
	slots map[string]int,
	tagsByItem map[string]map[string]float64,
) *evaluation {
	if cons := recipeConstraints(r); cons != nil {
		tagsTotal := sumTags(slots, tagsByItem)
		namesTotal := sumNames(slots)
		ok, missing, warnings := evaluateConstraints(cons, tagsTotal, namesTotal)
		return &evaluation{
			ok: ok, missing: missing, warnings: warnings,
			tagsTotal: tagsTotal, namesTotal: namesTotal, ruleMode: "rule",
		}
	}

	if len(r.CardIngredients) > 0 {
		var missing []Missing
		for _, ci := range r.CardIngredients {
			have := float64(slots[ci.Item])
			if have+epsilon < ci.Count {
				missing = append(missing, Missing{
					Type: "name", Key: ci.Item, Op: luadex.OpGe,
					Required: ci.Count, Actual: have, Delta: ci.Count - have,
					Direction: "under",
				})
			}
		}
		return &evaluation{
			ok: len(missing) == 0, missing: missing,
			namesTotal: sumNames(slots), ruleMode: "card",
		}
	}

	return &evaluation{
		warnings:   []string{"no_rule_or_card_ingredients"},
		namesTotal: sumNames(slots), ruleMode: "none",
	}
}

// buildConditions renders every constraint (or card row) with its
// actual value for UI display.
func buildConditions(
	r *luadex.CookingRecipe,
	tagsTotal map[string]float64,
	namesTotal map[string]int,
) []Condition {
	var out []Condition

	if cons := recipeConstraints(r); cons != nil {
		for _, g := range cons.NamesAny {
			keys := cleanKeys(g.Keys)
			if len(keys) == 0 {
				continue
			}
			ok := anyPresent(keys, namesTotal)
			actual := 0.0
			if ok {
				actual = 1
			}
			out = append(out, Condition{
				Type: "name_any", Options: keys, Op: "any",
				Required: 1, Actual: actual, OK: ok,
			})
		}
		for _, g := range cons.NamesSum {
			keys := cleanKeys(g.Keys)
			if len(keys) == 0 {
				continue
			}
			total := float64(sumOver(keys, namesTotal))
			min := float64(g.Min)
			out = append(out, Condition{
				Type: "name_sum", Options: keys, Op: luadex.OpGe,
				Required: min, Actual: total, OK: total+epsilon >= min,
			})
		}
		for _, c := range cons.Names {
			rhs, okRHS := constraintValue(c.Value)
			if c.Key == "" || !okRHS {
				continue
			}
			actual := float64(namesTotal[c.Key])
			out = append(out, Condition{
				Type: "name", Key: c.Key, Op: c.Op,
				Required: rhs, Actual: actual, OK: compare(actual, c.Op, rhs),
			})
		}
		for _, c := range cons.Tags {
			rhs, okRHS := constraintValue(c.Value)
			if c.Key == "" || !okRHS {
				continue
			}
			actual := tagsTotal[c.Key]
			out = append(out, Condition{
				Type: "tag", Key: c.Key, Op: c.Op,
				Required: rhs, Actual: actual, OK: compare(actual, c.Op, rhs),
			})
		}
		return out
	}

	for _, ci := range r.CardIngredients {
		actual := float64(namesTotal[ci.Item])
		out = append(out, Condition{
			Type: "name", Key: ci.Item, Op: luadex.OpGe,
			Required: ci.Count, Actual: actual, OK: actual+epsilon >= ci.Count,
		})
	}
	return out
}

// requirements are the positive needs of a recipe, used by near-miss
// classification.
type requirements struct {
	names  []string
	groups [][]string
	tags   []string
}

func extractRequirements(r *luadex.CookingRecipe) requirements {
	nameSet := map[string]bool{}
	tagSet := map[string]bool{}
	var groups [][]string

	for _, ci := range r.CardIngredients {
		if ci.Count > 0 && ci.Item != "" {
			nameSet[ci.Item] = true
		}
	}

	if cons := recipeConstraints(r); cons != nil {
		for _, c := range cons.Names {
			rhs, okRHS := constraintValue(c.Value)
			if c.Key != "" && isPositiveRequirement(c.Op, rhs, okRHS) {
				nameSet[c.Key] = true
			}
		}
		for _, g := range cons.NamesAny {
			if keys := cleanKeys(g.Keys); len(keys) > 0 {
				groups = append(groups, keys)
			}
		}
		for _, g := range cons.NamesSum {
			if keys := cleanKeys(g.Keys); len(keys) > 0 {
				groups = append(groups, keys)
			}
		}
		for _, c := range cons.Tags {
			rhs, okRHS := constraintValue(c.Value)
			if c.Key != "" && isPositiveRequirement(c.Op, rhs, okRHS) {
				tagSet[c.Key] = true
			}
		}
	}

	return requirements{
		names:  sortedSet(nameSet),
		groups: groups,
		tags:   sortedSet(tagSet),
	}
}

// scoreRecipe computes score and penalty from the missing list. Passing
// recipes have an empty list, so their penalty is zero and the score is
// the full priority*1000 + weight*100.
func scoreRecipe(priority, weight float64, missing []Missing) (float64, float64) {
	penalty := 0.0
	for _, m := range missing {
		switch m.Type {
		case "tag":
			penalty += m.Delta * TagPenalty
		case "name", "name_any":
			penalty += m.Delta * NamePenalty
		}
	}
	return priority*1000 + weight*100 - penalty, penalty
}

// possibleWithRemaining reports whether the unmet constraints could
// still be satisfied given the free slots: remaining name counts for
// name constraints, and remaining slots times the per-tag maximum
// weight for tag constraints. availableNames, when non-nil, restricts
// which ids the free slots can supply.
func possibleWithRemaining(
	cons *luadex.Constraints,
	tagsTotal map[string]float64,
	namesTotal map[string]int,
	remaining int,
	maxByTag map[string]float64,
	availableNames map[string]bool,
) bool {
	rem := float64(remaining)
	if rem < 0 {
		rem = 0
	}

	for _, g := range cons.NamesAny {
		keys := cleanKeys(g.Keys)
		if len(keys) == 0 || anyPresent(keys, namesTotal) {
			continue
		}
		if availableNames != nil {
			if !anyIn(keys, availableNames) {
				return false
			}
		} else if remaining <= 0 {
			return false
		}
	}

	for _, g := range cons.NamesSum {
		keys := cleanKeys(g.Keys)
		if len(keys) == 0 {
			continue
		}
		min := float64(g.Min)
		total := float64(sumOver(keys, namesTotal))
		if total >= min-epsilon {
			continue
		}
		if availableNames != nil && !anyIn(keys, availableNames) {
			return false
		}
		if total+rem+epsilon < min {
			return false
		}
	}

	for _, c := range cons.Tags {
		rhs, okRHS := constraintValue(c.Value)
		if c.Key == "" || !okRHS {
			continue
		}
		lhs := tagsTotal[c.Key]
		maxAdd := maxByTag[c.Key] * rem
		maxPossible := lhs + maxAdd
		switch c.Op {
		case luadex.OpGt, luadex.OpGe:
			if maxPossible+epsilon < rhs {
				return false
			}
		case luadex.OpLt, luadex.OpLe:
			if lhs > rhs+epsilon {
				return false
			}
		case luadex.OpEq:
			if rhs < lhs-epsilon || rhs > maxPossible+epsilon {
				return false
			}
		case luadex.OpNe:
			if math.Abs(lhs-rhs) <= epsilon && maxAdd <= epsilon {
				return false
			}
		}
	}

	for _, c := range cons.Names {
		rhs, okRHS := constraintValue(c.Value)
		if c.Key == "" || !okRHS {
			continue
		}
		if availableNames != nil && rhs > 0 {
			switch c.Op {
			case luadex.OpGt, luadex.OpGe, luadex.OpEq:
				if namesTotal[c.Key] == 0 && !availableNames[c.Key] {
					return false
				}
			}
		}
		lhs := float64(namesTotal[c.Key])
		maxPossible := lhs + rem
		switch c.Op {
		case luadex.OpGt, luadex.OpGe:
			if maxPossible+epsilon < rhs {
				return false
			}
		case luadex.OpLt, luadex.OpLe:
			if lhs > rhs+epsilon {
				return false
			}
		case luadex.OpEq:
			if rhs < lhs-epsilon || rhs > maxPossible+epsilon {
				return false
			}
		case luadex.OpNe:
			if math.Abs(lhs-rhs) <= epsilon && remaining <= 0 {
				return false
			}
		}
	}

	return true
}

func cleanKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func anyPresent(keys []string, namesTotal map[string]int) bool {
	for _, k := range keys {
		if namesTotal[k] > 0 {
			return true
		}
	}
	return false
}

func anyIn(keys []string, set map[string]bool) bool {
	for _, k := range keys {
		if set[k] {
			return true
		}
	}
	return false
}

func sumOver(keys []string, namesTotal map[string]int) int {
	total := 0
	for _, k := range keys {
		total += namesTotal[k]
	}
	return total
}

func sortedSet(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func warnText(text, fallback string) string {
	if strings.TrimSpace(text) != "" {
		return text
	}
	return fallback
}
