// Package cookpot decides which recipe a multiset of slotted
// ingredients produces. It evaluates decomposed rule constraints
// against ingredient-name counts and tag-weight sums, ranks passing
// recipes by the priority/weight/penalty formula, explores pantry
// extensions of a partial pot, and classifies near-misses into
// relevance tiers for display.
//
// Simulate and Explore are pure functions of the recipe list and the
// inputs; they never mutate the catalog and are safe to call
// concurrently.
package cookpot

import "github.com/luadex/luadex"

// Scoring and ranking parameters. The penalty weights make one missing
// named ingredient outweigh several missing tag units.
const (
	TagPenalty  = 10.0
	NamePenalty = 50.0

	// Formula is echoed in every result for UI display.
	Formula = "score = priority*1000 + weight*100 - missing_penalty"

	// Wetgoop is the sentinel recipe produced when nothing matches.
	Wetgoop = "wetgoop"

	// SlotTotal is the required number of filled cook-pot slots.
	SlotTotal = 4

	epsilon = 1e-9
)

// MaxAvailableCombos caps the multiset enumeration in Explore. Beyond
// the cap the semantics change from exhaustive extension to
// single-snapshot feasibility.
var MaxAvailableCombos = 15000

// Filler tags and ids are excluded from near-miss "hit" counts.
var (
	FillerTags  = map[string]bool{"inedible": true, "frozen": true, "dried": true}
	FillerNames = map[string]bool{"twigs": true, "ice": true, "lightninggoathorn": true, "boneshard": true}
)

// Missing describes one unmet constraint of a recipe evaluation.
type Missing struct {
	Type      string   `json:"type"` // tag | name | name_any | name_sum
	Key       string   `json:"key"`
	Options   []string `json:"options,omitempty"`
	Op        string   `json:"op,omitempty"`
	Required  float64  `json:"required"`
	Actual    float64  `json:"actual"`
	Delta     float64  `json:"delta"`
	Direction string   `json:"direction"`
	Text      string   `json:"text,omitempty"`
}

// Condition is one evaluated constraint row, met or not, for display.
type Condition struct {
	Type     string   `json:"type"`
	Key      string   `json:"key,omitempty"`
	Options  []string `json:"options,omitempty"`
	Op       string   `json:"op"`
	Required float64  `json:"required"`
	Actual   float64  `json:"actual"`
	OK       bool     `json:"ok"`
}

// Row is the per-recipe evaluation result.
type Row struct {
	Name         string         `json:"name"`
	Priority     float64        `json:"priority"`
	Weight       float64        `json:"weight"`
	Score        float64        `json:"score"`
	Penalty      float64        `json:"penalty"`
	OK           bool           `json:"ok"`
	RuleMode     string         `json:"rule_mode"` // rule | card | none
	Missing      []Missing      `json:"missing,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
	ReqNames     []string       `json:"req_names,omitempty"`
	ReqGroups    [][]string     `json:"req_name_groups,omitempty"`
	ReqTags      []string       `json:"req_tags,omitempty"`
	Conditions   []Condition    `json:"conditions,omitempty"`
	ConditionsOK bool           `json:"conditions_ok"`
	Attrs        map[string]any `json:"attrs,omitempty"`

	// Near-miss ranking annotations, set by rankNearMiss.
	NearTier             string `json:"near_tier,omitempty"`
	NearFeatureHits      int    `json:"near_feature_hits,omitempty"`
	NearTagHits          int    `json:"near_tag_hits,omitempty"`
	NearMissingNonFiller int    `json:"near_missing_non_filler,omitempty"`
}

// Candidate is a compact passing-recipe reference.
type Candidate struct {
	Name     string  `json:"name"`
	Priority float64 `json:"priority"`
	Weight   float64 `json:"weight"`
}

// Tier groups ranked near-miss rows by their tier key.
type Tier struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Items []*Row `json:"items"`
}

// SimulateResult is the outcome of a 4-slot simulation.
type SimulateResult struct {
	OK            bool           `json:"ok"`
	Error         string         `json:"error,omitempty"`
	Total         int            `json:"total,omitempty"`
	Result        string         `json:"result,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Slots         map[string]int `json:"slots"`
	Candidates    []Candidate    `json:"candidates"`
	Cookable      []*Row         `json:"cookable"`
	NearMiss      []*Row         `json:"near_miss"`
	NearMissTiers []Tier         `json:"near_miss_tiers,omitempty"`
	Formula       string         `json:"formula,omitempty"`
}

// ExploreResult is the outcome of a pantry exploration.
type ExploreResult struct {
	OK            bool           `json:"ok"`
	Error         string         `json:"error,omitempty"`
	Total         int            `json:"total"`
	Remaining     int            `json:"remaining"`
	Slots         map[string]int `json:"slots"`
	Available     []string       `json:"available,omitempty"`
	Cookable      []*Row         `json:"cookable"`
	NearMiss      []*Row         `json:"near_miss"`
	NearMissTiers []Tier         `json:"near_miss_tiers,omitempty"`
	Formula       string         `json:"formula"`
}

// statValue unwraps a stat field that tuning enrichment may have
// rewritten into an expr/value map.
func statValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		if val, ok := m["value"]; ok {
			return val
		}
		if expr, ok := m["expr"]; ok {
			return expr
		}
	}
	return v
}

// recipeAttrs flattens the display attributes of a recipe.
func recipeAttrs(r *luadex.CookingRecipe) map[string]any {
	return map[string]any{
		"foodtype":   r.Foodtype,
		"hunger":     statValue(r.Hunger),
		"health":     statValue(r.Health),
		"sanity":     statValue(r.Sanity),
		"perishtime": statValue(r.Perishtime),
		"cooktime":   statValue(r.Cooktime),
	}
}

// recipeConstraints returns the evaluable constraints of a recipe, with
// redundant positive rows filtered, or nil when the recipe has no
// decomposed rule (the evaluator then falls back to card ingredients).
func recipeConstraints(r *luadex.CookingRecipe) *luadex.Constraints {
	if r == nil || r.Rule == nil || r.Rule.Constraints.Empty() {
		return nil
	}
	return filterConstraints(r.Rule.Constraints)
}
