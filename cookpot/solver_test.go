package cookpot

import (
	"testing"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/extract"
)

func ruleRecipe(name string, priority, weight float64, expr string) *luadex.CookingRecipe {
	return &luadex.CookingRecipe{
		Name:     name,
		Priority: priority,
		Weight:   weight,
		Rule: &luadex.Rule{
			Kind:        "test_return",
			Expr:        expr,
			Constraints: extract.DecomposeRule(expr),
		},
	}
}

func testIngredients() map[string]*luadex.CookingIngredient {
	return map[string]*luadex.CookingIngredient{
		"monstermeat": {ID: "monstermeat", Tags: map[string]float64{"meat": 1, "monster": 1}},
		"meat":        {ID: "meat", Tags: map[string]float64{"meat": 1}},
		"berries":     {ID: "berries", Tags: map[string]float64{"fruit": 1, "veggie": 0.5}},
		"carrot":      {ID: "carrot", Tags: map[string]float64{"veggie": 1}},
		"twigs":       {ID: "twigs", Tags: map[string]float64{"inedible": 1}},
		"honey":       {ID: "honey", Tags: map[string]float64{"sweetener": 1}},
	}
}

func standardRecipes() []*luadex.CookingRecipe {
	return []*luadex.CookingRecipe{
		ruleRecipe("meatballs", 0, 1, "tags.meat >= 1 and tags.inedible == 0"),
		ruleRecipe("ratatouille", 0, 1, "tags.veggie >= 0.5 and tags.meat == 0 and tags.inedible == 0"),
		ruleRecipe("wetgoop", -2, 1, "true"),
	}
}

// wetgoop with neither a rule nor card ingredients never passes on its
// own; the fallback path is what matters.
func wetgoopOnly() *luadex.CookingRecipe {
	return &luadex.CookingRecipe{Name: "wetgoop", Priority: -2, Weight: 1}
}

// meatballs fails on the inedible twig, nothing else passes, and the
// wetgoop sentinel wins as fallback.
func TestSimulateFallbackWetgoop(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("meatballs", 0, 1, "tags.meat >= 1 and tags.inedible == 0"),
		wetgoopOnly(),
	}
	slots := map[string]int{"monstermeat": 1, "berries": 1, "carrot": 1, "twigs": 1}

	out := Simulate(recipes, slots, testIngredients())
	if !out.OK {
		t.Fatalf("ok = false: %#v", out)
	}
	if out.Result != "wetgoop" || out.Reason != "fallback_wetgoop" {
		t.Errorf("result = %q reason = %q", out.Result, out.Reason)
	}
}

func TestSimulateMatch(t *testing.T) {
	slots := map[string]int{"meat": 1, "berries": 1, "carrot": 2}
	out := Simulate(standardRecipes(), slots, testIngredients())
	if !out.OK || out.Result != "meatballs" {
		t.Fatalf("result = %#v", out)
	}
	if out.Reason != "matched_constraints" {
		t.Errorf("reason = %q", out.Reason)
	}
	if len(out.Cookable) == 0 || out.Cookable[0].Name != "meatballs" {
		t.Errorf("cookable = %#v", out.Cookable)
	}
	if out.Formula != Formula {
		t.Errorf("formula = %q", out.Formula)
	}
}

// Any slot total other than 4 is rejected.
func TestSimulateArity(t *testing.T) {
	for _, total := range []int{0, 1, 2, 3, 5} {
		slots := map[string]int{}
		if total > 0 {
			slots["meat"] = total
		}
		out := Simulate(standardRecipes(), slots, testIngredients())
		if out.OK || out.Error != "cookpot_requires_4_items" {
			t.Errorf("total %d: %#v", total, out)
		}
		if out.Total != total {
			t.Errorf("total field = %d, want %d", out.Total, total)
		}
	}
}

// A three-item pot reports the offending total.
func TestSimulateWrongArityThree(t *testing.T) {
	out := Simulate(standardRecipes(), map[string]int{"meat": 3}, testIngredients())
	if out.OK || out.Error != "cookpot_requires_4_items" || out.Total != 3 {
		t.Errorf("out = %#v", out)
	}
}

// A passing recipe scores exactly p*1000 + w*100, and ties
// break by (priority, weight, name).
func TestScoreFormulaAndTieBreak(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("alpha", 2, 3, "tags.meat >= 1"),
		ruleRecipe("bravo", 2, 5, "tags.meat >= 1"),
		ruleRecipe("charlie", 1, 9, "tags.meat >= 1"),
	}
	slots := map[string]int{"meat": 4}
	out := Simulate(recipes, slots, testIngredients())
	if !out.OK {
		t.Fatal("no match")
	}
	if out.Result != "bravo" {
		t.Errorf("result = %q, want bravo (higher weight at equal priority)", out.Result)
	}
	for _, row := range out.Cookable {
		want := row.Priority*1000 + row.Weight*100
		if row.Score != want || row.Penalty != 0 {
			t.Errorf("row %s: score %g penalty %g, want %g / 0", row.Name, row.Score, row.Penalty, want)
		}
	}

	// name ascending on full tie
	recipes = []*luadex.CookingRecipe{
		ruleRecipe("zeta", 1, 1, "tags.meat >= 1"),
		ruleRecipe("eta", 1, 1, "tags.meat >= 1"),
	}
	out = Simulate(recipes, slots, testIngredients())
	if out.Result != "eta" {
		t.Errorf("tie result = %q, want eta", out.Result)
	}
}

func TestSimulateNearMissPenalty(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("meatballs", 0, 1, "tags.meat >= 1"),
		ruleRecipe("honeyham", 2, 1, "names.honey >= 2 and tags.meat >= 1.5"),
	}
	slots := map[string]int{"meat": 2, "berries": 2}
	out := Simulate(recipes, slots, testIngredients())
	if out.Result != "meatballs" {
		t.Fatalf("result = %q", out.Result)
	}
	if len(out.NearMiss) != 1 {
		t.Fatalf("near miss = %#v", out.NearMiss)
	}
	nm := out.NearMiss[0]
	if nm.Name != "honeyham" {
		t.Fatalf("near miss = %q", nm.Name)
	}
	// missing: names.honey short by 2 (2*50) — tags.meat 2 >= 1.5 holds
	if nm.Penalty != 100 {
		t.Errorf("penalty = %g, want 100", nm.Penalty)
	}
	if nm.Score != 2*1000+1*100-100 {
		t.Errorf("score = %g", nm.Score)
	}
}

// Near-miss rows are tiered by what kind of missing pieces they have.
func TestNearMissTiers(t *testing.T) {
	ings := testIngredients()

	// primary: requires an id that is in the pool
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("winner", 0, 1, "tags.veggie >= 0.5"),
		ruleRecipe("wants_meat_dish", 1, 1, "names.meat and tags.sweetener >= 2"),
		ruleRecipe("wants_meat_tag", 1, 1, "tags.meat >= 9"),
		ruleRecipe("wants_filler", 1, 1, "tags.inedible >= 4"),
	}
	slots := map[string]int{"meat": 1, "carrot": 2, "twigs": 1}
	out := Simulate(recipes, slots, ings)
	if !out.OK || out.Result != "winner" {
		t.Fatalf("setup broken: %#v", out)
	}

	tiers := map[string]string{}
	for _, row := range out.NearMiss {
		tiers[row.Name] = row.NearTier
	}
	if tiers["wants_meat_dish"] != "primary" {
		t.Errorf("wants_meat_dish tier = %q, want primary", tiers["wants_meat_dish"])
	}
	if tiers["wants_meat_tag"] != "secondary" {
		t.Errorf("wants_meat_tag tier = %q, want secondary", tiers["wants_meat_tag"])
	}
	if tiers["wants_filler"] != "filler" {
		t.Errorf("wants_filler tier = %q, want filler", tiers["wants_filler"])
	}

	// primary sorts before secondary before filler
	order := map[string]int{}
	for i, row := range out.NearMiss {
		order[row.Name] = i
	}
	if !(order["wants_meat_dish"] < order["wants_meat_tag"] && order["wants_meat_tag"] < order["wants_filler"]) {
		t.Errorf("near-miss order = %#v", out.NearMiss)
	}

	if len(out.NearMissTiers) != 3 {
		t.Errorf("tier groups = %#v", out.NearMissTiers)
	}
}

func TestSimulateNoMatchNoWetgoop(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("meatballs", 0, 1, "tags.meat >= 10"),
	}
	out := Simulate(recipes, map[string]int{"carrot": 4}, testIngredients())
	if out.OK || out.Error != "no_match_and_no_wetgoop" {
		t.Errorf("out = %#v", out)
	}
}

func TestCardOnlyRecipe(t *testing.T) {
	card := &luadex.CookingRecipe{
		Name: "carrotfeast", Priority: 5, Weight: 1,
		CardIngredients: []luadex.CardIngredient{{Item: "carrot", Count: 3}},
	}
	out := Simulate([]*luadex.CookingRecipe{card}, map[string]int{"carrot": 3, "meat": 1}, testIngredients())
	if !out.OK || out.Result != "carrotfeast" {
		t.Errorf("out = %#v", out)
	}

	out = Simulate([]*luadex.CookingRecipe{card, wetgoopOnly()}, map[string]int{"carrot": 2, "meat": 2}, testIngredients())
	if out.Result != "wetgoop" {
		t.Errorf("card underfilled should fall back: %#v", out)
	}
}
