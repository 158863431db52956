package cookpot

import (
	"testing"

	"github.com/luadex/luadex"
)

// A sum-constrained recipe becomes cookable through
// pantry extensions supplying at least two of the summed ids.
func TestExploreWithAvailable(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("berrypie", 1, 1, "(names.meat or 0) + (names.berries or 0) >= 2"),
	}
	slots := map[string]int{"carrot": 1}
	out := Explore(recipes, slots, testIngredients(), []string{"meat", "berries"})
	if !out.OK {
		t.Fatalf("out = %#v", out)
	}
	if out.Remaining != 3 {
		t.Errorf("remaining = %d", out.Remaining)
	}
	if len(out.Cookable) != 1 || out.Cookable[0].Name != "berrypie" {
		t.Fatalf("cookable = %#v", out.Cookable)
	}
	// the best extension passes, so the reported row carries no penalty
	if !out.Cookable[0].OK || out.Cookable[0].Penalty != 0 {
		t.Errorf("best row = %#v", out.Cookable[0])
	}
}

func TestExploreUnreachableWithAvailable(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("honeydrop", 1, 1, "names.honey >= 1"),
	}
	out := Explore(recipes, map[string]int{"carrot": 1}, testIngredients(), []string{"meat", "berries"})
	if len(out.Cookable) != 0 {
		t.Errorf("honey is not in the pantry: %#v", out.Cookable)
	}
	if len(out.NearMiss) != 1 {
		t.Errorf("near miss = %#v", out.NearMiss)
	}
}

func TestExploreArity(t *testing.T) {
	out := Explore(standardRecipes(), map[string]int{"meat": 5}, testIngredients(), nil)
	if out.OK || out.Error != "cookpot_requires_max_4_items" || out.Total != 5 {
		t.Errorf("out = %#v", out)
	}
}

// Past the combinatorial cap the explorer falls back to the
// feasibility path, and everything in cookable is passing or could
// pass within the remaining additions.
func TestExploreComboCapFallback(t *testing.T) {
	old := MaxAvailableCombos
	MaxAvailableCombos = 5
	defer func() { MaxAvailableCombos = old }()

	recipes := []*luadex.CookingRecipe{
		ruleRecipe("meatballs", 0, 1, "tags.meat >= 1 and tags.inedible == 0"),
		ruleRecipe("megameat", 0, 1, "tags.meat >= 9"),
		ruleRecipe("impossible", 0, 1, "tags.veggie == 0"),
	}
	// 6 pantry items choose 3 = 56 multisets > 5: snapshot path
	avail := []string{"meat", "berries", "carrot", "honey", "twigs", "monstermeat"}
	out := Explore(recipes, map[string]int{"carrot": 1}, testIngredients(), avail)
	if !out.OK {
		t.Fatalf("out = %#v", out)
	}

	names := map[string]bool{}
	for _, row := range out.Cookable {
		names[row.Name] = true
	}
	if !names["meatballs"] {
		t.Error("meatballs should be feasible with 3 free slots")
	}
	// max meat weight is 1, 3 slots cannot reach 9
	if names["megameat"] {
		t.Error("megameat cannot be reached and must not be cookable")
	}
	// veggie is already 1 from the slotted carrot; == 0 cannot recover
	if names["impossible"] {
		t.Error("equality already exceeded must not be cookable")
	}
}

func TestExploreSnapshotNoAvailable(t *testing.T) {
	recipes := []*luadex.CookingRecipe{
		ruleRecipe("meatballs", 0, 1, "tags.meat >= 1 and tags.inedible == 0"),
		ruleRecipe("overfull", 0, 1, "tags.inedible <= 0"),
	}
	out := Explore(recipes, map[string]int{"twigs": 1}, testIngredients(), nil)
	if !out.OK {
		t.Fatalf("out = %#v", out)
	}

	names := map[string]bool{}
	for _, row := range out.Cookable {
		names[row.Name] = true
	}
	// inedible is already 1; meatballs requires == 0, unreachable by adding
	if names["meatballs"] {
		t.Error("meatballs cannot recover from inedible == 1")
	}
	if names["overfull"] {
		t.Error("overfull cannot recover from inedible over bound")
	}
}

func TestExploreFullPotBehavesLikeSimulate(t *testing.T) {
	slots := map[string]int{"meat": 2, "carrot": 2}
	out := Explore(standardRecipes(), slots, testIngredients(), nil)
	if out.Remaining != 0 {
		t.Fatalf("remaining = %d", out.Remaining)
	}
	var got []string
	for _, row := range out.Cookable {
		got = append(got, row.Name)
	}
	if len(got) != 1 || got[0] != "meatballs" {
		t.Errorf("cookable = %#v", got)
	}
}

func TestBuildSlotCombos(t *testing.T) {
	combos, ok := buildSlotCombos([]string{"a", "b"}, 2, 100)
	if !ok || len(combos) != 3 {
		// aa, ab, bb
		t.Errorf("combos = %#v ok=%v", combos, ok)
	}

	if _, ok := buildSlotCombos([]string{"a", "b", "c"}, 3, 5); ok {
		t.Error("cap not applied (10 multisets > 5)")
	}

	combos, ok = buildSlotCombos(nil, 0, 10)
	if !ok || len(combos) != 1 || len(combos[0]) != 0 {
		t.Errorf("zero-remaining combos = %#v", combos)
	}
}

func TestComboCount(t *testing.T) {
	tests := []struct{ n, k, want int }{
		{2, 2, 3},
		{3, 3, 10},
		{4, 2, 10},
		{1, 4, 1},
		{0, 2, 0},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := comboCount(tt.n, tt.k); got != tt.want {
			t.Errorf("comboCount(%d, %d) = %d, want %d", tt.n, tt.k, got, tt.want)
		}
	}
}
