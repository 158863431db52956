package extract

import (
	"reflect"
	"testing"
)

const preparedFoodsSrc = `
local foods =
{
    meatballs =
    {
        test = function(cooker, names, tags)
            return tags.meat >= 0.5 and not tags.inedible
        end,
        priority = -1,
        weight = 1,
        foodtype = FOODTYPE.MEAT,
        health = TUNING.HEALING_SMALL,
        hunger = TUNING.CALORIES_SMALL * 5 / 8,
        perishtime = TUNING.PERISH_MED,
        sanity = TUNING.SANITY_TINY,
        cooktime = 0.25,
        card_def = { ingredients = { { "meat", 1 }, { "berries", 3 } } },
        tags = { "masterfood" },
    },

    bonestew =
    {
        test = function(cooker, names, tags)
            return tags.meat >= 3 and not tags.inedible
        end,
        priority = 0,
        weight = 1,
        foodtype = "MEAT",
        hunger = TUNING.CALORIES_LARGE * 4,
        cooktime = 1,
        card_def = { ingredients = { { "meat", 2 }, { "smallmeat", 0 } } },
    },

    -- a recipe that is only a card, no rule
    simplefood =
    {
        priority = 10,
        weight = 0.5,
        hunger = 25,
        card_def = { ingredients = { { "carrot", 4 } } },
    },
}

return foods
`

func TestParseCookingRecipes(t *testing.T) {
	recipes := ParseCookingRecipes(preparedFoodsSrc, "scripts/preparedfoods.lua")
	if len(recipes) != 3 {
		t.Fatalf("got %d recipes, want 3", len(recipes))
	}

	mb := recipes["meatballs"]
	if mb == nil {
		t.Fatal("meatballs missing")
	}
	if mb.Priority != -1 || mb.Weight != 1 {
		t.Errorf("priority/weight = %g/%g", mb.Priority, mb.Weight)
	}
	if mb.Foodtype != "MEAT" {
		t.Errorf("foodtype = %q", mb.Foodtype)
	}
	if mb.Cooktime != 0.25 {
		t.Errorf("cooktime = %v", mb.Cooktime)
	}
	if mb.Hunger != "TUNING.CALORIES_SMALL * 5 / 8" {
		t.Errorf("hunger = %v", mb.Hunger)
	}
	if !reflect.DeepEqual(mb.Tags, []string{"masterfood"}) {
		t.Errorf("tags = %#v", mb.Tags)
	}

	wantCard := []struct {
		item  string
		count float64
	}{{"meat", 1}, {"berries", 3}}
	if len(mb.CardIngredients) != len(wantCard) {
		t.Fatalf("card = %#v", mb.CardIngredients)
	}
	for i, w := range wantCard {
		if mb.CardIngredients[i].Item != w.item || mb.CardIngredients[i].Count != w.count {
			t.Errorf("card[%d] = %#v", i, mb.CardIngredients[i])
		}
	}

	if mb.Rule == nil || mb.Rule.Kind != "test_return" {
		t.Fatalf("rule = %#v", mb.Rule)
	}
	if mb.Rule.Expr != "tags.meat >= 0.5 and not tags.inedible" {
		t.Errorf("rule expr = %q", mb.Rule.Expr)
	}
	if len(mb.Rule.Constraints.Tags) != 2 {
		t.Errorf("rule constraints = %#v", mb.Rule.Constraints)
	}

	// non-positive card counts are dropped
	bs := recipes["bonestew"]
	if len(bs.CardIngredients) != 1 || bs.CardIngredients[0].Item != "meat" {
		t.Errorf("bonestew card = %#v", bs.CardIngredients)
	}

	sf := recipes["simplefood"]
	if sf.Rule != nil {
		t.Errorf("simplefood rule = %#v", sf.Rule)
	}
	if sf.Priority != 10 {
		t.Errorf("simplefood priority = %g", sf.Priority)
	}
}

func TestParseCookingRecipesNoFoodsTable(t *testing.T) {
	if got := ParseCookingRecipes("local x = 1", "f.lua"); len(got) != 0 {
		t.Errorf("got %d recipes from non-food source", len(got))
	}
}

func TestMergeCookingRecipesPrefabWins(t *testing.T) {
	base := ParseCookingRecipes(preparedFoodsSrc, "scripts/preparedfoods.lua")
	extra := ParseCookingRecipes(`
local foods = {
    meatballs = { priority = 99, weight = 2, hunger = 1 },
}
`, "scripts/prefabs/preparedfoods.lua")

	merged := MergeCookingRecipes(base, extra)
	if merged["meatballs"].Priority != 99 {
		t.Errorf("prefab-side recipe did not win: %#v", merged["meatballs"])
	}
	if _, ok := merged["bonestew"]; !ok {
		t.Error("base-only recipe lost in merge")
	}
}

func TestIterNamedTableBlocks(t *testing.T) {
	body := `
a = { x = 1 },
-- comment with b = { fake }
s = "c = { fake }",
b = {
    nested = { deep = true },
},
`
	blocks := iterNamedTableBlocks(body)
	var names []string
	for _, b := range blocks {
		names = append(names, b.Name)
	}
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("names = %#v", names)
	}
}
