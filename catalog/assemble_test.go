package catalog

import (
	"os"
	"reflect"
	"testing"

	"github.com/luadex/luadex/mount"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const twigsPrefab = `
local assets = {
    Asset("ATLAS", "images/inventoryimages/twigs.xml"),
    Asset("IMAGE", "images/inventoryimages/twigs.tex"),
}

local function fn()
    local inst = CreateEntity()
    inst:AddComponent("inventoryitem")
    inst:AddComponent("stackable")
    inst.components.stackable:SetMaxSize(TUNING.STACK_SIZE_SMALLITEM)
    return inst
end

return Prefab("twigs", fn, assets)
`

const spearPrefab = `
local function fn()
    local inst = CreateEntity()
    inst:AddComponent("inventoryitem")
    inst:AddComponent("weapon")
    inst.components.weapon:SetDamage(TUNING.SPEAR_DAMAGE)
    inst:AddComponent("finiteuses")
    inst.components.finiteuses:SetMaxUses(150)
    return inst
end

return Prefab("spear", fn)
`

const tuningLua = `
TUNING.STACK_SIZE_SMALLITEM = 40
TUNING.SPEAR_DAMAGE = 34
TUNING.CALORIES_SMALL = 12.5
`

const preparedFoods = `
local foods = {
    meatballs = {
        test = function(cooker, names, tags) return tags.meat >= 1 and tags.inedible == 0 end,
        priority = 0,
        weight = 1,
        hunger = TUNING.CALORIES_SMALL * 5,
        cooktime = 0.25,
    },
}
return foods
`

const recipes2Lua = `
Recipe2("spear", {Ingredient("twigs", 2), Ingredient("rope", TUNING.SPEAR_DAMAGE)}, TECH.NONE)
`

func testMount() mount.Map {
	return mount.Map{
		"scripts/tuning.lua":        tuningLua,
		"scripts/prefabs/twigs.lua": twigsPrefab,
		"scripts/prefabs/spear.lua": spearPrefab,
		"scripts/preparedfoods.lua": preparedFoods,
		"scripts/recipes2.lua":      recipes2Lua,
		"scripts/cooking.lua":       `AddIngredientValues({"twigs"}, {inedible = 1})`,
		"scripts/strings.lua":       `STRINGS = { NAMES = { TWIGS = "Twigs", SPEAR = "Spear" } }`,
	}
}

// A minimal prefab becomes a catalog item with
// its kind, components and image asset.
func TestBuildMinimalPrefab(t *testing.T) {
	b := NewBuilder(testMount(), Options{})
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	twigs := cat.Items["twigs"]
	if twigs == nil {
		t.Fatalf("twigs missing; items = %v", cat.ItemIDs())
	}
	if twigs.Kind != KindItem {
		t.Errorf("kind = %q", twigs.Kind)
	}
	if !reflect.DeepEqual(twigs.Components, []string{"inventoryitem", "stackable"}) {
		t.Errorf("components = %#v", twigs.Components)
	}
	if twigs.Assets["image"] != "images/inventoryimages/twigs.tex" {
		t.Errorf("assets = %#v", twigs.Assets)
	}
	if twigs.Assets["atlas"] != "images/inventoryimages/twigs.xml" {
		t.Errorf("assets = %#v", twigs.Assets)
	}
	if twigs.Name != "Twigs" {
		t.Errorf("name = %q", twigs.Name)
	}
}

func TestBuildStatInference(t *testing.T) {
	b := NewBuilder(testMount(), Options{IncludeTrace: true})
	cat, sink, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	spear := cat.Items["spear"]
	if spear == nil {
		t.Fatal("spear missing")
	}
	dmg := spear.Stats["weapon_damage"]
	if dmg == nil {
		t.Fatalf("stats = %#v", spear.Stats)
	}
	if dmg.Expr != "TUNING.SPEAR_DAMAGE" {
		t.Errorf("expr = %q", dmg.Expr)
	}
	if dmg.Value != 34.0 {
		t.Errorf("value = %v", dmg.Value)
	}
	if dmg.TraceKey != "item:spear:stat:weapon_damage" {
		t.Errorf("trace key = %q", dmg.TraceKey)
	}
	if _, ok := sink.Get("item:spear:stat:weapon_damage"); !ok {
		t.Error("trace not in sink")
	}

	uses := spear.Stats["uses_max"]
	if uses == nil || uses.Value != 150.0 {
		t.Errorf("uses = %#v", uses)
	}

	// stack size resolved through tuning
	twigs := cat.Items["twigs"]
	if st := twigs.Stats["stack_size"]; st == nil || st.Value != 40.0 {
		t.Errorf("stack_size = %#v", twigs.Stats["stack_size"])
	}
}

func TestBuildCraftEnrichment(t *testing.T) {
	b := NewBuilder(testMount(), Options{IncludeTrace: true})
	cat, sink, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	spear := cat.Craft.Recipes["spear"]
	if spear == nil {
		t.Fatal("spear recipe missing")
	}
	var twigsAmt, ropeAmt *float64
	for _, ing := range spear.Ingredients {
		switch ing.Item {
		case "twigs":
			twigsAmt = ing.AmountValue
		case "rope":
			ropeAmt = ing.AmountValue
		}
	}
	if twigsAmt == nil || *twigsAmt != 2 {
		t.Errorf("twigs amount = %v", twigsAmt)
	}
	if ropeAmt == nil || *ropeAmt != 34 {
		t.Errorf("rope amount = %v", ropeAmt)
	}
	if _, ok := sink.Get("craft:spear:ingredient:rope"); !ok {
		t.Error("craft trace missing")
	}
}

func TestBuildCookingEnrichment(t *testing.T) {
	b := NewBuilder(testMount(), Options{IncludeTrace: true})
	cat, sink, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	mb := cat.Cooking["meatballs"]
	if mb == nil {
		t.Fatal("meatballs missing")
	}
	hunger, ok := mb.Hunger.(map[string]any)
	if !ok {
		t.Fatalf("hunger = %#v", mb.Hunger)
	}
	if hunger["value"] != 62.5 {
		t.Errorf("hunger value = %v", hunger["value"])
	}
	if hunger["expr"] != "TUNING.CALORIES_SMALL * 5" {
		t.Errorf("hunger expr = %v", hunger["expr"])
	}
	if _, ok := sink.Get("cooking:meatballs:hunger"); !ok {
		t.Error("cooking trace missing")
	}
	// plain numbers stay as-is
	if mb.Cooktime != 0.25 {
		t.Errorf("cooktime = %v", mb.Cooktime)
	}
}

func TestBuildSourcesAndIngredients(t *testing.T) {
	b := NewBuilder(testMount(), Options{})
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	// spear is a craft product
	spear := cat.Items["spear"]
	if !containsStr(spear.Sources, "craft") {
		t.Errorf("spear sources = %#v", spear.Sources)
	}
	// meatballs is a cooking recipe id
	mb := cat.Items["meatballs"]
	if mb == nil || !containsStr(mb.Sources, "cook") {
		t.Errorf("meatballs item = %#v", mb)
	}
	// cooking ingredient from cooking.lua
	if cat.CookingIngredients["twigs"] == nil {
		t.Error("twigs cooking ingredient missing")
	}
	if cat.Stats["items_total"] != len(cat.Items) {
		t.Errorf("stats = %#v", cat.Stats)
	}
}

func TestBuildWithOverridesFile(t *testing.T) {
	m := testMount()
	dir := t.TempDir()
	path := dir + "/overrides.yaml"
	writeFile(t, path, `
rules:
  - match: "twigs"
    set:
      kind: creature
    add:
      categories: [boss]
`)

	b := NewBuilder(m, Options{OverridesPath: path})
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	twigs := cat.Items["twigs"]
	if twigs.Kind != "creature" {
		t.Errorf("kind = %q", twigs.Kind)
	}
	if !containsStr(twigs.Categories, "boss") {
		t.Errorf("categories = %#v", twigs.Categories)
	}
}

func TestBuildMissingOverridesFileIsEmpty(t *testing.T) {
	b := NewBuilder(testMount(), Options{OverridesPath: t.TempDir() + "/absent.yaml"})
	if _, _, err := b.Build(); err != nil {
		t.Fatalf("missing overrides should not fail: %v", err)
	}
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
