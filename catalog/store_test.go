package catalog

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/luadex/luadex"
)

func storeCatalog() *luadex.Catalog {
	return &luadex.Catalog{
		SchemaVersion: luadex.SchemaVersion,
		Items: map[string]*luadex.Item{
			"spear": {
				ID: "spear", Name: "Spear", Kind: "item",
				Categories: []string{"weapon"},
				Behaviors:  []string{"equippable"},
				Sources:    []string{"craft"},
				Components: []string{"weapon", "inventoryitem"},
				Tags:       []string{"sharp"},
			},
			"hound": {
				ID: "hound", Kind: "creature",
				Sources:    []string{"spawn"},
				Components: []string{"health", "combat"},
				Tags:       []string{"monster"},
			},
			"spear_wathgrithr": {
				ID: "spear_wathgrithr", Name: "Battle Spear", Kind: "item",
				Categories: []string{"weapon"},
			},
		},
		Cooking: map[string]*luadex.CookingRecipe{
			"meatballs": {Name: "meatballs", Priority: 0, Weight: 1},
		},
		Stats: map[string]int{"items_total": 3},
	}
}

func TestStoreLookups(t *testing.T) {
	s := NewStore(storeCatalog())

	if s.Len() != 3 {
		t.Errorf("Len = %d", s.Len())
	}
	if _, ok := s.Item("SPEAR"); !ok {
		t.Error("Item lookup should be case-insensitive")
	}
	if got := s.ByKind("item"); !reflect.DeepEqual(got, []string{"spear", "spear_wathgrithr"}) {
		t.Errorf("ByKind = %#v", got)
	}
	if got := s.ByCategory("weapon"); len(got) != 2 {
		t.Errorf("ByCategory = %#v", got)
	}
	if got := s.ByComponent("health"); !reflect.DeepEqual(got, []string{"hound"}) {
		t.Errorf("ByComponent = %#v", got)
	}
	if got := s.ByTag("monster"); !reflect.DeepEqual(got, []string{"hound"}) {
		t.Errorf("ByTag = %#v", got)
	}
	if got := s.BySource("craft"); !reflect.DeepEqual(got, []string{"spear"}) {
		t.Errorf("BySource = %#v", got)
	}
	if got := s.ByBehavior("equippable"); !reflect.DeepEqual(got, []string{"spear"}) {
		t.Errorf("ByBehavior = %#v", got)
	}

	facets := s.Facets()
	if facets["item"] != 2 || facets["creature"] != 1 {
		t.Errorf("Facets = %#v", facets)
	}

	if _, ok := s.CookingRecipe("meatballs"); !ok {
		t.Error("CookingRecipe lookup failed")
	}
}

func TestStoreSearch(t *testing.T) {
	s := NewStore(storeCatalog())

	// exact id hit comes first
	got := s.Search("spear", 0)
	if len(got) != 2 || got[0] != "spear" || got[1] != "spear_wathgrithr" {
		t.Errorf("Search(spear) = %#v", got)
	}

	// display-name substring
	got = s.Search("battle", 0)
	if !reflect.DeepEqual(got, []string{"spear_wathgrithr"}) {
		t.Errorf("Search(battle) = %#v", got)
	}

	if s.Search("", 0) != nil {
		t.Error("empty query should return nothing")
	}

	if got := s.Search("spear", 1); len(got) != 1 {
		t.Errorf("limit not applied: %#v", got)
	}
}

func TestOpenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := luadex.SaveJSON(path, storeCatalog()); err != nil {
		t.Fatal(err)
	}
	s, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d", s.Len())
	}
	if _, err := OpenStore(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing catalog")
	}
}
