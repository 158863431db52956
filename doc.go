// Package luadex turns a game's data-driven Lua scripting layer into a
// queryable catalog of entities and their relationships.
//
// The pipeline mounts a read-only bundle of script files, scans them
// with a comment/string-safe Lua scanner, parses declarative fragments
// into a small typed IR, resolves tuning constants with explainable
// traces, and joins the per-domain records (prefabs, craft recipes,
// cooking recipes and ingredients, loot, components, worldgen) into a
// single item-centric catalog.
//
// # Building a catalog
//
//	m, err := mount.OpenDir("scripts")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b := catalog.NewBuilder(m, catalog.Options{})
//	cat, _, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d items\n", len(cat.Items))
//
// # Resolving tuning constants
//
//	res := tuning.NewResolver(src)
//	if v, ok := res.Resolve("TUNING.CALORIES_MED"); ok {
//	    fmt.Println(v)
//	}
//	tr := res.TraceKey("CALORIES_MED")
//	fmt.Println(tr.Chain) // CALORIES_MED -> TUNING.CALORIES_SMALL * 2 -> 150
//
// # Simulating the cook pot
//
//	out := cookpot.Simulate(cat.CookingRecipeList(), map[string]int{
//	    "meat": 3, "berries": 1,
//	}, cat.CookingIngredients)
//	fmt.Println(out.Result) // meatballs
//
// The scanner is not a full Lua parser: it is a balanced scanner plus a
// table-literal parser tuned to the patterns the data files use, and it
// keeps anything it cannot reduce as raw text. See the luascan and
// luaexpr packages for the accepted forms.
package luadex
