package extract

import (
	"reflect"
	"testing"
)

func TestParseRooms(t *testing.T) {
	src := `
local forest_contents = {
    value = GROUND.FOREST,
    tags = {"ExitPiece", "Chester_Eyebone"},
    contents = {
        distributepercent = 0.3,
        distributeprefabs = { evergreen = 6, berrybush = 0.5 },
    },
}

AddRoom("Forest", forest_contents)

AddRoom("Clearing", {
    value = GROUND.GRASS,
    tags = {"ExitPiece"},
    contents = { distributepercent = 0.1 },
})
`
	rooms := ParseRooms(src)
	if len(rooms) != 2 {
		t.Fatalf("rooms = %#v", rooms)
	}

	forest := rooms["Forest"]
	if forest == nil {
		t.Fatal("Forest missing (local table indirection failed)")
	}
	if !reflect.DeepEqual(forest.Tags, []string{"ExitPiece", "Chester_Eyebone"}) {
		t.Errorf("tags = %#v", forest.Tags)
	}
	if forest.Contents["distributepercent"] != 0.3 {
		t.Errorf("contents = %#v", forest.Contents)
	}

	clearing := rooms["Clearing"]
	if clearing == nil || clearing.Contents["distributepercent"] != 0.1 {
		t.Errorf("Clearing = %#v", clearing)
	}
}

func TestParsePresets(t *testing.T) {
	src := `
AddLevel(LEVELTYPE.SURVIVAL, {
    id = "SURVIVAL_TOGETHER",
    name = STRINGS.UI.CUSTOMIZATIONSCREEN.PRESETLEVELS.SURVIVAL_TOGETHER,
    desc = "The standard game experience.",
    location = "forest",
    overrides = {
        task_set = "default",
        start_location = "default",
        day = "default",
    },
})

AddSettingsPreset(LEVELTYPE.SURVIVAL, {
    id = "SETTINGS_DEFAULT",
    name = "Default settings",
    playstyle = "survival",
    overrides = { spawnprotection = "default" },
})
`
	res := ParsePresets(src)
	if len(res.Worldgen) != 1 || len(res.Settings) != 1 {
		t.Fatalf("worldgen=%d settings=%d", len(res.Worldgen), len(res.Settings))
	}

	wg := res.Worldgen["SURVIVAL_TOGETHER"]
	if wg.TaskSet != "default" || wg.StartLocation != "default" {
		t.Errorf("preset = %#v", wg)
	}
	if wg.Location != "forest" || wg.Desc != "The standard game experience." {
		t.Errorf("preset fields = %#v", wg)
	}
	if wg.LevelType != "LEVELTYPE.SURVIVAL" {
		t.Errorf("level type = %q", wg.LevelType)
	}

	st := res.Settings["SETTINGS_DEFAULT"]
	if st.Playstyle != "survival" {
		t.Errorf("settings preset = %#v", st)
	}
}

func TestParseTaskIDs(t *testing.T) {
	src := `
AddTask("Make a pick", { locks = LOCKS.NONE })
AddTask("Dig that rock", { locks = LOCKS.TIER1 })
AddTaskSet("default", { name = "Together" })
AddStartLocation("default", { name = "Plus" })
`
	tasks, sets, starts := ParseTaskIDs(src)
	if !reflect.DeepEqual(tasks, []string{"Make a pick", "Dig that rock"}) {
		t.Errorf("tasks = %#v", tasks)
	}
	if !reflect.DeepEqual(sets, []string{"default"}) {
		t.Errorf("task sets = %#v", sets)
	}
	if !reflect.DeepEqual(starts, []string{"default"}) {
		t.Errorf("start locations = %#v", starts)
	}
}

func TestParseLayouts(t *testing.T) {
	src := `
local layouts = {
    ["CropCircle"] = StaticLayout.Get("map/static_layouts/crop_circle"),
    ["Farmplot"] = StaticLayout.Get("scripts/map/static_layouts/farmplot"),
}
`
	layouts := ParseLayouts(src)
	if len(layouts) != 2 {
		t.Fatalf("layouts = %#v", layouts)
	}
	if layouts["CropCircle"].Source != "scripts/map/static_layouts/crop_circle" {
		t.Errorf("source = %q", layouts["CropCircle"].Source)
	}
	if layouts["Farmplot"].Source != "scripts/map/static_layouts/farmplot" {
		t.Errorf("source = %q", layouts["Farmplot"].Source)
	}
}

func TestParseStringsNames(t *testing.T) {
	src := `
STRINGS = {
    CHARACTER_TITLES = { wilson = "The Gentleman Scientist" },
    NAMES = {
        TWIGS = "Twigs",
        BERRIES = "Berries",
        ["WEIRD ONE"] = "Skipped",
    },
}
`
	names := ParseStringsNames(src)
	want := map[string]string{"twigs": "Twigs", "berries": "Berries"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %#v, want %#v", names, want)
	}
}
