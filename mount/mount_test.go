package mount

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMapReadPrefixNormalization(t *testing.T) {
	m := Map{
		"scripts/tuning.lua":  "TUNING = {}",
		"prefabs/twigs.lua":   "return Prefab('twigs')",
		"scripts/recipes.lua": "",
	}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"scripts/tuning.lua", "TUNING = {}", true},
		{"tuning.lua", "TUNING = {}", true},
		{"prefabs/twigs.lua", "return Prefab('twigs')", true},
		{"scripts/prefabs/twigs.lua", "return Prefab('twigs')", true},
		{"missing.lua", "", false},
	}
	for _, tt := range tests {
		got, ok := m.Read(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Read(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMapFileList(t *testing.T) {
	m := Map{
		"prefabs/twigs.lua":  "",
		"scripts/tuning.lua": "",
	}
	want := []string{"scripts/prefabs/twigs.lua", "scripts/tuning.lua"}
	if got := m.FileList(); !reflect.DeepEqual(got, want) {
		t.Errorf("FileList = %#v, want %#v", got, want)
	}
}

func TestOpenDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "prefabs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "tuning.lua"), []byte("TUNING = {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "prefabs", "twigs.lua"), []byte("-- twigs"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"scripts/prefabs/twigs.lua", "scripts/tuning.lua"}
	if got := d.FileList(); !reflect.DeepEqual(got, want) {
		t.Errorf("FileList = %#v", got)
	}

	if got, ok := d.Read("tuning.lua"); !ok || got != "TUNING = {}" {
		t.Errorf("Read without prefix = (%q, %v)", got, ok)
	}
	if got, ok := d.Read("scripts/prefabs/twigs.lua"); !ok || got != "-- twigs" {
		t.Errorf("Read with prefix = (%q, %v)", got, ok)
	}
	// cached second read
	if got, ok := d.Read("scripts/tuning.lua"); !ok || got != "TUNING = {}" {
		t.Errorf("cached read = (%q, %v)", got, ok)
	}
	if _, ok := d.Read("nope.lua"); ok {
		t.Error("missing file read ok")
	}
}

func TestOpenDirErrors(t *testing.T) {
	if _, err := OpenDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing dir")
	}
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenDir(f); err == nil {
		t.Error("expected error for non-dir")
	}
}

func TestFinder(t *testing.T) {
	m := Map{
		"scripts/prefabs/armor_wood.lua": "",
		"scripts/prefabs/spear.lua":      "",
		"scripts/spear_helper.lua":       "",
		"scripts/tuning.lua":             "",
	}
	f := NewFinder(m)

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"scripts/tuning.lua", "scripts/tuning.lua", true},
		{"tuning", "scripts/tuning.lua", true},
		{"spear", "scripts/prefabs/spear.lua", true},
		{"armorwood", "scripts/prefabs/armor_wood.lua", true},
		{"armor_wood.lua", "scripts/prefabs/armor_wood.lua", true},
		{"nothing_here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Find(tt.name)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Find(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}
