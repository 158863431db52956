package main

import (
	"reflect"
	"testing"
)

func TestParseSlotSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want map[string]int
	}{
		{
			name: "equals pairs",
			spec: "twigs=2,flint=1",
			want: map[string]int{"twigs": 2, "flint": 1},
		},
		{
			name: "colon pairs with spaces",
			spec: "twigs:2 flint:1",
			want: map[string]int{"twigs": 2, "flint": 1},
		},
		{
			name: "plain tokens default to one",
			spec: "twigs flint twigs",
			want: map[string]int{"twigs": 2, "flint": 1},
		},
		{
			name: "empty",
			spec: "   ",
			want: map[string]int{},
		},
		{
			name: "repeated pairs accumulate",
			spec: "meat=1,meat=2",
			want: map[string]int{"meat": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSlotSpec(tt.spec); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSlotSpec(%q) = %#v, want %#v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got := parseList("meat, berries carrot,")
	want := []string{"meat", "berries", "carrot"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseList = %#v, want %#v", got, want)
	}
	if parseList("") != nil {
		t.Error("empty list should be nil")
	}
}

func TestHumanDuration(t *testing.T) {
	if got := humanDuration(480); got != "480 s" {
		t.Errorf("humanDuration(480) = %q", got)
	}
	if got := humanDuration(172800); got != "2.0 days" {
		t.Errorf("humanDuration(172800) = %q", got)
	}
}
