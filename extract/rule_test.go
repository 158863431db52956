package extract

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/luadex/luadex"
)

func TestDecomposeRuleScenario(t *testing.T) {
	expr := "(names.meat or names.monstermeat) and tags.veggie >= 0.5 and not names.inedible"
	c := DecomposeRule(expr)

	if len(c.NamesAny) != 1 {
		t.Fatalf("NamesAny = %#v", c.NamesAny)
	}
	if !reflect.DeepEqual(c.NamesAny[0].Keys, []string{"meat", "monstermeat"}) {
		t.Errorf("NamesAny keys = %#v", c.NamesAny[0].Keys)
	}

	if len(c.Tags) != 1 {
		t.Fatalf("Tags = %#v", c.Tags)
	}
	tag := c.Tags[0]
	if tag.Key != "veggie" || tag.Op != luadex.OpGe || tag.Value != 0.5 {
		t.Errorf("tag constraint = %#v", tag)
	}

	if len(c.Names) != 1 {
		t.Fatalf("Names = %#v", c.Names)
	}
	name := c.Names[0]
	if name.Key != "inedible" || name.Op != luadex.OpEq || constraintValue(name.Value) != 0 {
		t.Errorf("name constraint = %#v", name)
	}
}

func TestDecomposeRuleNegatedGroup(t *testing.T) {
	c := DecomposeRule("not (names.twigs or names.ice) and tags.meat")
	if len(c.NamesAny) != 0 {
		t.Errorf("negated group produced NamesAny: %#v", c.NamesAny)
	}
	var keys []string
	for _, n := range c.Names {
		if n.Op == luadex.OpEq && constraintValue(n.Value) == 0 {
			keys = append(keys, n.Key)
		}
	}
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"ice", "twigs"}) {
		t.Errorf("absence keys = %#v", keys)
	}
	if len(c.Tags) != 1 || c.Tags[0].Key != "meat" || c.Tags[0].Op != luadex.OpGt {
		t.Errorf("tags = %#v", c.Tags)
	}
}

func TestDecomposeRuleInlineOr(t *testing.T) {
	c := DecomposeRule("names.froglegs or names.drumstick")
	if len(c.NamesAny) != 1 {
		t.Fatalf("NamesAny = %#v", c.NamesAny)
	}
	if !reflect.DeepEqual(c.NamesAny[0].Keys, []string{"froglegs", "drumstick"}) {
		t.Errorf("keys = %#v", c.NamesAny[0].Keys)
	}
	// the individual presence constraints are suppressed
	if len(c.Names) != 0 {
		t.Errorf("Names = %#v", c.Names)
	}
}

func TestDecomposeRuleAndOrSumIdiom(t *testing.T) {
	expr := "((names.meat and names.meat >= 2) or (names.fish and names.fish >= 2) or (names.meat and names.fish))"
	c := DecomposeRule(expr)
	if len(c.NamesSum) != 1 {
		t.Fatalf("NamesSum = %#v", c.NamesSum)
	}
	sum := c.NamesSum[0]
	if !reflect.DeepEqual(sum.Keys, []string{"fish", "meat"}) || sum.Min != 2 {
		t.Errorf("sum = %#v", sum)
	}
	// positive constraints on the summed names are suppressed
	for _, n := range c.Names {
		if n.Key == "meat" || n.Key == "fish" {
			if n.Op == luadex.OpGt || n.Op == luadex.OpGe {
				t.Errorf("unsuppressed positive constraint: %#v", n)
			}
		}
	}
}

func TestDecomposeRulePlusSum(t *testing.T) {
	tests := []struct {
		expr string
		min  int
	}{
		{"(names.berries or 0) + (names.juicy_berries or 0) >= 3", 3},
		{"(names.berries or 0) + (names.juicy_berries or 0) > 2", 3},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c := DecomposeRule(tt.expr)
			if len(c.NamesSum) != 1 {
				t.Fatalf("NamesSum = %#v", c.NamesSum)
			}
			if c.NamesSum[0].Min != tt.min {
				t.Errorf("min = %d, want %d", c.NamesSum[0].Min, tt.min)
			}
			if !reflect.DeepEqual(c.NamesSum[0].Keys, []string{"berries", "juicy_berries"}) {
				t.Errorf("keys = %#v", c.NamesSum[0].Keys)
			}
		})
	}
}

func TestDecomposeRuleComparisons(t *testing.T) {
	c := DecomposeRule("tags.meat > 1.5 and tags.frozen ~= 0 and names.mandrake == nil and tags.sweetener <= 2")
	want := map[string]string{
		"meat":      luadex.OpGt,
		"frozen":    luadex.OpNe,
		"sweetener": luadex.OpLe,
	}
	got := map[string]string{}
	for _, tc := range c.Tags {
		got[tc.Key] = tc.Op
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tag ops = %#v, want %#v", got, want)
	}
	if len(c.Names) != 1 || c.Names[0].Key != "mandrake" || c.Names[0].Value != nil {
		t.Errorf("names = %#v", c.Names)
	}
}

func TestDecomposeRuleUnparsedFallback(t *testing.T) {
	c := DecomposeRule("cooker.prefab == 'portablecookpot'")
	if !c.Empty() {
		t.Fatalf("expected empty constraints, got %#v", c)
	}
	if len(c.Unparsed) != 1 {
		t.Errorf("Unparsed = %#v", c.Unparsed)
	}
}

// Decomposing the concatenated constraint texts again yields the same
// constraint set.
func TestDecomposeRuleIdempotent(t *testing.T) {
	exprs := []string{
		"(names.meat or names.monstermeat) and tags.veggie >= 0.5 and not names.inedible",
		"tags.meat >= 3 and not tags.inedible",
		"(names.berries or 0) + (names.juicy_berries or 0) >= 3 and tags.frozen == 0",
		"names.mole or names.rabbit",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			first := DecomposeRule(expr)

			var texts []string
			for _, g := range first.NamesAny {
				texts = append(texts, g.Text)
			}
			for _, g := range first.NamesSum {
				texts = append(texts, g.Text)
			}
			for _, tc := range first.Tags {
				texts = append(texts, tc.Text)
			}
			for _, nc := range first.Names {
				texts = append(texts, nc.Text)
			}

			second := DecomposeRule(strings.Join(texts, " and "))
			if !sameConstraintSet(first, second) {
				t.Errorf("not idempotent:\nfirst  = %#v\nsecond = %#v", first, second)
			}
		})
	}
}

func sameConstraintSet(a, b *luadex.Constraints) bool {
	key := func(c *luadex.Constraints) []string {
		var out []string
		for _, g := range c.NamesAny {
			keys := append([]string(nil), g.Keys...)
			sort.Strings(keys)
			out = append(out, "any:"+strings.Join(keys, "|"))
		}
		for _, g := range c.NamesSum {
			out = append(out, "sum:"+strings.Join(g.Keys, "|")+":"+strings.Repeat("i", g.Min))
		}
		for _, tc := range c.Tags {
			out = append(out, "tag:"+tc.Key+tc.Op+valueText(tc.Value))
		}
		for _, nc := range c.Names {
			out = append(out, "name:"+nc.Key+nc.Op+valueText(nc.Value))
		}
		sort.Strings(out)
		return out
	}
	return reflect.DeepEqual(key(a), key(b))
}
