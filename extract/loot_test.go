package extract

import (
	"testing"

	"github.com/luadex/luadex"
)

func TestParseLoot(t *testing.T) {
	src := `
SetSharedLootTable('hound',
{
    {'monstermeat', 1.000},
    {'houndstooth', 0.125},
})

inst.components.lootdropper:AddChanceLoot("redgem", 0.05)
inst.components.lootdropper:AddRandomLoot("goldnugget", 1)
`
	res := ParseLoot(src)
	if res.TableName != "hound" {
		t.Errorf("table name = %q", res.TableName)
	}
	if len(res.Entries) != 4 {
		t.Fatalf("entries = %#v", res.Entries)
	}

	byItem := map[string]luadex.LootEntry{}
	for _, e := range res.Entries {
		byItem[e.Item] = e
	}

	if e := byItem["monstermeat"]; e.Method != luadex.LootTableData || e.Chance != 1 {
		t.Errorf("monstermeat = %#v", e)
	}
	if e := byItem["houndstooth"]; e.Method != luadex.LootTableData || e.Chance != 0.125 {
		t.Errorf("houndstooth = %#v", e)
	}
	if e := byItem["redgem"]; e.Method != luadex.LootChance || e.Chance != 0.05 {
		t.Errorf("redgem = %#v", e)
	}
	if e := byItem["goldnugget"]; e.Method != luadex.LootRandom || e.Weight != 1 {
		t.Errorf("goldnugget = %#v", e)
	}
}

func TestParseLootEmpty(t *testing.T) {
	res := ParseLoot("local x = 1")
	if res.TableName != "" || len(res.Entries) != 0 {
		t.Errorf("res = %#v", res)
	}
}
