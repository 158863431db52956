package extract

import (
	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
)

// LootResult is the loot extraction of one script.
type LootResult struct {
	TableName string
	Entries   []luadex.LootEntry
}

// ParseLoot extracts shared loot tables and the chance/random loot
// helper calls from one script.
func ParseLoot(content string) *LootResult {
	out := &LootResult{}
	x := luaexpr.NewExtractor(content)

	for _, call := range x.Extract("SetSharedLootTable") {
		if len(call.ArgList) == 0 {
			continue
		}
		if name, ok := luaexpr.ParseString(call.ArgList[0]); ok && name != "" {
			out.TableName = name
		}
		if len(call.ArgList) < 2 {
			continue
		}
		tbl, ok := luaexpr.Parse(call.ArgList[1]).AsTable()
		if !ok {
			continue
		}
		for _, rowVal := range tbl.Array {
			row, ok := rowVal.AsTable()
			if !ok || len(row.Array) < 2 {
				continue
			}
			item, okItem := row.Array[0].AsString()
			chance, okChance := row.Array[1].AsNumber()
			if okItem && okChance {
				out.Entries = append(out.Entries, luadex.LootEntry{
					Item:   item,
					Method: luadex.LootTableData,
					Chance: chance,
				})
			}
		}
	}

	for _, call := range x.Extract("AddRandomLoot", "AddRandomLootTable") {
		if len(call.ArgList) < 2 {
			continue
		}
		item, okItem := luaexpr.ParseString(call.ArgList[0])
		w, okW := luaexpr.Parse(call.ArgList[1]).AsNumber()
		if okItem && okW {
			out.Entries = append(out.Entries, luadex.LootEntry{
				Item:   item,
				Method: luadex.LootRandom,
				Weight: w,
			})
		}
	}

	for _, call := range x.Extract("AddChanceLoot") {
		if len(call.ArgList) < 2 {
			continue
		}
		item, okItem := luaexpr.ParseString(call.ArgList[0])
		c, okC := luaexpr.Parse(call.ArgList[1]).AsNumber()
		if okItem && okC {
			out.Entries = append(out.Entries, luadex.LootEntry{
				Item:   item,
				Method: luadex.LootChance,
				Chance: c,
			})
		}
	}

	return out
}
