package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/extract"
	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
	"github.com/luadex/luadex/tuning"
)

// statTarget maps one setter argument position to a stat key.
type statTarget struct {
	key string
	arg int
}

// statMethods maps component -> setter method -> stat keys by argument
// position.
var statMethods = map[string]map[string][]statTarget{
	"weapon": {
		"SetDamage":      {{"weapon_damage", 0}},
		"SetRange":       {{"weapon_range_min", 0}, {"weapon_range_max", 1}},
		"SetAttackRange": {{"weapon_range", 0}},
	},
	"combat": {
		"SetDefaultDamage": {{"combat_damage", 0}},
		"SetAttackPeriod":  {{"attack_period", 0}},
		"SetRange":         {{"attack_range", 0}, {"attack_range_max", 1}},
		"SetAreaDamage":    {{"area_damage", 0}},
	},
	"finiteuses": {
		"SetMaxUses": {{"uses_max", 0}},
		"SetUses":    {{"uses", 0}},
	},
	"armor": {
		"InitCondition": {{"armor_condition", 0}, {"armor_absorption", 1}},
		"SetCondition":  {{"armor_condition", 0}},
		"SetAbsorption": {{"armor_absorption", 0}},
	},
	"edible": {
		"SetHealth": {{"edible_health", 0}},
		"SetHunger": {{"edible_hunger", 0}},
		"SetSanity": {{"edible_sanity", 0}},
	},
	"perishable": {
		"SetPerishTime": {{"perish_time", 0}},
	},
	"fueled": {
		"SetFuelLevel":        {{"fuel_level", 0}},
		"InitializeFuelLevel": {{"fuel_level", 0}},
		"SetMaxFuel":          {{"fuel_max", 0}},
	},
	"equippable": {
		"SetDapperness":    {{"dapperness", 0}},
		"SetEquipSlot":     {{"equip_slot", 0}},
		"SetWalkSpeedMult": {{"equip_walk_speed_mult", 0}},
		"SetRunSpeedMult":  {{"equip_run_speed_mult", 0}},
	},
	"insulator": {
		"SetInsulation":       {{"insulation", 0}},
		"SetWinterInsulation": {{"insulation_winter", 0}},
		"SetSummerInsulation": {{"insulation_summer", 0}},
	},
	"waterproofer": {
		"SetEffectiveness": {{"waterproof", 0}},
	},
	"light": {
		"SetRadius":    {{"light_radius", 0}},
		"SetIntensity": {{"light_intensity", 0}},
		"SetFalloff":   {{"light_falloff", 0}},
	},
	"stackable": {
		"SetMaxSize": {{"stack_size", 0}},
	},
	"health": {
		"SetMaxHealth": {{"health_max", 0}},
	},
	"sanity": {
		"SetMax":  {{"sanity_max", 0}},
		"SetRate": {{"sanity_rate", 0}},
	},
	"sanityaura": {
		"SetAura": {{"sanity_aura", 0}},
	},
	"hunger": {
		"SetMax":  {{"hunger_max", 0}},
		"SetRate": {{"hunger_rate", 0}},
	},
	"locomotor": {
		"SetWalkSpeed": {{"walk_speed", 0}},
		"SetRunSpeed":  {{"run_speed", 0}},
	},
	"heater": {
		"SetHeat":   {{"heat", 0}},
		"SetRadius": {{"heat_radius", 0}},
	},
	"workable": {
		"SetWorkLeft": {{"work_left", 0}},
	},
}

// statProperties maps component -> assigned property -> stat key.
var statProperties = map[string]map[string]string{
	"weapon":     {"damage": "weapon_damage"},
	"combat":     {"defaultdamage": "combat_damage"},
	"finiteuses": {"maxuses": "uses_max", "uses": "uses"},
	"armor":      {"absorption": "armor_absorption", "condition": "armor_condition"},
	"edible": {
		"healthvalue": "edible_health",
		"hungervalue": "edible_hunger",
		"sanityvalue": "edible_sanity",
	},
	"perishable": {"perishtime": "perish_time"},
	"fueled":     {"maxfuel": "fuel_max"},
	"equippable": {
		"dapperness":    "dapperness",
		"equipslot":     "equip_slot",
		"walkspeedmult": "equip_walk_speed_mult",
		"runspeedmult":  "equip_run_speed_mult",
	},
	"insulator":    {"insulation": "insulation"},
	"waterproofer": {"effectiveness": "waterproof"},
	"light":        {"radius": "light_radius", "intensity": "light_intensity", "falloff": "light_falloff"},
	"stackable":    {"maxsize": "stack_size"},
	"health":       {"maxhealth": "health_max"},
	"sanity":       {"max": "sanity_max", "rate": "sanity_rate"},
	"sanityaura":   {"aura": "sanity_aura"},
	"hunger":       {"max": "hunger_max", "rate": "hunger_rate"},
	"locomotor":    {"walkspeed": "walk_speed", "runspeed": "run_speed"},
	"heater":       {"heat": "heat", "radius": "heat_radius"},
	"workable":     {"workleft": "work_left"},
}

var componentsRefRe = regexp.MustCompile(`\bcomponents\.([A-Za-z0-9_]+)\b`)

// scoreStatExpr ranks competing assignments to the same stat: TUNING
// references beat literals, which beat barewords.
func scoreStatExpr(expr string) int {
	if expr == "" {
		return 0
	}
	if strings.Contains(expr, "TUNING.") {
		return 3
	}
	trimmed := strings.TrimSpace(expr)
	if trimmed == "true" || trimmed == "false" {
		return 2
	}
	if luaexpr.IsNumber(trimmed) {
		return 2
	}
	return 1
}

// scanAssignmentExpr reads the right-hand side of an assignment
// starting at start: to end of line at depth zero, skipping strings.
func scanAssignmentExpr(text string, start int) string {
	n := len(text)
	i := start
	depth := 0
	started := false
	for i < n {
		if nxt, ok := luascan.SkipStringOrLongString(text, i); ok {
			started = true
			i = nxt
			continue
		}
		ch := text[i]
		if !started && (ch == ' ' || ch == '\t') {
			i++
			continue
		}
		started = true
		if (ch == '\n' || ch == ';') && depth == 0 {
			break
		}
		switch ch {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		}
		i++
	}
	return strings.TrimSuffix(strings.TrimSpace(text[start:i]), ",")
}

// ExtractStatExprs pulls raw stat expressions out of one prefab file:
// known setter calls attributed through components.<name> chains or
// local aliases, and known property assignments. On conflict the
// higher-scored expression wins (later equal scores overwrite).
func ExtractStatExprs(content string) map[string]string {
	pf := extract.ParsePrefabFile(content)
	compNames := map[string]bool{}
	for _, c := range pf.Components {
		compNames[c] = true
	}

	clean := luascan.StripComments(content)
	aliases := extract.ComponentAliases(clean)
	if len(compNames) == 0 {
		for _, m := range componentsRefRe.FindAllStringSubmatch(clean, -1) {
			compNames[strings.ToLower(m[1])] = true
		}
	}

	out := map[string]string{}
	scores := map[string]int{}
	record := func(key, expr string) {
		score := scoreStatExpr(expr)
		if cur, ok := scores[key]; !ok || score >= cur {
			out[key] = expr
			scores[key] = score
		}
	}

	methodNames := map[string]bool{}
	for _, methods := range statMethods {
		for m := range methods {
			methodNames[m] = true
		}
	}
	var names []string
	for m := range methodNames {
		names = append(names, m)
	}
	sort.Strings(names)

	for _, call := range luaexpr.NewExtractor(content).Extract(names...) {
		cname := ""
		if m := componentsRefRe.FindStringSubmatch(call.FullName); m != nil {
			cname = strings.ToLower(m[1])
		} else {
			root := call.FullName
			if i := strings.IndexAny(root, ".:"); i >= 0 {
				root = root[:i]
			}
			cname = aliases[root]
		}
		if cname == "" {
			continue
		}
		if len(compNames) > 0 && !compNames[cname] {
			continue
		}
		for _, target := range statMethods[cname][call.Name] {
			if target.arg >= len(call.ArgList) {
				continue
			}
			expr := strings.TrimSpace(call.ArgList[target.arg])
			if expr != "" {
				record(target.key, expr)
			}
		}
	}

	var comps []string
	for c := range compNames {
		comps = append(comps, c)
	}
	sort.Strings(comps)

	for _, cname := range comps {
		propMap := statProperties[cname]
		if len(propMap) == 0 {
			continue
		}

		propPat := regexp.MustCompile(`\bcomponents\.` + regexp.QuoteMeta(cname) + `\.([A-Za-z0-9_]+)\s*=`)
		for _, loc := range propPat.FindAllStringSubmatchIndex(clean, -1) {
			prop := strings.ToLower(clean[loc[2]:loc[3]])
			key, ok := propMap[prop]
			if !ok {
				continue
			}
			if expr := scanAssignmentExpr(clean, loc[1]); expr != "" {
				record(key, expr)
			}
		}

		for alias, comp := range aliases {
			if comp != cname {
				continue
			}
			aliasPat := regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\.([A-Za-z0-9_]+)\s*=`)
			for _, loc := range aliasPat.FindAllStringSubmatchIndex(clean, -1) {
				prop := strings.ToLower(clean[loc[2]:loc[3]])
				key, ok := propMap[prop]
				if !ok {
					continue
				}
				if expr := scanAssignmentExpr(clean, loc[1]); expr != "" {
					record(key, expr)
				}
			}
		}
	}

	return out
}

// ResolveStat turns a raw stat expression into a catalog Stat, running
// tuning resolution on TUNING-bearing expressions and recording the
// trace under traceKey when a sink is given.
func ResolveStat(
	key, expr string,
	res *tuning.Resolver,
	sink *tuning.TraceIndex,
	traceKey string,
) *luadex.Stat {
	st := &luadex.Stat{Key: key, Expr: expr}
	if expr == "" {
		return st
	}

	if res != nil && strings.Contains(expr, "TUNING.") {
		tr := res.TraceExpr(expr)
		if sink != nil && traceKey != "" {
			sink.Put(traceKey, tr)
			st.TraceKey = traceKey
		}
		if tr.Value != nil {
			st.Value = *tr.Value
		}
		st.ExprResolved = tr.ExprResolved
		return st
	}

	trimmed := strings.TrimSpace(expr)
	if trimmed == "true" || trimmed == "false" {
		st.Value = trimmed == "true"
		st.ExprResolved = trimmed
		return st
	}
	if v, ok := luaexpr.ParseNumber(trimmed); ok {
		f, _ := v.AsNumber()
		st.Value = f
	}
	st.ExprResolved = expr
	return st
}
