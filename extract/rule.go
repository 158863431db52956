package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
)

// Rule decomposition: turn a single-line test-return expression into
// the structured constraints the cook-pot evaluator can execute. The
// decomposition is intentionally conservative — anything it cannot
// prove is left to the raw expression, and the evaluator falls back to
// card ingredients.

var (
	parenGroupRe  = regexp.MustCompile(`\(([^()]+)\)`)
	orBodyRe      = regexp.MustCompile(`^\s*names\.[A-Za-z0-9_]+(?:\s+or\s+names\.[A-Za-z0-9_]+)+\s*$`)
	nameRefRe     = regexp.MustCompile(`\bnames\.([A-Za-z0-9_]+)\b`)
	inlineOrRe    = regexp.MustCompile(`\bnames\.[A-Za-z0-9_]+\b(?:\s+or\s+names\.[A-Za-z0-9_]+\b)+`)
	notSuffixRe = regexp.MustCompile(`\bnot$`)
	notNamesRe  = regexp.MustCompile(`\bnot\s+names\.`)
	orSumPairRe = regexp.MustCompile(
		`\(+\s*names\.([A-Za-z0-9_]+)\s+and\s+names\.([A-Za-z0-9_]+)\s*(>=|>)\s*([0-9]+)\s*\)+\s+or\s+` +
			`\(+\s*names\.([A-Za-z0-9_]+)\s+and\s+names\.([A-Za-z0-9_]+)\s*(>=|>)\s*([0-9]+)\s*\)+\s+or\s+` +
			`\(+\s*names\.([A-Za-z0-9_]+)\s+and\s+names\.([A-Za-z0-9_]+)\s*\)+`)
	plusSumRe = regexp.MustCompile(
		`\(?\s*\(?\s*names\.([A-Za-z0-9_]+)\s*(?:or\s*0)?\s*\)?\s*\+\s*` +
			`\(?\s*names\.([A-Za-z0-9_]+)\s*(?:or\s*0)?\s*\)?\s*\)?\s*(>=|>)\s*([0-9]+)`)
	cmpRe      = regexp.MustCompile(`\b(tags|names)\.([A-Za-z0-9_]+)\s*(==|~=|<=|>=|<|>)\s*([^\s)\]]+)`)
	presenceRe = regexp.MustCompile(`\b(tags|names)\.([A-Za-z0-9_]+)\b`)
	cmpAfterRe = regexp.MustCompile(`^\s*(==|~=|<=|>=|<|>)`)
	negPresRe  = regexp.MustCompile(`\bnot\s+(tags|names)\.([A-Za-z0-9_]+)\b`)
)

type span struct{ start, end int }

type ruleBuilder struct {
	out     *luadex.Constraints
	seen    map[string]bool
	sumSeen map[string]bool
	orNames map[string]bool
	orSpans []span
}

func (b *ruleBuilder) addConstraint(scope, key, op string, value any, text string) {
	rec := scope + "\x00" + key + "\x00" + op + "\x00" + valueText(value)
	if b.seen[rec] {
		return
	}
	b.seen[rec] = true
	c := luadex.Constraint{Key: key, Op: op, Value: value, Text: text}
	if scope == "tags" {
		b.out.Tags = append(b.out.Tags, c)
	} else {
		b.out.Names = append(b.out.Names, c)
	}
}

func (b *ruleBuilder) addNamesSum(a, c string, min int, text string) {
	a, c = strings.TrimSpace(a), strings.TrimSpace(c)
	if a == "" || c == "" || a == c {
		return
	}
	keys := []string{a, c}
	sort.Strings(keys)
	rec := keys[0] + "\x00" + keys[1] + "\x00" + strconv.Itoa(min)
	if b.sumSeen[rec] {
		return
	}
	b.sumSeen[rec] = true
	b.out.NamesSum = append(b.out.NamesSum, luadex.NamesSum{Keys: keys, Min: min, Text: text})
}

func valueText(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	}
	return ""
}

func coveredBy(spans []span, s span) bool {
	for _, sp := range spans {
		if s.start >= sp.start && s.end <= sp.end {
			return true
		}
	}
	return false
}

// DecomposeRule decomposes a single-line rule expression into
// structured constraints. See the package comment of cookpot for how
// the groups are evaluated.
func DecomposeRule(expr string) *luadex.Constraints {
	expr = strings.TrimSpace(expr)
	out := &luadex.Constraints{Raw: expr}
	if expr == "" {
		return out
	}

	e := luaexpr.NormalizeSpace(expr)
	b := &ruleBuilder{
		out:     out,
		seen:    map[string]bool{},
		sumSeen: map[string]bool{},
		orNames: map[string]bool{},
	}

	// parenthesized OR groups: (names.a or names.b ...), possibly
	// negated as a whole
	for _, loc := range parenGroupRe.FindAllStringSubmatchIndex(e, -1) {
		body := e[loc[2]:loc[3]]
		if !orBodyRe.MatchString(body) {
			continue
		}
		keys := nameKeys(body)
		if len(keys) < 2 {
			continue
		}
		prefix := strings.TrimRight(e[:loc[0]], " ")
		sp := span{loc[0], loc[1]}
		if notSuffixRe.MatchString(prefix) {
			for _, key := range keys {
				b.addConstraint("names", key, luadex.OpEq, 0, "not names."+key)
			}
			for _, k := range keys {
				b.orNames[k] = true
			}
			b.orSpans = append(b.orSpans, sp)
			continue
		}
		out.NamesAny = append(out.NamesAny, luadex.NamesAny{Keys: keys, Text: strings.TrimSpace(body)})
		for _, k := range keys {
			b.orNames[k] = true
		}
		b.orSpans = append(b.orSpans, sp)
	}

	// inline OR chains not already consumed by a parenthesized group
	for _, loc := range inlineOrRe.FindAllStringIndex(e, -1) {
		sp := span{loc[0], loc[1]}
		if coveredBy(b.orSpans, sp) {
			continue
		}
		body := e[loc[0]:loc[1]]
		if notNamesRe.MatchString(body) {
			continue
		}
		prefix := strings.TrimRight(e[:loc[0]], " ")
		if notSuffixRe.MatchString(prefix) {
			continue
		}
		keys := nameKeys(body)
		if len(keys) < 2 {
			continue
		}
		out.NamesAny = append(out.NamesAny, luadex.NamesAny{Keys: keys, Text: strings.TrimSpace(body)})
		for _, k := range keys {
			b.orNames[k] = true
		}
		b.orSpans = append(b.orSpans, sp)
	}

	// ((names.a and names.a >= 2) or (names.b and names.b >= 2) or
	// (names.a and names.b)) -> sum of a+b >= 2
	for _, m := range orSumPairRe.FindAllStringSubmatch(e, -1) {
		a, a2 := m[1], m[2]
		c, c2 := m[5], m[6]
		x, y := m[9], m[10]
		if a != a2 || c != c2 {
			continue
		}
		if !samePair(a, c, x, y) {
			continue
		}
		b.addNamesSum(a, c, 2, strings.TrimSpace(m[0]))
	}

	// (names.a or 0) + (names.b or 0) >= N
	for _, m := range plusSumRe.FindAllStringSubmatch(e, -1) {
		min, err := strconv.Atoi(m[4])
		if err != nil {
			continue
		}
		if m[3] == ">" {
			min++
		}
		b.addNamesSum(m[1], m[2], min, strings.TrimSpace(m[0]))
	}

	// comparisons: (tags|names).KEY <op> rhs
	for _, m := range cmpRe.FindAllStringSubmatch(e, -1) {
		scope, key, op := m[1], m[2], m[3]
		rhs := strings.TrimRight(m[4], ",")
		var rhsNorm any
		switch {
		case rhs == "nil":
			rhsNorm = nil
		case luaexpr.IsNumber(rhs):
			if f, err := strconv.ParseFloat(rhs, 64); err == nil {
				rhsNorm = f
			} else {
				rhsNorm = rhs
			}
		default:
			rhsNorm = rhs
		}
		b.addConstraint(scope, key, op, rhsNorm, m[0])
	}

	// presence (truthy): tags.X / names.X with no comparator and no
	// leading not
	for _, loc := range presenceRe.FindAllStringSubmatchIndex(e, -1) {
		scope := e[loc[2]:loc[3]]
		key := e[loc[4]:loc[5]]
		if cmpAfterRe.MatchString(e[loc[1]:]) {
			continue
		}
		if notSuffixRe.MatchString(strings.TrimRight(e[:loc[0]], " ")) {
			continue
		}
		b.addConstraint(scope, key, luadex.OpGt, 0, scope+"."+key)
	}

	// negated presence: not tags.X / not names.X
	for _, m := range negPresRe.FindAllStringSubmatch(e, -1) {
		b.addConstraint(m[1], m[2], luadex.OpEq, 0, m[0])
	}

	suppressCovered(out, b.orNames)

	if out.Empty() {
		out.Unparsed = append(out.Unparsed, e)
	}
	return out
}

func nameKeys(body string) []string {
	var keys []string
	for _, m := range nameRefRe.FindAllStringSubmatch(body, -1) {
		keys = append(keys, m[1])
	}
	return keys
}

func samePair(a, b, x, y string) bool {
	return (x == a && y == b) || (x == b && y == a)
}

// suppressCovered drops redundant positive name constraints already
// covered by a names_any group or a names_sum over the same ids.
func suppressCovered(out *luadex.Constraints, orNames map[string]bool) {
	sumKeys := map[string]bool{}
	for _, g := range out.NamesSum {
		for _, k := range g.Keys {
			sumKeys[strings.TrimSpace(k)] = true
		}
	}

	if len(orNames) > 0 {
		var filtered []luadex.Constraint
		for _, c := range out.Names {
			if orNames[c.Key] && (c.Op == luadex.OpGt || c.Op == luadex.OpGe) && constraintValue(c.Value) <= 0 {
				continue
			}
			filtered = append(filtered, c)
		}
		out.Names = filtered
	}

	if len(sumKeys) > 0 && len(out.Names) > 0 {
		var filtered []luadex.Constraint
		for _, c := range out.Names {
			rhs := constraintValue(c.Value)
			positive := (c.Op == luadex.OpGt || c.Op == luadex.OpGe) && rhs >= 0
			if c.Op == luadex.OpEq && rhs > 0 {
				positive = true
			}
			if sumKeys[c.Key] && positive {
				continue
			}
			filtered = append(filtered, c)
		}
		out.Names = filtered
	}
}

func constraintValue(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return 0
}
