package tuning

import (
	"regexp"
	"sort"
	"strings"
)

// Step is one hop of a trace. Raw is the stored right-hand side at that
// key (number, bool, or expression text); Value is set when the step
// produced a number; Note marks anomalies such as "loop".
type Step struct {
	Key   string   `json:"key"`
	Raw   any      `json:"raw"`
	Value *float64 `json:"value,omitempty"`
	Note  string   `json:"note,omitempty"`
}

// Trace is the explainable resolution of one tuning key.
type Trace struct {
	Key        string   `json:"key"`
	Normalized string   `json:"normalized"`
	Value      *float64 `json:"value"`
	Steps      []Step   `json:"steps"`
	Chain      string   `json:"chain"`
}

// ExprTrace is the explainable resolution of an expression containing
// TUNING references.
type ExprTrace struct {
	Expr         string            `json:"expr"`
	Value        *float64          `json:"value"`
	ExprResolved string            `json:"expr_resolved"`
	Refs         map[string]*Trace `json:"refs,omitempty"`
	ExprChain    string            `json:"expr_chain,omitempty"`
}

var refPat = regexp.MustCompile(`TUNING\.([A-Za-z0-9_]+)|TUNING\[\s*['"]([A-Za-z0-9_]+)['"]\s*\]`)

func (r *Resolver) rawAny(key string) (any, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return nil, false
	}
	switch v.kind {
	case rhsNumber:
		return v.num, true
	case rhsBool:
		return v.b, true
	default:
		return v.str, true
	}
}

// Explain returns a single-line chain rendering and the resolved value
// for one key.
func (r *Resolver) Explain(key string) (string, *float64) {
	key = normKey(key)
	if key == "" {
		return "", nil
	}

	var chain []string
	visited := map[string]bool{}
	cur := key

	for hop := 0; hop < 10; hop++ {
		if visited[cur] {
			chain = append(chain, cur+" (loop)")
			break
		}
		visited[cur] = true

		v, ok := r.lookup(cur)
		if !ok {
			chain = append(chain, cur)
			break
		}
		chain = append(chain, cur)

		if v.kind == rhsNumber {
			chain = append(chain, formatNumber(v.num))
			out := v.num
			return strings.Join(chain, " -> "), &out
		}
		if v.kind == rhsString {
			chain = append(chain, v.str)
			if symbolRe.MatchString(v.str) {
				cur = normKey(v.str)
				continue
			}
			if val, ok := r.Resolve(v.str); ok {
				chain = append(chain, formatNumber(val))
				return strings.Join(chain, " -> "), &val
			}
			break
		}
		break
	}

	if len(chain) == 0 {
		chain = []string{key}
	}
	if val, ok := r.Resolve(key); ok {
		return strings.Join(chain, " -> "), &val
	}
	return strings.Join(chain, " -> "), nil
}

// TraceKey walks the reference chain for key, recording every step, up
// to the hop bound. Cycles are reported as a step with note "loop".
func (r *Resolver) TraceKey(key string) *Trace {
	key0 := key
	key = normKey(key)
	tr := &Trace{Key: key0, Normalized: key}

	visited := map[string]bool{}
	cur := key

	for hop := 0; hop < traceHops; hop++ {
		if cur == "" {
			break
		}
		if visited[cur] {
			tr.Steps = append(tr.Steps, Step{Key: cur, Note: "loop"})
			tr.Chain = chainOfSteps(tr.Steps, nil)
			return tr
		}
		visited[cur] = true

		raw, _ := r.rawAny(cur)
		tr.Steps = append(tr.Steps, Step{Key: cur, Raw: raw})

		if num, ok := raw.(float64); ok {
			tr.Value = &num
			tr.Chain = chainOfSteps(tr.Steps, &num)
			return tr
		}

		if s, ok := raw.(string); ok {
			if symbolRe.MatchString(s) {
				cur = normKey(s)
				continue
			}
			// expression: resolve and close with a synthetic step
			var valPtr *float64
			if val, ok := r.Resolve(s); ok {
				valPtr = &val
			}
			tr.Value = valPtr
			tr.Steps = append(tr.Steps, Step{Key: "<expr>", Raw: s, Value: valPtr})
			parts := make([]string, 0, len(tr.Steps)+2)
			for _, st := range tr.Steps[:len(tr.Steps)-1] {
				parts = append(parts, st.Key)
			}
			parts = append(parts, s, renderValue(valPtr))
			tr.Chain = strings.Join(parts, " -> ")
			return tr
		}

		// bool or missing entry: nothing further to follow
		break
	}

	// fallback: try resolving the key itself
	if val, ok := r.Resolve(key); ok {
		tr.Value = &val
	}
	var parts []string
	for _, st := range tr.Steps {
		if st.Key != "" {
			parts = append(parts, st.Key)
		}
	}
	if tr.Value != nil {
		parts = append(parts, formatNumber(*tr.Value))
	}
	tr.Chain = strings.Join(parts, " -> ")
	return tr
}

func chainOfSteps(steps []Step, value *float64) string {
	parts := make([]string, 0, len(steps)+1)
	for _, st := range steps {
		key := st.Key
		if key == "" {
			if s, ok := st.Raw.(string); ok {
				key = s
			}
		}
		if st.Note == "loop" {
			key += " (loop)"
		}
		parts = append(parts, key)
	}
	if value != nil {
		parts = append(parts, formatNumber(*value))
	}
	return strings.Join(parts, " -> ")
}

func renderValue(v *float64) string {
	if v == nil {
		return "nil"
	}
	return formatNumber(*v)
}

// TraceExpr traces every distinct TUNING reference in expr (both the
// dotted and the bracketed-string syntax), attempts a resolution of the
// whole expression, and emits a normalized form with resolved refs
// substituted by their values.
func (r *Resolver) TraceExpr(expr string) *ExprTrace {
	expr = strings.TrimSpace(expr)
	out := &ExprTrace{Expr: expr, ExprResolved: expr, Refs: map[string]*Trace{}}

	var refs []string
	for _, m := range refPat.FindAllStringSubmatch(expr, -1) {
		k := m[1]
		if k == "" {
			k = m[2]
		}
		if k != "" && out.Refs[k] == nil {
			refs = append(refs, k)
			out.Refs[k] = r.TraceKey(k)
		}
	}

	if val, ok := r.Resolve(expr); ok {
		out.Value = &val
	}

	resolved := expr
	for _, k := range refs {
		tr := out.Refs[k]
		if tr == nil || tr.Value == nil {
			continue
		}
		num := formatNumber(*tr.Value)
		dotted := regexp.MustCompile(`\bTUNING\.` + regexp.QuoteMeta(k) + `\b`)
		resolved = dotted.ReplaceAllString(resolved, num)
		bracket := regexp.MustCompile(`TUNING\[\s*['"]` + regexp.QuoteMeta(k) + `['"]\s*\]`)
		resolved = bracket.ReplaceAllString(resolved, num)
	}
	out.ExprResolved = resolved

	chains := make([]string, 0, len(out.Refs))
	for _, tr := range out.Refs {
		if tr != nil && tr.Chain != "" {
			chains = append(chains, tr.Chain)
		}
	}
	sort.Strings(chains)
	out.ExprChain = strings.Join(chains, " ; ")
	return out
}

var enrichPat = refPat

// Enrich annotates every resolvable TUNING reference in text with its
// chain, e.g. "TUNING.SPEAR_DAMAGE (SPEAR_DAMAGE -> 34)". Unresolvable
// references are left untouched.
func (r *Resolver) Enrich(text string) string {
	if text == "" || !strings.Contains(text, "TUNING") {
		return text
	}
	return enrichPat.ReplaceAllStringFunc(text, func(m string) string {
		sub := refPat.FindStringSubmatch(m)
		key := sub[1]
		if key == "" {
			key = sub[2]
		}
		if key == "" {
			return m
		}
		chain, val := r.Explain(key)
		if val == nil {
			return "TUNING." + key
		}
		return "TUNING." + key + " (" + chain + ")"
	})
}
