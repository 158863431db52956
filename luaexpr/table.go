package luaexpr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/luadex/luadex/luascan"
)

// KeyKind discriminates table keys.
type KeyKind int

const (
	KeyStr KeyKind = iota
	KeyInt
	KeyRaw
)

// Key is a table map key: a string, an integer, or an opaque
// bracketed expression.
type Key struct {
	Kind KeyKind
	Str  string
	Int  int64
}

// StrKey builds a string key.
func StrKey(s string) Key { return Key{Kind: KeyStr, Str: s} }

// IntKey builds an integer key.
func IntKey(i int64) Key { return Key{Kind: KeyInt, Int: i} }

// RawKey builds an opaque-expression key.
func RawKey(expr string) Key { return Key{Kind: KeyRaw, Str: expr} }

// Table is a parsed Lua table constructor. The array part and the map
// part coexist; Array preserves insertion order, Keys preserves the
// first-seen order of map keys, and later duplicate keys overwrite.
type Table struct {
	Array []Value
	Keys  []Key
	Map   map[Key]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{Map: make(map[Key]Value)}
}

// Set stores a map entry, overwriting a duplicate key in place.
func (t *Table) Set(k Key, v Value) {
	if _, ok := t.Map[k]; !ok {
		t.Keys = append(t.Keys, k)
	}
	t.Map[k] = v
}

// Get looks up a string map key.
func (t *Table) Get(name string) (Value, bool) {
	v, ok := t.Map[StrKey(name)]
	return v, ok
}

// GetTable looks up a string key holding a table.
func (t *Table) GetTable(name string) (*Table, bool) {
	v, ok := t.Get(name)
	if !ok {
		return nil, false
	}
	return v.AsTable()
}

// GetString looks up a string key holding a string.
func (t *Table) GetString(name string) (string, bool) {
	v, ok := t.Get(name)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetNumber looks up a string key holding a number.
func (t *Table) GetNumber(name string) (float64, bool) {
	v, ok := t.Get(name)
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// StringArray returns the array part's string elements, in order.
func (t *Table) StringArray() []string {
	var out []string
	for _, v := range t.Array {
		if s, ok := v.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// ToAny flattens the table. A pure array becomes []any; anything with
// map entries becomes map[string]any (raw/int keys are rendered as
// text), with the array part under "__array__" when both coexist.
func (t *Table) ToAny() any {
	if t == nil {
		return nil
	}
	arr := make([]any, 0, len(t.Array))
	for _, v := range t.Array {
		arr = append(arr, v.ToAny())
	}
	if len(t.Keys) == 0 {
		return arr
	}
	mp := make(map[string]any, len(t.Keys)+1)
	for _, k := range t.Keys {
		mp[k.text()] = t.Map[k].ToAny()
	}
	if len(arr) > 0 {
		mp["__array__"] = arr
	}
	return mp
}

func (k Key) text() string {
	if k.Kind == KeyInt {
		return strconv.FormatInt(k.Int, 10)
	}
	return k.Str
}

var (
	identEntryRe  = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.+)$`)
	strKeyRe      = regexp.MustCompile(`(?s)^\[\s*('.*?'|".*?"|\[=*\[.*?\]=*\])\s*\]\s*=\s*(.+)$`)
	exprKeyRe     = regexp.MustCompile(`(?s)^\[\s*(.+?)\s*\]\s*=\s*(.+)$`)
)

// ParseTable parses the inside of a table constructor (without the
// outer braces). Elements are split at top level on commas; each
// element is matched in order as `ident = expr`, `["key"] = expr`,
// `[expr] = expr`, and finally appended to the array part.
func ParseTable(inner string) *Table {
	inner = luascan.StripComments(inner)
	t := NewTable()

	for _, item := range luascan.SplitTopLevel(inner, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if m := identEntryRe.FindStringSubmatch(item); m != nil {
			t.Set(StrKey(m[1]), Parse(m[2]))
			continue
		}

		if m := strKeyRe.FindStringSubmatch(item); m != nil {
			if s, ok := ParseString(m[1]); ok {
				t.Set(StrKey(s), Parse(m[2]))
			} else {
				t.Set(RawKey(m[1]), Parse(m[2]))
			}
			continue
		}

		if m := exprKeyRe.FindStringSubmatch(item); m != nil {
			keyExpr := strings.TrimSpace(m[1])
			if v, ok := ParseNumber(keyExpr); ok && v.Kind == KindInt {
				t.Set(IntKey(v.Int), Parse(m[2]))
			} else {
				t.Set(RawKey(keyExpr), Parse(m[2]))
			}
			continue
		}

		t.Array = append(t.Array, Parse(item))
	}

	return t
}
