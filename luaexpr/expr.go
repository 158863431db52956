// Package luaexpr parses the subset of Lua expressions the data files
// use into a small typed IR, and extracts function calls with balanced
// parentheses. Anything outside the accepted subset is preserved
// verbatim as a Raw value, never discarded.
package luaexpr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/luadex/luadex/luascan"
)

// Kind discriminates the Value sum type.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindTable
	KindRaw
)

// Value is a parsed Lua expression. Exactly the field selected by Kind
// is meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Table *Table
	Raw   string
}

// Convenience constructors.
func Nil() Value            { return Value{Kind: KindNil} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value    { return Value{Kind: KindStr, Str: s} }
func Raw(text string) Value { return Value{Kind: KindRaw, Raw: text} }
func Tbl(t *Table) Value    { return Value{Kind: KindTable, Table: t} }

// IsNil reports whether the value is Lua nil.
func (v Value) IsNil() bool { return v.Kind == KindNil }

// AsString returns the string payload of a Str value.
func (v Value) AsString() (string, bool) {
	if v.Kind == KindStr {
		return v.Str, true
	}
	return "", false
}

// AsNumber returns the numeric payload of an Int or Float value.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

// AsBool returns the payload of a Bool value.
func (v Value) AsBool() (bool, bool) {
	if v.Kind == KindBool {
		return v.Bool, true
	}
	return false, false
}

// AsTable returns the table payload of a Table value.
func (v Value) AsTable() (*Table, bool) {
	if v.Kind == KindTable && v.Table != nil {
		return v.Table, true
	}
	return nil, false
}

// ToAny flattens a value to plain Go types: nil, bool, int64, float64,
// string (Str and Raw both flatten to their text), or the table's
// flattened form.
func (v Value) ToAny() any {
	switch v.Kind {
	case KindNil:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindStr:
		return v.Str
	case KindRaw:
		return v.Raw
	case KindTable:
		return v.Table.ToAny()
	}
	return nil
}

var numRe = regexp.MustCompile(`^[+-]?(?:\d+\.\d*|\d*\.\d+|\d+)(?:[eE][+-]?\d+)?$`)

// IsNumber reports whether expr is a numeric literal in the accepted
// grammar (optional sign, decimal/fractional forms, exponent).
func IsNumber(expr string) bool {
	return numRe.MatchString(expr)
}

// ParseNumber parses a numeric literal, producing an Int value when the
// float is integral.
func ParseNumber(expr string) (Value, bool) {
	expr = strings.TrimSpace(expr)
	if !numRe.MatchString(expr) {
		return Value{}, false
	}
	f, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return Value{}, false
	}
	if f == float64(int64(f)) {
		return Int(int64(f)), true
	}
	return Float(f), true
}

var shortEscapes = strings.NewReplacer(
	`\\`, "\\",
	`\'`, "'",
	`\"`, `"`,
	`\n`, "\n",
	`\t`, "\t",
	`\r`, "\r",
)

// ParseString parses a short or long-bracket string literal. The common
// escapes \\ \' \" \n \t \r are decoded in short strings; long-bracket
// bodies are taken verbatim. Returns false on non-string input.
func ParseString(expr string) (string, bool) {
	expr = strings.TrimSpace(expr)
	if len(expr) >= 2 && expr[0] == expr[len(expr)-1] && (expr[0] == '\'' || expr[0] == '"') {
		return shortEscapes.Replace(expr[1 : len(expr)-1]), true
	}
	if strings.HasPrefix(expr, "[") {
		if level, ok := luascan.LongBracketLevel(expr, 0); ok {
			openerLen := 2 + level
			closePat := "]" + strings.Repeat("=", level) + "]"
			if end := strings.Index(expr[openerLen:], closePat); end != -1 {
				return expr[openerLen : openerLen+end], true
			}
		}
	}
	return "", false
}

// FormatNumber renders a number the way source literals display it:
// integral values without a decimal point.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// maxFnSignature bounds how much of a function literal is kept before
// the body is elided.
const maxFnSignature = 160

// Parse parses a Lua expression into a Value. Attempts in order: nil,
// true/false, string, number, table constructor, function literal
// (kept as a signature-truncated Raw), dotted identifier, and finally
// the verbatim text as Raw.
func Parse(expr string) Value {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Raw("")
	}

	if strings.HasPrefix(expr, "function") {
		if sigEnd := strings.IndexByte(expr, ')'); sigEnd != -1 && sigEnd < maxFnSignature {
			return Raw(expr[:sigEnd+1] + " ... end")
		}
		return Raw("<function>")
	}

	switch expr {
	case "nil":
		return Nil()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	if s, ok := ParseString(expr); ok {
		return Str(s)
	}
	if v, ok := ParseNumber(expr); ok {
		return v
	}

	if strings.HasPrefix(expr, "{") {
		if close, ok := luascan.FindMatching(expr, 0, '{', '}'); ok {
			return Tbl(ParseTable(expr[1:close]))
		}
		return Raw(expr)
	}

	if identRe.MatchString(expr) {
		return Raw(expr)
	}
	return Raw(expr)
}
