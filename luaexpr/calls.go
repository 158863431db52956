package luaexpr

import (
	"sort"
	"strings"

	"github.com/luadex/luadex/luascan"
)

// luaKeywords are never treated as callable identifiers.
var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// Call is one extracted function call.
type Call struct {
	// Name is the last identifier of the call chain; FullName the whole
	// dotted/colon chain.
	Name     string
	FullName string
	// Start/End are byte offsets of the whole call; OpenParen and
	// CloseParen bound the argument span.
	Start      int
	End        int
	OpenParen  int
	CloseParen int
	// Args is the raw argument span; ArgList the arguments split at top
	// level.
	Args    string
	ArgList []string
	// Line and Col are 1-based and refer to the call's start.
	Line int
	Col  int
}

// CallOptions select which calls an extraction yields. The zero value
// matches by last segment and admits member calls (obj.Name / obj:Name).
type CallOptions struct {
	// BareOnly restricts matches to plain Name(...) calls.
	BareOnly bool
	// MatchFullName matches the whole dotted chain instead of the last
	// segment.
	MatchFullName bool
}

// Extractor walks script text and yields calls with balanced
// parentheses, skipping comments, strings and long strings. It is the
// only sanctioned way to locate calls for domain extraction; a naive
// regex would fire inside strings and comments.
type Extractor struct {
	content    string
	lineStarts []int
}

// NewExtractor builds an extractor over content.
func NewExtractor(content string) *Extractor {
	return &Extractor{content: content}
}

// Extract returns all calls whose name matches one of names, with
// default options.
func (x *Extractor) Extract(names ...string) []Call {
	return x.ExtractOpts(CallOptions{}, names...)
}

// ExtractOpts returns all calls matching names under opts.
func (x *Extractor) ExtractOpts(opts CallOptions, names ...string) []Call {
	targets := make(map[string]bool, len(names))
	for _, n := range names {
		targets[n] = true
	}

	var out []Call
	text := x.content
	n := len(text)
	i := 0

	for i < n {
		if text[i] == '-' && i+1 < n && text[i+1] == '-' {
			i = luascan.SkipComment(text, i)
			continue
		}
		if nxt, ok := luascan.SkipStringOrLongString(text, i); ok {
			i = nxt
			continue
		}

		if !luascan.IsIdentStart(text[i]) {
			i++
			continue
		}

		j := i + 1
		for j < n && luascan.IsIdentChar(text[j]) {
			j++
		}
		first := text[i:j]
		if luaKeywords[first] {
			i = j
			continue
		}

		if opts.BareOnly {
			// a segment after '.' or ':' belongs to a member call
			p := i - 1
			for p >= 0 && isSpace(text[p]) {
				p--
			}
			if p >= 0 && (text[p] == ':' || (text[p] == '.' && (p == 0 || text[p-1] != '.'))) {
				i = j
				continue
			}
		}

		full := first
		last := first
		k := j

		if !opts.BareOnly {
			// extend the ".ident" / ":ident" chain
			for {
				kk := k
				for kk < n && isSpace(text[kk]) {
					kk++
				}
				if kk < n && (text[kk] == '.' || text[kk] == ':') {
					sep := text[kk]
					kk++
					for kk < n && isSpace(text[kk]) {
						kk++
					}
					if kk < n && luascan.IsIdentStart(text[kk]) {
						jj := kk + 1
						for jj < n && luascan.IsIdentChar(text[jj]) {
							jj++
						}
						seg := text[kk:jj]
						full = full + string(sep) + seg
						last = seg
						k = jj
						continue
					}
				}
				break
			}
		}

		hit := targets[last]
		if opts.MatchFullName {
			hit = targets[full]
		}
		if hit {
			kk := k
			for kk < n && isSpace(text[kk]) {
				kk++
			}
			if kk < n && text[kk] == '(' {
				if close, ok := luascan.FindMatching(text, kk, '(', ')'); ok {
					args := text[kk+1 : close]
					line, col := x.lineCol(i)
					out = append(out, Call{
						Name:       last,
						FullName:   full,
						Start:      i,
						End:        close + 1,
						OpenParen:  kk,
						CloseParen: close,
						Args:       args,
						ArgList:    SplitArgs(args),
						Line:       line,
						Col:        col,
					})
					i = close + 1
					continue
				}
			}
		}

		i = k
	}

	return out
}

// SplitArgs splits an argument span at top level, dropping empty
// elements.
func SplitArgs(args string) []string {
	var out []string
	for _, p := range luascan.SplitTopLevel(args, ',') {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func (x *Extractor) lineCol(pos int) (int, int) {
	if x.lineStarts == nil {
		x.lineStarts = []int{0}
		for i := 0; i < len(x.content); i++ {
			if x.content[i] == '\n' {
				x.lineStarts = append(x.lineStarts, i+1)
			}
		}
	}
	idx := sort.SearchInts(x.lineStarts, pos+1) - 1
	return idx + 1, pos - x.lineStarts[idx] + 1
}

// LocalTables collects `name = { ... }` assignments (with optional
// `local`) from content, keyed by name, with the brace-balanced table
// text (including braces) as value. Used to resolve identifier
// references to sibling tables in the same file.
func LocalTables(content string) map[string]string {
	text := luascan.StripComments(content)
	out := make(map[string]string)
	n := len(text)
	i := 0

	for i < n {
		if nxt, ok := luascan.SkipStringOrLongString(text, i); ok {
			i = nxt
			continue
		}
		if !luascan.IsIdentStart(text[i]) || (i > 0 && luascan.IsIdentChar(text[i-1])) {
			i++
			continue
		}

		j := i + 1
		for j < n && luascan.IsIdentChar(text[j]) {
			j++
		}
		name := text[i:j]

		k := j
		for k < n && isSpace(text[k]) {
			k++
		}
		if name == "local" {
			// step onto the declared name
			i = k
			continue
		}
		if k < n && text[k] == '=' && (k+1 >= n || text[k+1] != '=') {
			k++
			for k < n && isSpace(text[k]) {
				k++
			}
			if k < n && text[k] == '{' {
				if close, ok := luascan.FindMatching(text, k, '{', '}'); ok {
					out[name] = text[k : close+1]
					i = close + 1
					continue
				}
			}
		}
		i = j
	}

	return out
}

// NormalizeSpace collapses runs of whitespace to single spaces, the
// normalization applied to single-line rule expressions.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
