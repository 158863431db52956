// Package luascan provides the low-level Lua scanning primitives the
// rest of the pipeline is built on: skipping comments, short strings
// and long-bracket strings, stripping comments with stable line
// numbers, balanced bracket matching, and top-level splitting that is
// aware of Lua block keywords.
//
// All functions are total. Unmatched brackets report "not found" and
// malformed strings consume to end of text; no scanning error escapes
// this package.
package luascan

import "strings"

// IsIdentStart reports whether ch can start a Lua identifier.
func IsIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// IsIdentChar reports whether ch can continue a Lua identifier.
func IsIdentChar(ch byte) bool {
	return IsIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// LongBracketLevel returns the '=' count if text[i:] begins a Lua
// long-bracket opener "[=*[", e.g. [[ -> 0, [=[ -> 1, [==[ -> 2.
// The second return is false when there is no opener at i.
func LongBracketLevel(text string, i int) (int, bool) {
	n := len(text)
	if i >= n || text[i] != '[' {
		return 0, false
	}
	j := i + 1
	for j < n && text[j] == '=' {
		j++
	}
	if j < n && text[j] == '[' {
		return j - i - 1, true
	}
	return 0, false
}

// SkipLongBracket skips the long-bracket string or comment body
// starting at i (which must point at the opener) and returns the index
// just past the matching "]=*]". Without a closer it returns len(text).
func SkipLongBracket(text string, i, level int) int {
	openerLen := 2 + level
	closePat := "]" + strings.Repeat("=", level) + "]"
	end := strings.Index(text[i+openerLen:], closePat)
	if end == -1 {
		return len(text)
	}
	return i + openerLen + end + len(closePat)
}

// SkipShortString skips a '...' or "..." literal starting at i (which
// must point at the quote). A backslash consumes the next byte. Returns
// the index just past the closing quote, or len(text) if unterminated.
func SkipShortString(text string, i int, quote byte) int {
	n := len(text)
	i++
	for i < n {
		ch := text[i]
		if ch == '\\' {
			i += 2
			continue
		}
		if ch == quote {
			return i + 1
		}
		i++
	}
	return n
}

// SkipComment skips a comment starting at i, where text[i:i+2] is "--".
// Block comments ("--[=*[ ... ]=*]") are skipped to their closer, line
// comments to just past the next newline. If i does not start a
// comment the index is returned unchanged.
func SkipComment(text string, i int) int {
	n := len(text)
	if !strings.HasPrefix(text[i:], "--") {
		return i
	}
	if i+2 < n && text[i+2] == '[' {
		if level, ok := LongBracketLevel(text, i+2); ok {
			return SkipLongBracket(text, i+2, level)
		}
	}
	nl := strings.IndexByte(text[i+2:], '\n')
	if nl == -1 {
		return n
	}
	return i + 2 + nl + 1
}

// SkipStringOrLongString skips a short string or long-bracket string
// starting at i. The second return is false when i does not start a
// string.
func SkipStringOrLongString(text string, i int) (int, bool) {
	if i >= len(text) {
		return i, false
	}
	switch ch := text[i]; ch {
	case '\'', '"':
		return SkipShortString(text, i, ch), true
	case '[':
		if level, ok := LongBracketLevel(text, i); ok {
			return SkipLongBracket(text, i, level), true
		}
	}
	return i, false
}

// StripComments removes Lua comments while preserving line breaks, so
// line numbers into the result stay stable. String contents are
// preserved untouched.
func StripComments(text string) string {
	if text == "" {
		return ""
	}
	n := len(text)
	var out strings.Builder
	out.Grow(n)
	i := 0
	for i < n {
		if strings.HasPrefix(text[i:], "--") {
			j := SkipComment(text, i)
			out.WriteString(strings.Repeat("\n", strings.Count(text[i:j], "\n")))
			i = j
			continue
		}
		if nxt, ok := SkipStringOrLongString(text, i); ok {
			out.WriteString(text[i:nxt])
			i = nxt
			continue
		}
		out.WriteByte(text[i])
		i++
	}
	return out.String()
}
