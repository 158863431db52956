package extract

import (
	"regexp"

	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
)

var (
	stringsRootRe = regexp.MustCompile(`\bSTRINGS\s*=\s*\{`)
	namesEntryRe  = regexp.MustCompile(`(^|[^A-Za-z0-9_])NAMES\s*=\s*\{`)
)

// ParseStringsNames extracts the STRINGS.NAMES display-name map from
// the strings script: item id -> display name.
func ParseStringsNames(content string) map[string]string {
	out := map[string]string{}
	if content == "" {
		return out
	}

	m := stringsRootRe.FindStringIndex(content)
	if m == nil {
		return out
	}
	rootOpen := m[1] - 1
	rootClose, ok := luascan.FindMatching(content, rootOpen, '{', '}')
	if !ok {
		return out
	}

	block := content[rootOpen : rootClose+1]
	mn := namesEntryRe.FindStringIndex(block)
	if mn == nil {
		return out
	}
	namesOpen := rootOpen + mn[1] - 1
	namesClose, ok := luascan.FindMatching(content, namesOpen, '{', '}')
	if !ok {
		return out
	}

	tbl := luaexpr.ParseTable(content[namesOpen+1 : namesClose])
	for _, key := range tbl.Keys {
		if key.Kind != luaexpr.KeyStr {
			continue
		}
		id, okID := CleanID(key.Str)
		if !okID {
			continue
		}
		if name, ok := tbl.Map[key].AsString(); ok && name != "" {
			out[id] = name
		}
	}
	return out
}
