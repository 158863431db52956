package luascan

import (
	"reflect"
	"testing"
)

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   byte
		want  []string
	}{
		{
			name:  "anonymous function between args",
			input: "f(), function(a,b) return a,b end, g()",
			sep:   ',',
			want:  []string{"f()", "function(a,b) return a,b end", "g()"},
		},
		{
			name:  "plain args",
			input: `"twigs", 2, nil`,
			sep:   ',',
			want:  []string{`"twigs"`, "2", "nil"},
		},
		{
			name:  "nested tables",
			input: `{a = 1, b = 2}, {c = {3, 4}}`,
			sep:   ',',
			want:  []string{"{a = 1, b = 2}", "{c = {3, 4}}"},
		},
		{
			name:  "separator in string",
			input: `"a,b", 'c,d'`,
			sep:   ',',
			want:  []string{`"a,b"`, `'c,d'`},
		},
		{
			name:  "separator in comment",
			input: "a --x,y\n, b",
			sep:   ',',
			want:  []string{"a --x,y", "b"},
		},
		{
			name:  "for loop with do",
			input: "for i=1,3 do f(i) end, g",
			sep:   ',',
			want:  []string{"for i=1,3 do f(i) end", "g"},
		},
		{
			name:  "repeat until",
			input: "repeat f(), g() until done, tail",
			sep:   ',',
			want:  []string{"repeat f(), g() until done", "tail"},
		},
		{
			name:  "if block",
			input: "if x then a, b end, c",
			sep:   ',',
			want:  []string{"if x then a, b end", "c"},
		},
		{
			name:  "keyword inside string does not nest",
			input: `"function", x`,
			sep:   ',',
			want:  []string{`"function"`, "x"},
		},
		{
			name:  "long bracket with separator",
			input: "[[a, b]], c",
			sep:   ',',
			want:  []string{"[[a, b]]", "c"},
		},
		{
			name:  "empty input",
			input: "",
			sep:   ',',
			want:  nil,
		},
		{
			name:  "trailing separator",
			input: "a, b,",
			sep:   ',',
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTopLevel(tt.input, tt.sep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTopLevel(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindFunctionEnd(t *testing.T) {
	tests := []struct {
		name  string
		input string
		start int
		rest  string
		ok    bool
	}{
		{
			name:  "simple",
			input: "function() return 1 end tail",
			rest:  " tail",
			ok:    true,
		},
		{
			name:  "nested function",
			input: "function() local f = function() end return f end tail",
			rest:  " tail",
			ok:    true,
		},
		{
			name:  "nested if and for",
			input: "function(x) if x then for i=1,2 do f() end end return x end!",
			rest:  "!",
			ok:    true,
		},
		{
			name:  "end inside string",
			input: `function() return "end" end+`,
			rest:  "+",
			ok:    true,
		},
		{
			name:  "repeat until inside",
			input: "function() repeat f() until g() return 1 end.",
			rest:  ".",
			ok:    true,
		},
		{
			name:  "unterminated",
			input: "function() return 1",
			ok:    false,
		},
		{
			name:  "not at function keyword",
			input: "local f = function() end",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindFunctionEnd(tt.input, tt.start)
			if ok != tt.ok {
				t.Fatalf("FindFunctionEnd(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && tt.input[got:] != tt.rest {
				t.Errorf("FindFunctionEnd(%q) rest = %q, want %q", tt.input, tt.input[got:], tt.rest)
			}
		})
	}
}
