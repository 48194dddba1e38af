package dump

import (
	"reflect"
	"testing"
)

func TestTokenizeValueTuples(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    [][]string
	}{
		{
			name:    "Quoted comma and escaped quote",
			segment: ` ('a,b', 2, NULL), ('c\'d', 3, 'x');`,
			want: [][]string{
				{"a,b", "2", "NULL"},
				{"c'd", "3", "x"},
			},
		},
		{
			name:    "Single row",
			segment: `(1,'Larceny');`,
			want:    [][]string{{"1", "Larceny"}},
		},
		{
			name:    "Parenthesis inside quoted span",
			segment: `('x (y)', 'z');`,
			want:    [][]string{{"x (y)", "z"}},
		},
		{
			name:    "Backslash escapes resolved",
			segment: `('line\nbreak', 'tab\\t');`,
			want:    [][]string{{"linenbreak", "tab\\t"}},
		},
		{
			name:    "Mixed quoted and unquoted spans concatenate",
			segment: `(12'ab'34);`,
			want:    [][]string{{"12ab34"}},
		},
		{
			name:    "Unquoted whitespace ignored",
			segment: `( 1 , 2 , 3 );`,
			want:    [][]string{{"1", "2", "3"}},
		},
		{
			name:    "Multiple rows across physical lines",
			segment: "(1,'a'),\n(2,'b'),\n(3,'c');",
			want:    [][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}},
		},
		{
			name:    "Unterminated row dropped",
			segment: `(1,'a'),(2,'b`,
			want:    [][]string{{"1", "a"}},
		},
		{
			name:    "NULL preserved verbatim",
			segment: `(NULL, 'NULL');`,
			want:    [][]string{{"NULL", "NULL"}},
		},
		{
			name:    "Empty segment",
			segment: ``,
			want:    nil,
		},
		{
			name:    "Noise before first row",
			segment: `  ;`,
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenizeValueTuples(tt.segment)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TokenizeValueTuples(%q) = %#v, want %#v", tt.segment, got, tt.want)
			}
		})
	}
}
