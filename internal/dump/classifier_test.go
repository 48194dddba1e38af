package dump

import "testing"

func TestIsNumericType(t *testing.T) {
	tests := []struct {
		name         string
		declaredType string
		want         bool
	}{
		{"Plain int", "int", true},
		{"Sized int with modifier", "int(11) unsigned", true},
		{"Bigint", "bigint(20)", true},
		{"Tinyint", "tinyint(1)", true},
		{"Smallint", "smallint(6)", true},
		{"Mediumint", "mediumint(9)", true},
		{"Decimal with params", "DECIMAL(10,2)", true},
		{"Numeric", "numeric(8,3)", true},
		{"Float", "float", true},
		{"Double precision leading token", "double precision", true},
		{"Real", "real", true},
		{"Integer prefix match", "integer", true},
		{"Varchar", "varchar(255)", false},
		{"Text", "text", false},
		{"Datetime", "datetime", false},
		{"Date", "date", false},
		{"Timestamp", "timestamp NULL DEFAULT NULL", false},
		{"Enum", "enum('a','b')", false},
		{"Blob", "blob", false},
		{"Quoted type string", "`varchar(64)`", false},
		{"Whitespace padding", "  int(4)  ", true},
		{"Empty string", "", false},
		{"Unknown type", "geography", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNumericType(tt.declaredType); got != tt.want {
				t.Errorf("IsNumericType(%q) = %v, want %v", tt.declaredType, got, tt.want)
			}
		})
	}
}

func TestIsNumericTypeIsDeterministic(t *testing.T) {
	inputs := []string{"int(11) unsigned", "varchar(255)", "DECIMAL(10,2)"}
	for _, in := range inputs {
		first := IsNumericType(in)
		for i := 0; i < 5; i++ {
			if IsNumericType(in) != first {
				t.Fatalf("IsNumericType(%q) changed verdict between calls", in)
			}
		}
	}
}
