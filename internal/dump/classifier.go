package dump

import "strings"

// numericTypePrefixes is the fixed set of declared-type keywords that mark a
// column as numeric. Anything else (text, date/time, unknown) is non-numeric.
var numericTypePrefixes = []string{
	"int",
	"tinyint",
	"smallint",
	"mediumint",
	"bigint",
	"decimal",
	"numeric",
	"float",
	"double",
	"real",
}

// IsNumericType classifies a raw declared-type string such as
// "int(11) unsigned" or "varchar(255)". The verdict for a given input never
// changes: normalize, take the leading token, strip any size suffix and test
// prefix membership against the fixed numeric set.
func IsNumericType(declaredType string) bool {
	normalized := strings.ToLower(strings.TrimSpace(declaredType))
	normalized = strings.Trim(normalized, "`'\"")
	if normalized == "" {
		return false
	}

	token := normalized
	if idx := strings.IndexAny(token, " \t"); idx != -1 {
		token = token[:idx]
	}
	if idx := strings.Index(token, "("); idx != -1 {
		token = token[:idx]
	}

	for _, prefix := range numericTypePrefixes {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}
