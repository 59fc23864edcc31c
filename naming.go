package csvinfer

import (
	"strconv"
	"strings"
	"unicode"
)

// fieldPrefix starts identifiers that would otherwise begin with a digit or be empty
const fieldPrefix = "Field"

// splitWords splits s on every run of characters that are not ASCII letters or digits
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

// ToPascalCase converts a column name to an exported Go identifier.
// Words are capitalized and the rest of each word is lower-cased, so "order_ID" becomes
// "OrderId" and "2nd value" becomes "Field2ndValue".
func ToPascalCase(name string) string {
	var sb strings.Builder
	for _, word := range splitWords(name) {
		sb.WriteString(strings.ToUpper(word[:1]))
		sb.WriteString(strings.ToLower(word[1:]))
	}

	result := sb.String()
	if result == "" || !unicode.IsLetter(rune(result[0])) {
		result = fieldPrefix + result
	}
	return result
}

// ToSnakeCase converts a column name to a lower snake_case SQL identifier
func ToSnakeCase(name string) string {
	words := splitWords(name)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}

	result := strings.Join(words, "_")
	if result == "" || !unicode.IsLetter(rune(result[0])) {
		result = strings.ToLower(fieldPrefix) + "_" + result
		result = strings.TrimSuffix(result, "_")
	}
	return result
}

// uniqueNames makes converted names unique by appending 2, 3, ... to later duplicates.
// "id" and "ID" both convert to "Id"; the second becomes "Id2".
func uniqueNames(names []string, convert func(string) string) []string {
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	for i, name := range names {
		candidate := convert(name)
		base := candidate
		for n := 2; ; n++ {
			if _, ok := used[candidate]; !ok {
				break
			}
			candidate = base + strconv.Itoa(n)
		}
		used[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}
