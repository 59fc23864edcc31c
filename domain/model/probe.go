package model

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxDecimal is the largest magnitude a 96-bit scaled decimal can hold
var maxDecimal = decimal.RequireFromString("79228162514264337593543950335")

// Number shape filters. Both use the invariant convention: '.' decimal point, ',' digit grouping.
var (
	// decimalPattern allows a leading or trailing sign, grouping and a decimal point but no exponent
	decimalPattern = regexp.MustCompile(`^([+-])?(\d[\d,]*)?(\.\d*)?([+-])?$`)
	// floatPattern allows a leading sign, grouping, a decimal point and an exponent
	floatPattern = regexp.MustCompile(`^[+-]?(\d[\d,]*)?(\.\d*)?([eE][+-]?\d+)?$`)
)

// boolLiterals is the accepted boolean vocabulary (lower case)
var boolLiterals = map[string]struct{}{
	"true": {}, "false": {},
	"yes": {}, "no": {},
	"1": {}, "0": {},
	"y": {}, "n": {},
}

// Datetime patterns to detect. The first group mirrors an invariant "general" parse,
// the trailing entries are the explicit formats that are always accepted.
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 date only (yyyy-MM-dd and the lenient single digit form)
	{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
		[]string{"2006-1-2"},
	},
	{
		regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`),
		[]string{"2006/1/2"},
	},
	// ISO8601 date and time without timezone (yyyy-MM-dd HH:mm:ss)
	{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}[ T]\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-1-2 15:04:05", "2006-1-2 15:04", "2006-1-2T15:04:05", "2006-1-2T15:04"},
	},
	// ISO8601 with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}[ T]\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})$`),
		[]string{
			time.RFC3339, time.RFC3339Nano,
			"2006-1-2T15:04:05Z07:00", "2006-1-2T15:04Z07:00", "2006-1-2T15:04:05Z0700",
			"2006-1-2 15:04:05Z07:00", "2006-1-2 15:04:05Z0700",
		},
	},
	// US formats (MM/dd/yyyy, MM/dd/yyyy HH:mm:ss) followed by dd/MM/yyyy
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "02/01/2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}(:\d{2})?( ?(AM|PM))?$`),
		[]string{
			"1/2/2006 15:04:05", "1/2/2006 15:04",
			"1/2/2006 3:04:05 PM", "1/2/2006 3:04 PM", "1/2/2006 3:04:05PM", "1/2/2006 3:04PM",
		},
	},
	// Month names
	{
		regexp.MustCompile(`^[A-Za-z]{3,9} \d{1,2},? \d{4}$`),
		[]string{"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2} [A-Za-z]{3,9},? \d{4}$`),
		[]string{"2 Jan 2006", "2 January 2006", "2 Jan, 2006", "2 January, 2006"},
	},
	// RFC1123
	{
		regexp.MustCompile(`^[A-Za-z]{3}, \d{1,2} [A-Za-z]{3} \d{4} \d{2}:\d{2}:\d{2} \S+$`),
		[]string{time.RFC1123, time.RFC1123Z},
	},
	// Time only
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"15:04:05", "15:04"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})? ?(AM|PM)$`),
		[]string{"3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM"},
	},
}

// probes holds one matcher per candidate type, indexed by ColumnType
var probes = [columnTypeCount]func(string) bool{
	ColumnTypeBool:     isBool,
	ColumnTypeInt32:    isInt32,
	ColumnTypeInt64:    isInt64,
	ColumnTypeDecimal:  isDecimal,
	ColumnTypeFloat64:  isFloat64,
	ColumnTypeDateTime: isDatetime,
	ColumnTypeGUID:     isGUID,
	ColumnTypeString:   func(string) bool { return true },
}

// Matches reports whether value parses as the given type.
// Values are trimmed before probing; an empty value matches nothing but string.
func Matches(ct ColumnType, value string) bool {
	if !ct.IsValid() {
		return false
	}
	return probes[ct](value)
}

// isBool checks the boolean vocabulary case-insensitively
func isBool(value string) bool {
	_, ok := boolLiterals[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// isInt32 checks if a value fits in a signed 32-bit integer
func isInt32(value string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	return err == nil
}

// isInt64 checks if a value fits in a signed 64-bit integer
func isInt64(value string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return err == nil
}

// isDecimal checks if a value is a plain decimal number within the 96-bit decimal range
func isDecimal(value string) bool {
	value = strings.TrimSpace(value)
	m := decimalPattern.FindStringSubmatch(value)
	if m == nil || (m[2] == "" && len(m[3]) <= 1) {
		return false
	}
	if m[1] != "" && m[4] != "" {
		return false
	}

	sign := m[1] + m[4]
	intPart := strings.ReplaceAll(m[2], ",", "")
	if intPart == "" {
		intPart = "0"
	}
	normalized := sign + intPart
	if frac := strings.TrimPrefix(m[3], "."); frac != "" {
		normalized += "." + frac
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return false
	}
	return d.Abs().LessThanOrEqual(maxDecimal)
}

// isFloat64 checks if a value is a floating point number. Overflow to infinity still counts.
func isFloat64(value string) bool {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "nan", "infinity", "-infinity", "+infinity":
		return true
	}

	m := floatPattern.FindStringSubmatch(value)
	if m == nil || (m[1] == "" && len(m[2]) <= 1) {
		return false
	}

	_, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

// isDatetime checks if a string value represents a datetime
func isDatetime(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		// Try each format for this pattern
		for _, format := range dp.formats {
			if _, err := time.Parse(format, value); err == nil {
				return true
			}
		}
	}
	return false
}

// isGUID checks the canonical 8-4-4-4-12 form only
func isGUID(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}
