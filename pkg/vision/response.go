package vision

import (
	"fmt"
	"strings"
)

// CleanResponse strips a conventional markdown code fence (```json ... ``` or
// ``` ... ```) from around the model output before structured parsing.
func CleanResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}
	return strings.TrimSpace(cleaned)
}

// NormalizeDate reformats a day/month/year value separated by "/" to
// year-month-day, zero-padding day and month and expanding a 2-digit year
// with a "20" prefix. Anything it cannot recognize passes through unchanged;
// this is a cosmetic transform, not a validator.
func NormalizeDate(value string) string {
	if value == "" || !strings.Contains(value, "/") {
		return value
	}

	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return value
	}

	day, month, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// StringField pulls a string value from a parsed field map. Absent keys,
// explicit nulls, and non-string values yield nil.
func StringField(fields map[string]interface{}, key string) *string {
	if fields == nil {
		return nil
	}
	value, ok := fields[key]
	if !ok || value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	return &s
}
