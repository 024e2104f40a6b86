// Package extract pulls a JSON array of price records out of noisy model
// output: markdown fences, surrounding prose, and arrays truncated by the
// upstream token limit.
package extract

import (
	"strings"

	"grocery-pricing-engine/internal/pkg/common"
)

// JSONArray extracts the first JSON array of objects embedded in text.
// It never fails with an error; any parse failure degrades to nil and the
// caller falls back to text-pattern parsing.
func JSONArray(text string) []common.RawPriceRecord {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := stripFences(text)

	if candidate := scanArray(cleaned, true); candidate != "" {
		if records := parseRecords(candidate); records != nil {
			return records
		}
	}

	// Second pass: anchor at the first '[' regardless of whether an object
	// follows, in case the strict scan picked the wrong bracket.
	if candidate := scanArray(cleaned, false); candidate != "" {
		if records := parseRecords(candidate); records != nil {
			return records
		}
	}

	return nil
}

// stripFences removes leading/trailing markdown code-fence markers.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	if idx := strings.LastIndex(s, "```"); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// scanArray finds the first '[' (optionally requiring a '{' to follow
// somewhere after it) and walks forward tracking bracket depth until the
// matching ']'. String literals are respected: a quote toggles in-string
// state unless preceded by an odd run of backslashes, so brackets inside
// values never skew the depth count.
func scanArray(text string, requireObject bool) string {
	start := strings.Index(text, "[")
	if start == -1 {
		return ""
	}
	if requireObject {
		brace := strings.Index(text[start:], "{")
		if brace == -1 {
			return ""
		}
	}

	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			if c == '"' && !escaped(text, i) {
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	// Unterminated array (token-limit truncation) or a dangling quote left
	// the scan in-string. Fail closed rather than return corrupt data.
	return ""
}

// escaped reports whether the character at index i is preceded by an odd
// number of backslashes.
func escaped(text string, i int) bool {
	backslashes := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		backslashes++
	}
	return backslashes%2 == 1
}

// parseRecords decodes a JSON array string, repairing unquoted keys first.
// Only object elements survive; scalar elements are dropped.
func parseRecords(candidate string) []common.RawPriceRecord {
	var raw []interface{}
	if err := common.ParseJSON(candidate, &raw); err != nil {
		if err := common.ParseJSON(common.QuoteJSONKeys(candidate), &raw); err != nil {
			return nil
		}
	}

	records := make([]common.RawPriceRecord, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, common.RawPriceRecord(obj))
		}
	}
	if len(records) == 0 {
		return nil
	}
	return records
}
