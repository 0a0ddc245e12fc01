package executor

import (
	"fmt"
	"unicode/utf8"
)

// truncatedSuffix marks results cut to the configured maximum length.
const truncatedSuffix = "...(truncated)"

// FormatResult renders an operation result for a report record.
// nil becomes the empty string, strings and byte slices are used verbatim,
// errors and Stringers use their own text, and anything else goes through %v.
// When maxLen > 0 the text is cut to maxLen runes and suffixed with a marker.
func FormatResult(v interface{}, maxLen int) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case []byte:
		s = string(val)
	case error:
		s = val.Error()
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprintf("%v", val)
	}
	return truncate(s, maxLen)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + truncatedSuffix
}
