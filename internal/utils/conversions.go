package utils

import "strings"

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// FlattenMessages turns a server field-error value into one display string.
// A one-element array becomes its only element; longer arrays are joined.
func FlattenMessages(v any) string {
	switch msgs := v.(type) {
	case string:
		return msgs
	case []any:
		s := ToStringSlice(msgs)
		if len(s) == 1 {
			return s[0]
		}
		return strings.Join(s, "; ")
	case []string:
		if len(msgs) == 1 {
			return msgs[0]
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
