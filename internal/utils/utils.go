package utils

import "strings"

func UniqueStrings(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(input))
	for _, val := range input {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}

// SplitAndTrim splits s on sep, trims each part and drops empty and
// repeated entries.
func SplitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return UniqueStrings(out)
}
