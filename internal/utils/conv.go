package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ParseID parses a positive database id, returns 0 if invalid
func ParseID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// PageParam returns the requested page, defaulting to 1
func PageParam(s string) int {
	if page := StringToInt(s); page > 0 {
		return page
	}
	return 1
}
