package utils

import (
	"regexp"
	"strconv"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ParseID parses an opaque entity id. Only plain non-negative decimal strings
// are accepted; signs, spaces and values overflowing uint report false.
func ParseID(s string) (uint, bool) {
	if !digitsOnly.MatchString(s) {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
