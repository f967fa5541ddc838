package internal

import (
	"os"
	"strings"
)

// Contains checks if needle exists in elems.
func Contains[T comparable](elems []T, needle T) bool {
	for _, elem := range elems {
		if needle == elem {
			return true
		}
	}
	return false
}

func ExpandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	return strings.Replace(path, "~", os.Getenv("HOME"), 1)
}
