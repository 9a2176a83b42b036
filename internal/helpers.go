package internal

import (
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	letterRunes = []rune("abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ2345679")

	extRegexp = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// RandStringRunes returns a random string with n characters
func RandStringRunes(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

// CleanUpExt returns the lower-cased extension of s without the dot, or an
// empty string when s has none or it contains anything but a-zA-Z0-9.
func CleanUpExt(s string) string {
	ext := strings.TrimPrefix(filepath.Ext(s), ".")
	if !extRegexp.MatchString(ext) {
		return ""
	}
	return strings.ToLower(ext)
}
