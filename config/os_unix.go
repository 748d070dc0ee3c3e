//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName makes name usable as a single path segment: separators are
// replaced, leading dots and spaces removed.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		switch sym {
		case 0:
			return -1
		case os.PathSeparator, os.PathListSeparator:
			return '_'
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
