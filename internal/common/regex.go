package common

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileFold compiles a pattern case-insensitively. Patterns that already
// carry the (?i) flag are compiled as-is.
func CompileFold(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return re, nil
}

// MustCompileFold is CompileFold for patterns known at build time.
func MustCompileFold(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := CompileFold(p)
		if err != nil {
			panic(err)
		}
		compiled = append(compiled, re)
	}
	return compiled
}
