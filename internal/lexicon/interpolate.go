package lexicon

import (
	"errors"
	"fmt"
	"strings"
)

// MaxInterpolationDepth bounds how many levels of <name> interpolation are
// followed before giving up. There is no separate cycle-tracking set: a
// genuine cycle simply keeps consuming depth until this limit is hit, the
// same way the reference interpolation engine this is modeled on behaves.
const MaxInterpolationDepth = 10

// ErrInterpolationTooDeep is returned when MaxInterpolationDepth is
// exceeded while resolving a <name> reference.
var ErrInterpolationTooDeep = errors.New("lexicon: interpolation nested too deep (possible circular reference)")

// resolveValue returns the fully-interpolated value of key within section,
// expanding every <name> reference it contains against other values in the
// same section.
func resolveValue(section map[string]string, key string, depth int) (string, error) {
	raw, ok := section[key]
	if !ok {
		return "", fmt.Errorf("no such pattern %q to interpolate", key)
	}
	return expand(section, raw, depth)
}

func expand(section map[string]string, raw string, depth int) (string, error) {
	if depth > MaxInterpolationDepth {
		return "", ErrInterpolationTooDeep
	}

	var out strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			// Preserve escape sequences verbatim; they're the regex
			// parser's concern, not interpolation's.
			out.WriteByte(c)
			out.WriteByte(raw[i+1])
			i += 2
			continue
		}
		if c == '<' {
			end := strings.IndexByte(raw[i+1:], '>')
			if end == -1 {
				out.WriteByte(c)
				i++
				continue
			}
			name := raw[i+1 : i+1+end]
			referenced, ok := section[name]
			if !ok {
				return "", fmt.Errorf("reference to undefined pattern %q", name)
			}
			resolved, err := expand(section, referenced, depth+1)
			if err != nil {
				return "", err
			}
			out.WriteString(resolved)
			i += 1 + end + 1
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.String(), nil
}
