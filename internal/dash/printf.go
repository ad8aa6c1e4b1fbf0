package dash

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned when a template token carries a format
// specifier that cannot be applied to an unsigned integer.
var ErrInvalidFormat = errors.New("invalid format specifier")

// C length modifiers, longest first so "ll" wins over "l".
var lengthModifiers = []string{"hh", "ll", "h", "l", "j", "z", "t", "L", "q"}

// formatUint applies a C printf conversion such as "%06d", "%llu" or "%08x"
// to v. The specifier must consist of exactly one integer conversion.
func formatUint(spec string, v uint64) (string, error) {
	verb, err := goVerb(spec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(verb, v), nil
}

// goVerb translates a C integer conversion into the equivalent fmt verb.
// Flags, width and precision carry over unchanged; length modifiers are
// dropped since the value is always a uint64.
func goVerb(spec string) (string, error) {
	invalid := func(reason string) (string, error) {
		return "", fmt.Errorf("%w %q: %s", ErrInvalidFormat, spec, reason)
	}
	if !strings.HasPrefix(spec, "%") {
		return invalid("must start with %")
	}

	var b strings.Builder
	b.WriteByte('%')
	i := 1

	for i < len(spec) && strings.IndexByte("-+ #0", spec[i]) >= 0 {
		b.WriteByte(spec[i])
		i++
	}
	for i < len(spec) && isDigit(spec[i]) {
		b.WriteByte(spec[i])
		i++
	}
	if i < len(spec) && spec[i] == '.' {
		b.WriteByte('.')
		i++
		start := i
		for i < len(spec) && isDigit(spec[i]) {
			i++
		}
		if i == start {
			// "%.d" means precision zero.
			b.WriteByte('0')
		} else {
			b.WriteString(spec[start:i])
		}
	}
	for _, mod := range lengthModifiers {
		if strings.HasPrefix(spec[i:], mod) {
			i += len(mod)
			break
		}
	}

	if i >= len(spec) {
		return invalid("missing conversion")
	}
	switch c := spec[i]; c {
	case 'd', 'i', 'u':
		b.WriteByte('d')
	case 'x', 'X', 'o':
		b.WriteByte(c)
	default:
		return invalid(fmt.Sprintf("unsupported conversion %q", c))
	}
	if i != len(spec)-1 {
		return invalid("trailing characters after conversion")
	}
	return b.String(), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
