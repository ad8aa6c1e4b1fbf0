package dash

import (
	"fmt"
	"strconv"
	"strings"
)

// Template identifiers.
const (
	identRepresentationID = "RepresentationID"
	identNumber           = "Number"
	identBandwidth        = "Bandwidth"
	identTime             = "Time"
)

// TemplateContext holds the values substituted into one segment URL.
type TemplateContext struct {
	RepresentationID string
	Bandwidth        uint64
	Number           uint64
	Time             uint64
}

// ExpandTemplate substitutes the $identifier$ tokens of template.
//
// $RepresentationID$ is replaced verbatim. $Number$, $Bandwidth$ and $Time$
// are replaced by their decimal value, or formatted with a C printf
// specifier when one follows the identifier, e.g. $Number%06d$. Any other
// $...$ span is copied unchanged, as is an unterminated trailing "$...".
// An unusable format specifier fails the whole expansion with ErrInvalidFormat.
func ExpandTemplate(template string, ctx TemplateContext) (string, error) {
	const (
		outside = iota
		inside
	)

	var out, token strings.Builder
	state := outside
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch state {
		case outside:
			if c == '$' {
				state = inside
				token.Reset()
				continue
			}
			out.WriteByte(c)
		case inside:
			if c != '$' {
				token.WriteByte(c)
				continue
			}
			s, err := ctx.substitute(token.String())
			if err != nil {
				return "", err
			}
			out.WriteString(s)
			state = outside
		}
	}
	if state == inside {
		out.WriteByte('$')
		out.WriteString(token.String())
	}
	return out.String(), nil
}

// substitute returns the replacement for the text between two '$'.
func (ctx TemplateContext) substitute(token string) (string, error) {
	if token == identRepresentationID {
		return ctx.RepresentationID, nil
	}

	for _, n := range []struct {
		ident string
		value uint64
	}{
		{identNumber, ctx.Number},
		{identBandwidth, ctx.Bandwidth},
		{identTime, ctx.Time},
	} {
		if !strings.HasPrefix(token, n.ident) {
			continue
		}
		spec := token[len(n.ident):]
		if spec == "" {
			return strconv.FormatUint(n.value, 10), nil
		}
		if spec[0] != '%' {
			break
		}
		s, err := formatUint(spec, n.value)
		if err != nil {
			return "", fmt.Errorf("token $%s$: %w", token, err)
		}
		return s, nil
	}
	return "$" + token + "$", nil
}
