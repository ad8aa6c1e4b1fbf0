package dash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	ctx := TemplateContext{
		RepresentationID: "repId",
		Bandwidth:        12345,
		Number:           1,
		Time:             123,
	}

	cases := []struct {
		name     string
		template string
		want     string
	}{
		{"number padded", "$RepresentationID$/$Number%06d$.m4s", "repId/000001.m4s"},
		{"time padded", "$RepresentationID$/$Time%05d$.m4s", "repId/00123.m4s"},
		{"bandwidth padded", "$RepresentationID$/$Bandwidth%07d$.m4s", "repId/0012345.m4s"},
		{"adjacent tokens", "$RepresentationID$/$Bandwidth%07d$$Time%05d$$Number%06d$.m4s", "repId/001234500123000001.m4s"},
		{"bare tokens", "$RepresentationID$_$Bandwidth$_$Number$_$Time$", "repId_12345_1_123"},
		{"repeated token", "$Number$-$Number$", "1-1"},
		{"length modifier", "$Number%llu$", "1"},
		{"hex", "$Bandwidth%08x$", "00003039"},
		{"precision", "$Time%.5d$", "00123"},
		{"left aligned", "[$Number%-3d$]", "[1  ]"},
		{"no tokens", "init.mp4", "init.mp4"},
		{"unknown token kept", "$Foo$/$Number$", "$Foo$/1"},
		{"escaped dollar kept", "a$$b", "a$$b"},
		{"identifier with suffix kept", "$NumberX$", "$NumberX$"},
		{"representation id takes no format", "$RepresentationID%05d$", "$RepresentationID%05d$"},
		{"unterminated tail kept", "seg_$Number$_$Time", "seg_1_$Time"},
		{"multibyte text", "vidéo_$Number$", "vidéo_1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ExpandTemplate(c.template, ctx)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestExpandTemplateIsDeterministic(t *testing.T) {
	ctx := TemplateContext{RepresentationID: "a", Bandwidth: 7, Number: 42, Time: 9000}
	tmpl := "$RepresentationID$/$Time%010d$_$Number%04d$_$Bandwidth$.m4s"

	first, err := ExpandTemplate(tmpl, ctx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ExpandTemplate(tmpl, ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExpandTemplateInvalidFormat(t *testing.T) {
	for _, tmpl := range []string{
		"$Number%s$",
		"$Number%$",
		"$Time%06dx$",
		"$Bandwidth%*d$",
		"$Number%f$",
	} {
		t.Run(tmpl, func(t *testing.T) {
			_, err := ExpandTemplate(tmpl, TemplateContext{Number: 1})
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestGoVerb(t *testing.T) {
	cases := map[string]string{
		"%d":    "%d",
		"%06d":  "%06d",
		"%llu":  "%d",
		"%lu":   "%d",
		"%hhi":  "%d",
		"%+5d":  "%+5d",
		"%#x":   "%#x",
		"%X":    "%X",
		"%o":    "%o",
		"%.d":   "%.0d",
		"%8.3u": "%8.3d",
	}
	for in, want := range cases {
		got, err := goVerb(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
