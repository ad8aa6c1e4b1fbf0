package storage

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	s := New(afero.NewMemMapFs(), "harvest")
	base := "http://test.com/live/"

	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"http://test.com/live/video_1.mp4", filepath.Join("harvest", "video_1.mp4"), true},
		{"http://test.com/live/v1/seg_1.m4s?token=abc", filepath.Join("harvest", "v1", "seg_1.m4s"), true},
		{"http://test.com/live/a.mp4#frag", filepath.Join("harvest", "a.mp4"), true},
		{"http://test.com/live/../../etc/passwd", filepath.Join("harvest", "etc", "passwd"), true},
		{"http://other.com/live/a.mp4", "", false},
		{"http://test.com/live/?q=1", "", false},
	}
	for _, c := range cases {
		got, ok := s.PathFor(base, c.url)
		assert.Equal(t, c.ok, ok, c.url)
		assert.Equal(t, c.want, got, c.url)
	}
}

func TestSaveAndExists(t *testing.T) {
	s := New(afero.NewMemMapFs(), "out")
	p := filepath.Join("out", "a", "b", "seg.m4s")

	exists, err := s.Exists(p)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Save(p, []byte("data")))

	exists, err = s.Exists(p)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := s.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestSaveFailsOnReadOnlyFs(t *testing.T) {
	s := New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "out")
	err := s.Save(filepath.Join("out", "seg.m4s"), []byte("x"))
	assert.Error(t, err)
}
