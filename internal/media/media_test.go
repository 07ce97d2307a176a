package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_AddSetsOwner(t *testing.T) {
	g := NewGroup()
	p := NewPhoto("/photos/a.jpg", 1000, "0101")

	g.Add(p)

	assert.Same(t, g, p.Group())
	assert.Equal(t, 1, g.Size())
	assert.Same(t, p, g.First())
	assert.Same(t, p, g.Last())
}

func TestGroup_SelectionKeepsInsertionOrder(t *testing.T) {
	g := NewGroup()
	a := NewPhoto("/a.jpg", 1, "0")
	b := NewPhoto("/b.jpg", 2, "0")
	c := NewPhoto("/c.jpg", 3, "0")
	g.Add(a)
	g.Add(b)
	g.Add(c)

	assert.True(t, g.AddSelected(c))
	assert.True(t, g.AddSelected(a))
	assert.False(t, g.AddSelected(a), "selecting twice is a no-op")

	assert.Equal(t, []*Photo{c, a}, g.Selected())
	assert.True(t, a.IsSelected())
	assert.False(t, b.IsSelected())
}

func TestGroup_SelectionIsSubsetOfMembers(t *testing.T) {
	g := NewGroup()
	member := NewPhoto("/a.jpg", 1, "0")
	stranger := NewPhoto("/b.jpg", 2, "0")
	g.Add(member)

	assert.False(t, g.AddSelected(stranger))
	g.SetSelection([]*Photo{stranger, member})

	assert.Equal(t, []*Photo{member}, g.Selected())
}

func TestGroup_ToggleAndClear(t *testing.T) {
	g := NewGroup()
	p := NewPhoto("/a.jpg", 1, "0")
	g.Add(p)

	g.ToggleSelection(p)
	assert.True(t, g.IsSelected(p))
	g.ToggleSelection(p)
	assert.False(t, g.IsSelected(p))

	g.AddSelected(p)
	g.ClearSelection()
	assert.Empty(t, g.Selected())
}

func TestGroup_RemovePhotoDropsSelection(t *testing.T) {
	g := NewGroup()
	a := NewPhoto("/a.jpg", 1, "0")
	b := NewPhoto("/b.jpg", 2, "0")
	g.Add(a)
	g.Add(b)
	g.AddSelected(a)

	require.True(t, g.RemovePhoto(a))

	assert.Equal(t, 1, g.Size())
	assert.Empty(t, g.Selected())
	assert.Nil(t, a.Group())
	assert.False(t, g.RemovePhoto(a))
}

func TestGroup_MaxSimilarity(t *testing.T) {
	g := NewGroup()
	assert.Zero(t, g.MaxSimilarity(), "empty group")

	first := NewPhoto("/a.jpg", 1, "0")
	// Metrics on the first member are ignored
	first.SetMetrics(100, 90)
	g.Add(first)
	assert.Zero(t, g.MaxSimilarity(), "single member")

	second := NewPhoto("/b.jpg", 2, "0")
	second.SetMetrics(1, 12.5)
	third := NewPhoto("/c.jpg", 3, "0")
	third.SetMetrics(1, 7)
	g.Add(second)
	g.Add(third)

	assert.InDelta(t, 12.5, g.MaxSimilarity(), 1e-9)
}

func TestPhoto_HasHash(t *testing.T) {
	assert.True(t, NewPhoto("/a.jpg", 0, "01").HasHash())
	assert.False(t, NewPhoto("/a.jpg", 0, "").HasHash())
	assert.False(t, NewFailedPhoto("/a.jpg", 0, errors.New("decode failed")).HasHash())
}

func TestPhoto_Metrics(t *testing.T) {
	p := NewPhoto("/dir/IMG_0001.JPG", 0, "0")
	_, _, ok := p.Metrics()
	assert.False(t, ok)

	p.SetMetrics(2.5, 10)
	dt, sim, ok := p.Metrics()
	assert.True(t, ok)
	assert.Equal(t, 2.5, dt)
	assert.Equal(t, 10.0, sim)
	assert.Equal(t, "IMG_0001.JPG", p.Name())
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"scan.png", true},
		{"old.bmp", true},
		{"anim.gif", true},
		{"web.WebP", true},
		{"raw.cr3", false},
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsImageFile(tc.name))
		})
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.PNG", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	files, err := ListImageFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.jpg")}, files)
}

func TestListImageFiles_MissingDir(t *testing.T) {
	_, err := ListImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
