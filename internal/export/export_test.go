package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/photo-culler/internal/media"
)

// groupOf builds a group from photos and selects the given indices.
func groupOf(index int, photos []*media.Photo, selected ...int) *media.Group {
	g := media.NewGroup()
	g.Index = index
	for i, p := range photos {
		p.Index = i
		g.Add(p)
	}
	for _, i := range selected {
		g.AddSelected(photos[i])
	}
	return g
}

func writePhoto(t *testing.T, dir, name, content string) *media.Photo {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return media.NewPhoto(path, 0, "0101")
}

func TestBuildReport(t *testing.T) {
	a := media.NewPhoto("/photos/a.jpg", 1000, "0000")
	b := media.NewPhoto("/photos/b.jpg", 3000, "0011")
	b.SetMetrics(2, 50)
	c := media.NewFailedPhoto("/photos/c.jpg", 90000, errors.New("failed to decode image"))
	c.SetMetrics(87, 100)

	groups := []*media.Group{
		groupOf(0, []*media.Photo{a, b}, 1),
		groupOf(1, []*media.Photo{c}),
	}
	now := time.UnixMilli(1700000000000)

	report := BuildReport(groups, Thresholds{TimeThresholdSeconds: 15, SimilarityThresholdPercent: 45}, "run-1", now)

	assert.Equal(t, 2, report.TotalGroups)
	assert.Equal(t, 3, report.TotalPhotos)
	assert.EqualValues(t, 1700000000000, report.ExportTimestamp)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, []string{"b.jpg"}, report.Groups[0].SelectedTakes)
	assert.Empty(t, report.Groups[1].SelectedTakes)
	assert.NotNil(t, report.Groups[1].SelectedTakes, "empty selection encodes as []")

	first := report.Groups[0].Photos[0]
	assert.Nil(t, first.DeltaTimeSeconds)
	assert.False(t, first.IsSelected)

	second := report.Groups[0].Photos[1]
	require.NotNil(t, second.DeltaTimeSeconds)
	assert.Equal(t, 2.0, *second.DeltaTimeSeconds)
	assert.Equal(t, 50.0, *second.SimilarityPercent)
	assert.True(t, second.IsSelected)

	assert.Equal(t, "failed to decode image", report.Groups[1].Photos[0].HashError)
}

func TestWriteJSON_FieldNames(t *testing.T) {
	a := media.NewPhoto("/photos/a.jpg", 1000, "0000")
	report := BuildReport([]*media.Group{groupOf(0, []*media.Photo{a}, 0)}, Thresholds{TimeThresholdSeconds: 15, SimilarityThresholdPercent: 45}, "", time.UnixMilli(5))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"totalGroups", "totalPhotos", "exportTimestamp", "thresholds", "groups"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "runId")

	thresholds := raw["thresholds"].(map[string]any)
	assert.Equal(t, 15.0, thresholds["timeThresholdSeconds"])
	assert.Equal(t, 45.0, thresholds["similarityThresholdPercent"])

	group := raw["groups"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"a.jpg"}, group["selectedTakes"])
	photo := group["photos"].([]any)[0].(map[string]any)
	assert.Equal(t, true, photo["isSelected"])
	assert.NotContains(t, photo, "deltaTimeSeconds")
	assert.NotContains(t, photo, "hashError")
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \""), "output is indented")
}

func TestWriteJSONFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "groups.json")

	require.NoError(t, WriteJSONFile(path, Report{Groups: []GroupReport{}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"groups": []`)
}

func TestCopySelected(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "best")

	a1 := writePhoto(t, src, "day1/IMG_1.jpg", "one")
	a2 := writePhoto(t, src, "day2/IMG_1.jpg", "two")
	a3 := writePhoto(t, src, "day3/IMG_1.jpg", "three")
	b := writePhoto(t, src, "day1/IMG_2.jpg", "b")
	skipped := writePhoto(t, src, "day1/IMG_3.jpg", "skipped")

	groups := []*media.Group{
		groupOf(0, []*media.Photo{a1, b}, 0, 1),
		groupOf(1, []*media.Photo{skipped}),
		groupOf(2, []*media.Photo{a2}, 0),
		groupOf(3, []*media.Photo{a3}, 0),
	}

	copied, err := CopySelected(groups, dst, nil)
	require.NoError(t, err)
	require.Len(t, copied, 4)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"IMG_1.jpg", "IMG_2.jpg", "IMG_1_1.jpg", "IMG_1_2.jpg"}, names)

	data, err := os.ReadFile(filepath.Join(dst, "IMG_1_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestCopySelected_MissingSourceContinues(t *testing.T) {
	src := t.TempDir()
	ok := writePhoto(t, src, "ok.jpg", "ok")
	missing := media.NewPhoto(filepath.Join(src, "gone.jpg"), 0, "0101")

	copied, err := CopySelected([]*media.Group{groupOf(0, []*media.Photo{missing, ok}, 0, 1)}, t.TempDir(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.Len(t, copied, 1)
	assert.Equal(t, ok.Path, copied[0].Source)
}

func TestUniqueNamer(t *testing.T) {
	n := newUniqueNamer()

	assert.Equal(t, "a.jpg", n.next("a.jpg"))
	assert.Equal(t, "a_1.jpg", n.next("a.jpg"))
	assert.Equal(t, "a_2.jpg", n.next("a.jpg"))
	assert.Equal(t, "a_1_1.jpg", n.next("a_1.jpg"))
	assert.Equal(t, "README", n.next("README"))
	assert.Equal(t, "README_1", n.next("README"))
	assert.Equal(t, ".hidden", n.next(".hidden"))
	assert.Equal(t, ".hidden_1", n.next(".hidden"))

	// decomposed e-acute collides with the precomposed form
	assert.Equal(t, "caf\u00e9.jpg", n.next("caf\u00e9.jpg"))
	assert.Equal(t, "cafe\u0301_1.jpg", n.next("cafe\u0301.jpg"))
}

func TestPrintPreview(t *testing.T) {
	a := media.NewPhoto("/photos/a.jpg", 0, "0")
	b := media.NewPhoto("/photos/b.jpg", 0, "0")
	c := media.NewPhoto("/photos/c.jpg", 0, "0")
	groups := []*media.Group{
		groupOf(0, []*media.Photo{a, b}, 1),
		groupOf(1, []*media.Photo{c}),
	}

	var buf bytes.Buffer
	PrintPreview(&buf, groups)

	out := buf.String()
	assert.Contains(t, out, "Group 0 (2 photos):\n  [1] b.jpg\n")
	assert.Contains(t, out, "Group 1 (1 photos): no selection\n")
	assert.Contains(t, out, "2 groups, 1 photos selected")
}
