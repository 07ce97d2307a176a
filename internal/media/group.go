package media

import (
	"slices"
)

// Group is an ordered run of photos plus the subset selected as best takes.
// The selection keeps insertion order.
type Group struct {
	Index    int
	photos   []*Photo
	selected []*Photo
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{}
}

// Add appends a photo and makes this group its owner.
func (g *Group) Add(p *Photo) {
	g.photos = append(g.photos, p)
	p.group = g
}

// Photos returns the members in insertion order.
func (g *Group) Photos() []*Photo {
	return slices.Clone(g.photos)
}

// Size returns the number of members.
func (g *Group) Size() int {
	return len(g.photos)
}

// First returns the first member, or nil for an empty group.
func (g *Group) First() *Photo {
	if len(g.photos) == 0 {
		return nil
	}
	return g.photos[0]
}

// Last returns the most recently added member, or nil for an empty group.
func (g *Group) Last() *Photo {
	if len(g.photos) == 0 {
		return nil
	}
	return g.photos[len(g.photos)-1]
}

// Contains reports whether p is a member.
func (g *Group) Contains(p *Photo) bool {
	return slices.Contains(g.photos, p)
}

// MaxSimilarity is the largest similarity-to-previous metric among the
// non-first members, 0 for a group of one.
func (g *Group) MaxSimilarity() float64 {
	var highest float64
	for _, p := range g.photos[min(1, len(g.photos)):] {
		if _, sim, ok := p.Metrics(); ok && sim > highest {
			highest = sim
		}
	}
	return highest
}

// RemovePhoto drops a member and its selection.
func (g *Group) RemovePhoto(p *Photo) bool {
	i := slices.Index(g.photos, p)
	if i < 0 {
		return false
	}
	g.photos = slices.Delete(g.photos, i, i+1)
	g.RemoveSelected(p)
	p.group = nil
	return true
}

// Selected returns the selected photos in the order they were selected.
func (g *Group) Selected() []*Photo {
	return slices.Clone(g.selected)
}

// IsSelected reports whether p is selected.
func (g *Group) IsSelected(p *Photo) bool {
	return slices.Contains(g.selected, p)
}

// AddSelected selects a member. Non-members and already selected photos are ignored.
func (g *Group) AddSelected(p *Photo) bool {
	if !g.Contains(p) || g.IsSelected(p) {
		return false
	}
	g.selected = append(g.selected, p)
	return true
}

// RemoveSelected clears the selection of p.
func (g *Group) RemoveSelected(p *Photo) bool {
	i := slices.Index(g.selected, p)
	if i < 0 {
		return false
	}
	g.selected = slices.Delete(g.selected, i, i+1)
	return true
}

// ToggleSelection flips the selection of a member.
func (g *Group) ToggleSelection(p *Photo) {
	if !g.RemoveSelected(p) {
		g.AddSelected(p)
	}
}

// ClearSelection deselects everything.
func (g *Group) ClearSelection() {
	g.selected = nil
}

// SetSelection replaces the selection, keeping only members.
func (g *Group) SetSelection(photos []*Photo) {
	g.ClearSelection()
	for _, p := range photos {
		g.AddSelected(p)
	}
}
