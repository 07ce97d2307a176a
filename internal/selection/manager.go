// Package selection picks the best takes of each burst group by evaluating a
// selection strategy expression against every photo.
package selection

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/expression"
	"github.com/kozaktomas/photo-culler/internal/fingerprint"
	"github.com/kozaktomas/photo-culler/internal/media"
)

// DefaultAliases are the built-in strategy names.
var DefaultAliases = map[string]string{
	"first":          "index == 0",
	"last":           "index == length - 1",
	"first_and_last": "index == 0 || index == length - 1",
	"all":            "true",
	"none":           "false",
}

// Alias is a named strategy expression.
type Alias struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Manager resolves aliases and caches compiled strategies. It is safe for
// concurrent use.
type Manager struct {
	aliases map[string]string
	logger  *slog.Logger

	mu       sync.Mutex
	compiled map[string]expression.Node
}

// NewManager creates a manager with the given alias table. Alias names are
// matched case-insensitively. A nil table uses DefaultAliases.
func NewManager(aliases map[string]string, logger *slog.Logger) *Manager {
	if aliases == nil {
		aliases = DefaultAliases
	}
	if logger == nil {
		logger = slog.Default()
	}
	normalized := make(map[string]string, len(aliases))
	for name, expr := range aliases {
		normalized[strings.ToLower(name)] = expr
	}
	return &Manager{
		aliases:  normalized,
		logger:   logger,
		compiled: make(map[string]expression.Node),
	}
}

// Resolve returns the expression an alias stands for, or strategy itself.
func (m *Manager) Resolve(strategy string) string {
	if expr, ok := m.aliases[strings.ToLower(strategy)]; ok {
		return expr
	}
	return strategy
}

// IsAlias reports whether strategy names an alias.
func (m *Manager) IsAlias(strategy string) bool {
	_, ok := m.aliases[strings.ToLower(strategy)]
	return ok
}

// Aliases returns the alias table sorted by name.
func (m *Manager) Aliases() []Alias {
	names := slices.Sorted(maps.Keys(m.aliases))
	out := make([]Alias, 0, len(names))
	for _, name := range names {
		out = append(out, Alias{Name: name, Expression: m.aliases[name]})
	}
	return out
}

// Compile parses a strategy, resolving aliases first. Results are cached by
// the strategy text as given.
func (m *Manager) Compile(strategy string) (expression.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if node, ok := m.compiled[strategy]; ok {
		return node, nil
	}
	node, err := expression.Parse(m.Resolve(strategy))
	if err != nil {
		return nil, fmt.Errorf("compiling strategy %q: %w", strategy, err)
	}
	m.compiled[strategy] = node
	return node, nil
}

// Select evaluates node for each photo of the group in index order and
// returns the photos to select, in selection order. A photo accepted by the
// expression is visible to minDistanceToSelected for every later photo.
// The group itself is not modified.
func Select(node expression.Node, group *media.Group) ([]*media.Photo, error) {
	photos := group.Photos()
	slices.SortStableFunc(photos, func(a, b *media.Photo) int { return a.Index - b.Index })

	maxSimilarity := group.MaxSimilarity()
	var selected []*media.Photo
	for _, p := range photos {
		deltaTime, similarity, _ := p.Metrics()
		ctx := expression.Context{
			Index:                 p.Index,
			Length:                group.Size(),
			DeltaTime:             deltaTime,
			Similarity:            similarity,
			MaxGroupSimilarity:    maxSimilarity,
			MinDistanceToSelected: MinDistanceToSelected(p, selected),
		}

		ok, err := expression.EvaluateBool(node, ctx)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", p.Name(), err)
		}
		if ok {
			selected = append(selected, p)
		}
	}
	return selected, nil
}

// MinDistanceToSelected is the smallest hash distance in percent from p to any
// photo in selected. It is 100 when nothing is selected. Pairs where either
// photo has no hash count as the maximum distance.
func MinDistanceToSelected(p *media.Photo, selected []*media.Photo) float64 {
	minDistance := constants.MaxDistancePercent
	if !p.HasHash() {
		return minDistance
	}
	for _, s := range selected {
		if !s.HasHash() {
			continue
		}
		d, err := fingerprint.DistancePercent(p.Hash, s.Hash)
		if err != nil {
			continue
		}
		minDistance = min(minDistance, d)
	}
	return minDistance
}

// ApplyNode replaces the selection of every group with the result of
// evaluating node. Groups where evaluation fails fall back to their first
// photo. It returns the number of groups that fell back.
func (m *Manager) ApplyNode(node expression.Node, groups []*media.Group) int {
	fallbacks := 0
	for _, g := range groups {
		selected, err := Select(node, g)
		if err != nil {
			m.logger.Warn("selection failed, selecting first photo", "group", g.Index, "error", err)
			selectFirst(g)
			fallbacks++
			continue
		}
		g.SetSelection(selected)
	}
	return fallbacks
}

// Apply compiles strategy and applies it to every group. When the strategy
// does not compile every group falls back to its first photo and the compile
// error is returned; the selection is still usable.
func (m *Manager) Apply(strategy string, groups []*media.Group) error {
	node, err := m.Compile(strategy)
	if err != nil {
		m.logger.Warn("invalid selection strategy, selecting first photo of each group", "strategy", strategy, "error", err)
		for _, g := range groups {
			selectFirst(g)
		}
		return err
	}

	fallbacks := m.ApplyNode(node, groups)
	m.logger.Debug("selection applied", "strategy", strategy, "groups", len(groups), "fallbacks", fallbacks)
	return nil
}

func selectFirst(g *media.Group) {
	g.ClearSelection()
	if first := g.First(); first != nil {
		g.AddSelected(first)
	}
}
