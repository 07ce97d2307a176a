// Package export turns grouped photos into a JSON report, copies the selected
// takes into a folder and prints a textual preview.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/media"
)

// Thresholds are the grouping parameters a report was produced with.
type Thresholds struct {
	TimeThresholdSeconds       float64 `json:"timeThresholdSeconds"`
	SimilarityThresholdPercent float64 `json:"similarityThresholdPercent"`
}

// Report is the JSON document describing a culling run.
type Report struct {
	RunID           string        `json:"runId,omitempty"`
	TotalGroups     int           `json:"totalGroups"`
	TotalPhotos     int           `json:"totalPhotos"`
	ExportTimestamp int64         `json:"exportTimestamp"`
	Thresholds      Thresholds    `json:"thresholds"`
	Groups          []GroupReport `json:"groups"`
}

// GroupReport describes one burst group.
type GroupReport struct {
	GroupIndex    int           `json:"groupIndex"`
	PhotoCount    int           `json:"photoCount"`
	SelectedTakes []string      `json:"selectedTakes"`
	Photos        []PhotoReport `json:"photos"`
}

// PhotoReport describes one photo. The metrics are omitted for the very first
// photo of a run.
type PhotoReport struct {
	Filename          string   `json:"filename"`
	Path              string   `json:"path"`
	Timestamp         int64    `json:"timestamp"`
	Hash              string   `json:"hash"`
	IsSelected        bool     `json:"isSelected"`
	DeltaTimeSeconds  *float64 `json:"deltaTimeSeconds,omitempty"`
	SimilarityPercent *float64 `json:"similarityPercent,omitempty"`
	HashError         string   `json:"hashError,omitempty"`
}

// BuildReport snapshots the groups and their selections.
func BuildReport(groups []*media.Group, thresholds Thresholds, runID string, now time.Time) Report {
	report := Report{
		RunID:           runID,
		TotalGroups:     len(groups),
		ExportTimestamp: now.UnixMilli(),
		Thresholds:      thresholds,
		Groups:          make([]GroupReport, 0, len(groups)),
	}
	for _, g := range groups {
		gr := NewGroupReport(g)
		report.TotalPhotos += gr.PhotoCount
		report.Groups = append(report.Groups, gr)
	}
	return report
}

// NewGroupReport describes a single group.
func NewGroupReport(g *media.Group) GroupReport {
	gr := GroupReport{
		GroupIndex:    g.Index,
		PhotoCount:    g.Size(),
		SelectedTakes: []string{},
		Photos:        make([]PhotoReport, 0, g.Size()),
	}
	for _, p := range g.Selected() {
		gr.SelectedTakes = append(gr.SelectedTakes, p.Name())
	}
	for _, p := range g.Photos() {
		pr := PhotoReport{
			Filename:   p.Name(),
			Path:       p.Path,
			Timestamp:  p.Timestamp,
			Hash:       p.Hash,
			IsSelected: g.IsSelected(p),
		}
		if dt, sim, ok := p.Metrics(); ok {
			pr.DeltaTimeSeconds = &dt
			pr.SimilarityPercent = &sim
		}
		if p.HashErr != nil {
			pr.HashError = p.HashErr.Error()
		}
		gr.Photos = append(gr.Photos, pr)
	}
	return gr
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

// WriteJSONFile writes the report to path, creating parent directories.
func WriteJSONFile(path string, report Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.ExportDirPerm); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := WriteJSON(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report file: %w", err)
	}
	return nil
}
