package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-culler/internal/export"
	"github.com/kozaktomas/photo-culler/internal/media"
	"github.com/kozaktomas/photo-culler/internal/pipeline"
	"github.com/kozaktomas/photo-culler/internal/selection"
)

// testResult builds a run with a three-photo burst and a single photo.
// Every group selects its first photo.
func testResult(t *testing.T) *pipeline.Result {
	t.Helper()

	burst := media.NewGroup()
	burst.Index = 0
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := media.NewPhoto("/photos/"+name, int64(i)*1000, "000111")
		p.Index = i
		if i > 0 {
			p.SetMetrics(1, 0)
		}
		burst.Add(p)
	}
	burst.AddSelected(burst.First())

	single := media.NewGroup()
	single.Index = 1
	d := media.NewPhoto("/photos/d.jpg", 60000, "111000")
	d.SetMetrics(57, 100)
	single.Add(d)
	single.AddSelected(d)

	return &pipeline.Result{
		RunID:      "run-1",
		Groups:     []*media.Group{burst, single},
		Photos:     4,
		Thresholds: export.Thresholds{TimeThresholdSeconds: 15, SimilarityThresholdPercent: 45},
		Strategy:   "first",
	}
}

func testHandler(t *testing.T) *ReviewHandler {
	t.Helper()
	return NewReviewHandler(testResult(t), selection.NewManager(nil, nil), nil)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
