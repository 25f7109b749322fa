package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/couchcryptid/dengue-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/dengue-dashboard/internal/adapter/export"
	"github.com/couchcryptid/dengue-dashboard/internal/adapter/geojson"
	"github.com/couchcryptid/dengue-dashboard/internal/dashboard"
	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const (
	headerContentType = "Content-Type"
	contentTypeSVG    = "image/svg+xml"

	maxBodyBytes = 1 << 20
)

// mapResponse carries the styled collection plus what the legend needs.
type mapResponse struct {
	Level     domain.Level                 `json:"level"`
	Year      int                          `json:"year"`
	StateCode int                          `json:"state_code,omitempty"`
	StateName string                       `json:"state_name,omitempty"`
	Breaks    []float64                    `json:"breaks"`
	Legend    []domain.LegendItem          `json:"legend"`
	Matches   map[domain.MatchStrategy]int `json:"matches"`
	Features  json.RawMessage              `json:"features"`
}

type selectRequest struct {
	Properties map[string]any `json:"properties"`
}

type selectResponse struct {
	Selection domain.Selection    `json:"selection"`
	Match     domain.FeatureMatch `json:"match"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.ctrl.Status())
}

// handleReload keeps loading after the client goes away, so a dropped
// connection does not turn a healthy reload into a failed status.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Load(context.WithoutCancel(r.Context())); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadGateway, s.ctrl.Status())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	c, err := s.ctrl.Choices()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) handleSelection(w http.ResponseWriter, _ *http.Request) {
	sel, err := s.ctrl.Selection()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sel)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var u dashboard.SelectionUpdate
	if err := decodeBody(w, r, &u); err != nil {
		s.writeError(w, err)
		return
	}
	sel, err := s.ctrl.Update(u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sel)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	sel, err := s.ctrl.Reset()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sel)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	layer, err := s.ctrl.MapLayer(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	fc, err := geojson.EncodeLayer(layer)
	if err != nil {
		s.writeError(w, fmt.Errorf("encode layer: %w", err))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, mapResponse{
		Level:     layer.Level,
		Year:      layer.Year,
		StateCode: layer.StateCode,
		StateName: layer.StateName,
		Breaks:    layer.Breaks,
		Legend:    layer.Legend,
		Matches:   layer.Matches(),
		Features:  fc,
	})
}

func (s *Server) handleMapSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Properties == nil {
		s.writeError(w, badRequest(errors.New("properties are required")))
		return
	}
	sel, m, err := s.ctrl.SelectFeature(req.Properties)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, selectResponse{Selection: sel, Match: m})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	view, err := s.ctrl.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleSeries(w http.ResponseWriter, _ *http.Request) {
	series, err := s.ctrl.Series()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, series)
}

func (s *Server) handleSeasonality(w http.ResponseWriter, _ *http.Request) {
	series, err := s.ctrl.Seasonality()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, series)
}

func (s *Server) handleSeriesChart(w http.ResponseWriter, _ *http.Request) {
	series, err := s.ctrl.Series()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSVG(w, series, chart.RenderSeries)
}

func (s *Server) handleSeasonalityChart(w http.ResponseWriter, _ *http.Request) {
	series, err := s.ctrl.Seasonality()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSVG(w, series, chart.RenderSeasonality)
}

func (s *Server) writeSVG(w http.ResponseWriter, series domain.Series, render func(io.Writer, domain.Series) error) {
	var buf bytes.Buffer
	if err := render(&buf, series); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set(headerContentType, contentTypeSVG)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	level := domain.LevelState
	if q := r.URL.Query().Get("level"); q != "" {
		parsed, err := domain.ParseLevel(q)
		if err != nil {
			s.writeError(w, err)
			return
		}
		level = parsed
	}
	idx, err := s.ctrl.Index(level)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWide(&buf, idx, level, s.ctrl.MinYear()); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set(headerContentType, export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(level)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Errorf("decode request: %w", err))
	}
	return nil
}

// statusFor maps controller and domain errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrGeometryUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnknownLevel),
		errors.Is(err, domain.ErrUnknownYear),
		errors.Is(err, domain.ErrUnknownState),
		errors.Is(err, domain.ErrUnknownDimension),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownAgeBand):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSeries), errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
