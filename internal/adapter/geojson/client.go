// Package geojson fetches and encodes the choropleth geometry.
package geojson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// StatePlaceholder is replaced by the state code in the municipality URL.
const StatePlaceholder = "{uf}"

// ErrNotFeatureCollection is returned for documents of any other GeoJSON type.
var ErrNotFeatureCollection = errors.New("geojson: not a FeatureCollection")

// Client implements domain.GeometrySource over public GeoJSON URLs.
type Client struct {
	httpClient        *http.Client
	statesURL         string
	municipalitiesURL string
	logger            *slog.Logger
}

// NewClient creates a geometry client. municipalitiesURL must contain {uf}.
func NewClient(statesURL, municipalitiesURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		statesURL:         statesURL,
		municipalitiesURL: municipalitiesURL,
		logger:            logger,
	}
}

// States fetches the national state collection.
func (c *Client) States(ctx context.Context) ([]domain.Feature, error) {
	return c.doRequest(ctx, c.statesURL)
}

// Municipalities fetches the municipality collection of one state.
func (c *Client) Municipalities(ctx context.Context, stateCode int) ([]domain.Feature, error) {
	u := strings.ReplaceAll(c.municipalitiesURL, StatePlaceholder, strconv.Itoa(stateCode))
	return c.doRequest(ctx, u)
}

func (c *Client) doRequest(ctx context.Context, u string) ([]domain.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geometry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geometry source error: status %d: %s", resp.StatusCode, body)
	}

	features, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("geometry fetched", "url", u, "features", len(features), "duration", time.Since(start))
	return features, nil
}

// GeoJSON wire types. Feature ids and properties are left untyped because the
// public collections disagree on them.

type collection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// Decode reads a FeatureCollection. Numbers in properties are kept as
// json.Number so long IBGE codes survive unchanged.
func Decode(r io.Reader) ([]domain.Feature, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var fc collection
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: %q", ErrNotFeatureCollection, fc.Type)
	}

	out := make([]domain.Feature, 0, len(fc.Features))
	for i, rf := range fc.Features {
		f := domain.Feature{ID: featureID(rf.ID), Properties: rf.Properties}
		if f.Properties == nil {
			f.Properties = map[string]any{}
		}
		if len(rf.Geometry) > 0 && !bytes.Equal(rf.Geometry, []byte("null")) {
			var g geom.T
			if err := geojson.Unmarshal(rf.Geometry, &g); err != nil {
				return nil, fmt.Errorf("decode geometry of feature %d: %w", i, err)
			}
			f.Geometry = g
		}
		out = append(out, f)
	}
	return out, nil
}

// featureID accepts string and numeric ids.
func featureID(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
