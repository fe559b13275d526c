package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/engine/matching"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/lintang-b-s/isomatch/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	geojson "github.com/paulmach/go.geojson"
)

type IsomatchService interface {
	MatchPoint(ctx context.Context, p datastructure.Coordinate, radius float64,
		filter *geo.BearingFilter, maxMatches int) ([]matching.MatchedPoint, error)
	MatchPoints(ctx context.Context, params []service.MatchPointParam) ([][]matching.MatchedPoint, error)
	Isochrone(ctx context.Context, param service.IsochroneParam) (service.IsochroneResult, error)
	NearestEdges(ctx context.Context, p datastructure.Coordinate, radius float64, k int) ([]service.NearestEdge, error)
}

type IsomatchHandler struct {
	svc      IsomatchService
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

type RouterOption func(*IsomatchHandler)

func WithMetrics(m *Metrics) RouterOption {
	return func(h *IsomatchHandler) {
		h.metrics = m
	}
}

func IsomatchRouter(r *chi.Mux, svc IsomatchService, opts ...RouterOption) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &IsomatchHandler{svc: svc, validate: validate, trans: trans}
	for _, opt := range opts {
		opt(handler)
	}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/match", handler.MatchPoint)
			r.Post("/match/batch", handler.MatchPoints)
			r.Post("/isochrone", handler.Isochrone)
			r.Get("/nearest", handler.NearestEdges)
		})
	})
}

func (h *IsomatchHandler) validateStruct(w http.ResponseWriter, r *http.Request, s interface{}) bool {
	if err := h.validate.Struct(s); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return false
	}
	return true
}

// Coord model info
//
//	@Description	model for a coordinate
type Coord struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (c Coord) coordinate() datastructure.Coordinate {
	return datastructure.NewCoordinate(c.Lat, c.Lon)
}

// BearingFilterRequest model info
//
//	@Description	only edge parts with a bearing within cutoff_margin degrees of target are matched
type BearingFilterRequest struct {
	Target       float64 `json:"target" validate:"gte=0,lt=360"`
	CutoffMargin float64 `json:"cutoff_margin" validate:"gte=0,lte=180"`
}

func (b *BearingFilterRequest) filter() *geo.BearingFilter {
	if b == nil {
		return nil
	}
	return geo.NewBearingFilter(b.Target, b.CutoffMargin)
}

// MatchPointRequest model info
//
//	@Description	request body for matching a point on the road network
type MatchPointRequest struct {
	Point         Coord                 `json:"point"`
	Radius        float64               `json:"radius" validate:"gte=0,lte=10000"`
	BearingFilter *BearingFilterRequest `json:"bearing_filter,omitempty"`
	MaxMatches    int                   `json:"max_matches" validate:"gte=0"`
}

func (s *MatchPointRequest) Bind(r *http.Request) error {
	return nil
}

// MatchedPointResponse model info
//
//	@Description	a match of the input point on one edge, for one travel direction
type MatchedPointResponse struct {
	EdgeID       int32   `json:"edge_id"`
	Reversed     bool    `json:"reversed"`
	SnappedPoint Coord   `json:"snapped_point"`
	Fraction     float64 `json:"fraction"`
	Distance     float64 `json:"distance"`
	Bearing      float64 `json:"bearing"`
	Reliability  float64 `json:"reliability"`
}

// MatchPointResponse model info
//
//	@Description	response body for point matching, best match first
type MatchPointResponse struct {
	Matches []MatchedPointResponse `json:"matches"`
}

func renderMatchedPoint(m matching.MatchedPoint) MatchedPointResponse {
	return MatchedPointResponse{
		EdgeID:       m.EdgeID,
		Reversed:     m.Reversed,
		SnappedPoint: Coord{Lat: m.SnappedPoint.Lat, Lon: m.SnappedPoint.Lon},
		Fraction:     m.Fraction,
		Distance:     m.Distance,
		Bearing:      m.Bearing,
		Reliability:  m.Reliability,
	}
}

func RenderMatchPointResponse(matches []matching.MatchedPoint) *MatchPointResponse {
	resp := &MatchPointResponse{Matches: make([]MatchedPointResponse, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, renderMatchedPoint(m))
	}
	return resp
}

// MatchPoint
//
//	@Summary		match a point on the road network
//	@Description	snap a point on every edge within the search radius, once per allowed travel direction
//	@Tags			matching
//	@Param			body	body	MatchPointRequest	true	"request body point matching"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/match [post]
//	@Success		200	{object}	MatchPointResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsomatchHandler) MatchPoint(w http.ResponseWriter, r *http.Request) {
	data := &MatchPointRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, *data) {
		return
	}

	matches, err := h.svc.MatchPoint(r.Context(), data.Point.coordinate(), data.Radius,
		data.BearingFilter.filter(), data.MaxMatches)
	if err != nil {
		render.Render(w, r, ErrChooser(err))
		return
	}
	h.metrics.observeMatches(len(matches))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderMatchPointResponse(matches))
}

// MatchPointsRequest model info
//
//	@Description	request body for matching many points at once
type MatchPointsRequest struct {
	Points []MatchPointRequest `json:"points" validate:"required,min=1,max=1000,dive"`
}

func (s *MatchPointsRequest) Bind(r *http.Request) error {
	if len(s.Points) == 0 {
		return errors.New("points cannot be empty")
	}
	return nil
}

// MatchPointsResponse model info
//
//	@Description	response body for batch point matching, in input order
type MatchPointsResponse struct {
	Results []MatchPointResponse `json:"results"`
}

// MatchPoints
//
//	@Summary		match many points on the road network
//	@Description	match every point concurrently, the i-th result belongs to the i-th point
//	@Tags			matching
//	@Param			body	body	MatchPointsRequest	true	"request body batch point matching"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/match/batch [post]
//	@Success		200	{object}	MatchPointsResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsomatchHandler) MatchPoints(w http.ResponseWriter, r *http.Request) {
	data := &MatchPointsRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, *data) {
		return
	}

	params := make([]service.MatchPointParam, len(data.Points))
	for i, p := range data.Points {
		params[i] = service.MatchPointParam{
			Point:         p.Point.coordinate(),
			Radius:        p.Radius,
			BearingFilter: p.BearingFilter.filter(),
			MaxMatches:    p.MaxMatches,
		}
	}
	results, err := h.svc.MatchPoints(r.Context(), params)
	if err != nil {
		render.Render(w, r, ErrChooser(err))
		return
	}

	resp := &MatchPointsResponse{Results: make([]MatchPointResponse, 0, len(results))}
	for _, matches := range results {
		h.metrics.observeMatches(len(matches))
		resp.Results = append(resp.Results, *RenderMatchPointResponse(matches))
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// IsochroneRequest model info
//
//	@Description	request body for an isochrone around a matched point
type IsochroneRequest struct {
	Point         Coord                 `json:"point"`
	Radius        float64               `json:"radius" validate:"gte=0,lte=10000"`
	BearingFilter *BearingFilterRequest `json:"bearing_filter,omitempty"`
	Direction     string                `json:"direction" validate:"omitempty,oneof=downstream upstream"`
	Limit         float64               `json:"limit" validate:"gte=0"`
	Unit          string                `json:"unit" validate:"required"`
	Simplify      bool                  `json:"simplify"`

	SimplifyTolerance float64 `json:"simplify_tolerance" validate:"gte=0,lte=1000"` // meters, 0 = default
}

func (s *IsochroneRequest) Bind(r *http.Request) error {
	if s.Direction == "" {
		s.Direction = "downstream"
	}
	return nil
}

// IsochroneMatchResponse model info
//
//	@Description	the part of an edge inside the isochrone
type IsochroneMatchResponse struct {
	EdgeID        int32   `json:"edge_id"`
	LinkID        int64   `json:"link_id"`
	Reversed      bool    `json:"reversed"`
	StartFraction float64 `json:"start_fraction"`
	EndFraction   float64 `json:"end_fraction"`
	Direction     string  `json:"direction"`
	Polyline      string  `json:"polyline"`
}

// IsochroneResponse model info
//
//	@Description	response body for isochrone. geojson holds one LineString feature per partial edge.
type IsochroneResponse struct {
	MatchedPoint MatchedPointResponse     `json:"matched_point"`
	Edges        []IsochroneMatchResponse `json:"edges"`
	GeoJSON      json.RawMessage          `json:"geojson" swaggertype:"object"`
}

func RenderIsochroneResponse(res service.IsochroneResult) (*IsochroneResponse, error) {
	fc := geojson.NewFeatureCollection()
	edges := make([]IsochroneMatchResponse, 0, len(res.Matches))
	for i, m := range res.Matches {
		geometry := res.Geometries[i]
		edges = append(edges, IsochroneMatchResponse{
			EdgeID:        m.EdgeID,
			LinkID:        m.LinkID,
			Reversed:      m.Reversed,
			StartFraction: m.StartFraction,
			EndFraction:   m.EndFraction,
			Direction:     m.Direction.String(),
			Polyline:      datastructure.CreatePolyline(geometry),
		})

		line := make([][]float64, len(geometry))
		for j, c := range geometry {
			line[j] = []float64{c.Lon, c.Lat}
		}
		feature := geojson.NewLineStringFeature(line)
		feature.SetProperty("edge_id", m.EdgeID)
		feature.SetProperty("link_id", m.LinkID)
		feature.SetProperty("start_fraction", m.StartFraction)
		feature.SetProperty("end_fraction", m.EndFraction)
		feature.SetProperty("direction", m.Direction.String())
		fc.AddFeature(feature)
	}

	raw, err := fc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return &IsochroneResponse{
		MatchedPoint: renderMatchedPoint(res.MatchedPoint),
		Edges:        edges,
		GeoJSON:      raw,
	}, nil
}

// Isochrone
//
//	@Summary		isochrone around a point
//	@Description	match the point, then return every (partial) edge reachable within the limit. upstream returns the edges that can reach the point instead.
//	@Tags			isochrone
//	@Param			body	body	IsochroneRequest	true	"request body isochrone"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/isochrone [post]
//	@Success		200	{object}	IsochroneResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsomatchHandler) Isochrone(w http.ResponseWriter, r *http.Request) {
	data := &IsochroneRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, *data) {
		return
	}

	res, err := h.svc.Isochrone(r.Context(), service.IsochroneParam{
		Point:         data.Point.coordinate(),
		Radius:        data.Radius,
		BearingFilter: data.BearingFilter.filter(),
		Direction:     data.Direction,
		Limit:         data.Limit,
		Unit:          data.Unit,
		Simplify:      data.Simplify,

		SimplifyTolerance: data.SimplifyTolerance,
	})
	if err != nil {
		render.Render(w, r, ErrChooser(err))
		return
	}
	if !res.Matched {
		render.Render(w, r, ErrNotFoundRend(errors.New(service.NotCoveredMessage)))
		return
	}
	h.metrics.observeIsochrone(len(res.Matches))

	resp, err := RenderIsochroneResponse(res)
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// NearestEdgesRequest model info
//
//	@Description	query parameters for nearest edges
type NearestEdgesRequest struct {
	Lat    float64 `validate:"gte=-90,lte=90"`
	Lon    float64 `validate:"gte=-180,lte=180"`
	Radius float64 `validate:"gte=0,lte=10000"`
	K      int     `validate:"gte=1,lte=100"`
}

// NearestEdgeResponse model info
//
//	@Description	an edge near the query point
type NearestEdgeResponse struct {
	Edge         datastructure.Edge `json:"edge"`
	SnappedPoint Coord              `json:"snapped_point"`
	Distance     float64            `json:"distance"`
}

// NearestEdgesResponse model info
//
//	@Description	response body for nearest edges, closest first
type NearestEdgesResponse struct {
	Edges []NearestEdgeResponse `json:"edges"`
}

func RenderNearestEdgesResponse(edges []service.NearestEdge) *NearestEdgesResponse {
	resp := &NearestEdgesResponse{Edges: make([]NearestEdgeResponse, 0, len(edges))}
	for _, e := range edges {
		resp.Edges = append(resp.Edges, NearestEdgeResponse{
			Edge:         e.Edge,
			SnappedPoint: Coord{Lat: e.SnappedPoint.Lat, Lon: e.SnappedPoint.Lon},
			Distance:     e.Distance,
		})
	}
	return resp
}

func parseQueryFloat(r *http.Request, key string, def float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// NearestEdges
//
//	@Summary		nearest edges of a point
//	@Description	up to k edges within radius meters of the point, closest first
//	@Tags			matching
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			radius	query	number	false	"search radius in meters"
//	@Param			k		query	int		false	"maximum number of edges"
//	@Produce		application/json
//	@Router			/api/nearest [get]
//	@Success		200	{object}	NearestEdgesResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsomatchHandler) NearestEdges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("lat and lon are required")))
		return
	}

	data := NearestEdgesRequest{K: matching.DefaultMaxMatches}
	var err error
	if data.Lat, err = parseQueryFloat(r, "lat", 0); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if data.Lon, err = parseQueryFloat(r, "lon", 0); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if data.Radius, err = parseQueryFloat(r, "radius", matching.DefaultSearchRadius); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if s := q.Get("k"); s != "" {
		if data.K, err = strconv.Atoi(s); err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
	}
	if !h.validateStruct(w, r, data) {
		return
	}

	edges, err := h.svc.NearestEdges(r.Context(), datastructure.NewCoordinate(data.Lat, data.Lon), data.Radius, data.K)
	if err != nil {
		render.Render(w, r, ErrChooser(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderNearestEdgesResponse(edges))
}
