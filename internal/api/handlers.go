package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bookthickness/pkg/buildinfo"
	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/pipeline"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

type graphRequest struct {
	Vertices int     `json:"vertices,omitempty"`
	Edges    [][]int `json:"edges"`
	Engine   string  `json:"engine,omitempty"`
	Refresh  bool    `json:"refresh,omitempty"`
}

type thicknessRequest struct {
	graphRequest
	StartPages int `json:"start_pages,omitempty"`
	MaxPages   int `json:"max_pages,omitempty"`
}

type embeddingRequest struct {
	graphRequest
	Pages  int     `json:"pages"`
	Spines [][]int `json:"spines,omitempty"`
}

type thicknessResponse struct {
	*pipeline.Result
	Thickness int    `json:"thickness,omitempty"`
	RequestID string `json:"request_id"`
}

type spinesResponse struct {
	N      int           `json:"n"`
	Count  int           `json:"count"`
	Spines []spine.Spine `json:"spines,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Map())
}

func (s *Server) handleThickness(w http.ResponseWriter, r *http.Request) {
	var req thicknessRequest
	g, err := s.decodeGraph(w, r, &req, &req.graphRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.queryOptions(req.graphRequest)
	if req.StartPages != 0 {
		opts.StartPages = req.StartPages
	}
	if req.MaxPages != 0 {
		opts.MaxPages = req.MaxPages
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	res, err := s.runner.Thickness(ctx, g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := thicknessResponse{Result: res, RequestID: RequestID(r.Context())}
	if res.Found {
		out.Thickness = res.Embedding.Pages
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	g, err := s.decodeGraph(w, r, &req, &req.graphRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.queryOptions(req.graphRequest)
	opts.Pages = req.Pages
	opts.Spines = make([]spine.Spine, len(req.Spines))
	for i, sp := range req.Spines {
		opts.Spines[i] = spine.Spine(sp)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	res, err := s.runner.Embed(ctx, g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thicknessResponse{Result: res, RequestID: RequestID(r.Context())})
}

func (s *Server) handleSpines(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "vertex count must be a non-negative integer"))
		return
	}
	if n > s.opts.MaxVertices {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "at most %d vertices are accepted, got %d", s.opts.MaxVertices, n))
		return
	}
	list := r.URL.Query().Get("list") == "true"
	if list && n > spine.PoolLimit {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "listing is limited to %d vertices", spine.PoolLimit))
		return
	}
	spines, count := s.runner.Spines(n, list)
	writeJSON(w, http.StatusOK, spinesResponse{N: n, Count: count, Spines: spines})
}

// decodeGraph reads the JSON body into req and builds the graph described by
// base, which must point into req.
func (s *Server) decodeGraph(w http.ResponseWriter, r *http.Request, req any, base *graphRequest) (*graph.Graph, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	g, err := graph.FromFile(graph.File{Vertices: base.Vertices, Edges: base.Edges})
	if err != nil {
		return nil, err
	}
	if g.Order() > s.opts.MaxVertices {
		return nil, errors.New(errors.ErrCodeInvalidInput, "at most %d vertices are accepted, got %d", s.opts.MaxVertices, g.Order())
	}
	return g, nil
}

func (s *Server) queryOptions(req graphRequest) pipeline.Options {
	opts := s.opts.Defaults
	opts.Progress = nil
	opts.Pages = 0
	opts.Spines = nil
	if req.Engine != "" {
		opts.Engine = req.Engine
	}
	opts.Refresh = req.Refresh
	return opts
}
