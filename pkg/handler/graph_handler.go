package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/logger"
	ggdb "github.com/yumyai/genegraph/pkg/db"
	"github.com/yumyai/genegraph/pkg/errs"
	"github.com/yumyai/genegraph/pkg/handler/request"
	"github.com/yumyai/genegraph/pkg/model"
	"github.com/yumyai/genegraph/pkg/render"
)

const defaultListSize = 50

// Response of a successful generation.
type GraphResponse struct {
	GraphID          string          `json:"graph_id"`
	Message          string          `json:"message"`
	Graphs           json.RawMessage `json:"graphs"`
	NumGenes         int             `json:"num_genes"`
	NumDomains       int             `json:"num_domains"`
	IsDomainSpecific bool            `json:"is_domain_specific"`
}

type GraphListResponse struct {
	Graphs []*ggdb.StoredGraph `json:"graphs"`
}

// GenerateGraphHandler runs the pipeline on the uploaded files and stores the result.
func (gctx *GraphContext) GenerateGraphHandler(w http.ResponseWriter, r *http.Request) {

	req, err := request.ParseGraphRequest(r, gctx.MaxMemory)
	if err != nil {
		status := http.StatusInternalServerError
		if request.IsRequestError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	cfg := gctx.Config
	if req.Cutoff != nil {
		cfg.CutoffThreshold = *req.Cutoff
	}

	stored, err := generate(r.Context(), req, cfg)
	if err != nil {
		if errs.IsInput(err) {
			logger.Info("Rejected input files", zap.String("error", err.Error()))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Graph generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate graph: %s", err))
		return
	}

	if err := gctx.Store.Save(r.Context(), stored); err != nil {
		logger.Error("Error saving graph", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate graph: %s", err))
		return
	}

	logger.Info("Graph generated",
		zap.String("graph_id", stored.ID),
		zap.Bool("is_domain_specific", stored.IsDomainSpecific),
		zap.Int("num_genes", stored.NumGenes),
		zap.Int("num_domains", stored.NumDomains))

	writeJSON(w, http.StatusOK, GraphResponse{
		GraphID:          stored.ID,
		Message:          "Graph(s) generated successfully",
		Graphs:           stored.Payload,
		NumGenes:         stored.NumGenes,
		NumDomains:       stored.NumDomains,
		IsDomainSpecific: stored.IsDomainSpecific,
	})
}

func generate(ctx context.Context, req *request.GraphRequest, cfg model.Config) (*ggdb.StoredGraph, error) {

	coord, closeCoord, err := openUpload(req.Coordinate)
	if err != nil {
		return nil, err
	}
	defer closeCoord()

	matrices := make([]model.Upload, 0, len(req.Matrices))
	for _, fh := range req.Matrices {
		m, closeMatrix, err := openUpload(fh)
		if err != nil {
			return nil, err
		}
		defer closeMatrix()
		matrices = append(matrices, m)
	}

	stored := &ggdb.StoredGraph{Title: req.Title}

	var payload any
	switch req.Kind {
	case request.GraphKindDomain:
		result, err := model.GenerateDomain(ctx, coord, matrices, cfg)
		if err != nil {
			return nil, err
		}
		stored.IsDomainSpecific = true
		stored.NumGenes = result.NumGenes()
		stored.NumDomains = len(result.Domains)
		stored.Genomes = result.Combined.Genomes
		payload = result
	default:
		graph, err := model.GenerateGeneral(ctx, coord, matrices[0], cfg)
		if err != nil {
			return nil, err
		}
		stored.NumGenes = len(graph.Nodes)
		stored.Genomes = graph.Genomes
		payload = []model.DomainGraph{graph.AsDomainGraph(model.GeneralDomainName)}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Internal(fmt.Errorf("encode graph: %w", err))
	}
	stored.Payload = data

	return stored, nil
}

func openUpload(fh *multipart.FileHeader) (model.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return model.Upload{}, nil, errs.Internal(fmt.Errorf("open upload %s: %w", fh.Filename, err))
	}
	return model.Upload{Filename: fh.Filename, Reader: f}, func() { f.Close() }, nil
}

// GetGraphHandler writes the stored graphs of {graph_id}.
func (gctx *GraphContext) GetGraphHandler(w http.ResponseWriter, r *http.Request) {

	g, ok := gctx.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(g.Payload); err != nil {
		logger.Error("Error writing graph", zap.String("graph_id", g.ID), zap.Error(err))
	}
}

func (gctx *GraphContext) ListGraphsHandler(w http.ResponseWriter, r *http.Request) {

	limit := defaultListSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	graphs, err := gctx.Store.List(r.Context(), limit)
	if err != nil {
		logger.Error("Error listing graphs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list graphs")
		return
	}

	writeJSON(w, http.StatusOK, GraphListResponse{Graphs: graphs})
}

func (gctx *GraphContext) DeleteGraphHandler(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("graph_id")
	err := gctx.Store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ggdb.ErrGraphNotFound):
		writeError(w, http.StatusNotFound, "Graph not found")
	case err != nil:
		logger.Error("Error deleting graph", zap.String("graph_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete graph")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Graph deleted successfully", "graph_id": id})
	}
}

// GraphPage renders the HTML summary of {graph_id}.
func (gctx *GraphContext) GraphPage(w http.ResponseWriter, r *http.Request) {

	g, ok := gctx.lookup(w, r)
	if !ok {
		return
	}

	data, err := render.NewGraphPageData(g)
	if err != nil {
		logger.Error("Error decoding stored graph", zap.String("graph_id", g.ID), zap.Error(err))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderGraphPage(w, data); err != nil {
		logger.Error("Error rendering graph page", zap.Error(err))
	}
}

// MainPage lists the most recent graphs.
func (gctx *GraphContext) MainPage(w http.ResponseWriter, r *http.Request) {

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	graphs, err := gctx.Store.List(r.Context(), defaultListSize)
	if err != nil {
		logger.Error("Error listing graphs", zap.Error(err))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderIndexPage(w, render.IndexPageData{Graphs: graphs}); err != nil {
		logger.Error("Error rendering main page", zap.Error(err))
	}
}

func (gctx *GraphContext) lookup(w http.ResponseWriter, r *http.Request) (*ggdb.StoredGraph, bool) {

	id := r.PathValue("graph_id")
	g, err := gctx.Store.Get(r.Context(), id)
	if errors.Is(err, ggdb.ErrGraphNotFound) {
		writeError(w, http.StatusNotFound, "Graph not found")
		return nil, false
	}
	if err != nil {
		logger.Error("Error reading graph", zap.String("graph_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read graph")
		return nil, false
	}
	return g, true
}
