package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"energyhub/internal/api/models"
	"energyhub/internal/build"
	"energyhub/internal/climate"
	"energyhub/internal/config"
	"energyhub/internal/milp"
	"energyhub/internal/results"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultNode      = "node"
	defaultTolerance = 1e-6
)

// ModelHandler builds models, serves their LP files and reads solutions
// back.
type ModelHandler struct {
	engine *build.Engine
	cache  *ModelCache
	store  *results.Store
	techs  *TechnologyHandler
	log    *zap.Logger
}

// NewModelHandler creates a model handler. store may be nil, in which case
// solutions cannot be persisted.
func NewModelHandler(engine *build.Engine, cache *ModelCache, store *results.Store, techs *TechnologyHandler, log *zap.Logger) *ModelHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModelHandler{engine: engine, cache: cache, store: store, techs: techs, log: log}
}

// BuildModel handles POST /api/v1/models
func (h *ModelHandler) BuildModel(c *gin.Context) {
	var req models.BuildModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	tec := req.Technology
	if req.TechnologyFile != "" {
		loaded, err := h.loadTechnologyFile(req.TechnologyFile)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		tec = config.MergeTechnology(loaded, req.Technology)
	}

	table, err := climate.NewTable(req.Climate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CLIMATE", err.Error(), nil)
		return
	}

	nodes := req.Nodes
	if len(nodes) == 0 {
		nodes = []string{defaultNode}
	}
	hub, err := h.engine.Assemble(c.Request.Context(), build.Request{
		Nodes:      nodes,
		Technology: tec,
		Climate:    table,
		Model:      req.Model,
	})
	if err != nil {
		respondBuildError(c, err)
		return
	}

	id := uuid.NewString()
	h.cache.Set(id, hub)
	h.log.Info("model built", zap.String("id", id), zap.Int("units", len(hub.Units)))

	c.JSON(http.StatusCreated, models.BuildModelResponse{
		ID:             id,
		Transformation: hub.Options.Transformation.String(),
		Columns:        len(hub.Lowered.Vars),
		Rows:           len(hub.Lowered.Rows),
		Model:          hub.Result.Model,
		Units:          hub.Result.Units,
	})
}

// GetLP handles GET /api/v1/models/:id/lp
func (h *ModelHandler) GetLP(c *gin.Context) {
	entry, ok := h.lookup(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := milp.WriteLP(&buf, entry.Hub.Lowered); err != nil {
		respondError(c, http.StatusInternalServerError, "LP_WRITE_ERROR", err.Error(), nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.lp"`, c.Param("id")))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// SubmitSolution handles POST /api/v1/models/:id/solution
// The body is solver output in either layout milp.ReadSolution accepts.
func (h *ModelHandler) SubmitSolution(c *gin.Context) {
	entry, ok := h.lookup(c)
	if !ok {
		return
	}
	var opts models.SolutionOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTolerance
	}
	if opts.Persist && h.store == nil {
		respondError(c, http.StatusBadRequest, "PERSISTENCE_DISABLED", "result store is not configured", nil)
		return
	}

	values, err := milp.ReadSolution(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_SOLUTION", err.Error(), nil)
		return
	}
	rep, err := entry.Hub.Apply(values, opts.Tolerance)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "INCOMPLETE_SOLUTION", err.Error(), nil)
		return
	}

	resp := models.SolutionResponse{
		ID:         c.Param("id"),
		Matched:    rep.Matched,
		Feasible:   len(rep.Violations) == 0,
		Violations: rep.Violations,
	}
	if opts.Persist {
		resp.RunID = uuid.NewString()
	}
	units := make([]results.Unit, 0, len(rep.Operations))
	for _, no := range rep.Operations {
		rows, err := results.Ledger(no.Node, no.Operation)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "RESULT_ERROR", err.Error(), nil)
			return
		}
		units = append(units, results.Unit{Node: no.Node, Operation: no.Operation})
		unit := models.UnitResult{
			Node:       no.Node,
			Technology: no.Operation.Technology,
			Carrier:    no.Operation.Carrier,
			Summary:    results.Summarize(no.Operation.Size, rows),
		}
		if opts.IncludeLedger {
			unit.Ledger = rows
		}
		resp.Units = append(resp.Units, unit)
	}
	if opts.Persist {
		if err := h.store.SaveRun(resp.RunID, units); err != nil {
			h.log.Error("persist results", zap.String("run_id", resp.RunID), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteModel handles DELETE /api/v1/models/:id
func (h *ModelHandler) DeleteModel(c *gin.Context) {
	if _, ok := h.lookup(c); !ok {
		return
	}
	h.cache.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// GetSeries handles GET /api/v1/runs/:run_id/series
func (h *ModelHandler) GetSeries(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusNotFound, "PERSISTENCE_DISABLED", "result store is not configured", nil)
		return
	}
	var q struct {
		Node       string `form:"node" binding:"required"`
		Technology string `form:"technology" binding:"required"`
		Name       string `form:"name" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	runID := c.Param("run_id")
	values, err := h.store.Series(runID, q.Node, q.Technology, q.Name)
	if err != nil {
		respondError(c, http.StatusNotFound, "SERIES_NOT_FOUND", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":     runID,
		"node":       q.Node,
		"technology": q.Technology,
		"name":       q.Name,
		"values":     values,
	})
}

func (h *ModelHandler) lookup(c *gin.Context) (*CacheEntry, bool) {
	id := c.Param("id")
	entry, ok := h.cache.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "MODEL_NOT_FOUND", fmt.Sprintf("model %s not found or expired", id), nil)
		return nil, false
	}
	return entry, true
}

func (h *ModelHandler) loadTechnologyFile(id string) (config.TechnologyConfig, error) {
	if h.techs == nil {
		return config.TechnologyConfig{}, fmt.Errorf("technology file %q: no technology directory configured", id)
	}
	path, ok := h.techs.Path(id)
	if !ok {
		return config.TechnologyConfig{}, fmt.Errorf("technology file %q not found in %s", id, h.techs.Dir())
	}
	return config.LoadTechnologyFile(path)
}
