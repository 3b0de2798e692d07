package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/service"
	"github.com/andresuchdata/autopo-reorder/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// ReorderService is what the handler needs from the service layer.
type ReorderService interface {
	Run(ctx context.Context, date time.Time, dryRun bool) (*domain.ReorderRun, error)
	GetRun(ctx context.Context, id string) (*domain.ReorderRun, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.ReorderRun, error)
	ListExports(ctx context.Context) ([]storage.ObjectInfo, error)
}

type ReorderHandler struct {
	svc ReorderService
	now func() time.Time
}

func NewReorderHandler(svc ReorderService) *ReorderHandler {
	return &ReorderHandler{svc: svc, now: time.Now}
}

type runRequest struct {
	Date   string `json:"date"`
	DryRun bool   `json:"dry_run"`
}

type runResponse struct {
	ID            string              `json:"id"`
	Date          string              `json:"date"`
	DryRun        bool                `json:"dry_run"`
	Orders        []domain.Order      `json:"orders"`
	Escalations   []domain.Escalation `json:"escalations"`
	TotalQuantity int                 `json:"total_quantity"`
	ExportKey     string              `json:"export_key,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toRunResponse(run *domain.ReorderRun) runResponse {
	resp := runResponse{
		ID:            run.ID,
		Date:          run.Date.Format(domain.DateLayout),
		DryRun:        run.DryRun,
		Orders:        run.Orders,
		Escalations:   run.Escalations,
		TotalQuantity: run.TotalQuantity(),
		ExportKey:     run.ExportKey,
		CreatedAt:     run.CreatedAt,
	}
	if resp.Orders == nil {
		resp.Orders = []domain.Order{}
	}
	if resp.Escalations == nil {
		resp.Escalations = []domain.Escalation{}
	}
	return resp
}

// CreateRun evaluates the catalog. The date defaults to today (UTC).
func (h *ReorderHandler) CreateRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	date := h.now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := domain.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date = parsed
	}

	run, err := h.svc.Run(c.Request.Context(), date, req.DryRun)
	if err != nil {
		log.Error().Err(err).Str("date", date.Format(domain.DateLayout)).Msg("reorder run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reorder run failed"})
		return
	}

	c.JSON(http.StatusCreated, toRunResponse(run))
}

func (h *ReorderHandler) GetRun(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", c.Param("id")).Msg("failed to get reorder run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}

	c.JSON(http.StatusOK, toRunResponse(run))
}

func (h *ReorderHandler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	runs, err := h.svc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list reorder runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ReorderHandler) ListExports(c *gin.Context) {
	exports, err := h.svc.ListExports(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list exports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list exports"})
		return
	}
	if exports == nil {
		exports = []storage.ObjectInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"data": exports})
}
