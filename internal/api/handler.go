// Package api exposes token lookups over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/storage"
)

const (
	// MaxMintsPerRequest caps a single lookup request.
	MaxMintsPerRequest = 100
	// DefaultSnapshotLimit applies when ?limit is absent.
	DefaultSnapshotLimit = 20
	// MaxSnapshotLimit caps ?limit.
	MaxSnapshotLimit = 500
)

// Lookuper runs token lookups.
type Lookuper interface {
	Lookup(ctx context.Context, ids []domain.PublicKey) ([]domain.TokenInfo, error)
}

// SlotGetter checks ledger connectivity.
type SlotGetter interface {
	GetSlot(ctx context.Context) (int64, error)
}

// Handler serves the REST endpoints.
type Handler struct {
	lookup    Lookuper
	snapshots storage.SnapshotStore // nil when recording is disabled
	ledger    SlotGetter            // nil skips the ledger check
}

// NewHandler creates a Handler. snapshots and ledger may be nil.
func NewHandler(lookup Lookuper, snapshots storage.SnapshotStore, ledger SlotGetter) *Handler {
	return &Handler{
		lookup:    lookup,
		snapshots: snapshots,
		ledger:    ledger,
	}
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.ledger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		slot, err := h.ledger.GetSlot(ctx)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, errCodeUnavailable, "Ledger unreachable", err.Error())
			return
		}
		resp["slot"] = slot
	}

	c.JSON(http.StatusOK, resp)
}

// GetTokens looks up one or more mints
// GET /api/v1/tokens?mint=<a>,<b>&mint=<c>
func (h *Handler) GetTokens(c *gin.Context) {
	var raw []string
	for _, v := range c.QueryArray("mint") {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
	}

	if len(raw) == 0 {
		respondBadRequest(c, "At least one mint is required")
		return
	}
	if len(raw) > MaxMintsPerRequest {
		respondValidationError(c, "too many mints: at most "+strconv.Itoa(MaxMintsPerRequest)+" per request")
		return
	}

	ids, err := domain.ParsePublicKeys(raw)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	results, err := h.lookup.Lookup(c.Request.Context(), ids)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			respondWithError(c, http.StatusServiceUnavailable, errCodeUnavailable, "Lookup cancelled")
			return
		}
		respondInternalError(c, err, "Failed to look up tokens", zap.Int("mints", len(ids)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": results})
}

// snapshotResponse is the wire form of a recorded snapshot.
type snapshotResponse struct {
	ID        string         `json:"id"`
	Mint      string         `json:"mint"`
	Outcome   domain.Outcome `json:"outcome"`
	Name      *string        `json:"name"`
	Symbol    *string        `json:"symbol"`
	URI       *string        `json:"uri"`
	Supply    *string        `json:"supply"`
	Decimals  *int           `json:"decimals"`
	FetchedAt int64          `json:"fetched_at"`
	CreatedAt int64          `json:"created_at"`
}

// ListSnapshots returns recorded lookups for a mint, newest first
// GET /api/v1/tokens/:mint/snapshots?limit=<n>
func (h *Handler) ListSnapshots(c *gin.Context) {
	if h.snapshots == nil {
		respondWithError(c, http.StatusNotImplemented, errCodeUnavailable, "Snapshot recording is disabled")
		return
	}

	mint, err := domain.ParsePublicKey(c.Param("mint"))
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	limit := DefaultSnapshotLimit
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxSnapshotLimit {
			respondValidationError(c, "limit must be between 1 and "+strconv.Itoa(MaxSnapshotLimit))
			return
		}
	}

	snaps, err := h.snapshots.ListByMint(c.Request.Context(), mint.String(), limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list snapshots", zap.String("mint", mint.String()))
		return
	}

	out := make([]snapshotResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotResponse{
			ID:        s.ID,
			Mint:      s.Mint,
			Outcome:   s.Outcome,
			Name:      s.Name,
			Symbol:    s.Symbol,
			URI:       s.URI,
			Supply:    s.Supply,
			Decimals:  s.Decimals,
			FetchedAt: s.FetchedAt,
			CreatedAt: s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": out})
}
