// Package httptransport is the HTTP layer. Handlers decode, validate and
// delegate to the domain services; no business logic lives here.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"addresseligibility/internal/cache"
	"addresseligibility/internal/eligibility/models"
	"addresseligibility/internal/geocode"
	"addresseligibility/internal/property"
	"addresseligibility/pkg/requestcontext"
)

// EligibilityService runs structured eligibility checks.
type EligibilityService interface {
	Check(ctx context.Context, req *models.Request) (*models.Response, error)
}

// LookupService resolves free-text addresses to components.
type LookupService interface {
	Lookup(ctx context.Context, address string) (geocode.Components, bool)
}

// PropertyService checks resolved components against the region directory.
type PropertyService interface {
	CheckWithReason(ctx context.Context, comps geocode.Components) property.Result
}

// CacheAdmin is the administrative cache surface.
type CacheAdmin interface {
	GetStats(ctx context.Context) cache.Stats
	IsCached(ctx context.Context, key string) bool
	TTLRemaining(ctx context.Context, key string) int64
	Evict(ctx context.Context, key string)
	ClearAll(ctx context.Context) int64
}

// Handler wires the address endpoints to the domain services.
type Handler struct {
	eligibility EligibilityService
	lookups     LookupService
	properties  PropertyService
	cacheAdmin  CacheAdmin
	logger      *slog.Logger
}

// NewHandler constructs the HTTP handler with its dependencies.
func NewHandler(eligibility EligibilityService, lookups LookupService,
	properties PropertyService, cacheAdmin CacheAdmin, logger *slog.Logger) *Handler {

	return &Handler{
		eligibility: eligibility,
		lookups:     lookups,
		properties:  properties,
		cacheAdmin:  cacheAdmin,
		logger:      logger,
	}
}

// Register mounts the address and cache-admin endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/address", func(r chi.Router) {
		r.Post("/check", h.handleCheck)
		r.Post("/eligibility_check", h.handleEligibilityCheck)
		r.Post("/eligible", h.handleEligibleParam)
		r.Post("/lookup", h.handleLookup)
	})
	r.Route("/api/v1/cache", func(r chi.Router) {
		r.Get("/stats", h.handleCacheStats)
		r.Get("/{key}", h.handleCacheInspect)
		r.Delete("/{key}", h.handleCacheEvict)
		r.Delete("/", h.handleCacheClear)
	})
}

// handleCheck handles POST /api/v1/address/check with the structured
// request shape.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Normalize()

	h.logger.InfoContext(ctx, "checking address eligibility",
		"street", req.StreetAddress,
		"city", req.City,
		"state", req.State,
		"zip", req.ZipCode,
		"request_id", requestcontext.RequestID(ctx),
	)

	resp, err := h.eligibility.Check(ctx, &req)
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility check failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		writeError(w, http.StatusInternalServerError, "eligibility check failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleEligibilityCheck handles POST /api/v1/address/eligibility_check,
// the free-text contract: {"address": "..."} in, a message plus optional
// formatted_address out. Responses are always 200.
func (h *Handler) handleEligibilityCheck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	// A missing or unreadable body is treated the same as a missing address.
	_ = json.NewDecoder(r.Body).Decode(&body)

	h.freeTextCheck(w, r, body.Address)
}

// handleEligibleParam is the form-parameter variant of the free-text check,
// kept for callers of the historical API.
func (h *Handler) handleEligibleParam(w http.ResponseWriter, r *http.Request) {
	h.freeTextCheck(w, r, r.FormValue("address"))
}

func (h *Handler) freeTextCheck(w http.ResponseWriter, r *http.Request, addressText string) {
	ctx := r.Context()

	if strings.TrimSpace(addressText) == "" {
		writeJSON(w, http.StatusOK, map[string]any{"message": "address missing"})
		return
	}

	h.logger.InfoContext(ctx, "checking eligibility for address", "address", addressText)

	// The structured pipeline only needs the street text here; the zip is a
	// placeholder so the request passes shape checks downstream.
	req := &models.Request{StreetAddress: addressText, ZipCode: "00000"}
	req.Normalize()

	resp, err := h.eligibility.Check(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "eligibility check failed")
		return
	}

	if !resp.Eligible {
		writeJSON(w, http.StatusOK, map[string]any{"message": property.MessageNotEligible})
		return
	}

	county := ""
	if len(resp.MatchedZones) > 0 {
		county = resp.MatchedZones[0]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": property.MessageEligible,
		"formatted_address": map[string]string{
			"street":  resp.Address.StreetAddress,
			"city":    resp.Address.City,
			"state":   resp.Address.State,
			"zip":     resp.Address.ZipCode,
			"county":  county,
			"country": resp.Address.Country,
		},
	})
}

// handleLookup handles POST /api/v1/address/lookup: resolve the address via
// the lookup pipeline, then check the components against the region
// directory.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Address string `json:"address"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	comps, _ := h.lookups.Lookup(ctx, body.Address)
	writeJSON(w, http.StatusOK, h.properties.CheckWithReason(ctx, comps))
}

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cacheAdmin.GetStats(r.Context()))
}

func (h *Handler) handleCacheInspect(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	writeJSON(w, http.StatusOK, map[string]any{
		"key":         key,
		"cached":      h.cacheAdmin.IsCached(r.Context(), key),
		"ttl_seconds": h.cacheAdmin.TTLRemaining(r.Context(), key),
	})
}

func (h *Handler) handleCacheEvict(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	h.cacheAdmin.Evict(r.Context(), key)
	writeJSON(w, http.StatusOK, map[string]any{"evicted": key})
}

func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	deleted := h.cacheAdmin.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"cleared": deleted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
