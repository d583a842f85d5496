package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"swipetriage/internal/batch"
	"swipetriage/internal/catalog"
	"swipetriage/internal/models"
	"swipetriage/internal/progress"
	"swipetriage/internal/providers"
	"swipetriage/internal/quota"
	"swipetriage/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 16 // 64 KB

type ApiController struct {
	logger  providers.Logger
	service services.TriageServiceInterface
}

func NewApiController(logger providers.Logger, service services.TriageServiceInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
	}
}

type swipeRequest struct {
	Action models.Action `json:"action"`
}

type assetRequest struct {
	AssetID string `json:"asset_id"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type entitlementRequest struct {
	Entitlement string `json:"entitlement"`
}

type bonusRequest struct {
	Filter string `json:"filter"`
	Count  int    `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// decode reads an optional JSON body; an empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, batch.ErrInvalidState),
		errors.Is(err, batch.ErrBusy),
		errors.Is(err, batch.ErrNoDecisions):
		return http.StatusConflict
	case errors.Is(err, batch.ErrUnknownAsset),
		errors.Is(err, catalog.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnknownFilter),
		errors.Is(err, services.ErrUnknownEntitlement),
		errors.Is(err, quota.ErrInvalidBonus):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrDeletionFailed):
		return http.StatusBadGateway
	case errors.Is(err, progress.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (ac *ApiController) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// snapshotAfter runs op and answers with the resulting view.
func (ac *ApiController) snapshotAfter(w http.ResponseWriter, r *http.Request, op func() error) {
	if err := op(); err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.service.Snapshot())
}

func (ac *ApiController) GetBatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.service.Snapshot())
}

func (ac *ApiController) Swipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return
	}
	result, err := ac.service.Swipe(req.Action)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) Undo(w http.ResponseWriter, r *http.Request) {
	ac.snapshotAfter(w, r, ac.service.Undo)
}

func (ac *ApiController) UndoDelete(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AssetID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "asset_id is required"})
		return
	}
	ac.snapshotAfter(w, r, func() error { return ac.service.UndoDelete(req.AssetID) })
}

func (ac *ApiController) KeepAll(w http.ResponseWriter, r *http.Request) {
	ac.snapshotAfter(w, r, ac.service.KeepAll)
}

func (ac *ApiController) Confirm(w http.ResponseWriter, r *http.Request) {
	result, err := ac.service.Confirm(r.Context())
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) Continue(w http.ResponseWriter, r *http.Request) {
	ac.snapshotAfter(w, r, ac.service.Continue)
}

func (ac *ApiController) SwitchFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decode(w, r, &req) {
		return
	}
	ac.snapshotAfter(w, r, func() error { return ac.service.SwitchFilter(req.Filter) })
}

func (ac *ApiController) GetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.service.Filters())
}

func (ac *ApiController) GetProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.service.Progress())
}

func (ac *ApiController) GetQuota(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.service.Quota())
}

// GrantBonus credits a watched rewarded ad. Count defaults to one ad's worth.
func (ac *ApiController) GrantBonus(w http.ResponseWriter, r *http.Request) {
	req := bonusRequest{Count: services.RewardedAdBonus}
	if !decode(w, r, &req) {
		return
	}
	if err := ac.service.GrantBonus(req.Filter, req.Count); err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.service.Quota())
}

// SetEntitlement takes the subscription state from the purchase verifier and
// answers with the resulting view.
func (ac *ApiController) SetEntitlement(w http.ResponseWriter, r *http.Request) {
	var req entitlementRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Entitlement == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "entitlement is required"})
		return
	}
	ac.snapshotAfter(w, r, func() error { return ac.service.SetEntitlement(req.Entitlement) })
}

func (ac *ApiController) ResetQuota(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decode(w, r, &req) {
		return
	}
	if err := ac.service.ResetQuota(req.Filter); err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.service.Quota())
}

// Refresh starts a rescan and returns without waiting for it.
func (ac *ApiController) Refresh(w http.ResponseWriter, r *http.Request) {
	ac.service.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (ac *ApiController) Reset(w http.ResponseWriter, r *http.Request) {
	ac.snapshotAfter(w, r, ac.service.Reset)
}

// GetAsset streams best-effort content. Missing or slow content is answered
// with a placeholder image, flagged by the X-Placeholder header.
func (ac *ApiController) GetAsset(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id is required"})
		return
	}
	content, err := ac.service.Content(r.Context(), id, catalog.ParseQuality(r.URL.Query().Get("quality")))
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", content.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.Header().Set("X-Placeholder", strconv.FormatBool(content.Placeholder))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data)
}
