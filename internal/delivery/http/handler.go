package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/FredrikM97/grocery-scan-card/internal/usecase"
)

// ScanController is the slice of the scan session the handlers need.
type ScanController interface {
	Open(ctx context.Context) error
	Close()
	State() usecase.SessionState
	HandleDetection(detection domain.Detection)
	UpdateDraft(name, brand string) error
	Confirm(ctx context.Context) error
	SelectCamera(ctx context.Context, deviceID string) error
}

// ListOperations is the slice of the list service the handlers need.
type ListOperations interface {
	AddItem(ctx context.Context, name, listID string, product *domain.Product) error
	GetItems(ctx context.Context, listID string) ([]domain.ShoppingListItem, error)
	ToggleComplete(ctx context.Context, itemID, listID string) error
	RemoveItem(ctx context.Context, itemID, listID string) error
	ClearCompleted(ctx context.Context, listID string) error
}

// ProductLookup is the slice of the lookup service the handlers need.
type ProductLookup interface {
	Resolve(ctx context.Context, barcode string) (*domain.Product, error)
	Suggestions() []string
}

// HandlerConfig carries the list presentation policy into the handlers.
type HandlerConfig struct {
	ListID        string
	ShowCompleted bool
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scan       ScanController
	list       ListOperations
	lookup     ProductLookup
	translator domain.Translator
	cfg        HandlerConfig
	log        zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	scan ScanController,
	list ListOperations,
	lookup ProductLookup,
	translator domain.Translator,
	cfg HandlerConfig,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		scan:       scan,
		list:       list,
		lookup:     lookup,
		translator: translator,
		cfg:        cfg,
		log:        log.With().Str("component", "http").Logger(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grocery-scan-card",
		"version": "1.0.0",
	})
}

// bannerView is the wire shape for a session banner: the stable key for
// clients that localize themselves, plus a pre-translated message.
type bannerView struct {
	Level   string `json:"level"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

type sessionView struct {
	SessionID      string                `json:"session_id"`
	Phase          domain.Phase          `json:"phase"`
	LastDetected   domain.Detection      `json:"last_detected"`
	Draft          domain.ReviewDraft    `json:"draft"`
	Cameras        []domain.CameraDevice `json:"cameras"`
	SelectedCamera string                `json:"selected_camera"`
	Banner         *bannerView           `json:"banner,omitempty"`
}

func (h *Handler) sessionView() sessionView {
	state := h.scan.State()
	view := sessionView{
		SessionID:      state.SessionID,
		Phase:          state.Phase,
		LastDetected:   state.LastDetected,
		Draft:          state.Draft,
		Cameras:        state.Cameras,
		SelectedCamera: state.SelectedCamera,
	}
	if state.Banner != nil {
		view.Banner = &bannerView{
			Level:   string(state.Banner.Level),
			Key:     state.Banner.Key,
			Message: h.translator.Translate(state.Banner.Key, state.Banner.Vars),
		}
	}
	return view
}

// OpenScan starts a new scan session. A camera acquisition failure is not
// fatal: the session stays open with an error banner so the client can
// offer device re-selection.
func (h *Handler) OpenScan(c *gin.Context) {
	if err := h.scan.Open(c.Request.Context()); err != nil {
		var camErr *domain.CameraError
		if !errors.As(err, &camErr) {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.sessionView())
}

// CloseScan tears down the current scan session.
func (h *Handler) CloseScan(c *gin.Context) {
	h.scan.Close()
	c.Status(http.StatusNoContent)
}

// ScanState returns a snapshot of the current session.
func (h *Handler) ScanState(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionView())
}

type detectionRequest struct {
	RawValue string `json:"raw_value" binding:"required"`
	Format   string `json:"format"`
}

// PostDetection injects a detection from the host app's native scanner.
func (h *Handler) PostDetection(c *gin.Context) {
	var req detectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raw_value is required"})
		return
	}

	h.scan.HandleDetection(domain.Detection{RawValue: req.RawValue, Format: req.Format})
	c.JSON(http.StatusOK, h.sessionView())
}

type draftRequest struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// UpdateDraft edits the review draft of the current session.
func (h *Handler) UpdateDraft(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.scan.UpdateDraft(req.Name, req.Brand); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionView())
}

// ConfirmScan commits the review draft to the list. Validation failures
// return the session snapshot alongside the error so the client can render
// the banner without a second round trip.
func (h *Handler) ConfirmScan(c *gin.Context) {
	if err := h.scan.Confirm(c.Request.Context()); err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": err.Error(), "session": h.sessionView()})
		return
	}
	c.JSON(http.StatusOK, h.sessionView())
}

type cameraRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

// SelectCamera switches the active capture device.
func (h *Handler) SelectCamera(c *gin.Context) {
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}

	if err := h.scan.SelectCamera(c.Request.Context(), req.DeviceID); err != nil {
		var camErr *domain.CameraError
		if !errors.As(err, &camErr) {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.sessionView())
}

// ListCameras returns the devices enumerated for the current session.
func (h *Handler) ListCameras(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cameras": h.sessionView().Cameras})
}

// GetListItems returns the shopping list, honoring the show_completed
// setting.
func (h *Handler) GetListItems(c *gin.Context) {
	items, err := h.list.GetItems(c.Request.Context(), h.cfg.ListID)
	if err != nil {
		h.fail(c, err)
		return
	}

	if !h.cfg.ShowCompleted {
		visible := items[:0]
		for _, item := range items {
			if !item.Completed() {
				visible = append(visible, item)
			}
		}
		items = visible
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addItemRequest struct {
	Name    string `json:"name" binding:"required"`
	Brand   string `json:"brand"`
	Barcode string `json:"barcode"`
}

// AddListItem adds an item directly, bypassing the scan flow.
func (h *Handler) AddListItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	product := &domain.Product{
		Barcode: req.Barcode,
		Name:    req.Name,
		Brand:   req.Brand,
		Source:  domain.SourceManual,
	}
	if err := h.list.AddItem(c.Request.Context(), req.Name, h.cfg.ListID, product); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// ToggleListItem flips an item's completion status.
func (h *Handler) ToggleListItem(c *gin.Context) {
	if err := h.list.ToggleComplete(c.Request.Context(), c.Param("id"), h.cfg.ListID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteListItem removes an item from the list.
func (h *Handler) DeleteListItem(c *gin.Context) {
	if err := h.list.RemoveItem(c.Request.Context(), c.Param("id"), h.cfg.ListID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCompleted removes every completed item from the list.
func (h *Handler) ClearCompleted(c *gin.Context) {
	if err := h.list.ClearCompleted(c.Request.Context(), h.cfg.ListID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProduct resolves a barcode through cache and product database.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.lookup.Resolve(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetSuggestions returns the most frequently used item names.
func (h *Handler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": h.lookup.Suggestions()})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
