// Package api exposes modem operations as a JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huawei3g/modem-exporter/modem"
)

// Handler serves the modem API.
type Handler struct {
	modem   modem.Modem
	locator *modem.Locator
}

// NewHandler creates a Handler. The modem must be safe for concurrent use,
// see modem.Synchronized.
func NewHandler(m modem.Modem, locator *modem.Locator) *Handler {
	return &Handler{modem: m, locator: locator}
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Interface   string `json:"interface"`
	Model       string `json:"model"`
	Status      string `json:"status"`
	Signal      int    `json:"signal"`
	NetworkType string `json:"network_type"`
}

// MessageCountResponse is the body of GET /api/sms/count.
type MessageCountResponse struct {
	Count  int `json:"count"`
	Unread int `json:"unread"`
}

// Message is the JSON form of modem.SMSMessage.
type Message struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	Sender      string    `json:"sender"`
	ReceiveTime time.Time `json:"receive_time"`
}

// DeleteRequest is the body of POST /api/sms/delete.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// Device is the JSON form of modem.DiscoveredDevice.
type Device struct {
	Path        string `json:"path"`
	Supported   bool   `json:"supported"`
	ProductID   string `json:"product_id"`
	Interface   string `json:"interface,omitempty"`
	Name        string `json:"name,omitempty"`
	DriverClass string `json:"class,omitempty"`
}

// GetStatus returns the connection status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.modem.GetStatus()
	if err != nil {
		modemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, StatusResponse{
		Interface:   h.modem.Interface(),
		Model:       string(h.modem.GetModel()),
		Status:      status.Status,
		Signal:      status.Signal,
		NetworkType: status.NetworkType,
	})
}

// GetMessageCount returns the inbox counters.
func (h *Handler) GetMessageCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.modem.GetMessageCount()
	if err != nil {
		modemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, MessageCountResponse{Count: count.Count, Unread: count.Unread})
}

// ListMessages returns the inbox. With ?delete=true the listed messages are
// removed from the modem.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	del := false
	if raw := r.URL.Query().Get("delete"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid delete flag: "+raw)
			return
		}
		del = v
	}

	messages, err := h.modem.GetMessages(del)
	if err != nil {
		modemError(w, err)
		return
	}

	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, Message{
			ID:          m.ID,
			Message:     m.Message,
			Sender:      m.Sender,
			ReceiveTime: m.ReceiveTime,
		})
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":    len(out),
		"messages": out,
	})
}

// DeleteMessage removes the message named in the URL.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		errorResponse(w, http.StatusBadRequest, "message id required")
		return
	}
	if err := h.modem.DeleteMessage(id); err != nil {
		modemError(w, err)
		return
	}
	successResponse(w, "message deleted")
}

// DeleteMessages removes the messages listed in the request body.
func (h *Handler) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		errorResponse(w, http.StatusBadRequest, "ids required")
		return
	}
	if err := h.modem.DeleteMessages(req.IDs); err != nil {
		modemError(w, err)
		return
	}
	successResponse(w, strconv.Itoa(len(req.IDs))+" messages deleted")
}

// ListDevices returns the Huawei devices found in sysfs.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	if h.locator == nil {
		errorResponse(w, http.StatusNotImplemented, "device discovery disabled")
		return
	}

	discovered := h.locator.Discover()
	devices := make([]Device, 0, len(discovered))
	for _, d := range discovered {
		devices = append(devices, Device{
			Path:        d.Path,
			Supported:   d.Supported,
			ProductID:   d.ProductID,
			Interface:   d.Interface,
			Name:        d.Name,
			DriverClass: string(d.DriverClass),
		})
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":   len(devices),
		"devices": devices,
	})
}

// Response helpers
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]interface{}{
		"error": message,
		"code":  status,
	})
}

func successResponse(w http.ResponseWriter, message string) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": message,
	})
}

// modemError maps modem errors to HTTP statuses.
func modemError(w http.ResponseWriter, err error) {
	var (
		transportErr *modem.TransportError
		apiErr       *modem.APIError
		tokenErr     *modem.TokenError
		lookupErr    *modem.LookupError
	)
	switch {
	case errors.As(err, &transportErr):
		errorResponse(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &apiErr):
		jsonResponse(w, http.StatusBadGateway, map[string]interface{}{
			"error":      err.Error(),
			"code":       http.StatusBadGateway,
			"modem_code": apiErr.Code,
		})
	case errors.As(err, &tokenErr):
		errorResponse(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &lookupErr):
		errorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
