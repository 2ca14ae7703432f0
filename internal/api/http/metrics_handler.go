package http

import (
	"net/http"

	"cloudpilot-backend/internal/metrics"
)

type MetricsHandler struct {
	client *metrics.Client
}

func NewMetricsHandler(client *metrics.Client) *MetricsHandler {
	return &MetricsHandler{client: client}
}

type metricsQueryRequest struct {
	MetricsServerURL string `json:"metrics_server_url"`
	Query            string `json:"query"`
}

// Query proxies a range query to the configured metrics server and
// relays the result untouched.
func (h *MetricsHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req metricsQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.client.QueryRange(r.Context(), req.MetricsServerURL, req.Query)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type embedURLRequest struct {
	DashboardURL string `json:"dashboard_url"`
}

// EmbedURL normalizes a dashboard URL for iframe embedding.
func (h *MetricsHandler) EmbedURL(w http.ResponseWriter, r *http.Request) {
	var req embedURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	embed, err := metrics.EmbedURL(req.DashboardURL)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"embed_url": embed})
}
