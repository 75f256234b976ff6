package handler

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/phani41/brain-tumor-detection-cnn/internal/controller"
	"github.com/phani41/brain-tumor-detection-cnn/internal/inference"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
	"github.com/phani41/brain-tumor-detection-cnn/internal/render"
)

// APIHandler exposes classification as JSON for scripts and the benchmark tool.
type APIHandler struct {
	logger   *zap.Logger
	service  classifyService
	opts     render.Options
	maxBytes int64
}

func NewAPIHandler(logger *zap.Logger, service classifyService, opts render.Options, maxBytes int64) *APIHandler {
	return &APIHandler{
		logger:   logger.Named("api_handler"),
		service:  service,
		opts:     opts,
		maxBytes: maxBytes,
	}
}

// Predict godoc
// @Summary Classify an MRI image
// @Description Sends the image to the prediction model and returns the rendered result.
// @Tags classify
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "MRI image"
// @Success 200 {object} handler.PredictResponse
// @Failure 400 {object} handler.ErrorResponse
// @Failure 413 {object} handler.ErrorResponse
// @Failure 415 {object} handler.ErrorResponse
// @Failure 502 {object} handler.ErrorResponse
// @Failure 504 {object} handler.ErrorResponse
// @Router /predict [post]
func (h *APIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	upload, err := readUpload(w, r, h.maxBytes)
	if err != nil {
		h.writeError(w, uploadStatus(err), err)
		return
	}

	res, err := h.service.Predict(r.Context(), requestID, upload)
	if err != nil {
		h.writeError(w, errorStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		RequestID: requestID,
		Result:    newPredictionView(render.Render(res, h.opts)),
	})
}

// Compare godoc
// @Summary Compare both models on an MRI image
// @Description Sends the image to both models and returns both rendered results plus the best-model pick, when the service made one.
// @Tags classify
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "MRI image"
// @Success 200 {object} handler.CompareResponse
// @Failure 400 {object} handler.ErrorResponse
// @Failure 413 {object} handler.ErrorResponse
// @Failure 415 {object} handler.ErrorResponse
// @Failure 502 {object} handler.ErrorResponse
// @Failure 504 {object} handler.ErrorResponse
// @Router /compare [post]
func (h *APIHandler) Compare(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	upload, err := readUpload(w, r, h.maxBytes)
	if err != nil {
		h.writeError(w, uploadStatus(err), err)
		return
	}

	res, err := h.service.Compare(r.Context(), requestID, upload)
	if err != nil {
		h.writeError(w, errorStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, newCompareResponse(requestID, render.RenderComparison(res, h.opts)))
}

// Health godoc
// @Summary Health check
// @Description Reports whether the inference service answers.
// @Tags health
// @Produce json
// @Success 200 {object} handler.HealthResponse
// @Failure 502 {object} handler.ErrorResponse
// @Router /health [get]
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Health(r.Context())
	if err != nil {
		h.writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Inference: status})
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Warn("api request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, ErrorResponse{
		Error: controller.Message(err),
		Kind:  inference.ClassifyError(err).String(),
	})
}

// errorStatus maps a failed inference call to a gateway status.
func errorStatus(err error) int {
	switch inference.ClassifyError(err) {
	case inference.KindTimeout:
		return http.StatusGatewayTimeout
	case inference.KindValidation:
		if errors.Is(err, models.ErrEmptyUpload) || errors.Is(err, models.ErrUnsupportedMedia) || errors.Is(err, models.ErrUploadTooLarge) {
			return uploadStatus(err)
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
