package handler

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/phani41/brain-tumor-detection-cnn/internal/charts"
	"github.com/phani41/brain-tumor-detection-cnn/internal/controller"
	"github.com/phani41/brain-tumor-detection-cnn/internal/logging"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
	"github.com/phani41/brain-tumor-detection-cnn/internal/preview"
	"github.com/phani41/brain-tumor-detection-cnn/internal/render"
)

const (
	pageTitle = "Brain Tumor MRI Classification"

	// previewCSP keeps a preview inert even when opened directly.
	previewCSP = "default-src 'none'; sandbox"
)

type classifyService interface {
	Predict(ctx context.Context, requestID string, upload models.Upload) (*models.PredictionResult, error)
	Compare(ctx context.Context, requestID string, upload models.Upload) (*models.ComparisonResult, error)
	Health(ctx context.Context) (string, error)
}

// UIHandler serves the page and the fragments it swaps in.
type UIHandler struct {
	logger     *zap.Logger
	service    classifyService
	controller *controller.Controller
	previews   *preview.Store
	opts       render.Options
	maxBytes   int64
	templates  *template.Template
}

func NewUIHandler(
	logger *zap.Logger,
	service classifyService,
	ctrl *controller.Controller,
	previews *preview.Store,
	opts render.Options,
	maxBytes int64,
) (*UIHandler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &UIHandler{
		logger:     logger.Named("ui_handler"),
		service:    service,
		controller: ctrl,
		previews:   previews,
		opts:       opts,
		maxBytes:   maxBytes,
		templates:  tmpl,
	}, nil
}

func (h *UIHandler) Page(w http.ResponseWriter, r *http.Request) {
	st := h.controller.Snapshot(SessionID(r.Context()))
	h.execute(w, r, http.StatusOK, "page", pageView{
		Title:    pageTitle,
		Mode:     string(st.Mode),
		Fragment: newFragmentView(st, h.opts),
	})
}

func (h *UIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, controller.ModePredict)
}

func (h *UIHandler) Compare(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, controller.ModeCompare)
}

// Upload stores the image as the session's preview and answers with the loading
// fragment. The page then posts the fragment's generation to Classify.
func (h *UIHandler) Upload(w http.ResponseWriter, r *http.Request) {
	mode, ok := controller.ParseMode(r.URL.Query().Get("mode"))
	if !ok {
		mode = controller.ModePredict
	}
	if _, _, ok := h.stage(w, r, mode); ok {
		h.fragment(w, r, http.StatusOK)
	}
}

// Classify sends the staged upload of a generation to the inference service.
// A superseded or unknown generation gets 409 with the current fragment.
func (h *UIHandler) Classify(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r.Context())

	generation, err := strconv.ParseUint(r.URL.Query().Get("generation"), 10, 64)
	if err != nil {
		h.fragment(w, r, http.StatusBadRequest)
		return
	}
	ticket, upload, ok := h.controller.Take(sessionID, generation)
	if !ok {
		h.logger.Debug("no staged upload for generation",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Uint64("generation", generation),
		)
		h.fragment(w, r, http.StatusConflict)
		return
	}
	h.classify(w, r, ticket, upload)
}

// State renders the current fragment of the session.
func (h *UIHandler) State(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, http.StatusOK)
}

// Teardown releases the session's preview. The page calls it on unload.
func (h *UIHandler) Teardown(w http.ResponseWriter, r *http.Request) {
	h.controller.Teardown(SessionID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *UIHandler) Preview(w http.ResponseWriter, r *http.Request) {
	blob, ok := h.previews.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", previewCSP)
	http.ServeContent(w, r, "", blob.CreatedAt, bytes.NewReader(blob.Data))
}

// Chart draws a chart for the session's current result. Missing data is a 404, never a broken page.
func (h *UIHandler) Chart(w http.ResponseWriter, r *http.Request) {
	st := h.controller.Snapshot(SessionID(r.Context()))
	if !st.HasResult() {
		http.NotFound(w, r)
		return
	}

	var (
		png []byte
		err error
	)
	switch name := chi.URLParam(r, "name"); {
	case name == chartProbabilities && st.Mode == controller.ModePredict:
		png, err = charts.ProbabilityChart("Class probabilities", st.Prediction, h.opts.MaxEntries)
	case name == chartComparisonProbabilities && st.Mode == controller.ModeCompare:
		png, err = charts.ProbabilityComparison(st.Comparison.MobileNet, st.Comparison.EfficientNet, h.opts.MaxEntries)
	case name == chartComparisonConfidence && st.Mode == controller.ModeCompare:
		png, err = charts.ConfidenceComparison(st.Comparison.MobileNet, st.Comparison.EfficientNet)
	default:
		err = charts.ErrNoData
	}
	if errors.Is(err, charts.ErrNoData) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("chart render failed", zap.Error(err))
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(png)
}

// submit stages and classifies in one request, for clients that post straight to /ui/{mode}.
func (h *UIHandler) submit(w http.ResponseWriter, r *http.Request, mode controller.Mode) {
	ticket, upload, ok := h.stage(w, r, mode)
	if !ok {
		return
	}
	if _, _, ok := h.controller.Take(ticket.SessionID, ticket.Generation); !ok {
		// a newer upload of the session already replaced this one
		h.fragment(w, r, http.StatusOK)
		return
	}
	h.classify(w, r, ticket, upload)
}

// stage reads the upload and makes it the session's preview. On failure it has
// already answered with a banner fragment.
func (h *UIHandler) stage(w http.ResponseWriter, r *http.Request, mode controller.Mode) (controller.Ticket, models.Upload, bool) {
	sessionID := SessionID(r.Context())

	upload, err := readUpload(w, r, h.maxBytes)
	var ticket controller.Ticket
	if err == nil {
		ticket, err = h.controller.Stage(sessionID, mode, upload)
	}
	if err != nil {
		logging.WithOperation(h.logger, "ui."+string(mode), middleware.GetReqID(r.Context())).
			Info("unusable upload", zap.Error(err))
		h.controller.Notify(sessionID, err)
		h.fragment(w, r, uploadStatus(err))
		return controller.Ticket{}, models.Upload{}, false
	}
	return ticket, upload, true
}

func (h *UIHandler) classify(w http.ResponseWriter, r *http.Request, ticket controller.Ticket, upload models.Upload) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	logger := logging.WithOperation(h.logger, "ui."+string(ticket.Mode), requestID)

	var (
		out controller.Outcome
		err error
	)
	switch ticket.Mode {
	case controller.ModeCompare:
		out.Comparison, err = h.service.Compare(ctx, requestID, upload)
	default:
		out.Prediction, err = h.service.Predict(ctx, requestID, upload)
	}

	var applied bool
	if err != nil {
		logger.Warn("classification failed", zap.Error(err))
		applied = h.controller.Fail(ticket, err)
	} else {
		applied = h.controller.Complete(ticket, out)
		if out.Prediction != nil {
			logger.Info("prediction rendered", zap.String("result", render.Render(out.Prediction, h.opts).Summary()))
		}
	}
	if !applied {
		logger.Info("response superseded by a newer upload", zap.Uint64("generation", ticket.Generation))
	}

	h.fragment(w, r, http.StatusOK)
}

func (h *UIHandler) fragment(w http.ResponseWriter, r *http.Request, status int) {
	st := h.controller.Snapshot(SessionID(r.Context()))
	h.execute(w, r, status, "fragment", newFragmentView(st, h.opts))
}

func (h *UIHandler) execute(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("template execution failed",
			zap.String("template", name),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
