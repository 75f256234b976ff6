package inference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/phani41/brain-tumor-detection-cnn/internal/config"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const (
	PredictPath = "/predict"
	ComparePath = "/compare"
	HealthPath  = "/"

	imageField       = "image"
	maxResponseBytes = 1 << 20
	maxErrorSnippet  = 512
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client talks to the external inference service.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	predictTimeout time.Duration
	compareTimeout time.Duration
}

// NewClient builds a client for cfg. A nil httpClient means a fresh default client;
// per-call budgets are enforced with contexts, not http.Client.Timeout.
func NewClient(cfg config.InferenceConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		predictTimeout: cfg.PredictTimeout,
		compareTimeout: cfg.CompareTimeout,
	}
}

// SubmitForPrediction sends the image to /predict and validates the reply.
func (c *Client) SubmitForPrediction(ctx context.Context, upload models.Upload) (*models.PredictionResult, error) {
	raw, err := c.post(ctx, PredictPath, upload, c.predictTimeout)
	if err != nil {
		return nil, err
	}
	res, err := models.ParsePrediction(raw)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	return res, nil
}

// SubmitForComparison sends the image to /compare and validates the reply.
func (c *Client) SubmitForComparison(ctx context.Context, upload models.Upload) (*models.ComparisonResult, error) {
	raw, err := c.post(ctx, ComparePath, upload, c.compareTimeout)
	if err != nil {
		return nil, err
	}
	res, err := models.ParseComparison(raw)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	return res, nil
}

// Health returns the status line reported by the service root.
func (c *Client) Health(ctx context.Context) (string, error) {
	ctx, cancel := withBudget(ctx, c.predictTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := c.do(ctx, req, c.predictTimeout)
	if err != nil {
		return "", err
	}
	status := gjson.GetBytes(raw, "status")
	if status.Type != gjson.String {
		return "", &ValidationError{Err: &models.ShapeError{Field: "status", Reason: "expected string"}}
	}
	return status.Str, nil
}

func (c *Client) post(ctx context.Context, path string, upload models.Upload, budget time.Duration) ([]byte, error) {
	if err := upload.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	body, contentType, err := encodeMultipart(upload)
	if err != nil {
		return nil, fmt.Errorf("encode multipart: %w", err)
	}

	ctx, cancel := withBudget(ctx, budget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req, budget)
}

func (c *Client) do(ctx context.Context, req *http.Request, budget time.Duration) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, budget, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, budget, err)
	}
	return raw, nil
}

func encodeMultipart(upload models.Upload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		imageField, quoteEscaper.Replace(upload.Filename)))
	header.Set("Content-Type", upload.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func withBudget(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}
