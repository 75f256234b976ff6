package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/phani41/brain-tumor-detection-cnn/internal/inference"
	"github.com/phani41/brain-tumor-detection-cnn/internal/logging"
	"github.com/phani41/brain-tumor-detection-cnn/internal/metrics"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type inferenceClient interface {
	SubmitForPrediction(ctx context.Context, upload models.Upload) (*models.PredictionResult, error)
	SubmitForComparison(ctx context.Context, upload models.Upload) (*models.ComparisonResult, error)
	Health(ctx context.Context) (string, error)
}

// ClassifyService fronts the inference client with an optional result cache,
// metrics and logging.
type ClassifyService struct {
	logger *zap.Logger
	client inferenceClient
	cache  Cache
}

func NewClassifyService(logger *zap.Logger, client inferenceClient) *ClassifyService {
	return &ClassifyService{
		logger: logger.Named("classify_service"),
		client: client,
	}
}

func (s *ClassifyService) SetCacheClient(cache Cache) {
	s.cache = cache
}

func (s *ClassifyService) Predict(ctx context.Context, requestID string, upload models.Upload) (*models.PredictionResult, error) {
	opLogger := logging.WithOperation(s.logger, "service.predict", requestID)

	var cached models.PredictionResult
	key := getCacheKey(EndpointPredict, upload)
	if s.fromCache(ctx, opLogger, EndpointPredict, key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	res, err := s.client.SubmitForPrediction(ctx, upload)
	s.observe(opLogger, EndpointPredict, start, err)
	if err != nil {
		return nil, logging.NewOperationError("service.predict", requestID, err)
	}

	s.toCache(ctx, opLogger, key, res)
	return res, nil
}

func (s *ClassifyService) Compare(ctx context.Context, requestID string, upload models.Upload) (*models.ComparisonResult, error) {
	opLogger := logging.WithOperation(s.logger, "service.compare", requestID)

	var cached models.ComparisonResult
	key := getCacheKey(EndpointCompare, upload)
	if s.fromCache(ctx, opLogger, EndpointCompare, key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	res, err := s.client.SubmitForComparison(ctx, upload)
	s.observe(opLogger, EndpointCompare, start, err)
	if err != nil {
		return nil, logging.NewOperationError("service.compare", requestID, err)
	}

	s.toCache(ctx, opLogger, key, res)
	return res, nil
}

func (s *ClassifyService) Health(ctx context.Context) (string, error) {
	start := time.Now()
	status, err := s.client.Health(ctx)
	s.observe(s.logger, EndpointHealth, start, err)
	return status, err
}

func (s *ClassifyService) fromCache(ctx context.Context, logger *zap.Logger, endpoint, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get error", zap.Error(err))
		return false
	}
	metrics.CacheLookup(endpoint, found)
	if !found {
		return false
	}
	if err := sonic.UnmarshalString(raw, dst); err != nil {
		logger.Warn("failed to decode cached result", zap.Error(err))
		return false
	}

	logger.Debug("served from cache")
	metrics.InferenceRequest(endpoint, outcomeCache, 0)
	return true
}

func (s *ClassifyService) toCache(ctx context.Context, logger *zap.Logger, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := sonic.MarshalString(value)
	if err != nil {
		logger.Warn("failed to encode result for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		logger.Warn("failed to set cache", zap.Error(err))
	}
}

func (s *ClassifyService) observe(logger *zap.Logger, endpoint string, start time.Time, err error) {
	duration := time.Since(start)
	outcome := outcomeOK
	if err != nil {
		outcome = inference.ClassifyError(err).String()
		logger.Warn("inference call failed",
			zap.String("endpoint", endpoint),
			zap.String("kind", outcome),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		logger.Info("inference call finished",
			zap.String("endpoint", endpoint),
			zap.Duration("duration", duration),
		)
	}
	metrics.InferenceRequest(endpoint, outcome, duration)
}

func getCacheKey(endpoint string, upload models.Upload) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(upload.Data)
	return hex.EncodeToString(h.Sum(nil))
}
