package main

import "time"

type benchConfig struct {
	Endpoint string        `env:"BENCH_ENDPOINT" envDefault:"http://localhost:8080/api/predict"`
	DataDir  string        `env:"BENCH_DATA_DIR" envDefault:"./data"`
	Timeout  time.Duration `env:"BENCH_TIMEOUT" envDefault:"90s"`
}

// predictResponse is the part of /api/predict and /api/compare replies the benchmark reads.
type predictResponse struct {
	RequestID string `json:"request_id"`
	Result    struct {
		Prediction        string `json:"prediction"`
		ConfidenceDisplay string `json:"confidence_display"`
	} `json:"result"`
	Models []struct {
		Model string `json:"model"`
	} `json:"models"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type BenchResult struct {
	File       string
	Format     string
	Duration   time.Duration
	Prediction string
	Err        error
	Size       int64
}

type Agg struct {
	Count      int
	Failed     int
	Total      time.Duration
	TotalBytes int64
}
