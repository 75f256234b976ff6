package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

var formatTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	var cfg benchConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	ctx := context.Background()
	client := &http.Client{Timeout: cfg.Timeout}

	var results []BenchResult
	err := filepath.WalkDir(cfg.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := formatTypes[format(path)]; !ok {
			return nil
		}

		res := benchmarkImage(ctx, client, cfg.Endpoint, path)
		if res.Err != nil {
			logger.Warn("request failed", zap.String("file", res.File), zap.Error(res.Err))
		} else {
			logger.Info("ok", zap.String("file", res.File), zap.String("prediction", res.Prediction), zap.Duration("duration", res.Duration))
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		logger.Fatal("walk data dir", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	printMarkdown(os.Stdout, results)
}

func benchmarkImage(ctx context.Context, client *http.Client, endpoint, filePath string) BenchResult {
	res := BenchResult{File: filepath.Base(filePath), Format: format(filePath)}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		res.Err = err
		return res
	}
	res.Size = int64(len(raw))

	start := time.Now()
	res.Prediction, res.Err = sendImage(ctx, client, endpoint, res.File, formatTypes[res.Format], raw)
	res.Duration = time.Since(start)
	return res
}

func sendImage(ctx context.Context, client *http.Client, endpoint, name, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := sonic.Unmarshal(payload, &apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("bad status %d (%s): %s", resp.StatusCode, apiErr.Kind, apiErr.Error)
		}
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out predictResponse
	if err := sonic.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Models) > 0 {
		return fmt.Sprintf("%d models", len(out.Models)), nil
	}
	return fmt.Sprintf("%s (%s)", out.Result.Prediction, out.Result.ConfidenceDisplay), nil
}

func format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func aggregate(results []BenchResult) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		a := m[r.Format]
		if r.Err != nil {
			a.Failed++
			m[r.Format] = a
			continue
		}
		a.Count++
		a.TotalBytes += r.Size
		a.Total += r.Duration
		m[r.Format] = a
	}
	return m
}

func printMarkdown(w io.Writer, results []BenchResult) {
	fmt.Fprint(w, "\n## Benchmark Results\n\n")
	fmt.Fprintln(w, "| Format | Requests | Failed | Avg Time | Total Time | Avg File Size |")
	fmt.Fprintln(w, "|--------|----------|--------|----------|------------|---------------|")

	agg := aggregate(results)
	formats := make([]string, 0, len(agg))
	for f := range agg {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	var total Agg
	for _, f := range formats {
		a := agg[f]
		fmt.Fprintf(w, "| %s | %d | %d | %v | %v | %s |\n",
			f, a.Count, a.Failed, avg(a), a.Total.Round(time.Millisecond), humanBytes(avgSize(a)))
		total.Count += a.Count
		total.Failed += a.Failed
		total.Total += a.Total
		total.TotalBytes += a.TotalBytes
	}

	if total.Count+total.Failed > 0 {
		fmt.Fprintf(w, "| **ALL** | %d | %d | %v | %v | %s |\n",
			total.Count, total.Failed, avg(total), total.Total.Round(time.Millisecond), humanBytes(avgSize(total)))
	}
}

func avg(a Agg) time.Duration {
	if a.Count == 0 {
		return 0
	}
	return (a.Total / time.Duration(a.Count)).Round(time.Millisecond)
}

func avgSize(a Agg) int64 {
	if a.Count == 0 {
		return 0
	}
	return a.TotalBytes / int64(a.Count)
}

func humanBytes(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
