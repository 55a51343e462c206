// Package runlog appends pipeline runs and predictions to daily JSONL
// files so past runs can be inspected after the fact. Old files are
// gzipped by retention policy.
package runlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sentiment-trader/internal/types"
)

var mu sync.Mutex

// RunEntry records one pipeline invocation.
type RunEntry struct {
	Time    string              `json:"time"`
	Command string              `json:"command"`
	Stages  []types.StageResult `json:"stages"`
	Extra   map[string]any      `json:"extra,omitempty"`
}

// PredictionEntry records one emitted prediction.
type PredictionEntry struct {
	Time       string  `json:"time"`
	Ticker     string  `json:"ticker"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	AsOf       string  `json:"as_of"`
}

func logDir() string {
	if v := os.Getenv("SENTIMENT_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func predictionsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "predictions", t.UTC().Format("2006-01-02")+".txt")
}

// AppendRun appends one run entry to today's file.
func AppendRun(e RunEntry) error {
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

// AppendPrediction appends one prediction to today's predictions file.
func AppendPrediction(p types.Prediction) error {
	now := time.Now().UTC()
	e := PredictionEntry{
		Time:       now.Format("2006-01-02 15:04:05"),
		Ticker:     p.Ticker,
		Prediction: p.Prediction,
		Confidence: p.Confidence,
		AsOf:       p.Date,
	}
	return appendLine(predictionsFilepath(now), e)
}

func appendLine(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips log files older than retentionDays. Zero or negative
// retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			return os.Remove(p)
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 != nil {
			_ = gw.Close()
			_ = out.Close()
			return nil
		}
		_ = gw.Close()
		_ = out.Close()
		return os.Remove(p)
	})
}
