package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"auto-trader/internal/types"
)

var mu sync.Mutex

// Entry is one position open or close, appended as a JSON line to the
// day's trade file.
type Entry struct {
	Time       string           `json:"time"`
	Event      string           `json:"event"` // OPEN or CLOSE
	Market     string           `json:"market,omitempty"`
	PositionID string           `json:"position_id"`
	Side       types.Side       `json:"side"`
	Price      float64          `json:"price"`
	Size       float64          `json:"size"`
	Pnl        float64          `json:"pnl,omitempty"`
	PnlPercent float64          `json:"pnl_percent,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	ExitReason types.ExitReason `json:"exit_reason,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// DecisionEntry is one non-HOLD strategy decision, kept separately so
// decision volume does not drown the trade files.
type DecisionEntry struct {
	Time       string       `json:"time"`
	Market     string       `json:"market,omitempty"`
	Strategy   string       `json:"strategy"`
	Action     types.Action `json:"action"`
	Confidence float64      `json:"confidence"`
	Reason     string       `json:"reason"`
	Price      float64      `json:"price"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func decisionsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.UTC().Format("2006-01-02")+".txt")
}

func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

func AppendDecision(e DecisionEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(decisionsFilepath(now), e)
}

func appendLine(path string, v any) error {
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

// CompressOlder gzips log files older than retentionDays. Best effort:
// unreadable files are skipped, never fatal.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e := os.Stat(gz); e == nil {
			_ = os.Remove(p)
			return nil
		}
		in, e := os.Open(p)
		if e != nil {
			return nil
		}
		defer in.Close()
		out, e := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e := io.Copy(gw, in); e == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
