// Package metrics records per-strategy fetch performance into day buckets
// for lightweight "is auto mode picking well" analysis.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"stockplane/internal/store"
)

// keyPrefix namespaces metric buckets inside the shared KV store.
const keyPrefix = "metrics_"

// dateLayout is the bucket granularity. One bucket per strategy per day.
const dateLayout = "2006-01-02"

// bucket is the stored accumulator. Field names are part of the persisted
// format and must not change.
type bucket struct {
	Calls     int64 `json:"calls"`
	TotalTime int64 `json:"totalTime"` // milliseconds
	TotalSKUs int64 `json:"totalSkus"`
}

// Bucket is one reported day bucket with derived averages.
type Bucket struct {
	Strategy  string  `json:"strategy"`
	Date      string  `json:"date"`
	Calls     int64   `json:"calls"`
	TotalTime int64   `json:"total_time_ms"`
	TotalSKUs int64   `json:"total_skus"`
	AvgTime   float64 `json:"avg_time_ms"`
	AvgSKUs   float64 `json:"avg_skus"`
}

// Recorder accumulates and reports strategy metrics on top of a KV store.
type Recorder struct {
	kv  store.KV
	log *slog.Logger
	now func() time.Time
}

// NewRecorder creates a Recorder over kv.
func NewRecorder(kv store.KV, log *slog.Logger) *Recorder {
	return &Recorder{kv: kv, log: log, now: time.Now}
}

func key(strategy, date string) string {
	return keyPrefix + strategy + "_" + date
}

// parseKey splits a bucket key into strategy and date. Strategy names
// contain underscores, so the date is always the last segment.
func parseKey(k string) (strategy, date string, ok bool) {
	rest := strings.TrimPrefix(k, keyPrefix)
	if rest == k {
		return "", "", false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// Record adds one fetch call to today's bucket for strategy. Failures are
// returned but call sites treat recording as best effort.
func (r *Recorder) Record(ctx context.Context, strategy string, elapsed time.Duration, skus int) error {
	k := key(strategy, r.now().Format(dateLayout))

	var b bucket
	raw, found, err := r.kv.Get(ctx, k)
	if err != nil {
		return fmt.Errorf("read bucket %s: %w", k, err)
	}
	if found {
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			// A corrupt bucket is dropped rather than poisoning the day.
			r.log.Warn("resetting corrupt metrics bucket", "key", k, "error", err)
			b = bucket{}
		}
	}

	b.Calls++
	b.TotalTime += elapsed.Milliseconds()
	b.TotalSKUs += int64(skus)

	out, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bucket %s: %w", k, err)
	}
	if err := r.kv.Set(ctx, k, string(out)); err != nil {
		return fmt.Errorf("write bucket %s: %w", k, err)
	}
	return nil
}

// Report returns all buckets with derived averages, newest day first and
// strategies sorted within a day.
func (r *Recorder) Report(ctx context.Context) ([]Bucket, error) {
	keys, err := r.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list metric keys: %w", err)
	}

	report := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		strategy, date, ok := parseKey(k)
		if !ok {
			continue
		}
		raw, found, err := r.kv.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read bucket %s: %w", k, err)
		}
		if !found {
			continue
		}
		var b bucket
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			r.log.Warn("skipping corrupt metrics bucket", "key", k, "error", err)
			continue
		}
		out := Bucket{
			Strategy:  strategy,
			Date:      date,
			Calls:     b.Calls,
			TotalTime: b.TotalTime,
			TotalSKUs: b.TotalSKUs,
		}
		if b.Calls > 0 {
			out.AvgTime = float64(b.TotalTime) / float64(b.Calls)
			out.AvgSKUs = float64(b.TotalSKUs) / float64(b.Calls)
		}
		report = append(report, out)
	}

	sort.Slice(report, func(i, j int) bool {
		if report[i].Date != report[j].Date {
			return report[i].Date > report[j].Date
		}
		return report[i].Strategy < report[j].Strategy
	})
	return report, nil
}

// Prune deletes buckets older than retentionDays and returns how many were
// removed. Today counts as day zero.
func (r *Recorder) Prune(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays < 0 {
		return 0, fmt.Errorf("retention days must not be negative, got %d", retentionDays)
	}
	cutoff := r.now().AddDate(0, 0, -retentionDays).Format(dateLayout)

	keys, err := r.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list metric keys: %w", err)
	}

	removed := 0
	for _, k := range keys {
		_, date, ok := parseKey(k)
		if !ok {
			continue
		}
		// Dates compare lexicographically in yyyy-mm-dd form.
		if date < cutoff {
			if err := r.kv.Delete(ctx, k); err != nil {
				return removed, fmt.Errorf("delete bucket %s: %w", k, err)
			}
			removed++
		}
	}
	if removed > 0 {
		r.log.Info("pruned metric buckets", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
