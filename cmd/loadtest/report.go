package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
)

// report: итог прогона в терминах кассы. Продажа считается неудачной,
// если упала любая команда её сценария.
type report struct {
	StartedAt       time.Time                `json:"started_at"`
	DurationSeconds float64                  `json:"duration_seconds"`
	Sales           int64                    `json:"sales"`
	FailedSales     int64                    `json:"failed_sales"`
	SalesPerSecond  float64                  `json:"sales_per_second"`
	RevenueCents    int64                    `json:"revenue_cents"`
	AvgTicketCents  int64                    `json:"avg_ticket_cents"`
	Commands        map[string]commandReport `json:"commands"`
}

type commandReport struct {
	Calls  int64 `json:"calls"`
	Failed int64 `json:"failed"`
	// FailureCodes: только коды ошибок, OK не учитывается.
	FailureCodes map[string]int64 `json:"failure_codes,omitempty"`
	P95Ms        float64          `json:"p95_ms"`
}

type commandStats struct {
	failed    int64
	codes     map[string]int64
	latencies []time.Duration
}

// collector копит продажи, выручку и латентности команд из всех воркеров.
type collector struct {
	mu       sync.Mutex
	sales    int64
	failed   int64
	revenue  int64
	commands map[string]*commandStats
}

func newCollector() *collector {
	return &collector{commands: make(map[string]*commandStats)}
}

// command учитывает один вызов команды.
func (c *collector) command(name string, latency time.Duration, code codes.Code) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.commands[name]
	if stats == nil {
		stats = &commandStats{codes: make(map[string]int64)}
		c.commands[name] = stats
	}
	stats.latencies = append(stats.latencies, latency)
	if code != codes.OK {
		stats.failed++
		stats.codes[code.String()]++
	}
}

// sale закрывает сценарий. cents учитывается даже при неудаче:
// заказ мог сохраниться до того, как упала следующая команда.
func (c *collector) sale(ok bool, cents int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sales++
	if !ok {
		c.failed++
	}
	c.revenue += cents
}

func (c *collector) snapshot(startedAt time.Time, elapsed time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: elapsed.Seconds(),
		Sales:           c.sales,
		FailedSales:     c.failed,
		RevenueCents:    c.revenue,
		Commands:        make(map[string]commandReport, len(c.commands)),
	}
	if elapsed > 0 {
		r.SalesPerSecond = float64(c.sales) / elapsed.Seconds()
	}
	if ok := c.sales - c.failed; ok > 0 {
		r.AvgTicketCents = c.revenue / ok
	}

	for name, stats := range c.commands {
		cr := commandReport{
			Calls:  int64(len(stats.latencies)),
			Failed: stats.failed,
			P95Ms:  float64(p95(stats.latencies).Microseconds()) / 1000,
		}
		if len(stats.codes) > 0 {
			cr.FailureCodes = make(map[string]int64, len(stats.codes))
			for code, n := range stats.codes {
				cr.FailureCodes[code] = n
			}
		}
		r.Commands[name] = cr
	}
	return r
}

// p95 по методу ближайшего ранга.
func p95(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	rank := int(math.Ceil(0.95 * float64(len(sorted))))
	return sorted[rank-1]
}

func writeJSONReport(path string, r report) error {
	clean := filepath.Clean(path)
	switch {
	case clean == "." || clean == string(filepath.Separator):
		return errors.New("output path must point to a file")
	case clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)):
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(clean, append(raw, '\n'), 0o600)
}

func printReport(w io.Writer, r report, cfg config) {
	_, _ = fmt.Fprintf(w, "Load test: mode=%s run=%s\n", cfg.mode, runTarget(cfg))
	_, _ = fmt.Fprintf(w, "sales=%d failed=%d sales/s=%.2f in %.2fs\n", r.Sales, r.FailedSales, r.SalesPerSecond, r.DurationSeconds)
	_, _ = fmt.Fprintf(w, "revenue=%d avg_ticket=%d\n", r.RevenueCents, r.AvgTicketCents)

	names := make([]string, 0, len(r.Commands))
	for name := range r.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cr := r.Commands[name]
		_, _ = fmt.Fprintf(w, "  %s: calls=%d failed=%d p95=%.2fms%s\n", name, cr.Calls, cr.Failed, cr.P95Ms, formatCodes(cr.FailureCodes))
	}
}

func formatCodes(m map[string]int64) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for code, n := range m {
		parts = append(parts, fmt.Sprintf("%s=%d", code, n))
	}
	sort.Strings(parts)
	return " [" + strings.Join(parts, " ") + "]"
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}
