package worker

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Progress renders a single-line progress bar for a batch.
type Progress struct {
	start     time.Time
	out       io.Writer // nil disables printing
	unit      string
	total     int
	completed int
	failed    int
	mu        sync.Mutex
}

// NewProgress creates a tracker for total items. A nil writer keeps counts without printing.
func NewProgress(total int, unit string, out io.Writer) *Progress {
	if unit == "" {
		unit = "images"
	}
	return &Progress{
		start: time.Now(),
		out:   out,
		unit:  unit,
		total: total,
	}
}

// Update records progress and redraws the bar.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed, p.total, p.failed = completed, total, failed
	if p.out != nil {
		fmt.Fprint(p.out, "\r"+p.line()+"          ")
	}
}

// Callback returns a ProgressFunc for Config.OnProgress.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Done redraws the bar a final time and ends the line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out != nil {
		fmt.Fprintln(p.out, "\r"+p.line())
	}
}

// line must be called with mu held.
func (p *Progress) line() string {
	elapsed := time.Since(p.start)
	rate := p.rate(elapsed)

	var frac float64
	if p.total > 0 {
		frac = float64(p.completed) / float64(p.total)
	}
	filled := min(int(frac*barWidth), barWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s%s] %d/%d %s",
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
		p.completed, p.total, p.unit)
	if p.failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", p.failed)
	}
	fmt.Fprintf(&b, " - %.1f %s/sec", rate, p.unit)

	switch {
	case p.completed >= p.total:
		fmt.Fprintf(&b, " - Done in %s", formatDuration(elapsed))
	case rate > 0:
		eta := time.Duration(float64(p.total-p.completed) / rate * float64(time.Second))
		fmt.Fprintf(&b, " - ETA: %s", formatDuration(eta))
	}
	return b.String()
}

func (p *Progress) rate(elapsed time.Duration) float64 {
	if p.completed == 0 || elapsed <= 0 {
		return 0
	}
	return float64(p.completed) / elapsed.Seconds()
}

// Summary describes the finished batch.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start)
	return fmt.Sprintf("Blended %d/%d %s (%d failed) in %s (%.1f %s/sec)",
		p.completed-p.failed, p.total, p.unit, p.failed, formatDuration(elapsed), p.rate(elapsed), p.unit)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
