// Package tasks runs the four batch operations over the configured datasets.
// Each writes operator-facing progress to Env.Out and diagnostics to
// Env.Logger; a dataset that cannot be read is reported and skipped.
package tasks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"trafo/pkg/config"
	"trafo/pkg/dataset"
)

// ErrNoInput is returned when none of a task's input files could be loaded.
var ErrNoInput = errors.New("tasks: no input files found")

// Env carries the settings and sinks shared by every task.
type Env struct {
	Config *config.Config
	Out    io.Writer
	Logger *slog.Logger
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Env) load(path string, opts ...dataset.LoadOption) (*dataset.Frame, error) {
	opts = append(opts, dataset.WithLogger(e.logger()))
	return dataset.Load(path, opts...)
}

// banner centres title between runs of '='.
func banner(title string, width int) string {
	bar := strings.Repeat("=", width)
	return fmt.Sprintf("%s %s %s", bar, title, bar)
}

// formatCounts prints label counts most frequent first, one per line.
func formatCounts(counts map[int]int) string {
	labels := make([]int, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(a, b int) bool {
		if counts[labels[a]] != counts[labels[b]] {
			return counts[labels[a]] > counts[labels[b]]
		}
		return labels[a] < labels[b]
	})
	var b strings.Builder
	b.WriteString("label")
	for _, l := range labels {
		fmt.Fprintf(&b, "\n%d    %d", l, counts[l])
	}
	return b.String()
}
