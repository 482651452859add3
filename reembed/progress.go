// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ProgressTracker reports how many courses of an embedding run have been
// stored. Reports go to a terminal-style writer as a single rewritten line
// and to a logger at debug level. It is safe for use by concurrent workers.
type ProgressTracker struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
	total  int
	done   int
	every  int
	last   int
	start  time.Time
}

// NewProgressTracker creates a tracker for total courses that reports every
// every courses.
func NewProgressTracker(out io.Writer, total, every int) *ProgressTracker {
	if out == nil {
		out = io.Discard
	}
	return &ProgressTracker{
		out:    out,
		logger: slog.Default().With("component", "reembed-progress"),
		total:  total,
		every:  max(every, 1),
	}
}

// WithLogger sets the logger that receives progress records.
func (p *ProgressTracker) WithLogger(logger *slog.Logger) *ProgressTracker {
	p.logger = logger
	return p
}

// Start begins tracking. Calls before Start are ignored.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = time.Now()
	p.done = 0
	p.last = 0
}

// Increment records n more stored courses, capped at the total.
func (p *ProgressTracker) Increment(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start.IsZero() {
		return
	}
	p.done = min(p.done+n, p.total)
	if p.done-p.last >= p.every {
		p.report()
		p.last = p.done
	}
}

// Finish reports the run as complete and ends the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start.IsZero() {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.out)
}

// Elapsed returns the time since Start, or 0 before it.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start.IsZero() {
		return 0
	}
	return time.Since(p.start)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.start)
	rate := float64(p.done) / elapsed.Seconds()

	percent := 0.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total) * 100
	}

	var remaining time.Duration
	if left := p.total - p.done; left > 0 && p.done > 0 {
		remaining = time.Duration(float64(elapsed) * float64(left) / float64(p.done))
		if remaining >= time.Second {
			remaining = remaining.Round(time.Second)
		} else {
			remaining = remaining.Round(time.Millisecond)
		}
	}

	line := fmt.Sprintf("\rProgress: %d/%d (%.1f%%) - %.1f courses/s", p.done, p.total, percent, rate)
	if remaining > 0 {
		line += fmt.Sprintf(", ~%v left", remaining)
	}
	fmt.Fprint(p.out, line)

	p.logger.Debug("embedding progress",
		"done", p.done, "total", p.total, "rate", rate, "remaining", remaining)
}
