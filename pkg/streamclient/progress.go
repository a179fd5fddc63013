package streamclient

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	progressBarWidth     = 32
	progressRenderPeriod = 120 * time.Millisecond
)

// progress рисует общий ASCII-индикатор для всех частей одной передачи.
// Счётчик пополняется из нескольких горутин. Nil-индикатор ничего не делает.
type progress struct {
	mu         sync.Mutex
	out        io.Writer
	label      string
	total      int64
	done       int64
	lastRender time.Time
	lastWidth  int
	finished   bool
}

func newProgress(out io.Writer, label string, total int64) *progress {
	if out == nil {
		return nil
	}
	p := &progress{out: out, label: label, total: total}
	p.draw(true, "")
	return p
}

// Add учитывает n переданных байт.
func (p *progress) Add(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.mu.Lock()
	p.done += int64(n)
	p.mu.Unlock()
	p.draw(false, "")
}

// Finish дорисовывает итоговую строку: ✓ при успехе, ✗ и причина при ошибке.
func (p *progress) Finish(err error) {
	if p == nil {
		return
	}
	suffix := " ✓"
	if err != nil {
		suffix = fmt.Sprintf(" ✗ %v", err)
	}
	p.draw(true, suffix)

	p.mu.Lock()
	if !p.finished {
		p.finished = true
		fmt.Fprintln(p.out)
	}
	p.mu.Unlock()
}

func (p *progress) draw(force bool, suffix string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if p.finished || (!force && now.Sub(p.lastRender) < progressRenderPeriod) {
		return
	}
	p.lastRender = now

	line := p.line() + suffix
	pad := ""
	if p.lastWidth > len(line) {
		pad = strings.Repeat(" ", p.lastWidth-len(line))
	}
	p.lastWidth = len(line)
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
}

func (p *progress) line() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s %s transferred", p.label, humanBytes(p.done))
	}

	ratio := min(float64(p.done)/float64(p.total), 1)
	filled := min(int(ratio*progressBarWidth+0.5), progressBarWidth)

	return fmt.Sprintf("%s [%s%s] %3d%% %s/%s",
		p.label,
		strings.Repeat("=", filled),
		strings.Repeat(" ", progressBarWidth-filled),
		int(ratio*100+0.5),
		humanBytes(p.done),
		humanBytes(p.total),
	)
}

// countingReader сообщает индикатору о каждом прочитанном куске.
type countingReader struct {
	r io.Reader
	p *progress
}

func (c countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.p.Add(n)
	return n, err
}

func humanBytes(v int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	value := float64(v)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", v, units[unit])
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}
