// Package progress reports byte progress while session volumes are
// fetched or replayed.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Reader wraps an io.Reader and periodically writes progress updates to
// out. If total is 0 the percentage is omitted.
type Reader struct {
	r           io.Reader
	out         io.Writer
	label       string
	total       uint64
	read        uint64
	mu          sync.Mutex
	lastPrinted time.Time
}

func NewReader(r io.Reader, total uint64, label string, out io.Writer) *Reader {
	return &Reader{r: r, out: out, label: label, total: total}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += uint64(n)
		now := time.Now()
		if now.Sub(p.lastPrinted) >= 200*time.Millisecond {
			p.print()
			p.lastPrinted = now
		}
		p.mu.Unlock()
	}
	if err == io.EOF {
		p.mu.Lock()
		p.print() // final
		fmt.Fprint(p.out, "\n")
		p.mu.Unlock()
	}
	return n, err
}

func (p *Reader) print() {
	if p.out == nil {
		return
	}
	if p.total > 0 {
		pct := float64(p.read) / float64(p.total) * 100
		fmt.Fprintf(p.out, "\r[%s] %.1f%% (%s/%s)", p.label, pct, humanize.IBytes(p.read), humanize.IBytes(p.total))
	} else {
		fmt.Fprintf(p.out, "\r[%s] %s", p.label, humanize.IBytes(p.read))
	}
}
