package pipeline

import (
	"fmt"
	"sync"

	"github.com/theirongolddev/snowball/internal/snowball"
)

// RevisionedSource is a ledger source that can report a change counter.
// The counter must increase on every write.
type RevisionedSource interface {
	LedgerSource
	Revision() (int64, error)
}

// Projector caches the last projection and only recomputes it when the
// source revision moves. It is safe for concurrent use.
type Projector struct {
	src  RevisionedSource
	opts snowball.Options

	mu       sync.Mutex
	revision int64
	loaded   bool
	last     Result
}

// NewProjector returns a Projector over src. Nothing is loaded until the
// first Refresh.
func NewProjector(src RevisionedSource, opts snowball.Options) *Projector {
	return &Projector{src: src, opts: opts}
}

// Refresh returns the current result and whether it was recomputed.
func (p *Projector) Refresh() (Result, bool, error) {
	rev, err := p.src.Revision()
	if err != nil {
		return Result{}, false, fmt.Errorf("reading revision: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded && rev == p.revision {
		return p.last, false, nil
	}

	res, err := LoadAndProject(p.src, p.opts)
	if err != nil {
		return Result{}, false, err
	}
	p.last = res
	p.revision = rev
	p.loaded = true
	return res, true, nil
}

// Invalidate forces the next Refresh to recompute.
func (p *Projector) Invalidate() {
	p.mu.Lock()
	p.loaded = false
	p.mu.Unlock()
}

// Revision reports the revision of the cached result.
func (p *Projector) Revision() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revision
}
