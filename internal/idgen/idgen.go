// Package idgen mints Uids: a millisecond timestamp concatenated with a
// 3-digit random suffix, the same construction as the source project's
// UIDGenerator.get() (utils.py) - base-10 string concatenation, not
// arithmetic. The suffix is always exactly three digits (100-999), so the
// result equals ms*1000+suffix and ids order numerically by millisecond.
package idgen

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/containerman17/sanchain/internal/consts"
	"github.com/containerman17/sanchain/internal/model"
)

// ErrExhausted is returned when the wall clock has regressed further than
// the generator's tolerance, mirroring spec.md §4.1's IdExhausted.
var ErrExhausted = errors.New("idgen: clock regressed past tolerance")

// Generator mints Uids one at a time. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	lastUid model.Uid
	lastMs  int64
}

// New returns a Generator with no prior state - its first call is
// guaranteed distinct from model.NoUid but not from any id a previous
// process run may have issued. Use NewPersistent to survive restarts.
func New() *Generator {
	return &Generator{lastUid: model.NoUid}
}

// Next mints a new Uid strictly greater than the previously issued id (or
// the watermark a PersistentGenerator was seeded with), re-reading the
// clock and redrawing the random suffix until it is, so no id repeats
// within a process.
func (g *Generator) Next() (model.Uid, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		nowMs := time.Now().UnixMilli()
		if g.lastMs != 0 && nowMs < g.lastMs-consts.IDGenBackwardsTolerance.Milliseconds() {
			return model.NoUid, ErrExhausted
		}
		suffix := consts.IDGenRandomMin + rand.Intn(consts.IDGenRandomMax-consts.IDGenRandomMin)
		candidate, err := combine(nowMs, suffix)
		if err != nil {
			return model.NoUid, err
		}
		if candidate > g.lastUid {
			g.lastUid = candidate
			g.lastMs = nowMs
			return candidate, nil
		}
	}
}

// combine concatenates the millisecond timestamp and the random suffix as
// decimal text, then parses the result - the same textual join the
// source project performs, not a numeric shift, so it is exact for any
// suffix width.
func combine(nowMs int64, suffix int) (model.Uid, error) {
	text := strconv.FormatInt(nowMs, 10) + strconv.Itoa(suffix)
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return model.NoUid, err
	}
	return model.Uid(n), nil
}

// Watermark is the persisted last-issued-uid state a PersistentGenerator
// reads at startup and advances on every mint, grounded on the teacher's
// GetWatermark/SaveWatermark pair (indexers/pcx/db/pebble.go) - an 8-byte
// big-endian value read and written through the same store abstraction.
type Watermark interface {
	LastUid() (model.Uid, error)
	SaveLastUid(model.Uid) error
}

// PersistentGenerator wraps Generator with a store-backed watermark so a
// restarted node never reissues a Uid it already handed out.
type PersistentGenerator struct {
	gen *Generator
	wm  Watermark
}

// NewPersistent seeds a Generator from the store's last-issued-uid
// watermark, then wraps every mint with a watermark update.
func NewPersistent(wm Watermark) (*PersistentGenerator, error) {
	last, err := wm.LastUid()
	if err != nil {
		return nil, err
	}
	g := New()
	g.lastUid = last
	return &PersistentGenerator{gen: g, wm: wm}, nil
}

// Next mints a Uid and durably advances the watermark before returning it.
func (p *PersistentGenerator) Next() (model.Uid, error) {
	uid, err := p.gen.Next()
	if err != nil {
		return model.NoUid, err
	}
	if err := p.wm.SaveLastUid(uid); err != nil {
		return model.NoUid, err
	}
	return uid, nil
}
