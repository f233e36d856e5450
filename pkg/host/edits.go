package host

import (
	"sync"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

// EditStats counts the edit gestures an instance reported.
type EditStats struct {
	Gestures int    `json:"gestures"`
	Changes  int    `json:"changes"`
	Open     int    `json:"open"`
	Last     string `json:"last,omitempty"`
}

// EditRecorder receives edit gestures from an instance the way a DAW records
// automation from a plugin editor. It logs each completed gesture.
type EditRecorder struct {
	params *param.Registry
	log    *debug.Logger

	mu    sync.Mutex
	open  map[uint32]int // changes per open gesture
	stats EditStats
}

// NewEditRecorder creates a recorder that names parameters from params.
func NewEditRecorder(params *param.Registry) *EditRecorder {
	return &EditRecorder{
		params: params,
		log:    debug.Default().Named("edits"),
		open:   make(map[uint32]int),
	}
}

// BeginEdit opens a gesture on id. A second begin on an open gesture is
// ignored.
func (r *EditRecorder) BeginEdit(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.open[id]; ok {
		return
	}
	r.open[id] = 0
	r.stats.Gestures++
	r.stats.Open = len(r.open)
}

// PerformEdit records a value change. Changes outside a gesture count but
// belong to no gesture.
func (r *EditRecorder) PerformEdit(id uint32, normalized float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.open[id]; ok {
		r.open[id] = n + 1
	}
	r.stats.Changes++
	r.stats.Last = r.name(id)
}

// EndEdit closes the gesture on id.
func (r *EditRecorder) EndEdit(id uint32) {
	r.mu.Lock()
	n, ok := r.open[id]
	delete(r.open, id)
	r.stats.Open = len(r.open)
	r.mu.Unlock()

	if !ok {
		return
	}
	if p := r.params.Get(id); p != nil {
		r.log.Debug("%s: %d changes, now %s", p.Name, n, p.FormatValue(p.Get()))
	}
}

// Stats returns the counts so far.
func (r *EditRecorder) Stats() EditStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *EditRecorder) name(id uint32) string {
	if p := r.params.Get(id); p != nil {
		return p.Key
	}
	return ""
}
