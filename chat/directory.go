package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/coursechat"
)

// Directory caches the session summaries the user can browse and select.
type Directory struct {
	svc coursechat.Service

	mu      sync.Mutex
	entries []coursechat.SessionSummary
	// hints are subjects chosen locally for sessions the server has not yet
	// tagged.
	hints   map[string]coursechat.Subject
	removed map[string]bool

	// gen numbers Refresh requests and Remove calls. A listing is applied
	// only if its request is newer than both the last applied listing and
	// the last Remove.
	gen     uint64
	applied uint64
	barrier uint64
}

// NewDirectory returns an empty Directory backed by svc.
func NewDirectory(svc coursechat.Service) *Directory {
	return &Directory{
		svc:     svc,
		hints:   make(map[string]coursechat.Subject),
		removed: make(map[string]bool),
	}
}

// Refresh replaces the cached entries with the server listing. On failure
// the cache is left as it was. A listing requested before a newer applied
// listing or before a Remove is stale and is dropped.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	listed, err := d.svc.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("refresh directory: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen <= d.applied || gen <= d.barrier {
		return nil
	}
	d.applied = gen

	seen := make(map[string]bool, len(listed))
	entries := make([]coursechat.SessionSummary, 0, len(listed))
	for _, s := range listed {
		if seen[s.ID] || d.removed[s.ID] {
			continue
		}
		seen[s.ID] = true
		if hint, ok := d.hints[s.ID]; ok {
			if s.Subject == "" {
				s.Subject = hint
			} else {
				delete(d.hints, s.ID)
			}
		}
		entries = append(entries, s)
	}
	// Sessions created locally that the listing does not show yet.
	for _, e := range d.entries {
		if _, hinted := d.hints[e.ID]; hinted && !seen[e.ID] {
			entries = append(entries, e)
		}
	}
	d.entries = entries
	return nil
}

// UpsertSubject records a display subject for id, inserting a placeholder
// entry when id is not listed yet. A subject the server already reports is
// kept. Removed IDs are ignored.
func (d *Directory) UpsertSubject(id string, subject coursechat.Subject) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.removed[id] {
		return
	}

	i := d.indexLocked(id)
	if i < 0 {
		d.entries = append(d.entries, coursechat.SessionSummary{ID: id, Subject: subject})
		d.hints[id] = subject
		return
	}
	if d.entries[i].Subject != "" {
		if _, hinted := d.hints[id]; !hinted {
			return
		}
	}
	d.entries[i].Subject = subject
	d.hints[id] = subject
}

// Ensure inserts an empty placeholder entry for id unless one exists or id
// was removed.
func (d *Directory) Ensure(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.removed[id] && d.indexLocked(id) < 0 {
		d.entries = append(d.entries, coursechat.SessionSummary{ID: id})
	}
}

// Remove drops id and any subject hint recorded for it. Listings requested
// before the call are discarded when they arrive, and id is never listed
// again.
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.barrier = d.gen
	d.removed[id] = true
	delete(d.hints, id)
	if i := d.indexLocked(id); i >= 0 {
		d.entries = append(d.entries[:i:i], d.entries[i+1:]...)
	}
}

// Removed reports whether id was removed.
func (d *Directory) Removed(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removed[id]
}

// Entries returns a snapshot of the cached summaries in server order.
func (d *Directory) Entries() []coursechat.SessionSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]coursechat.SessionSummary(nil), d.entries...)
}

// Lookup returns the cached summary for id.
func (d *Directory) Lookup(id string) (coursechat.SessionSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.indexLocked(id); i >= 0 {
		return d.entries[i], true
	}
	return coursechat.SessionSummary{}, false
}

// Len returns the number of cached summaries.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Directory) indexLocked(id string) int {
	for i, e := range d.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
