package conv

import (
	"sync"
	"time"
)

// typingTTL bounds how long a typing indicator stays lit without a STOPPED
// action or a message arriving.
const typingTTL = 15 * time.Second

// Pair is one row of the dashboard enumeration.
type Pair struct {
	ID   string
	Name string
}

// Directory is the process-wide registry of conversations: cached display
// names, the ordered active set, transient typing status, and the transcript
// buffer each conversation owns. Conversations are created implicitly on
// first reference and live for the process lifetime.
//
// All mutation happens from the dispatch loop or the UI thread; the mutex
// makes the interleaving safe.
type Directory struct {
	mu     sync.Mutex
	states map[string]*convState
	active []string // activation order
}

type convState struct {
	name        string
	active      bool
	typingUntil time.Time
	buffer      *Buffer
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{states: make(map[string]*convState)}
}

// state returns the conversation record, creating it on first reference.
// Caller must hold d.mu.
func (d *Directory) state(id string) *convState {
	s, ok := d.states[id]
	if !ok {
		s = &convState{buffer: NewBuffer()}
		d.states[id] = s
	}
	return s
}

// Buffer returns the transcript buffer for id, creating the conversation if
// it has never been referenced.
func (d *Directory) Buffer(id string) *Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state(id).buffer
}

// SetName caches a display name for id. A fresher name always wins; empty
// names are ignored.
func (d *Directory) SetName(id, name string) {
	if name == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state(id).name = name
}

// Name returns the cached display name, falling back to the id itself.
func (d *Directory) Name(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.states[id]; ok && s.name != "" {
		return s.name
	}
	return id
}

// MarkActive adds id to the active set. Activation order is stable: the
// first activation fixes the conversation's dashboard position.
func (d *Directory) MarkActive(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state(id)
	if !s.active {
		s.active = true
		d.active = append(d.active, id)
	}
}

// Active returns the ordered (id, display name) enumeration of the active
// set for the dashboard view.
func (d *Directory) Active() []Pair {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Pair, 0, len(d.active))
	for _, id := range d.active {
		name := id
		if s := d.states[id]; s != nil && s.name != "" {
			name = s.name
		}
		out = append(out, Pair{ID: id, Name: name})
	}
	return out
}

// MarkTyping lights the typing indicator for id until the TTL elapses, a
// STOPPED action arrives, or a message from the conversation lands.
func (d *Directory) MarkTyping(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state(id).typingUntil = time.Now().Add(typingTTL)
}

// ClearTyping extinguishes the typing indicator for id.
func (d *Directory) ClearTyping(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.states[id]; ok {
		s.typingUntil = time.Time{}
	}
}

// Typing reports whether the typing indicator for id is currently lit.
func (d *Directory) Typing(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.states[id]
	return ok && time.Now().Before(s.typingUntil)
}
