package rpc

import "sync"

// Correlator issues request ids and maps in-flight ids back to the
// conversation that should hear about a daemon-reported error. Ids are
// strictly increasing for the life of the process and are never reused,
// including across daemon restarts; only the in-flight table is cleared on
// restart.
type Correlator struct {
	mu       sync.Mutex
	lastID   int64
	inflight map[int64]string
}

// NewCorrelator returns an empty correlator. The first issued id is 1.
func NewCorrelator() *Correlator {
	return &Correlator{inflight: make(map[int64]string)}
}

// NextID returns the next request id.
func (c *Correlator) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++
	return c.lastID
}

// Register records the conversation to notify if the request with this id
// fails. Requests that need no error surfacing simply skip registration.
func (c *Correlator) Register(id int64, conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[id] = conversationID
}

// Resolve removes and returns the conversation registered for id. It returns
// ok=false for ids that were never registered or were already resolved; both
// are normal (fire-and-forget requests, duplicate responses) and must be
// tolerated silently by callers.
func (c *Correlator) Resolve(id int64) (conversationID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conversationID, ok = c.inflight[id]
	if ok {
		delete(c.inflight, id)
	}
	return conversationID, ok
}

// Abandon drops every in-flight registration without resolving it. Used when
// the daemon is stopped: outstanding requests will never get a response and
// their error paths must not fire. The id counter is left alone.
func (c *Correlator) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = make(map[int64]string)
}

// Pending returns the number of in-flight registrations.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}
