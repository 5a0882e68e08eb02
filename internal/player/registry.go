package player

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// SessionInfo pairs a registry id with the session's latest state.
type SessionInfo struct {
	ID string `json:"id"`
	Snapshot
}

// Registry tracks the playback sessions currently bound to engines
// and fans their state changes out to subscribers (the dashboard SSE
// stream). Engines register on connect and are removed on disconnect.
type Registry struct {
	mu      sync.RWMutex
	nextID  int64
	engines map[string]*Engine
	watch   map[string]chan struct{} // per-engine watcher stop signal

	subMu       sync.Mutex
	subscribers map[chan []SessionInfo]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		engines:     make(map[string]*Engine),
		watch:       make(map[string]chan struct{}),
		subscribers: make(map[chan []SessionInfo]struct{}),
	}
}

// Add registers an engine and starts relaying its state changes.
// The returned id must be passed to Remove when the session ends.
func (r *Registry) Add(e *Engine) string {
	r.mu.Lock()
	r.nextID++
	id := "session-" + strconv.FormatInt(r.nextID, 10)
	stop := make(chan struct{})
	r.engines[id] = e
	r.watch[id] = stop
	r.mu.Unlock()

	ch := e.Subscribe()
	go func() {
		defer e.Unsubscribe(ch)
		for {
			select {
			case <-stop:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				r.publish()
			}
		}
	}()

	r.publish()
	return id
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	if stop, ok := r.watch[id]; ok {
		close(stop)
		delete(r.watch, id)
	}
	delete(r.engines, id)
	r.mu.Unlock()
	r.publish()
}

// Sessions returns a snapshot of every registered session, ordered
// by id.
func (r *Registry) Sessions() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]SessionInfo, 0, len(r.engines))
	for id, e := range r.engines {
		result = append(result, SessionInfo{ID: id, Snapshot: e.Snapshot()})
	}
	sort.Slice(result, func(i, j int) bool {
		return sessionSeq(result[i].ID) < sessionSeq(result[j].ID)
	})
	return result
}

// sessionSeq extracts the numeric suffix so session-10 sorts after
// session-2.
func sessionSeq(id string) int64 {
	n, _ := strconv.ParseInt(strings.TrimPrefix(id, "session-"), 10, 64)
	return n
}

func (r *Registry) Subscribe() chan []SessionInfo {
	ch := make(chan []SessionInfo, 1)
	r.subMu.Lock()
	r.subscribers[ch] = struct{}{}
	r.subMu.Unlock()
	return ch
}

func (r *Registry) Unsubscribe(ch chan []SessionInfo) {
	r.subMu.Lock()
	_, exists := r.subscribers[ch]
	delete(r.subscribers, ch)
	r.subMu.Unlock()
	if exists {
		close(ch)
	}
}

func (r *Registry) publish() {
	snapshot := r.Sessions()
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
