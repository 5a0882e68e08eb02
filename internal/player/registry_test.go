package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryTracksSessions(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.Sessions())

	p := newFakePipeline()
	e := newTestEngine(t, p)
	id := r.Add(e)

	sessions := r.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, id, sessions[0].ID)

	r.Remove(id)
	require.Empty(t, r.Sessions())
}

func TestRegistrySessionsOrderByCreation(t *testing.T) {
	r := NewRegistry()
	var ids []string
	for i := 0; i < 12; i++ {
		e := newTestEngine(t, newFakePipeline())
		id := r.Add(e)
		ids = append(ids, id)
		defer r.Remove(id)
	}

	sessions := r.Sessions()
	require.Len(t, sessions, len(ids))
	for i, s := range sessions {
		require.Equal(t, ids[i], s.ID, "session-10 and up must sort numerically, not lexically")
	}
}

func TestRegistryPublishesOnStateChange(t *testing.T) {
	r := NewRegistry()
	p := newFakePipeline()
	e := newTestEngine(t, p)
	id := r.Add(e)
	defer r.Remove(id)

	ch := r.Subscribe()
	defer r.Unsubscribe(ch)

	e.Bind(testVideo)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("no registry update after state change")
		case sessions := <-ch:
			if len(sessions) == 1 && sessions[0].VideoID == "video1" {
				return
			}
		}
	}
}

func TestRegistryRemoveStopsRelay(t *testing.T) {
	r := NewRegistry()
	p := newFakePipeline()
	e := newTestEngine(t, p)
	id := r.Add(e)

	ch := r.Subscribe()
	defer r.Unsubscribe(ch)

	r.Remove(id)
	// Drain the removal publish, then verify engine changes no longer
	// produce session entries.
	for {
		select {
		case sessions := <-ch:
			if len(sessions) == 0 {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("expected empty session list after remove")
		}
	}
}
