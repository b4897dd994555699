package chat

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeSession(t *testing.T) *Session {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return newSession(server)
}

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()
	a := pipeSession(t)
	b := pipeSession(t)

	r.Add(a)
	r.Add(b)
	require.Equal(t, 2, r.Len())

	// Double add is a no-op.
	r.Add(a)
	require.Equal(t, 2, r.Len())

	assert.True(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())

	// Idempotent removal.
	assert.False(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Remove(b))
	assert.Zero(t, r.Len())
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	a := pipeSession(t)
	r.Add(a)

	snap := r.Snapshot()
	require.Len(t, snap, 1)

	r.Remove(a)
	assert.Len(t, snap, 1, "snapshot must not observe later mutation")
	assert.Zero(t, r.Len())
}

// Concurrent connect/disconnect must not lose or duplicate entries.
func TestRegistryConcurrentStress(t *testing.T) {
	r := NewRegistry()
	const workers = 64
	const rounds = 50

	sessions := make([]*Session, workers)
	for i := range sessions {
		sessions[i] = pipeSession(t)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				r.Add(s)
				r.Snapshot()
				r.Remove(s)
			}
			r.Add(s)
		}(sessions[i])
	}
	wg.Wait()

	require.Equal(t, workers, r.Len())
	for _, s := range sessions {
		assert.True(t, r.Remove(s))
	}
	assert.Zero(t, r.Len())
}
