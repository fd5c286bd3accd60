package relay

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubEndpoint struct {
	mu     sync.Mutex
	frames []Outbound
	closed bool
}

func (s *stubEndpoint) Send(frame Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrEndpointClosed
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *stubEndpoint) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubEndpoint) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("ana")
	require.False(t, ok)

	ep := &stubEndpoint{}
	prev := r.Register("ana", ep)
	require.Nil(t, prev)

	got, ok := r.Lookup("ana")
	require.True(t, ok)
	require.Same(t, ep, got)
	require.Equal(t, 1, r.Len())
}

func TestRegistry_LastRegisterWins(t *testing.T) {
	r := NewRegistry()
	h1 := &stubEndpoint{}
	h2 := &stubEndpoint{}

	require.Nil(t, r.Register("ana", h1))

	prev := r.Register("ana", h2)
	require.Same(t, h1, prev)

	got, ok := r.Lookup("ana")
	require.True(t, ok)
	require.Same(t, h2, got)
	require.Equal(t, 1, r.Len())
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	ep := &stubEndpoint{}
	r.Register("ana", ep)

	require.True(t, r.Unregister("ana", ep))
	_, ok := r.Lookup("ana")
	require.False(t, ok)

	// Absent entry: no-op, reported as not removed.
	require.False(t, r.Unregister("ana", ep))
	require.Equal(t, 0, r.Len())
}

func TestRegistry_UnregisterGuardsNewerSession(t *testing.T) {
	r := NewRegistry()
	old := &stubEndpoint{}
	fresh := &stubEndpoint{}

	r.Register("ana", old)
	r.Register("ana", fresh)

	// The old session's cleanup fires after it was superseded. The new
	// registration must survive it, and the cleanup must learn it no
	// longer owned the entry.
	require.False(t, r.Unregister("ana", old))

	got, ok := r.Lookup("ana")
	require.True(t, ok)
	require.Same(t, fresh, got)
}

func TestRegistry_Online(t *testing.T) {
	r := NewRegistry()
	r.Register("ana", &stubEndpoint{})
	r.Register("bob", &stubEndpoint{})

	online := r.Online()
	require.ElementsMatch(t, []string{"ana", "bob"}, online)
}

func TestRegistry_Shutdown(t *testing.T) {
	r := NewRegistry()
	eps := []*stubEndpoint{{}, {}, {}}
	for i, ep := range eps {
		r.Register(fmt.Sprintf("user%d", i), ep)
	}

	r.Shutdown()

	require.Equal(t, 0, r.Len())
	for _, ep := range eps {
		require.True(t, ep.isClosed())
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			username := fmt.Sprintf("user%d", id%10)
			ep := &stubEndpoint{}
			r.Register(username, ep)
			r.Lookup(username)
			r.Online()
			r.Unregister(username, ep)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 0, r.Len())
}
