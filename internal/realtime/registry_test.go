package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct{ name string }

func (s *stubSender) Send(_ []byte) error { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	a := &stubSender{name: "a"}

	r.Register("111111", a)

	got, ok := r.Lookup("111111")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, r.Count())

	_, ok = r.Lookup("222222")
	assert.False(t, ok)
}

func TestRegistry_LastWriterWins(t *testing.T) {
	r := NewRegistry()
	old := &stubSender{name: "old"}
	fresh := &stubSender{name: "fresh"}

	r.Register("111111", old)
	r.Register("111111", fresh)

	got, ok := r.Lookup("111111")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, r.Count(), "re-registration must not add a second entry")
}

func TestRegistry_UnregisterGuarded(t *testing.T) {
	r := NewRegistry()
	old := &stubSender{name: "old"}
	fresh := &stubSender{name: "fresh"}

	r.Register("111111", old)
	r.Register("111111", fresh)

	// The superseded session's late unregister is a no-op.
	assert.False(t, r.Unregister("111111", old))
	got, ok := r.Lookup("111111")
	require.True(t, ok)
	assert.Same(t, fresh, got)

	// The current session's unregister removes the entry.
	assert.True(t, r.Unregister("111111", fresh))
	_, ok = r.Lookup("111111")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_UnregisterUnknown(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Unregister("999999", &stubSender{}))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := fmt.Sprintf("%06d", i)
			s := &stubSender{name: uid}
			r.Register(uid, s)
			_, _ = r.Lookup(uid)
			_ = r.Count()
			r.Unregister(uid, s)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
}
