package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1_700_000_000, 0)

func TestStore_RoundTripBeforeTTL(t *testing.T) {
	s := NewStore(WithTTL(time.Minute))
	s.Set("k", []byte(`{"a":1}`), "application/json", t0)

	for i := 0; i < 2; i++ {
		e, ok := s.Get("k", t0.Add(59*time.Second))
		require.True(t, ok)
		assert.JSONEq(t, `{"a":1}`, string(e.Body))
		assert.Equal(t, "application/json", e.ContentType)
		assert.Equal(t, t0.Add(time.Minute), e.ExpiresAt)
	}
}

func TestStore_ExpiredReadIsMissAndDeletes(t *testing.T) {
	s := NewStore(WithTTL(time.Minute))
	s.Set("k", []byte(`1`), "application/json", t0)

	_, ok := s.Get("k", t0.Add(time.Minute))
	assert.False(t, ok, "entry must not be readable at now == expiresAt")
	assert.Equal(t, 0, s.Len(), "expired entry must be removed on read")
}

func TestStore_MissingKey(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nope", t0)
	assert.False(t, ok)
}

func TestStore_EvictsSoonestToExpireAtCapacity(t *testing.T) {
	s := NewStore(WithMaxEntries(3), WithTTL(time.Minute))

	s.Set("a", []byte(`1`), "", t0.Add(2*time.Second))
	s.Set("b", []byte(`2`), "", t0) // vence primeiro
	s.Set("c", []byte(`3`), "", t0.Add(time.Second))
	s.Set("d", []byte(`4`), "", t0.Add(3*time.Second))

	assert.Equal(t, 3, s.Len())
	_, ok := s.Get("b", t0.Add(3*time.Second))
	assert.False(t, ok, "soonest-to-expire entry should be evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := s.Get(k, t0.Add(3*time.Second))
		assert.True(t, ok, "key %s should survive", k)
	}
	assert.EqualValues(t, 1, s.Evictions())
}

func TestStore_OverwriteAtCapacityDoesNotEvict(t *testing.T) {
	s := NewStore(WithMaxEntries(2))
	s.Set("a", []byte(`1`), "", t0)
	s.Set("b", []byte(`2`), "", t0)
	s.Set("a", []byte(`3`), "", t0.Add(time.Second))

	assert.Equal(t, 2, s.Len())
	e, ok := s.Get("a", t0.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, `3`, string(e.Body))
	assert.EqualValues(t, 0, s.Evictions())
}

func TestStore_MaxEntriesPlusOne(t *testing.T) {
	const maxEntries = 10
	s := NewStore(WithMaxEntries(maxEntries))
	for i := 0; i <= maxEntries; i++ {
		s.Set(fmt.Sprintf("k%d", i), []byte(`{}`), "", t0.Add(time.Duration(i)*time.Millisecond))
	}
	assert.Equal(t, maxEntries, s.Len())
	_, ok := s.Get("k0", t0.Add(time.Second))
	assert.False(t, ok)
}

func TestStore_StatsEstimatesUTF16(t *testing.T) {
	s := NewStore()
	s.Set("abc", []byte(`"é"`), "", t0) // 3 runas de chave + 3 runas de corpo

	st := s.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.EqualValues(t, 12, st.MemoryBytes)
}

func TestStore_ClearAndSweep(t *testing.T) {
	s := NewStore(WithTTL(time.Minute))
	s.Set("a", []byte(`1`), "", t0)
	s.Set("b", []byte(`1`), "", t0.Add(time.Minute))

	assert.Equal(t, 1, s.Sweep(t0.Add(time.Minute)))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(WithMaxEntries(16))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := fmt.Sprintf("k%d", (i*j)%32)
				s.Set(k, []byte(`1`), "", t0)
				s.Get(k, t0)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 16)
}

func TestCoalescer_SharesInFlightCall(t *testing.T) {
	c := NewCoalescer[int](true)
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Do("k", func() int {
			calls.Add(1)
			close(started)
			<-release
			return 42
		})
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = c.Do("k", func() int {
			calls.Add(1)
			return 7
		})
	}()

	// dá tempo do segundo chamador entrar na espera
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, []int{42, 42}, results)
}

func TestCoalescer_DisabledRunsEveryCall(t *testing.T) {
	c := NewCoalescer[int](false)
	n := 0
	for i := 0; i < 3; i++ {
		_, shared := c.Do("k", func() int { n++; return n })
		assert.False(t, shared)
	}
	assert.Equal(t, 3, n)
}
