package malloc

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/cznic/mathutil"
	"github.com/stretchr/testify/require"
)

func TestHeapMallocFree(t *testing.T) {
	h, err := NewHeap(1 << 20)
	require.NoError(t, err)
	defer h.Close()

	b, err := h.Malloc(128)
	require.NoError(t, err)
	require.Len(t, b, 128)

	h.Free(b)
}

func TestHeapCallocZeroed(t *testing.T) {
	h, err := NewHeap(1 << 16)
	require.NoError(t, err)
	defer h.Close()

	b, err := h.Calloc(64)
	require.NoError(t, err)
	for i, v := range b {
		require.Equalf(t, byte(0), v, "byte %d not zeroed", i)
	}
}

func TestHeapReallocGrowPreservesPrefix(t *testing.T) {
	h, err := NewHeap(1 << 16)
	require.NoError(t, err)
	defer h.Close()

	b, err := h.Malloc(16)
	require.NoError(t, err)
	for i := range b {
		b[i] = byte(i)
	}

	grown, err := h.Realloc(b, 64)
	require.NoError(t, err)
	require.Len(t, grown, 64)
	for i := 0; i < 16; i++ {
		require.Equal(t, byte(i), grown[i])
	}
}

func TestHeapReallocToZeroFrees(t *testing.T) {
	h, err := NewHeap(1 << 16)
	require.NoError(t, err)
	defer h.Close()

	b, err := h.Malloc(32)
	require.NoError(t, err)

	nb, err := h.Realloc(b, 0)
	require.NoError(t, err)
	require.Nil(t, nb)
}

// Fuzz-style round trip: a seeded RNG drives a long sequence
// of mixed-size allocations, holding a subset live at all times.
func TestHeapFuzzRoundTrip(t *testing.T) {
	h, err := NewHeap(4 << 20)
	require.NoError(t, err)
	defer h.Close()

	rng, err := mathutil.NewFC32(1, 1<<12, true)
	require.NoError(t, err)
	rng.Seed(17)

	var live [][]byte
	for i := 0; i < 2000; i++ {
		if len(live) > 0 && rng.Next()%3 == 0 {
			idx := int(rng.Next()) % len(live)
			h.Free(live[idx])
			live = append(live[:idx], live[idx+1:]...)
			continue
		}
		b, err := h.Malloc(rng.Next()%512 + 1)
		if err != nil {
			continue
		}
		live = append(live, b)
	}
	for _, b := range live {
		h.Free(b)
	}
}

// Concurrent stress: many goroutines hammer Malloc/Free behind the Heap's
// mutex; the test only asserts the absence of a panic/race, not any
// particular interleaving.
func TestHeapConcurrentStress(t *testing.T) {
	h, err := NewHeap(4 << 20)
	require.NoError(t, err)
	defer h.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			var live [][]byte
			for i := 0; i < 200; i++ {
				if len(live) > 0 && r.Intn(2) == 0 {
					idx := r.Intn(len(live))
					h.Free(live[idx])
					live = append(live[:idx], live[idx+1:]...)
					continue
				}
				b, err := h.Malloc(1 + r.Intn(256))
				if err != nil {
					continue
				}
				live = append(live, b)
			}
			for _, b := range live {
				h.Free(b)
			}
		}(int64(g) + 1)
	}
	wg.Wait()
}
