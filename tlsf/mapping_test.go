package tlsf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Mapping monotonicity law, general configuration: n1 <= n2 implies
// mapping(roundup(n1)) <= mapping(roundup(n2)).
func TestGeneralMappingMonotoneLaw(t *testing.T) {
	var prev uint
	for n := uintptr(1); n < 1<<22; n *= 3 {
		n += 1
		aligned := alignSize(n, generalMBS)
		flat := generalMapping(aligned).flatten()
		require.GreaterOrEqual(t, flat, prev, "size %d mapped below previous size's class", n)
		prev = flat
	}
}

// Target-class sufficiency: the class returned by generalTargetMapping
// must always map back to a class whose first-level range covers at
// least the aligned request.
func TestGeneralTargetSufficiency(t *testing.T) {
	for _, size := range []uintptr{32, 33, 64, 100, 4095, 4096, 1 << 20} {
		aligned := alignSize(size, generalMBS)
		m, ok := generalTargetMapping(aligned)
		if !ok {
			continue
		}
		require.GreaterOrEqual(t, uintptr(1)<<m.fl, aligned/2, "target class fl too small for size %d", size)
	}
}

func TestRegionMappingClassRange(t *testing.T) {
	for n := uintptr(regionMBS); n < 1<<18-regionMBS; n += 17 {
		aligned := alignSize(n, regionMBS)
		idx := regionMapping(aligned)
		require.Less(t, idx, uint(regionNumClasses), "size %d mapped outside the 56 flat classes", n)
	}
}

func TestRegionTargetMappingRejectsOversize(t *testing.T) {
	_, ok := regionTargetMapping(1 << 30)
	require.False(t, ok, "a request far beyond the region's 256 KiB ceiling must fail target mapping")
}
