package tlsf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uintptr(0), alignUp(0, 8))
	assert.Equal(t, uintptr(8), alignUp(1, 8))
	assert.Equal(t, uintptr(8), alignUp(8, 8))
	assert.Equal(t, uintptr(16), alignUp(9, 8))
	assert.Equal(t, uintptr(32), alignUp(17, 32))
}

func TestAlignDown(t *testing.T) {
	assert.Equal(t, uintptr(0), alignDown(7, 8))
	assert.Equal(t, uintptr(8), alignDown(8, 8))
	assert.Equal(t, uintptr(8), alignDown(15, 8))
	assert.Equal(t, uintptr(16), alignDown(16, 8))
}

func TestIsAligned(t *testing.T) {
	assert.True(t, isAligned(0, 8))
	assert.True(t, isAligned(16, 8))
	assert.False(t, isAligned(1, 8))
	assert.False(t, isAligned(17, 8))
}

func TestIlog2(t *testing.T) {
	assert.Equal(t, uint(0), ilog2(1))
	assert.Equal(t, uint(1), ilog2(2))
	assert.Equal(t, uint(1), ilog2(3))
	assert.Equal(t, uint(2), ilog2(4))
	assert.Equal(t, uint(9), ilog2(1023))
	assert.Equal(t, uint(10), ilog2(1024))
}

func TestFfs(t *testing.T) {
	assert.Equal(t, uint(0), ffs(1))
	assert.Equal(t, uint(1), ffs(2))
	assert.Equal(t, uint(3), ffs(0b1000))
	assert.Equal(t, uint(0), ffs(0b1011))
}
