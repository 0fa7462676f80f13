package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](3)

	assert.False(t, r.Push(1))
	assert.False(t, r.Push(2))
	assert.False(t, r.Push(3))
	assert.Equal(t, r.Cap(), r.Len())
	assert.True(t, r.Push(4))

	assert.Equal(t, []int{2, 3, 4}, r.Snapshot())
	assert.Equal(t, []int{4, 3}, r.Last(2))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
}

func TestRingLastClampsToSize(t *testing.T) {
	r := NewRing[string](5)
	r.Push("a")
	assert.Equal(t, []string{"a"}, r.Last(10))
	assert.Empty(t, r.Last(-1))
}

func TestAllEqualRequiresFullWindow(t *testing.T) {
	r := NewRing[string](3)
	r.Push("hold")
	r.Push("hold")
	assert.False(t, AllEqual(r))

	r.Push("hold")
	assert.True(t, AllEqual(r))

	r.Push("rebalance")
	assert.False(t, AllEqual(r))
}

func TestPushUniform(t *testing.T) {
	r := NewRing[string](2)
	assert.False(t, PushUniform(r, "hold"))
	assert.True(t, PushUniform(r, "hold"))
	assert.False(t, PushUniform(r, "close"))
	assert.True(t, PushUniform(r, "close"))
}

func TestRingConcurrentPush(t *testing.T) {
	r := NewRing[int](100)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				r.Push(i)
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, r.Len())
}
