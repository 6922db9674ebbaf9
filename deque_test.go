package forkjoin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChaseLevDequePushPop(t *testing.T) {
	d := newChaseLevDeque()
	require.True(t, d.Empty())

	a, b, c := &Frame{}, &Frame{}, &Frame{}
	d.Push(a)
	d.Push(b)
	d.Push(c)
	require.False(t, d.Empty())

	f, ok := d.Pop()
	require.True(t, ok)
	require.Same(t, c, f)

	f, ok = d.Pop()
	require.True(t, ok)
	require.Same(t, b, f)

	f, ok = d.Pop()
	require.True(t, ok)
	require.Same(t, a, f)

	_, ok = d.Pop()
	require.False(t, ok)
}

func TestChaseLevDequeSteal(t *testing.T) {
	d := newChaseLevDeque()
	a, b := &Frame{}, &Frame{}
	d.Push(a)
	d.Push(b)

	f, ok := d.Steal()
	require.True(t, ok)
	require.Same(t, a, f)

	f, ok = d.Pop()
	require.True(t, ok)
	require.Same(t, b, f)

	_, ok = d.Steal()
	require.False(t, ok)
}

func TestChaseLevDequeLastElementRace(t *testing.T) {
	for trial := 0; trial < 1000; trial++ {
		d := newChaseLevDeque()
		d.Push(&Frame{})

		var wg sync.WaitGroup
		var stolen, popped bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, stolen = d.Steal()
		}()
		go func() {
			defer wg.Done()
			_, popped = d.Pop()
		}()
		wg.Wait()

		require.NotEqual(t, stolen, popped, "exactly one of steal/pop should have won the last element")
	}
}

func TestChaseLevDequeGrows(t *testing.T) {
	d := newChaseLevDeque()
	n := dequeDefaultCapacity * 4
	frames := make([]*Frame, n)
	for i := range frames {
		frames[i] = &Frame{}
		d.Push(frames[i])
	}
	for i := n - 1; i >= 0; i-- {
		f, ok := d.Pop()
		require.True(t, ok)
		require.Same(t, frames[i], f)
	}
}
