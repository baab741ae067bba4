package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQueue(t *testing.T) {
	assert := assert.New(t)
	q := NewFrameQueue(3)

	assert.Equal(3, q.Cap())
	assert.Nil(q.Pop())

	frames := []*Frame{{PTS: 1}, {PTS: 2}, {PTS: 3}, {PTS: 4}}
	assert.True(q.Push(frames[0]))
	assert.True(q.Push(frames[1]))
	assert.True(q.Push(frames[2]))
	assert.True(q.IsFull())
	assert.False(q.Push(frames[3]), "full queue must decline")
	assert.Equal(3, q.Len())

	assert.Same(frames[0], q.Pop())
	assert.True(q.Push(frames[3]), "room after pop")

	// Wrap around the ring several times.
	for i, want := range []*Frame{frames[1], frames[2], frames[3]} {
		assert.Same(want, q.Pop(), "pop %d", i)
	}
	assert.Equal(0, q.Len())
	assert.Nil(q.Pop())
}

func TestFrameQueueFIFOAcrossWraps(t *testing.T) {
	q := NewFrameQueue(4)
	next := uint64(0)
	expect := uint64(0)

	for round := 0; round < 25; round++ {
		for q.Push(&Frame{PTS: next}) {
			next++
		}
		for i := 0; i < 1+round%4; i++ {
			f := q.Pop()
			if f == nil {
				break
			}
			assert.Equal(t, expect, f.PTS)
			expect++
		}
		assert.LessOrEqual(t, q.Len(), q.Cap())
	}
}

func TestFrameQueueDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultQueueCapacity, NewFrameQueue(0).Cap())
	assert.Equal(t, 10, DefaultQueueCapacity)
}

func TestFrameQueueClear(t *testing.T) {
	q := NewFrameQueue(2)
	q.Push(&Frame{Data: make([]byte, 4)})
	q.Push(&Frame{Data: make([]byte, 4)})
	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.Push(&Frame{}))
}
