package frame

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickRunsTasksBeforeCallbacks(t *testing.T) {
	l := NewLoop(nil)
	var order []string

	l.RequestFrame(func(time.Time) { order = append(order, "frame") })
	l.Post(func() { order = append(order, "task") })

	l.Tick(time.Unix(10, 0))
	assert.Equal(t, []string{"task", "frame"}, order)
	assert.Equal(t, uint64(1), l.Frames())
	assert.False(t, l.Pending())
}

func TestCallbackReceivesFrameTime(t *testing.T) {
	l := NewLoop(nil)
	now := time.Unix(42, 500)
	var got time.Time
	l.RequestFrame(func(ts time.Time) { got = ts })
	l.Tick(now)
	assert.Equal(t, now, got)
}

func TestRequestDuringTickWaitsForNextFrame(t *testing.T) {
	l := NewLoop(nil)
	count := 0
	var cb Callback
	cb = func(time.Time) {
		count++
		l.RequestFrame(cb)
	}
	l.RequestFrame(cb)

	l.Tick(time.Now())
	assert.Equal(t, 1, count)
	l.Tick(time.Now())
	assert.Equal(t, 2, count)
	assert.True(t, l.Pending())
}

func TestPanicIsContained(t *testing.T) {
	l := NewLoop(nil)
	ran := false
	l.Post(func() { panic("boom") })
	l.RequestFrame(func(time.Time) { ran = true })

	assert.NotPanics(t, func() { l.Tick(time.Now()) })
	assert.True(t, ran)
}

func TestPostFromManyGoroutines(t *testing.T) {
	l := NewLoop(nil)
	var wg sync.WaitGroup
	n := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() { n++ })
		}()
	}
	wg.Wait()
	l.Drain()
	assert.Equal(t, 50, n)
}

func TestDrainRunsNestedPosts(t *testing.T) {
	l := NewLoop(nil)
	var order []int
	l.Post(func() {
		order = append(order, 1)
		l.Post(func() { order = append(order, 2) })
	})
	l.Drain()
	assert.Equal(t, []int{1, 2}, order)
}
