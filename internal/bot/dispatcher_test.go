package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestDispatcherKeepsPerKeyOrder(t *testing.T) {
	d := newDispatcher(4, 8, zaptest.NewLogger(t))

	var mu sync.Mutex
	seen := make(map[int64][]int)
	for i := 0; i < 100; i++ {
		for key := int64(1); key <= 5; key++ {
			key, i := key, i
			d.submit(key, func() {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
			})
		}
	}
	d.stop()

	for key := int64(1); key <= 5; key++ {
		assert.Len(t, seen[key], 100)
		for i, v := range seen[key] {
			assert.Equal(t, i, v)
		}
	}
}

func TestDispatcherSurvivesPanics(t *testing.T) {
	d := newDispatcher(1, 4, zaptest.NewLogger(t))

	ran := false
	d.submit(-42, func() { panic("boom") })
	d.submit(-42, func() { ran = true })
	d.stop()

	assert.True(t, ran)
}
