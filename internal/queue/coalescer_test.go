package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalescerMergesBurstIntoSingleIdle(t *testing.T) {
	queue := make([]func(), 0, 8)
	c := NewCoalescer(func(fn func()) { queue = append(queue, fn) })

	value := 0
	for i := 1; i <= 5; i++ {
		v := i
		c.Post("omnibox-search", func() { value = v })
	}

	require.Len(t, queue, 1, "expected exactly one scheduled callback")
	queue[0]()

	assert.Equal(t, 5, value, "expected the latest callback in the burst to run")
}

func TestCoalescerDropsWorkAfterDestroy(t *testing.T) {
	queue := make([]func(), 0, 4)
	c := NewCoalescer(func(fn func()) { queue = append(queue, fn) })

	ran := false
	c.Post("ghost-clear", func() { ran = true })
	c.Destroy()

	require.Len(t, queue, 1, "expected one queued callback before destroy")
	queue[0]()
	assert.False(t, ran, "expected queued work to be dropped after destroy")

	c.Post("ghost-clear", func() { ran = true })
	assert.Len(t, queue, 1, "expected no new callback scheduled after destroy")
}

func TestNewCoalescerPanicsOnNilPost(t *testing.T) {
	assert.Panics(t, func() {
		_ = NewCoalescer(nil)
	})
}
