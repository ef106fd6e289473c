package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingProcessor struct {
	mu     sync.Mutex
	events []ReviewEvent
	block  chan struct{}
}

func (p *recordingProcessor) ProcessReviewEvent(ctx context.Context, ev ReviewEvent) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestEventQueueProcessesEnqueuedEvents(t *testing.T) {
	processor := &recordingProcessor{}
	queue := NewEventQueue(processor, 10, 2)
	queue.Start()

	for i := 0; i < 5; i++ {
		ev := testEvent()
		ev.PRNumber = i
		assert.NoError(t, queue.Enqueue(ev))
	}

	assert.Eventually(t, func() bool {
		return processor.count() == 5
	}, time.Second, 10*time.Millisecond)

	queue.Close()
}

func TestEventQueueRejectsWhenFull(t *testing.T) {
	processor := &recordingProcessor{block: make(chan struct{})}
	queue := NewEventQueue(processor, 1, 1)
	queue.Start()

	// first event occupies the worker, second fills the buffer
	assert.NoError(t, queue.Enqueue(testEvent()))
	assert.Eventually(t, func() bool {
		return queue.Enqueue(testEvent()) == nil
	}, time.Second, 10*time.Millisecond)

	err := queue.Enqueue(testEvent())
	assert.ErrorIs(t, err, ErrQueueFull)

	close(processor.block)
	queue.Close()
}

func TestEventQueueCloseDrainsInFlightEvents(t *testing.T) {
	processor := &recordingProcessor{}
	queue := NewEventQueue(processor, 10, 1)
	queue.Start()

	for i := 0; i < 3; i++ {
		assert.NoError(t, queue.Enqueue(testEvent()))
	}
	queue.Close()

	assert.Equal(t, 3, processor.count())
}
