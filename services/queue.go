package services

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrQueueFull is returned when an event cannot be accepted without
// blocking the webhook response.
var ErrQueueFull = errors.New("event queue is full")

// EventProcessor consumes accepted review events.
type EventProcessor interface {
	ProcessReviewEvent(ctx context.Context, ev ReviewEvent) error
}

// EventQueue decouples webhook acknowledgment from pipeline execution: the
// handler enqueues and responds, worker goroutines drain the queue and run
// the orchestrator. Delivery to the processor is at-least-once within the
// process; a pipeline failure is logged and recorded on the review row, not
// retried.
type EventQueue struct {
	events    chan ReviewEvent
	processor EventProcessor
	workers   int
	wg        sync.WaitGroup
}

func NewEventQueue(processor EventProcessor, size, workers int) *EventQueue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &EventQueue{
		events:    make(chan ReviewEvent, size),
		processor: processor,
		workers:   workers,
	}
}

// Start launches the worker goroutines.
func (q *EventQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
}

// Enqueue accepts an event without blocking. ErrQueueFull when the queue is
// at capacity.
func (q *EventQueue) Enqueue(ev ReviewEvent) error {
	select {
	case q.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for in-flight pipelines to reach a
// terminal status.
func (q *EventQueue) Close() {
	close(q.events)
	q.wg.Wait()
}

func (q *EventQueue) work(id int) {
	defer q.wg.Done()
	for ev := range q.events {
		// pipelines run to a terminal status once started, no cancellation
		if err := q.processor.ProcessReviewEvent(context.Background(), ev); err != nil {
			log.Printf("worker %d: review pipeline failed for %s#%d: %v", id, ev.RepoFullName, ev.PRNumber, err)
		}
	}
}
