// Package ev runs events produced by one goroutine in order on a
// single worker goroutine, so that the producer never waits for an
// event to be handled.
package ev

import (
	"sync"

	"deedles.dev/xsync"
)

// Queue buffers events without bound and runs them on its worker.
// Errors returned by events are passed to the handler given to
// NewQueue.
type Queue struct {
	q    xsync.Queue[func() error]
	done chan struct{}
	stop sync.Once

	// m guards sends to q against q being stopped, which closes its
	// push channel.
	m sync.RWMutex
}

// NewQueue starts a Queue. If onErr is nil, errors are discarded.
func NewQueue(onErr func(error)) *Queue {
	if onErr == nil {
		onErr = func(error) {}
	}

	q := Queue{
		done: make(chan struct{}),
	}
	go q.run(onErr)

	return &q
}

func (q *Queue) run(onErr func(error)) {
	pop := q.q.Pop()
	for {
		select {
		case <-q.done:
			return
		case ev, ok := <-pop:
			if !ok {
				return
			}
			err := ev()
			if err != nil {
				onErr(err)
			}
		}
	}
}

// Add queues ev. It returns false if the queue has been stopped.
func (q *Queue) Add(ev func() error) bool {
	q.m.RLock()
	defer q.m.RUnlock()

	select {
	case <-q.done:
		return false
	default:
	}

	q.q.Push() <- ev
	return true
}

// Stop stops the worker. Events that haven't started yet are dropped.
// It is safe to call Stop from inside of an event.
func (q *Queue) Stop() {
	q.stop.Do(func() {
		close(q.done)

		q.m.Lock()
		defer q.m.Unlock()
		q.q.Stop()
	})
}

// Done is closed when the queue is stopped.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}
