package etl

import "context"

const DefaultQueueSize = 16

// Queue é uma fila limitada de jobs em canal.
type Queue struct {
	ch chan Job
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Job, size)}
}

// Offer enfileira sem bloquear. Fila cheia devolve false e o job é descartado.
func (q *Queue) Offer(job Job) bool {
	select {
	case q.ch <- job:
		return true
	default:
		return false
	}
}

// Take bloqueia até haver um job ou ctx terminar.
func (q *Queue) Take(ctx context.Context) (Job, error) {
	select {
	case job := <-q.ch:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

func (q *Queue) Len() int { return len(q.ch) }
