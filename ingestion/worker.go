// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/clausewise/turn"
)

// DefaultQueueSize is the number of turns a Worker buffers before Submit blocks.
const DefaultQueueSize = 16

type job struct {
	ctx     context.Context
	req     Request
	answer  bool
	tracker *turn.Tracker
}

// Worker runs submitted turns one at a time on a dedicated goroutine, in
// submission order. A new submission never preempts the running turn.
type Worker struct {
	pipeline *Pipeline
	queue    chan job
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewWorker starts a worker for p. queueSize < 1 uses DefaultQueueSize.
func NewWorker(p *Pipeline, queueSize int) (*Worker, error) {
	if p == nil {
		return nil, ErrPipelineRequired
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	w := &Worker{
		pipeline: p,
		queue:    make(chan job, queueSize),
		logger:   p.logger.With("component", "worker"),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// SubmitAsk queues an Ask turn and returns its tracker.
func (w *Worker) SubmitAsk(ctx context.Context, req Request) (*turn.Tracker, error) {
	return w.submit(ctx, req, true)
}

// SubmitIngest queues an Ingest turn and returns its tracker.
func (w *Worker) SubmitIngest(ctx context.Context, req Request) (*turn.Tracker, error) {
	return w.submit(ctx, req, false)
}

// submit blocks while the queue is full. The turn runs detached from ctx
// cancellation; ctx only bounds the wait for queue space.
func (w *Worker) submit(ctx context.Context, req Request, answer bool) (*turn.Tracker, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, ErrWorkerClosed
	}

	tracker := turn.NewTracker(newState(req))
	j := job{ctx: context.WithoutCancel(ctx), req: req, answer: answer, tracker: tracker}
	select {
	case w.queue <- j:
		return tracker, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for j := range w.queue {
		state, err := w.pipeline.run(j.ctx, j.tracker.Snapshot(), j.req, j.answer, j.tracker.Publish)
		j.tracker.Publish(state)
		if err != nil {
			w.logger.Warn("turn failed", "turn", state.ID().String(), "err", err)
		}
		j.tracker.Finish(err)
	}
}

// Close stops accepting submissions and waits for queued turns to finish.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
