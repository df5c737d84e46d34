package meshing

import (
	"container/heap"
	"sync"
)

// Task is one unit of meshing work. StillNeeded is evaluated right before
// running so that tasks for evicted chunks are dropped instead of executed.
type Task struct {
	Priority    float64
	StillNeeded func() bool
	Run         func()
}

type taskHeap []Task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].Priority > h[j].Priority }
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)        { *h = append(*h, x.(Task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// WorkerPool runs meshing tasks on a fixed set of goroutines, highest
// priority first.
type WorkerPool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  taskHeap
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerPool starts the worker goroutines.
func NewWorkerPool(workers int) *WorkerPool {
	p := &WorkerPool{}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues a task. Safe from any thread.
func (p *WorkerPool) Submit(t Task) {
	p.mu.Lock()
	if !p.closed {
		heap.Push(&p.tasks, t)
	}
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.tasks) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed && len(p.tasks) == 0 {
			p.mu.Unlock()
			return
		}
		t := heap.Pop(&p.tasks).(Task)
		p.mu.Unlock()

		if t.StillNeeded != nil && !t.StillNeeded() {
			continue
		}
		t.Run()
	}
}

// QueueLen returns the number of queued tasks.
func (p *WorkerPool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// Shutdown discards the queued tasks and waits for the workers to stop.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.tasks = nil
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}
