package sim

import "sync"

// workerPool is a set of persistent goroutines released once per phase by a
// condition-variable broadcast. The driver blocks on the done channel until
// every worker has finished the phase, which makes each pool.run call a full
// barrier.
type workerPool struct {
	workers int

	mu   sync.Mutex
	cond *sync.Cond
	seq  int
	job  func(worker int)
	quit bool

	done chan struct{}
}

func newWorkerPool(workers int) *workerPool {
	p := &workerPool{
		workers: workers,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.loop(i)
	}
	return p
}

func (p *workerPool) loop(id int) {
	last := 0
	for {
		p.mu.Lock()
		for p.seq == last && !p.quit {
			p.cond.Wait()
		}
		if p.quit {
			p.mu.Unlock()
			return
		}
		last = p.seq
		job := p.job
		p.mu.Unlock()

		job(id)
		p.done <- struct{}{}
	}
}

// run executes job on every worker and waits for all of them to finish.
func (p *workerPool) run(job func(worker int)) {
	p.mu.Lock()
	p.job = job
	p.seq++
	p.cond.Broadcast()
	p.mu.Unlock()
	for i := 0; i < p.workers; i++ {
		<-p.done
	}
}

func (p *workerPool) stop() {
	p.mu.Lock()
	p.quit = true
	p.cond.Broadcast()
	p.mu.Unlock()
}

// splitRange partitions [0, n) into count contiguous chunks. Chunks may be
// empty when n < count.
func splitRange(n, count int) [][2]int {
	chunks := make([][2]int, count)
	avg := float64(n) / float64(count)
	for i := 0; i < count; i++ {
		start := int(avg*float64(i) + 0.5)
		end := int(avg*float64(i+1) + 0.5)
		chunks[i] = [2]int{start, end}
	}
	return chunks
}
