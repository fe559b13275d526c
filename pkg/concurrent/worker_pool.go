package concurrent

import "sync"

// WorkerPool runs a fixed number of workers over a buffered job queue. Usage: AddJob for every
// job, Close, Start, Wait, then drain CollectResults.
type WorkerPool[T JobI, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan G
	wg         sync.WaitGroup
	nextID     int
}

func NewWorkerPool[T JobI, G any](numWorkers, numJobs int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], numJobs),
		results:    make(chan G, numJobs),
	}
}

// AddJob enqueues a job. The queue holds numJobs items, adding more before Start blocks.
func (wp *WorkerPool[T, G]) AddJob(jobItem T) {
	wp.jobQueue <- Job[T]{ID: wp.nextID, JobItem: jobItem}
	wp.nextID++
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) Start(fn JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *WorkerPool[T, G]) worker(fn JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- fn(job.JobItem)
	}
}

// Wait blocks until every job is processed and closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}
