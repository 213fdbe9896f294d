package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/logger"
	"alfredoptarigan/skill-analyzer/internal/models"
)

type IngestJob struct {
	Path       string
	DocumentID string
}

type IngestResult struct {
	Job        IngestJob
	Extraction *models.Extraction
	Err        error
}

// Worker extracts skills from PDF files on disk with a fixed pool of goroutines.
type Worker interface {
	Start(ctx context.Context)
	// Stop closes the queue and waits for queued jobs to finish.
	Stop()
	EnqueueJob(job IngestJob) bool
	Results() <-chan IngestResult
}

type worker struct {
	extraction  ExtractionService
	jobQueue    chan IngestJob
	results     chan IngestResult
	concurrency int
	wg          sync.WaitGroup
	log         *zap.Logger

	mu      sync.Mutex
	stopped bool
}

func NewWorker(extraction ExtractionService, concurrency int, log *zap.Logger) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &worker{
		extraction:  extraction,
		jobQueue:    make(chan IngestJob, 100),
		results:     make(chan IngestResult, 100),
		concurrency: concurrency,
		log:         logger.OrNop(log),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting ingest workers", zap.Int("workers", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobQueue)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.results)
	w.log.Info("ingest workers stopped")
}

// EnqueueJob implements Worker. It reports false once the worker is stopped.
func (w *worker) EnqueueJob(job IngestJob) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		w.log.Warn("worker stopped, cannot enqueue job", zap.String("path", job.Path))
		return false
	}
	w.jobQueue <- job
	return true
}

func (w *worker) Results() <-chan IngestResult {
	return w.results
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for job := range w.jobQueue {
		result := IngestResult{Job: job}

		if err := ctx.Err(); err != nil {
			result.Err = err
		} else {
			result.Extraction, result.Err = w.ingest(ctx, job)
		}

		if result.Err != nil {
			w.log.Warn("ingest failed", zap.Int("worker", workerID), zap.String("path", job.Path), zap.Error(result.Err))
		} else {
			w.log.Debug("ingest completed", zap.Int("worker", workerID), zap.String(logger.FieldDocumentID, result.Extraction.DocumentID))
		}
		w.results <- result
	}
}

func (w *worker) ingest(ctx context.Context, job IngestJob) (*models.Extraction, error) {
	data, err := os.ReadFile(job.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", job.Path, err)
	}
	return w.extraction.Extract(ctx, ExtractInput{
		DocumentID: job.DocumentID,
		Filename:   filepath.Base(job.Path),
		Data:       data,
	})
}

// FindPDFs returns every *.pdf under dir, sorted.
func FindPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// IngestDir extracts every PDF under dir and returns one result per file in path order.
// The document ID of each file is its base name.
func IngestDir(ctx context.Context, extraction ExtractionService, dir string, concurrency int, log *zap.Logger) ([]IngestResult, error) {
	paths, err := FindPDFs(dir)
	if err != nil {
		return nil, err
	}

	w := NewWorker(extraction, concurrency, log)
	w.Start(ctx)

	collected := make(chan []IngestResult, 1)
	go func() {
		var out []IngestResult
		for r := range w.Results() {
			out = append(out, r)
		}
		collected <- out
	}()

	for _, path := range paths {
		w.EnqueueJob(IngestJob{Path: path, DocumentID: filepath.Base(path)})
	}
	w.Stop()

	results := <-collected
	sort.Slice(results, func(i, j int) bool { return results[i].Job.Path < results[j].Job.Path })
	return results, nil
}
