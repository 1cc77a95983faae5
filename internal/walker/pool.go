package walker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/monishjocata/Vendor-Check/internal/model"
)

// FileResult carries everything produced for one file.
type FileResult struct {
	File    string
	Results []model.ScanResult
	Error   error
}

// Processor extracts and scans a single file
type Processor func(path string) ([]model.ScanResult, error)

// WorkerPool manages concurrent processing
type WorkerPool struct {
	Concurrency int
	Processor   Processor
}

func NewWorkerPool(concurrency int, proc Processor) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerPool{
		Concurrency: concurrency,
		Processor:   proc,
	}
}

// Start consumes paths until the channel closes or ctx is cancelled. The
// returned channel closes once every worker has stopped.
func (wp *WorkerPool) Start(ctx context.Context, paths <-chan string) <-chan FileResult {
	results := make(chan FileResult)
	var wg sync.WaitGroup

	for i := 0; i < wp.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res, err := wp.Processor(path)
				// errors travel with the result so the caller can report them per file
				select {
				case results <- FileResult{File: path, Results: res, Error: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Collect drains results into one slice sorted by snippet id. Per-file
// errors are combined; the results of files that succeeded are still returned.
func Collect(results <-chan FileResult) ([]model.ScanResult, error) {
	var all []model.ScanResult
	var errs error
	for res := range results {
		if res.Error != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.File, res.Error))
			continue
		}
		all = append(all, res.Results...)
	}
	SortResults(all)
	return all, errs
}

// SortResults orders results by snippet id. Ids of the form "path:line"
// compare by path, then numerically by line.
func SortResults(results []model.ScanResult) {
	sort.SliceStable(results, func(i, j int) bool {
		pi, li := splitID(results[i].SnippetID)
		pj, lj := splitID(results[j].SnippetID)
		if pi != pj {
			return pi < pj
		}
		return li < lj
	})
}

func splitID(id string) (string, int) {
	i := strings.LastIndexByte(id, ':')
	if i < 0 {
		return id, 0
	}
	line, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return id, 0
	}
	return id[:i], line
}
