package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/estudio/internal/model"
)

// Analyzer produces the analysis report of one match
type Analyzer interface {
	Analyze(ctx context.Context, matchID string) (*model.AnalysisReport, error)
}

// AnalysisJob analyzes one match
type AnalysisJob struct {
	MatchID  string
	Analyzer Analyzer
}

// Execute runs the analysis
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Analyzer.Analyze(ctx, j.MatchID)
	return &AnalysisResult{
		MatchID:  j.MatchID,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
}

// AnalysisResult is the outcome of one AnalysisJob. Report is nil on error.
type AnalysisResult struct {
	MatchID  string
	Report   *model.AnalysisReport
	Error    error
	Duration time.Duration
}

// GetError returns the error from the analysis
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many matches concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	log         logrus.FieldLogger
}

// NewBatchProcessor creates a batch processor running at most concurrency
// analyses at once
func NewBatchProcessor(analyzer Analyzer, concurrency int, log logrus.FieldLogger) *BatchProcessor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		log:         log,
	}
}

// ProcessIDs analyzes every match id and returns the results in input
// order. Matches not started before ctx is cancelled are reported with
// the context error.
func (b *BatchProcessor) ProcessIDs(ctx context.Context, ids []string) []*AnalysisResult {
	if len(ids) == 0 {
		return []*AnalysisResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range ids {
		pool.Submit(&AnalysisJob{MatchID: id, Analyzer: b.analyzer})
	}

	byID := make(map[string]*AnalysisResult, len(ids))
	for _, r := range pool.Wait() {
		ar := r.(*AnalysisResult)
		byID[ar.MatchID] = ar
	}

	results := make([]*AnalysisResult, len(ids))
	for i, id := range ids {
		ar, ok := byID[id]
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ar = &AnalysisResult{MatchID: id, Error: err}
		}
		if ar.Error != nil {
			b.log.WithField("match_id", id).WithError(ar.Error).Warn("analysis failed")
		} else {
			b.log.WithFields(logrus.Fields{"match_id": id, "duration": ar.Duration}).Debug("analysis done")
		}
		results[i] = ar
	}

	return results
}

// ProcessFile reads match ids from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalysisResult, error) {
	ids, err := ReadIDsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read match ids: %w", err)
	}

	return b.ProcessIDs(ctx, ids), nil
}

// Summary counts succeeded and failed results
func Summary(results []*AnalysisResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// ReadIDsFromFile reads match ids, one per line. Blank lines and lines
// starting with '#' are skipped, trailing "# ..." comments are stripped
// and duplicates are dropped.
func ReadIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
