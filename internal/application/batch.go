package app

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

// ItemResult is the per-item outcome of a batch run. Every input item yields
// exactly one result, at the same index it was submitted with.
type ItemResult struct {
	Index         int    `json:"index"`
	Success       bool   `json:"success"`
	InspectionID  uint   `json:"inspection_id,omitempty"`
	Verdict       string `json:"verdict,omitempty"`
	Score         int    `json:"score,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// BatchService runs the per-image pipeline (fetch, analyze, score, persist)
// over a batch, isolating failures per item: nothing a single item does can
// abort the remaining batch.
type BatchService struct {
	repo          port.InspectionRepository
	fetcher       port.ImageFetcher
	analyzer      port.ImageAnalyzer
	notifier      port.Notifier // optional
	passThreshold int
	workers       int
	log           *logrus.Logger
}

func NewBatchService(
	repo port.InspectionRepository,
	fetcher port.ImageFetcher,
	analyzer port.ImageAnalyzer,
	notifier port.Notifier,
	passThreshold int,
	workers int,
	log *logrus.Logger,
) *BatchService {
	if workers < 1 {
		workers = 1
	}
	return &BatchService{
		repo:          repo,
		fetcher:       fetcher,
		analyzer:      analyzer,
		notifier:      notifier,
		passThreshold: passThreshold,
		workers:       workers,
		log:           log,
	}
}

// Process handles every item of the batch against one destination location.
// Items run on a bounded worker pool; results keep submission order.
func (s *BatchService) Process(ctx context.Context, items []entity.BatchItem, location string) []ItemResult {
	results := make([]ItemResult, len(items))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, item entity.BatchItem) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = s.processItem(ctx, idx, item, location)
		}(i, items[i])
	}
	wg.Wait()

	s.notify(ctx, location, results)
	return results
}

func (s *BatchService) processItem(ctx context.Context, idx int, item entity.BatchItem, location string) ItemResult {
	res := ItemResult{Index: idx}

	imagePath, err := s.fetcher.Fetch(ctx, item.ImageRef)
	if err != nil {
		return s.failed(res, item, err)
	}
	// The temp image is removed on every exit path.
	defer os.Remove(imagePath)

	obs, err := s.analyzer.Analyze(ctx, imagePath)
	if err != nil {
		return s.failed(res, item, err)
	}

	sc := entity.Score(obs, s.passThreshold)

	recordedAt := item.Timestamp
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	in := entity.NewInspection(location, item.ImageRef, recordedAt, obs, sc)
	if err := s.repo.Insert(ctx, in); err != nil {
		return s.failed(res, item, err)
	}

	res.Success = true
	res.InspectionID = in.ID
	res.Verdict = sc.Verdict
	res.Score = sc.Total
	return res
}

func (s *BatchService) failed(res ItemResult, item entity.BatchItem, err error) ItemResult {
	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"index":    res.Index,
			"imageRef": item.ImageRef,
		}).Warnf("batch item failed: %v", err)
	}
	res.Success = false
	res.FailureReason = err.Error()
	return res
}

// notify sends the batch digest to the optional notifier. Notification
// failures are logged, never propagated.
func (s *BatchService) notify(ctx context.Context, location string, results []ItemResult) {
	if s.notifier == nil || len(results) == 0 {
		return
	}

	var processed, failed, passed int
	for _, r := range results {
		if !r.Success {
			failed++
			continue
		}
		processed++
		if r.Verdict == entity.VerdictPass {
			passed++
		}
	}

	digest := port.BatchDigest{
		Location:  location,
		Processed: processed,
		Failed:    failed,
	}
	if processed > 0 {
		digest.PassRate = float64(passed) / float64(processed) * 100
	}

	if err := s.notifier.NotifyBatch(ctx, digest); err != nil && s.log != nil {
		s.log.Warnf("batch notification failed: %v", err)
	}
}
