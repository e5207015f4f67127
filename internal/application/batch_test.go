package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
	"gritsee-inspector/internal/infrastructure/storage"
)

type stubFetcher struct {
	mu       sync.Mutex
	failRefs map[string]bool
	fetched  []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.failRefs[url] {
		return "", fmt.Errorf("%w: connection refused", entity.ErrFetch)
	}

	tmp, err := os.CreateTemp("", "batchtest-*.jpg")
	if err != nil {
		return "", err
	}
	tmp.Close()

	f.mu.Lock()
	f.fetched = append(f.fetched, tmp.Name())
	f.mu.Unlock()
	return tmp.Name(), nil
}

type stubAnalyzer struct {
	obs  entity.Observations
	fail bool
}

func (a *stubAnalyzer) Analyze(ctx context.Context, imagePath string) (entity.Observations, error) {
	if a.fail {
		return entity.Observations{}, fmt.Errorf("%w: corrupt image", entity.ErrDecode)
	}
	return a.obs, nil
}

type stubNotifier struct {
	mu      sync.Mutex
	digests []port.BatchDigest
	err     error
}

func (n *stubNotifier) NotifyBatch(ctx context.Context, digest port.BatchDigest) error {
	n.mu.Lock()
	n.digests = append(n.digests, digest)
	n.mu.Unlock()
	return n.err
}

func goodObservations() entity.Observations {
	return entity.Observations{
		BakeClass:         "Correcto",
		DistributionClass: "Correcto",
	}
}

func newBatchService(repo port.InspectionRepository, fetcher port.ImageFetcher, analyzer port.ImageAnalyzer, notifier port.Notifier) *BatchService {
	return NewBatchService(repo, fetcher, analyzer, notifier, entity.DefaultPassThreshold, 1, nil)
}

func TestBatchService_ProcessAll(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	fetcher := &stubFetcher{}
	svc := newBatchService(repo, fetcher, &stubAnalyzer{obs: goodObservations()}, nil)
	ctx := context.Background()

	ts := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	items := []entity.BatchItem{
		{ImageRef: "http://img/1.jpg", Timestamp: ts},
		{ImageRef: "http://img/2.jpg", Timestamp: ts},
		{ImageRef: "http://img/3.jpg", Timestamp: ts},
	}

	results := svc.Process(ctx, items, "Molino")

	require.Len(t, results, 3)
	for i, res := range results {
		require.Equal(t, i, res.Index)
		require.True(t, res.Success)
		require.Equal(t, entity.VerdictPass, res.Verdict)
		require.Equal(t, 100, res.Score)
		require.NotZero(t, res.InspectionID)
	}

	count, err := repo.Count(ctx, port.InspectionFilter{Location: "Molino"})
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestBatchService_FetchFailureIsolatesItem(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	fetcher := &stubFetcher{failRefs: map[string]bool{"http://img/2.jpg": true}}
	svc := newBatchService(repo, fetcher, &stubAnalyzer{obs: goodObservations()}, nil)
	ctx := context.Background()

	items := []entity.BatchItem{
		{ImageRef: "http://img/1.jpg"},
		{ImageRef: "http://img/2.jpg"},
		{ImageRef: "http://img/3.jpg"},
		{ImageRef: "http://img/4.jpg"},
	}

	results := svc.Process(ctx, items, "Molino")

	require.Len(t, results, 4)
	require.False(t, results[1].Success)
	require.Contains(t, results[1].FailureReason, "image fetch failed")
	for _, i := range []int{0, 2, 3} {
		require.True(t, results[i].Success, "item %d", i)
	}

	count, err := repo.Count(ctx, port.InspectionFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestBatchService_DecodeFailureIsolatesItem(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := newBatchService(repo, &stubFetcher{}, &stubAnalyzer{fail: true}, nil)

	results := svc.Process(context.Background(), []entity.BatchItem{{ImageRef: "http://img/1.jpg"}}, "Molino")

	require.Len(t, results, 1)
	require.False(t, results[0].Success)
	require.Contains(t, results[0].FailureReason, "image decode failed")

	count, err := repo.Count(context.Background(), port.InspectionFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestBatchService_PersistFailureIsolatesItem(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	repo.FailInsert = true
	svc := newBatchService(repo, &stubFetcher{}, &stubAnalyzer{obs: goodObservations()}, nil)

	items := []entity.BatchItem{
		{ImageRef: "http://img/1.jpg"},
		{ImageRef: "http://img/2.jpg"},
	}
	results := svc.Process(context.Background(), items, "Molino")

	require.False(t, results[0].Success)
	require.Contains(t, results[0].FailureReason, "persistence failed")
	require.True(t, results[1].Success)

	count, err := repo.Count(context.Background(), port.InspectionFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestBatchService_RemovesTempFiles(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	fetcher := &stubFetcher{}
	svc := newBatchService(repo, fetcher, &stubAnalyzer{obs: goodObservations()}, nil)

	svc.Process(context.Background(), []entity.BatchItem{
		{ImageRef: "http://img/1.jpg"},
		{ImageRef: "http://img/2.jpg"},
	}, "Molino")

	for _, path := range fetcher.fetched {
		_, err := os.Stat(path)
		require.True(t, errors.Is(err, os.ErrNotExist), "temp file %s not removed", path)
	}
}

func TestBatchService_ZeroTimestampFallsBackToIngestionTime(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	svc := newBatchService(repo, &stubFetcher{}, &stubAnalyzer{obs: goodObservations()}, nil)

	before := time.Now()
	results := svc.Process(context.Background(), []entity.BatchItem{{ImageRef: "http://img/1.jpg"}}, "Molino")
	after := time.Now()

	require.True(t, results[0].Success)
	in, err := repo.GetByID(context.Background(), results[0].InspectionID)
	require.NoError(t, err)
	require.False(t, in.RecordedAt.Before(before))
	require.False(t, in.RecordedAt.After(after))
}

func TestBatchService_NotifiesDigest(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	fetcher := &stubFetcher{failRefs: map[string]bool{"http://img/2.jpg": true}}
	notifier := &stubNotifier{}
	svc := newBatchService(repo, fetcher, &stubAnalyzer{obs: goodObservations()}, notifier)

	svc.Process(context.Background(), []entity.BatchItem{
		{ImageRef: "http://img/1.jpg"},
		{ImageRef: "http://img/2.jpg"},
	}, "Molino")

	require.Len(t, notifier.digests, 1)
	digest := notifier.digests[0]
	require.Equal(t, "Molino", digest.Location)
	require.Equal(t, 1, digest.Processed)
	require.Equal(t, 1, digest.Failed)
	require.InDelta(t, 100.0, digest.PassRate, 0.001)
}

func TestBatchService_NotifierErrorDoesNotFailBatch(t *testing.T) {
	repo := storage.NewMemoryInspectionRepository()
	notifier := &stubNotifier{err: errors.New("chat unreachable")}
	svc := newBatchService(repo, &stubFetcher{}, &stubAnalyzer{obs: goodObservations()}, notifier)

	results := svc.Process(context.Background(), []entity.BatchItem{{ImageRef: "http://img/1.jpg"}}, "Molino")
	require.True(t, results[0].Success)
}
