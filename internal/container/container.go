package container

import (
	"github.com/sirupsen/logrus"

	"gritsee-inspector/config"
	app "gritsee-inspector/internal/application"
	"gritsee-inspector/internal/domain/port"
)

type Container struct {
	BatchService      *app.BatchService
	InspectionService *app.InspectionService
	AnalyticsService  *app.AnalyticsService
}

func New(
	cfg *config.Config,
	repo port.InspectionRepository,
	fetcher port.ImageFetcher,
	analyzer port.ImageAnalyzer,
	notifier port.Notifier,
	log *logrus.Logger,
) *Container {
	batchService := app.NewBatchService(repo, fetcher, analyzer, notifier, cfg.PassThreshold, cfg.BatchWorkers, log)
	inspectionService := app.NewInspectionService(repo, cfg.PassThreshold)
	analyticsService := app.NewAnalyticsService(repo, cfg.RankingThreshold, cfg.TrendIncludeEmpty)

	return &Container{
		BatchService:      batchService,
		InspectionService: inspectionService,
		AnalyticsService:  analyticsService,
	}
}
