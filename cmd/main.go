package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"gritsee-inspector/config"
	app "gritsee-inspector/internal/application"
	"gritsee-inspector/internal/container"
	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
	"gritsee-inspector/internal/infrastructure/batchfile"
	"gritsee-inspector/internal/infrastructure/fetch"
	"gritsee-inspector/internal/infrastructure/notify"
	"gritsee-inspector/internal/infrastructure/storage"
	"gritsee-inspector/internal/infrastructure/vision"
)

func main() {
	root := &cobra.Command{
		Use:   "gritsee-inspector",
		Short: "Photo quality inspection pipeline and analytics",
	}

	root.AddCommand(batchCmd(), listCmd(), dashboardCmd(), trendCmd(), histogramCmd(), rankedCmd(), correctCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, connects the database and builds the container.
// withVision controls whether the gocv models are loaded.
func setup(withVision bool) (*config.Config, *container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := config.GetLogger()

	if err := config.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		return nil, nil, err
	}
	repo := storage.NewGormInspectionRepository(config.GetDB())

	var analyzer port.ImageAnalyzer
	if withVision {
		analyzer = vision.NewAnalyzer(vision.Options{
			ModelDir:            cfg.ModelDir,
			UseCUDA:             cfg.UseCUDA,
			LocalizerConfidence: cfg.LocalizerConf,
			CropMargin:          cfg.CropMargin,
			Log:                 log,
		})
	}

	fetcher := fetch.NewHTTPFetcher(cfg.FetchConnectTimeout, cfg.FetchReadTimeout)

	var notifier port.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tn, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warnf("telegram notifier disabled: %v", err)
		} else {
			notifier = tn
		}
	}

	return cfg, container.New(cfg, repo, fetcher, analyzer, notifier, log), nil
}

func batchCmd() *cobra.Command {
	var file, location string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process a batch sheet of image links",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(true)
			if err != nil {
				return err
			}

			items, err := batchfile.Load(file)
			if err != nil {
				return err
			}

			results := c.BatchService.Process(context.Background(), items, location)

			processed := 0
			for _, r := range results {
				if r.Success {
					processed++
				}
			}
			fmt.Printf("processed %d of %d items\n", processed, len(results))
			return printJSON(results)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "batch sheet (.csv or .xlsx)")
	cmd.Flags().StringVar(&location, "location", "", "destination location label")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("location")
	return cmd
}

func listCmd() *cobra.Command {
	var location, verdict string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored inspections, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(false)
			if err != nil {
				return err
			}
			rows, err := c.InspectionService.List(context.Background(), port.InspectionFilter{
				Location: location,
				Verdict:  verdict,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "filter by location")
	cmd.Flags().StringVar(&verdict, "verdict", "", "filter by verdict (PASS or FAIL)")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func dashboardCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the analytics dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(false)
			if err != nil {
				return err
			}
			dash, err := c.AnalyticsService.Dashboard(context.Background(), location)
			if err != nil {
				return err
			}
			return printJSON(dash)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "filter by location")
	return cmd
}

func trendCmd() *cobra.Command {
	var location, groupBy string
	var periods int

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print a multi-period trend series",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(false)
			if err != nil {
				return err
			}
			points, err := c.AnalyticsService.Trend(context.Background(), groupBy, periods, location)
			if err != nil {
				return err
			}
			return printJSON(points)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", app.TrendByWeek, "week or month")
	cmd.Flags().IntVar(&periods, "periods", 8, "number of periods")
	cmd.Flags().StringVar(&location, "location", "", "filter by location")
	return cmd
}

func histogramCmd() *cobra.Command {
	var location, dimension string

	cmd := &cobra.Command{
		Use:   "histogram",
		Short: "Print the class histogram for one dimension",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(false)
			if err != nil {
				return err
			}
			hist, err := c.AnalyticsService.ClassHistogram(context.Background(), dimension, location)
			if err != nil {
				return err
			}
			return printJSON(hist)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", port.DimensionDistribution, "distribution or bake")
	cmd.Flags().StringVar(&location, "location", "", "filter by location")
	return cmd
}

func rankedCmd() *cobra.Command {
	var location string
	var top int

	cmd := &cobra.Command{
		Use:   "ranked",
		Short: "Print best and worst inspections of the latest week of data",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(false)
			if err != nil {
				return err
			}
			ranking, err := c.AnalyticsService.TopRanked(context.Background(), top, location)
			if err != nil {
				return err
			}
			return printJSON(ranking)
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "entries per list")
	cmd.Flags().StringVar(&location, "location", "", "filter by location")
	return cmd
}

func correctCmd() *cobra.Command {
	var id uint
	var bubbles, dirtyEdges, grease, bakeClass, distClass string

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Overwrite observation fields on a record and rescore it",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := setup(false)
			if err != nil {
				return err
			}

			var upd app.CorrectionUpdate
			if cmd.Flags().Changed("bubbles") {
				v, err := parseFlexBool(bubbles)
				if err != nil {
					return err
				}
				upd.HasBubbles = v
			}
			if cmd.Flags().Changed("dirty-edges") {
				v, err := parseFlexBool(dirtyEdges)
				if err != nil {
					return err
				}
				upd.DirtyEdges = v
			}
			if cmd.Flags().Changed("grease") {
				v, err := parseFlexBool(grease)
				if err != nil {
					return err
				}
				upd.HasGrease = v
			}
			if cmd.Flags().Changed("bake") {
				upd.BakeClass = &bakeClass
			}
			if cmd.Flags().Changed("distribution") {
				upd.DistributionClass = &distClass
			}

			in, err := c.InspectionService.Correct(context.Background(), id, upd)
			if err != nil {
				return err
			}
			return printJSON(in)
		},
	}

	cmd.Flags().UintVar(&id, "id", 0, "inspection id")
	cmd.Flags().StringVar(&bubbles, "bubbles", "", "true/false or 1/0")
	cmd.Flags().StringVar(&dirtyEdges, "dirty-edges", "", "true/false or 1/0")
	cmd.Flags().StringVar(&grease, "grease", "", "true/false or 1/0")
	cmd.Flags().StringVar(&bakeClass, "bake", "", "bake class label")
	cmd.Flags().StringVar(&distClass, "distribution", "", "distribution class label")
	cmd.MarkFlagRequired("id")
	return cmd
}

func parseFlexBool(raw string) (*app.FlexBool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid boolean %q", entity.ErrValidation, raw)
	}
	fb := app.FlexBool(v)
	return &fb, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
