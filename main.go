// FILE: main.go
// Package main – Program entrypoint and CLI.
//
// Boot sequence (PersistentPreRunE):
//   1) loadDotEnv()          – read .env (no shell exports required)
//   2) loadConfig(--config)  – defaults < config/config.yaml < env
//   3) logger                – zap at LOG_LEVEL (debug with --verbose)
//
// Commands:
//   train     Fit scaler + forecaster on the series and save artifacts
//   simulate  Promotion vs no-promotion profit decision for tomorrow
//   forecast  Plain next-day sales forecast
//   baseline  Rule-based revenue baseline
//   serve     HTTP API + /metrics for the dashboard
//
// Example:
//   go run . train && go run . simulate --condition Rain

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	cfgPath string
	verbose bool
	cfg     Config
)

var rootCmd = &cobra.Command{
	Use:   "promocast",
	Short: "Grocery sales forecasting and promotion profit simulation",
	Long: `promocast trains a next-day sales forecaster for one store and product
family, then compares tomorrow's profit with and without a promotion,
optionally adjusted by the live weather.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadDotEnv()
		c, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		cfg = c
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = newLogger(level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the forecaster and save scaler/model artifacts",
	RunE:  runTrain,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the promotion vs no-promotion profit simulation",
	RunE:  runSimulate,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Predict tomorrow's sales from the latest window",
	RunE:  runForecast,
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Report the rule-based revenue baseline",
	RunE:  runBaseline,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and Prometheus metrics",
	RunE:  runServe,
}

var (
	simCondition string
	simNoHistory bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file (default config/config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	simulateCmd.Flags().StringVar(&simCondition, "condition", "", "weather condition to use instead of a live read (e.g. Rain, Clear)")
	simulateCmd.Flags().BoolVar(&simNoHistory, "no-history", false, "do not record the decision")

	rootCmd.AddCommand(trainCmd, simulateCmd, forecastCmd, baselineCmd, serveCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	series, err := LoadSeries(cfg.Data)
	if err != nil {
		return err
	}
	rep, err := Train(cmd.Context(), cfg, series)
	if err != nil {
		return err
	}
	return printJSON(cmd, rep)
}

func loadSeriesAndArtifacts() (RawTable, *Artifacts, error) {
	arts, err := LoadArtifacts(cfg.ArtifactDir)
	if err != nil {
		return RawTable{}, nil, fmt.Errorf("%w (run `promocast train` first)", err)
	}
	series, err := LoadSeries(cfg.Data)
	if err != nil {
		return RawTable{}, nil, err
	}
	return series, arts, nil
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	series, arts, err := loadSeriesAndArtifacts()
	if err != nil {
		return err
	}
	var rep WeatherReport
	if simCondition != "" {
		rep = WeatherReport{Condition: simCondition, TempC: 20}
	} else {
		rep = NewWeatherClient(cfg.Weather).Current(cmd.Context())
	}
	res, err := Simulate(cfg, arts, series, rep)
	if err != nil {
		return err
	}
	if !simNoHistory && cfg.HistoryDB != "" {
		h, err := OpenHistory(cfg.HistoryDB)
		if err != nil {
			logger.Warn("history unavailable", zap.Error(err))
		} else {
			defer h.Close()
			if _, err := h.Record(cmd.Context(), arts.Meta.RunID, rep.Condition, res); err != nil {
				logger.Warn("history record failed", zap.Error(err))
			}
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "weather: %s (%s)\n", rep.Condition, WeatherReason(rep.Condition))
	fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
	return nil
}

func runForecast(cmd *cobra.Command, _ []string) error {
	series, arts, err := loadSeriesAndArtifacts()
	if err != nil {
		return err
	}
	units, err := ForecastNext(cfg, arts, series)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "predicted sales for tomorrow: %.2f\n", units)
	return nil
}

func runBaseline(cmd *cobra.Command, _ []string) error {
	series, err := LoadSeries(cfg.Data)
	if err != nil {
		return err
	}
	table, _, err := BuildFeatures(series, ParseMissingSalesPolicy(cfg.Features.MissingSalesPolicy))
	if err != nil {
		return err
	}
	rep := BaselineRevenue(table)
	fmt.Fprintf(cmd.OutOrStdout(), "days: %d\ntotal revenue (historical/baseline): $%s\nmean daily: $%s\n",
		rep.Days, rep.TotalRevenue.StringFixed(2), rep.MeanDaily.StringFixed(2))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	series, err := LoadSeries(cfg.Data)
	if err != nil {
		return err
	}
	arts, err := LoadArtifacts(cfg.ArtifactDir)
	if err != nil {
		logger.Warn("artifacts not loaded; /api/simulate disabled", zap.Error(err))
	}
	var hist *History
	if cfg.HistoryDB != "" {
		if hist, err = OpenHistory(cfg.HistoryDB); err != nil {
			return err
		}
		defer hist.Close()
	}

	api := NewServer(cfg, series, arts, hist, NewWeatherClient(cfg.Weather))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: api.Router()}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		logger.Info("serving", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
