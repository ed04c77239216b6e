package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pairdiscovery/config"
	"pairdiscovery/logger"
	"pairdiscovery/metrics"
	"pairdiscovery/pipeline"
)

func main() {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("error loading .env file")
	}

	configPath := flag.String("config", "config/config.toml", "path to configuration file")
	exchangesPath := flag.String("exchanges", "config/exchanges.toml", "path to exchange endpoint configuration file")
	directionsPath := flag.String("directions", "config/directions.toml", "path to direction configuration file")
	outputDir := flag.String("output", "", "override generated_dir from config.toml")
	configVersionFlag := flag.Int64("config-version", 0, "monotonically increasing config version to stamp into metadata.json (defaults to the CONFIG_VERSION env var, or the current unix timestamp if neither is set)")
	flag.Parse()

	configVersion := resolveConfigVersion(*configVersionFlag)

	appCfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(int(pipeline.ExitIOOrConfigError))
	}

	if err := log.Configure(appCfg.Logging.Level, appCfg.Logging.Format, appCfg.Logging.Output, appCfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("failed to configure logger")
		os.Exit(int(pipeline.ExitIOOrConfigError))
	}

	exchCfg, err := config.LoadExchangesConfig(*exchangesPath)
	if err != nil {
		log.WithError(err).Error("failed to load exchange configuration")
		os.Exit(int(pipeline.ExitIOOrConfigError))
	}

	dirCfg, err := config.LoadDirectionsConfig(*directionsPath)
	if err != nil {
		log.WithError(err).Error("failed to load direction configuration")
		os.Exit(int(pipeline.ExitIOOrConfigError))
	}
	directionConfigs, err := dirCfg.ToDirectionConfigs()
	if err != nil {
		log.WithError(err).Error("invalid direction configuration")
		os.Exit(int(pipeline.ExitIOOrConfigError))
	}

	if appCfg.Monitoring.PrometheusEnabled {
		metrics.Init(appCfg.Monitoring.PrometheusAddr)
	}
	if appCfg.Monitoring.CloudWatchEnabled {
		logger.InitCloudWatch(appCfg.Monitoring.CloudWatchRegion, appCfg.Monitoring.CloudWatchNamespace)
	}

	dir := appCfg.General.GeneratedDir
	if *outputDir != "" {
		dir = *outputDir
	}

	log.WithFields(logger.Fields{
		"config":  *configPath,
		"output":  dir,
		"sources": len(exchCfg.Exchange),
	}).Info("starting pair discovery run")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if appCfg.General.WallClockBudget > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, appCfg.General.WallClockBudget)
		defer timeoutCancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.WithFields(logger.Fields{"signal": sig.String()}).Warn("shutdown signal received, cancelling run")
		cancel()
	}()

	code := pipeline.Run(ctx, pipeline.Config{
		App:           appCfg,
		Exchanges:     exchCfg,
		Directions:    directionConfigs,
		ConfigVersion: configVersion,
		OutputDir:     dir,
	})

	if appCfg.Monitoring.PrometheusEnabled {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		metrics.Shutdown(shutdownCtx)
	}

	log.WithFields(logger.Fields{"exit_code": int(code)}).Info("pair discovery run finished")
	os.Exit(int(code))
}

// resolveConfigVersion picks the externally supplied counter in priority
// order: --config-version flag, CONFIG_VERSION env var, then falls back to
// the wall-clock timestamp so every run still gets a monotonically
// increasing value.
func resolveConfigVersion(flagValue int64) int64 {
	if flagValue != 0 {
		return flagValue
	}
	if env := os.Getenv("CONFIG_VERSION"); env != "" {
		if v, err := strconv.ParseInt(env, 10, 64); err == nil {
			return v
		}
	}
	return time.Now().Unix()
}
