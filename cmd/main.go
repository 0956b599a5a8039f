package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mireska/sift/internal/archive"
	"github.com/mireska/sift/internal/logger"
	"github.com/mireska/sift/internal/metrics"
	"github.com/mireska/sift/server"
	"github.com/mireska/sift/sources"
)

var (
	buildString = "unknown"
	ko          = koanf.New(".")
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	initFlags(ko)

	if ko.Bool("version") {
		fmt.Println(buildString)
		os.Exit(0)
	}

	if ko.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger.SetDevelopment(true)
	}
	if path := ko.String("log-file"); path != "" {
		logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed to open log file %s", path)
		}
		defer logFile.Close()
		logger.SetLogFile(logFile)
	}
	log.Logger = logger.GetLogger("main")

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	log.Info().Str("run_id", runID).Msgf("starting build %s", buildString)

	m := metrics.New()

	var ar *archive.Archive
	if dir := ko.String("capture-dir"); dir != "" {
		a, err := archive.Open(&archive.Config{Dir: dir})
		if err != nil {
			return err
		}
		defer a.Close()
		ar = a
	}

	set, err := newSinkSet(ctx, ko, runID)
	if err != nil {
		return err
	}
	defer set.Close()

	pipelines, err := buildPipelines(ko, m, ar, set)
	if err != nil {
		return err
	}

	src, err := sources.New(sourceConfig(ko))
	if err != nil {
		return err
	}
	defer src.Close()

	if addr := ko.String("server"); addr != "" {
		srv := server.New(addr, m, pipelineNames(pipelines))
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("ops server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("ops server shutdown")
			}
		}()
	}

	log.Info().Msgf("running %d queries against %s", len(pipelines), src.Name())
	if err := src.Run(ctx, allEntries(pipelines)); err != nil {
		m.SourceErrors.Inc()
		return fmt.Errorf("source %s: %w", src.Name(), err)
	}

	log.Info().Msg("done")
	return nil
}
