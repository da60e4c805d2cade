// Command trackedit applies edit commands to stored GPS track sessions.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/trackedit/trackedit/internal/broker"
	"github.com/trackedit/trackedit/internal/config"
	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/handlers"
	"github.com/trackedit/trackedit/internal/influx"
	"github.com/trackedit/trackedit/internal/logging"
	intOtel "github.com/trackedit/trackedit/internal/otel"
	"github.com/trackedit/trackedit/internal/parser"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/undo"
	"github.com/trackedit/trackedit/pkg/core"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "trackedit"
)

// configDirEnv names the directory holding trackedit.cfg.json.
const configDirEnv = "TRACKEDIT_CONFIG_DIR"

// app holds everything wired up for one CLI invocation.
type app struct {
	sessionStart time.Time

	slog    *logging.SlogManager
	logger  *slog.Logger
	zlog    zerolog.Logger
	logFile *os.File
	otel    *intOtel.Provider

	backend    storage.Backend
	influx     *influx.Manager
	broker     *broker.Broker
	dispatcher *dispatcher.Dispatcher
	service    *handlers.Service

	unsubscribe func()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// newApp loads config, logging, storage and the handler service.
func newApp(configDir string) (*app, error) {
	a := &app{sessionStart: time.Now(), slog: logging.NewSlogManager()}

	// bootstrap logger until the log file exists
	a.slog.Setup(os.Stderr, "warn", nil)
	a.logger = a.slog.Logger()

	if err := config.Load(configDir); err != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	if err := a.initLogging(); err != nil {
		return nil, err
	}
	if err := a.initStorage(); err != nil {
		a.close()
		return nil, err
	}
	if err := a.initService(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) initLogging() error {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("error creating logs dir: %w", err)
	}

	logPath := logging.LogFilePath(logsDir, AppName, a.sessionStart)
	if _, err := os.Stat(logPath); err == nil {
		_ = os.Rename(logPath, logPath+".old")
	}
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	a.logFile = logFile

	level := viper.GetString("logLevel")
	a.zlog = logging.NewZerolog(level, logFile)

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		a.otel, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			MetricInterval: otelCfg.MetricInterval,
			LogWriter:      logFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			a.logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}

	var extra []slog.Handler
	if viper.GetBool("graylog.enabled") {
		address := viper.GetString("graylog.address")
		w, err := logging.NewGraylogWriter(address)
		if err != nil {
			a.logger.Error("Failed to connect to Graylog", "address", address, "error", err)
		} else {
			extra = append(extra, logging.NewGelfHandler(w, level))
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if a.otel != nil {
		otelLogProvider = a.otel.LoggerProvider()
	}
	a.slog.Setup(logFile, level, otelLogProvider, extra...)
	a.logger = a.slog.Logger()
	a.logger.Info("Logging to file", "path", logPath, "version", CurrentVersion, "build", BuildDate)
	return nil
}

func (a *app) initService() error {
	var err error
	dispatcherLogger := logging.NewDispatcherLogger(a.zlog)

	a.dispatcher, err = dispatcher.New(dispatcherLogger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	a.broker, err = broker.New(dispatcherLogger)
	if err != nil {
		return fmt.Errorf("failed to create broker: %w", err)
	}
	changes := a.slog.Component("changes")
	a.unsubscribe = a.broker.Subscribe("log", core.AllFlags, func(u broker.Update) {
		changes.Debug("session changed", "session", u.Session, "flags", u.Flags.String())
	}, broker.Queued(256))

	var journals []undo.Journal
	if j, ok := a.backend.(storage.Journaled); ok {
		journals = append(journals, j)
	}
	a.influx = influx.NewManager(a.zlog, filepath.Join(viper.GetString("logsDir"), "edit_journal.lp.gz"))
	switch err := a.influx.Connect(); {
	case err == nil:
		journals = append(journals, a.influx)
	case errors.Is(err, influx.ErrDisabled):
		a.influx = nil
	default:
		a.logger.Error("Failed to set up InfluxDB journal", "error", err)
		_ = a.influx.Close()
		a.influx = nil
	}

	unit, err := config.GetAltitudeUnit()
	if err != nil {
		a.logger.Warn("Invalid altitude unit, using metres", "error", err)
	}
	undoCfg := config.GetUndoConfig()

	a.service = handlers.NewService(handlers.Dependencies{
		Backend:    a.backend,
		Parser:     parser.NewParser(a.slog.Component("parser"), unit),
		Broker:     a.broker,
		Journals:   journals,
		Logger:     a.slog.Component("handlers"),
		MaxDepth:   undoCfg.MaxDepth,
		CheckLinks: undoCfg.CheckLinks,
	})
	a.service.RegisterHandlers(a.dispatcher)
	a.slog.SetContextProvider(a.service.ContextAttrs)
	return nil
}

// close releases everything newApp set up, in reverse order.
func (a *app) close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Error("Failed to close InfluxDB journal", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.slog.Flush(ctx); err != nil {
		a.logger.Warn("Failed to flush logs", "error", err)
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
