package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wright-research/jlawson-maps/internal/config"
	"github.com/wright-research/jlawson-maps/internal/database"
	"github.com/wright-research/jlawson-maps/internal/influx"
	"github.com/wright-research/jlawson-maps/internal/logging"
	"github.com/wright-research/jlawson-maps/internal/store"
)

var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"

	AppName string = "jlmaps"
)

// app holds everything wired up in setup() and torn down in teardown().
type app struct {
	slogManager *logging.Manager
	logger      *slog.Logger
	logFile     *os.File
	dbManager   *database.Manager
	influxMgr   *influx.Manager
	store       store.Store
}

var runtimeApp = &app{}

var rootCmd = &cobra.Command{
	Use:     "jlmaps",
	Short:   "Map template editor for property pins and county overlays",
	Version: fmt.Sprintf("%s (built %s)", Version, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return runtimeApp.setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runtimeApp.teardown()
	},
	SilenceUsage: true,
}

func (a *app) setup(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	a.slogManager = logging.NewManager()
	a.slogManager.Setup(os.Stderr, "info", "")
	a.logger = a.slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		a.logger.Warn("Failed to load config, using defaults", "error", err)
	}

	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.MkdirAll(logsDir, 0755)
	}

	logPath := logging.LogFilePath(logsDir, AppName, time.Now())
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		a.logger.Error("Failed to open log file, logging to stderr only",
			"error", err, "path", logPath)
	} else {
		a.logFile = logFile
		graylogAddr := ""
		if viper.GetBool("graylog.enabled") {
			graylogAddr = viper.GetString("graylog.address")
		}
		if err := a.slogManager.Setup(logFile, viper.GetString("logLevel"), graylogAddr); err != nil {
			a.logger.Error("Failed to reconfigure logging", "error", err)
		}
		a.logger = a.slogManager.Logger()
	}

	a.store, err = a.newStore()
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	if viper.GetBool("influx.enabled") {
		zlog := zerolog.New(a.logWriter()).With().Timestamp().Logger()
		a.influxMgr = influx.NewManager(zlog, viper.GetString("influx.backupPath"))
		if err := a.influxMgr.Connect(); err != nil {
			a.logger.Warn("Metrics disabled", "error", err)
			a.influxMgr = nil
		}
	}

	return nil
}

func (a *app) logWriter() *os.File {
	if a.logFile != nil {
		return a.logFile
	}
	return os.Stderr
}

func (a *app) teardown() {
	if a.store != nil {
		a.store.Close()
	}
	if a.dbManager != nil {
		a.dbManager.Close()
	}
	if a.influxMgr != nil && a.influxMgr.Client != nil {
		a.influxMgr.Client.Close()
	}
	if a.slogManager != nil {
		a.slogManager.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func main() {
	rootCmd.PersistentFlags().String("config-dir", ".", "directory containing jlmaps.cfg.json")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
