package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jonathan/evidence-engine/internal/db"
	"github.com/jonathan/evidence-engine/internal/pipeline"
	"github.com/jonathan/evidence-engine/internal/server"
	"github.com/jonathan/evidence-engine/internal/server/ratelimit"
)

var (
	servePort       int
	serveConfigPath string
	serveLogFile    string
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes POST /evidence. When DATABASE_URL is set, runs are
stored and can be read back through GET /evidence and GET /evidence/{id}, or removed
with DELETE /evidence/{id}.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080 or PORT env var)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Also write logs to this rotating file")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Log pipeline and search details")
	rootCmd.AddCommand(serveCmd)
}

// newLogWriter tees log output to stderr and a rotating file when path is set.
func newLogWriter(path string) (io.Writer, io.Closer) {
	if path == "" {
		return os.Stderr, nil
	}
	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return io.MultiWriter(os.Stderr, logFile), logFile
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(serveConfigPath, serveVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = serveLogFile
	}

	w, closer := newLogWriter(cfg.LogFile)
	log.SetOutput(w)
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}

	engine, err := buildEngine(ctx, cfg, pipeline.Options{})
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	srvCfg := server.Config{
		Port:      cfg.Port,
		Engine:    engine,
		RateLimit: ratelimit.LoadConfig(),
	}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		srvCfg.Store = database
	} else {
		log.Println("DATABASE_URL not set; evidence runs will not be stored")
	}

	srv, err := newServer(srvCfg)
	if err != nil {
		return err
	}

	return srv.Start()
}

// newServer creates the server, closing the store if creation fails.
func newServer(cfg server.Config) (*server.Server, error) {
	srv, err := server.New(cfg)
	if err != nil {
		if cfg.Store != nil {
			cfg.Store.Close()
		}
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}
