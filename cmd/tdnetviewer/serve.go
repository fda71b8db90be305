package main

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/shanehull/tdnetviewer/internal/config"
	"github.com/shanehull/tdnetviewer/internal/server"
)

const defaultStaticDir = "public"

func serveCMD(cfgPath *string) *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, *cfgPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := server.NewMetrics(reg)

			staticDir := a.cfg.StaticDir
			if staticDir == "" && server.StaticDirExists(defaultStaticDir) {
				staticDir = defaultStaticDir
			}

			h := server.NewHandler(a.newFetcher(metrics.ObservePage), a.newSummaryService(ctx), metrics, a.logger)
			router := server.NewRouter(h, server.Options{
				StaticDir: staticDir,
				Gatherer:  reg,
				Logger:    a.logger,
			})

			return server.Run(ctx, router, a.cfg.Port, a.logger)
		},
	}

	fs := serve.Flags()
	fs.IntP("port", "p", 3000, "listen port")
	config.BindFlag(fs, "port", "port")
	fs.String("static-dir", "", "directory served at / (defaults to ./public when present)")
	config.BindFlag(fs, "static-dir", "static_dir")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	config.BindFlag(fs, "log-level", "log_level")

	return serve
}
