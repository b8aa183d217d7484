package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/xtding233/lighting-backend/internal/config"
	"github.com/xtding233/lighting-backend/internal/logging"
	"github.com/xtding233/lighting-backend/internal/preset"
	"github.com/xtding233/lighting-backend/internal/registry"
	"github.com/xtding233/lighting-backend/internal/rpc"
	"github.com/xtding233/lighting-backend/internal/service"
)

func main() {
	var (
		cfgPath string
		flags   config.Flags
	)
	flag.StringVar(&cfgPath, "config", "", "server config file (YAML)")
	flag.StringVar(&flags.HTTPAddr, "http", "", "HTTP listen address")
	flag.StringVar(&flags.GRPCAddr, "grpc", "", "gRPC listen address")
	flag.StringVar(&flags.PresetDir, "presets", "", "preset base directory")
	flag.DurationVar(&flags.WatchInterval, "watch", 0, "preset poll interval")
	flag.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogPrefix, logging.ParseLevel(cfg.LogLevel))
	loader := preset.NewLoader(cfg.PresetDir)
	svc := service.New(loader, registry.New(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WatchInterval > 0 {
		w := preset.NewFileWatcher(loader.Paths().Patterns(), cfg.WatchInterval, func(path string) {
			n := svc.Reload()
			logger.Infof("preset %s changed, %d player(s) updated", path, n)
		})
		w.Start()
		defer w.Stop()
	}

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Errorf("grpc listen: %v", err)
			os.Exit(1)
		}
		grpcSrv = grpc.NewServer()
		rpc.Register(grpcSrv, rpc.NewServer(svc))
		go func() {
			logger.Infof("grpc listening on %s ...", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Errorf("grpc serve: %v", err)
				stop()
			}
		}()
	}

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		a := &api{svc: svc, log: logger}
		httpSrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           a.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Infof("http listening on %s ...", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("http serve: %v", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if httpSrv != nil {
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	if grpcSrv != nil {
		// Watch streams only end when clients leave, so cap the graceful stop.
		done := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			grpcSrv.Stop()
		}
	}
}
