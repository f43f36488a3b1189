package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gogpu/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/quotation/internal/config"
	"github.com/mmynk/quotation/internal/export"
	"github.com/mmynk/quotation/internal/middleware"
	"github.com/mmynk/quotation/internal/profile"
	"github.com/mmynk/quotation/internal/quotation"
	"github.com/mmynk/quotation/internal/service"
	"github.com/mmynk/quotation/internal/storage"
	"github.com/mmynk/quotation/internal/storage/memory"
	"github.com/mmynk/quotation/internal/storage/sqlite"
	"github.com/mmynk/quotation/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	gg.SetLogger(slog.Default().With("component", "gg"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records := openStorage(cfg.DBPath)
	defer records.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := export.NewMetrics(registry)

	profiles := profile.NewStore(records)
	store := quotation.New(ctx, records, profiles)

	fonts := export.NewFontSet()
	go func() {
		if err := fonts.Preload(); err != nil {
			slog.Error("Failed to load fonts", "error", err)
		}
	}()

	pipeline := export.NewPipeline(
		[]export.Backend{export.NewGGBackend(fonts), export.NewBasicBackend(fonts)},
		export.WithFonts(fonts, cfg.Export.FontWait),
		export.WithScale(cfg.Export.Scale),
		export.WithClassifier(export.BlankDetector{MinInked: cfg.Export.BlankThreshold}),
		export.WithMetrics(metrics),
	)
	exporter := export.NewExporter(store, pipeline, export.ExporterConfig{
		JPEGQuality: cfg.Export.JPEGQuality,
		OutputDir:   cfg.Export.Dir,
		Metrics:     metrics,
	})
	svc := service.NewQuotationService(store, profiles, exporter)

	mux := http.NewServeMux()
	path, handler := service.NewQuotationServiceHandler(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	mux.Handle(path, handler)
	mux.Handle(service.DownloadPattern, svc.DownloadHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// h2c serves HTTP/2 without TLS for Connect clients.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(middleware.Logging(middleware.CORS(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting",
		"address", server.Addr,
		"url", fmt.Sprintf("http://localhost%s", server.Addr),
		"export_dir", cfg.Export.Dir,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// openStorage opens the SQLite database. When it cannot be opened the
// server keeps running on memory, so editing still works without
// persistence.
func openStorage(dbPath string) storage.Store {
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage, falling back to memory", "database", dbPath, "error", err)
		return memory.New()
	}
	slog.Info("Storage initialized", "database", dbPath)
	return store
}
