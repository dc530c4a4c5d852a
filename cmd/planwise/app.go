package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/hrygo/planwise/internal/observability"
	"github.com/hrygo/planwise/internal/profile"
	"github.com/hrygo/planwise/plugin/ai"
	"github.com/hrygo/planwise/plugin/ai/action"
	"github.com/hrygo/planwise/plugin/ai/aitime"
	"github.com/hrygo/planwise/plugin/ai/category"
	"github.com/hrygo/planwise/plugin/ai/timeout"
	"github.com/hrygo/planwise/store"
	"github.com/hrygo/planwise/store/db"
)

// app holds everything a command needs. close releases it.
type app struct {
	profile     *profile.Profile
	metrics     *observability.Metrics
	categorizer *category.Categorizer
	identity    *store.Store
	fallback    *store.Store

	metricsServer *http.Server
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	p, err := loadProfile(v)
	if err != nil {
		return nil, err
	}
	rt := &app{profile: p}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rt.metrics = observability.NewMetrics(reg)
	if addr := v.GetString("metrics_addr"); addr != "" {
		rt.serveMetrics(addr, reg)
	}

	rt.categorizer, err = category.NewCategorizer(category.Config{
		Threshold: p.CategoryThreshold,
		CacheSize: p.CategoryCacheSize,
		Metrics:   rt.metrics,
	})
	if err != nil {
		rt.close()
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, timeout.StoreTimeout)
	defer cancel()

	if p.HasIdentityStore() {
		// An unreachable identity store is not fatal: writes fall back to the local store.
		rt.identity, err = db.OpenStore(storeCtx, p)
		if err != nil {
			slog.Warn("identity store unavailable, using the fallback store only",
				slog.String("driver", p.Driver),
				slog.String("error", err.Error()))
			rt.identity = nil
		}
	}
	rt.fallback, err = db.OpenStore(storeCtx, p.FallbackProfile())
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func (rt *app) serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	rt.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := rt.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()
	slog.Info("serving metrics", slog.String("addr", addr))
}

// newDispatcher wires the action pipeline on top of the app's stores.
func (rt *app) newDispatcher() (*action.Dispatcher, error) {
	llm, err := ai.NewConfigFromProfile(rt.profile).NewService()
	if err != nil {
		return nil, err
	}
	return action.NewDispatcher(action.Config{
		LLM:         llm,
		Categorizer: rt.categorizer,
		Persistence: action.NewPersistenceAdapter(
			action.NewStoreIdentityStore(rt.identity),
			action.NewStoreFallbackStore(rt.fallback),
			rt.metrics,
		),
		Clock:   aitime.SystemClock{Location: rt.profile.Location()},
		Metrics: rt.metrics,
	})
}

func (rt *app) close() {
	if rt.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.metricsServer.Shutdown(ctx); err != nil {
			slog.Warn("failed to stop metrics server", slog.String("error", err.Error()))
		}
	}
	for _, s := range []*store.Store{rt.identity, rt.fallback} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			slog.Warn("failed to close store", slog.String("error", err.Error()))
		}
	}
}
