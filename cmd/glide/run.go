package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/experiment"
	"github.com/san-kum/glide/internal/logging"
	"github.com/san-kum/glide/internal/metrics"
	"github.com/san-kum/glide/internal/observability"
	"github.com/san-kum/glide/internal/storage"
	"github.com/spf13/cobra"
)

func loadConfig(args []string) (*config.Config, string, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		name := cfg.Preset
		if name == "" {
			name = "custom"
		}
		return cfg, name, nil
	}

	name := config.DefaultPreset
	if len(args) > 0 {
		name = args[0]
	}
	cfg, err := config.Preset(name)
	if err != nil {
		return nil, "", err
	}
	return cfg, cfg.Preset, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := logging.FromContext(cmd.Context())

	cfg, name, err := loadConfig(args)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	winch, err := reg.Profile(winchSpec)
	if err != nil {
		return err
	}
	current, err := reg.Profile(currentSpec)
	if err != nil {
		return err
	}

	exp, err := experiment.New(experiment.Config{
		Name:     name,
		Sim:      cfg,
		Duration: duration,
		Winch:    winch,
		Current:  current,
	})
	if err != nil {
		return err
	}

	var observers []metrics.Observer
	if cfg.LogInterval > 0 {
		observers = append(observers, metrics.NewLogObserver(log.With(logging.String("preset", name)), cfg.LogInterval))
	}
	exp.Setup(reg.DefaultMetrics(), observers...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if metricsAddr != "" {
		shutdown, err := serveMetrics(ctx, log, exp)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	log.Info(ctx, "starting simulation",
		logging.String("preset", name),
		logging.Float("duration", duration),
		logging.Float("dt", cfg.Dt),
		logging.Int("segments", cfg.Segments),
		logging.String("edt_mode", cfg.EDTMode.String()),
	)

	start := time.Now()
	res, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		log.Warn(ctx, "simulation interrupted", logging.Int("steps", res.Steps))
	}

	fmt.Println(renderSummary(res, time.Since(start)))

	if showChart {
		fmt.Println(renderLedgerChart(res.Samples))
	}

	if saveRun && cfg.SaveEnergyCSV {
		st := storage.New(dataDir())
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res)
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", runID)
	}
	return nil
}

// serveMetrics exposes the ledger on /metrics until the returned shutdown
// func is called.
func serveMetrics(ctx context.Context, log logging.Logger, exp *experiment.Experiment) (func(), error) {
	collector, err := observability.NewLedgerCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	integ := exp.Integrator()
	integ.AddObserver(metrics.ObserverFunc(func(s metrics.Sample) {
		collector.OnSample(s)
		collector.RecordRecoveries(integ.Recoveries())
	}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server", logging.Err(err))
		}
	}()
	log.Info(ctx, "serving metrics", logging.String("addr", metricsAddr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}

func comparePresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	reg := experiment.NewRegistry()
	var exps []*experiment.Experiment
	for _, name := range names {
		cfg, err := config.Preset(name)
		if err != nil {
			return err
		}
		winch, err := reg.Profile(winchSpec)
		if err != nil {
			return err
		}
		current, err := reg.Profile(currentSpec)
		if err != nil {
			return err
		}
		exp, err := experiment.New(experiment.Config{
			Name: cfg.Preset, Sim: cfg, Duration: duration, Winch: winch, Current: current,
		})
		if err != nil {
			return err
		}
		exp.Setup(reg.DefaultMetrics())
		exps = append(exps, exp)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logging.FromContext(ctx).Info(ctx, "comparing presets",
		logging.Any("presets", names),
		logging.Float("duration", duration),
	)
	results, err := experiment.RunBatch(ctx, exps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEPS\tSOC\tE_TOTAL\tE_KIN\tE_ELASTIC\tE_GRAV\tDRIFT")
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%s\t%d\t%.4f%%\t%.2f\t%.2f\t%.2f\t%.2f\t%.2e\n",
			r.Name, r.Steps, s.SoC*100, s.Total, s.Kinetic, s.Elastic, s.Gravitational, r.Metrics["energy_drift"])
	}
	return w.Flush()
}
