package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/glide/internal/config"
	"github.com/san-kum/glide/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	duration    float64
	configFile  string
	winchSpec   string
	currentSpec string
	saveRun     bool
	metricsAddr string
	showChart   bool
	csvOut      string
)

var presetNotes = map[string]string{
	"local_demo":   "simple ground demo, 15 segments, EDT off",
	"orbital_test": "pseudo-orbital constant-g validation, EDT drag",
	"engineering":  "subsystem testing, EDT boost",
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "glide",
		Short:         "tether momentum-exchange simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(logging.ContextWithLogger(cmd.Context(), newLogger()))
		},
	}

	rootCmd.PersistentFlags().String("data", ".glide", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	viper.SetEnvPrefix("GLIDE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"data", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration in seconds")
	runCmd.Flags().StringVar(&winchSpec, "winch", "winch", "winch speed profile (e.g. winch, none, constant:2, sine:8,0.2)")
	runCmd.Flags().StringVar(&currentSpec, "current", "current", "EDT current profile (e.g. current, none, square:0.8,-0.8,10)")
	runCmd.Flags().BoolVar(&saveRun, "save", true, "store the run under the data directory")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	runCmd.Flags().BoolVar(&showChart, "chart", false, "plot the energy ledger after the run")

	compareCmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "run presets side by side",
		RunE:  comparePresets,
	}
	compareCmd.Flags().Float64Var(&duration, "time", 10, "simulated duration in seconds")
	compareCmd.Flags().StringVar(&winchSpec, "winch", "winch", "winch speed profile")
	compareCmd.Flags().StringVar(&currentSpec, "current", "current", "EDT current profile")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored energy ledger",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored energy ledger as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&csvOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-14s %s\n", name, presetNotes[name])
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "print a preset as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.DefaultPreset
			if len(args) > 0 {
				name = args[0]
			}
			cfg, err := config.Preset(name)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, plotCmd, exportCSVCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func dataDir() string { return viper.GetString("data") }

func newLogger() logging.Logger {
	return logging.New(logging.Config{
		Level:  viper.GetString("log-level"),
		Format: viper.GetString("log-format"),
	})
}
