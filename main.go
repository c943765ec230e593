// Command gpr interpolates data with a Gaussian process.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bitbucket.org/dtolpin/gpr/config"
	"bitbucket.org/dtolpin/gpr/gpr"
	"bitbucket.org/dtolpin/gpr/kernel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// app is the state shared by the subcommands.
type app struct {
	configPath  string
	kernelName  string
	verbose     bool
	showMetrics bool
	optimize    bool
	variance    bool

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *gpr.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gpr",
		Short: "Gaussian process interpolation",
		Long: `Fits a Gaussian process to training data read from CSV and
predicts at query points. Kernels: ` + strings.Join(kernel.Names, ", ") + `.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.report,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&a.kernelName, "kernel", "k", "", "kernel, overrides the configuration")
	pf.BoolVar(&a.optimize, "optimize", false, "optimize hyperparameters")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	pf.BoolVar(&a.showMetrics, "metrics", false, "log call metrics on exit")

	root.AddCommand(
		newInterpolateCmd(a),
		newLoglikCmd(a),
		newSelfcheckCmd(a),
	)
	return root
}

// setup loads the configuration, applies the flags, and creates
// the logger and the metrics.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
		&slog.HandlerOptions{Level: level}))

	if a.configPath == "" {
		a.cfg = config.Default()
	} else {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	flags := cmd.Flags()
	if flags.Changed("kernel") {
		a.cfg.Kernel = a.kernelName
	}
	if flags.Changed("optimize") {
		a.cfg.Optimize.Enabled = a.optimize
	}
	if flags.Changed("variance") {
		a.cfg.Variance = a.variance
	}
	if err := config.Validate(a.cfg); err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = gpr.NewMetrics(a.registry)
	a.logger.Debug("configured", "kernel", a.cfg.Kernel,
		"optimize", a.cfg.Optimize.Enabled, "variance", a.cfg.Variance)
	return nil
}

// interpolator builds the interpolator for the configured kernel.
func (a *app) interpolator() (*gpr.Interpolator, error) {
	ev, err := a.cfg.Evaluator()
	if err != nil {
		return nil, err
	}
	ip := gpr.NewInterpolator(ev, a.cfg.Options()...)
	opt := a.cfg.Optimizer()
	opt.Logger = a.logger
	ip.Optimizer = opt
	ip.Logger = a.logger
	ip.Metrics = a.metrics
	return ip, nil
}

// theta returns the initial hyperparameters for inputs of the
// given dimensions.
func (a *app) theta(ev gpr.Evaluator, dim, adim int) ([]float64, error) {
	if len(a.cfg.Theta) == 0 {
		return kernel.Initial(ev, dim, adim), nil
	}
	if n := ev.NTheta(dim, adim); len(a.cfg.Theta) != n {
		return nil, fmt.Errorf("%w: kernel %s needs %d hyperparameters, got %d",
			gpr.ErrHyper, a.cfg.Kernel, n, len(a.cfg.Theta))
	}
	theta := make([]float64, len(a.cfg.Theta))
	copy(theta, a.cfg.Theta)
	return theta, nil
}

// report logs the collected metrics.
func (a *app) report(cmd *cobra.Command, args []string) {
	if !a.showMetrics || a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("failed to gather metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				attrs = append(attrs, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			}
			a.logger.Info("metrics", attrs...)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
