package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/loadsheet/loadsheet/internal/coordinator"
	"github.com/loadsheet/loadsheet/internal/httpc"
	"github.com/loadsheet/loadsheet/internal/runner"
	"github.com/loadsheet/loadsheet/internal/script"
	"github.com/loadsheet/loadsheet/internal/smoke"
	"github.com/loadsheet/loadsheet/internal/store"
	"github.com/loadsheet/loadsheet/internal/wait"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCmd executes every scenario of the data source through the engine.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all scenarios from the data source and report pass/fail",
	RunE: func(cmd *cobra.Command, args []string) error {
		// An operator interrupt must reach the running engine process and
		// still leave no temporary scripts behind.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		scenarios, err := loadScenarios(cmd, cfg, logger)
		if err != nil {
			return err
		}

		// Resolve the template up front: a malformed template fails every
		// scenario identically, so there is no point starting the run.
		tmpl := script.Default()
		if strings.TrimSpace(cfg.Template) != "" {
			tmpl, err = script.LoadTemplate(cfg.Template)
			if err != nil {
				return err
			}
		}

		initial, err := cfg.InitialVars(ctx)
		if err != nil {
			return err
		}

		hcfg := &httpc.Httpc{TlsConfig: cfg.TLSConfig()}
		if err := wait.Wait(ctx, hcfg, cfg.Wait); err != nil {
			return err
		}

		if cfg.Smoke || viper.GetBool("smoke") {
			sm := &smoke.Smoke{Client: hcfg.New(), Logger: logger}
			for _, sc := range scenarios {
				if err := sm.RunScenario(ctx, sc, initial); err != nil {
					return err
				}
			}
		}

		var st *store.Store
		if !cfg.Store.Disabled {
			st, err = store.Open(cfg.Store.Config)
			if err != nil {
				logger.Warn("run history store unavailable; continuing without it", "error", err)
			} else {
				defer func() { _ = st.Close() }()
			}
		}

		engine := strings.TrimSpace(viper.GetString("engine"))
		if engine == "" {
			engine = strings.TrimSpace(cfg.Engine)
		}
		if engine == "" {
			engine = runner.DefaultEngine
		}

		coord := coordinator.New(coordinator.Options{
			Engine:        engine,
			WorkDir:       cfg.WorkDir,
			ExportSummary: cfg.SummaryExport || viper.GetBool("summary_export"),
			SummaryDir:    cfg.SummaryDir,
			FailFast:      cfg.FailFast || viper.GetBool("fail_fast"),
			InitialVars:   initial,
			Synth:         script.NewSynthesizerWithTemplate(tmpl),
			Store:         st,
			Logger:        logger,
		})

		_, err = coord.Run(ctx, scenarios)
		return err
	},
}
