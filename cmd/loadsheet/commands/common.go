package commands

import (
	"fmt"
	"strings"

	"github.com/loadsheet/loadsheet/cmd/loadsheet/config"
	"github.com/loadsheet/loadsheet/internal/common"
	"github.com/loadsheet/loadsheet/internal/scenario"
	"github.com/loadsheet/loadsheet/internal/source"
	"github.com/loadsheet/loadsheet/internal/testcase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfig reads the configured config.yaml and installs its logger as the
// process default.
func loadConfig() (*config.ConfigDoc, *common.Logger, error) {
	path := viper.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.BuildLogger()
	common.SetDefaultLogger(logger)
	return cfg, logger, nil
}

// sourcePath resolves the data source: the command's own flag first, then
// env, then config.
func sourcePath(cmd *cobra.Command, cfg *config.ConfigDoc) (string, error) {
	path, _ := cmd.Flags().GetString("source")
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(viper.GetString("source"))
	}
	if path == "" {
		path = strings.TrimSpace(cfg.Source)
	}
	if path == "" {
		return "", fmt.Errorf("no data source configured (set source in config or pass --source)")
	}
	return path, nil
}

// loadScenarios runs the front half of the pipeline: read, validate, group.
func loadScenarios(cmd *cobra.Command, cfg *config.ConfigDoc, logger *common.Logger) ([]scenario.Scenario, error) {
	path, err := sourcePath(cmd, cfg)
	if err != nil {
		return nil, err
	}
	rows, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	cases := make([]testcase.TestCase, 0, len(rows))
	for _, row := range rows {
		tc, err := testcase.FromRow(row)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	logger.Info("data source loaded", "source", path, "cases", len(cases))
	return scenario.Group(cases, logger), nil
}
