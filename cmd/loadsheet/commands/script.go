package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loadsheet/loadsheet/internal/script"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ScriptCmd renders the load script for every scenario into a directory
// without invoking the engine; useful for inspecting or versioning scripts.
var ScriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Render load scripts for all scenarios without running them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(cmd, cfg, logger)
		if err != nil {
			return err
		}

		tmpl := script.Default()
		if strings.TrimSpace(cfg.Template) != "" {
			tmpl, err = script.LoadTemplate(cfg.Template)
			if err != nil {
				return err
			}
		}
		synth := script.NewSynthesizerWithTemplate(tmpl)

		initial, err := cfg.InitialVars(cmd.Context())
		if err != nil {
			return err
		}

		outDir := viper.GetString("out")
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("create output dir %s: %w", outDir, err)
		}

		for _, sc := range scenarios {
			text, err := synth.Render(sc, initial)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, script.ScenarioID(sc.Name)+".js")
			if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("rendered %s\n", path)
		}
		return nil
	},
}
