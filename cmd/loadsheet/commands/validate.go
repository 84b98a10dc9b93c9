package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateCmd parses and validates the data source without running anything.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the data source and show the scenario plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		scenarios, err := loadScenarios(cmd, cfg, logger)
		if err != nil {
			return err
		}

		steps := 0
		for _, sc := range scenarios {
			steps += len(sc.Steps)
			fmt.Printf("scenario %q: %d step(s)\n", sc.Name, len(sc.Steps))
			for _, tc := range sc.Steps {
				fmt.Printf("  [row %d] %s %s %s\n", tc.Row, tc.Name, tc.Method, tc.URL)
			}
		}
		fmt.Printf("OK: %d scenario(s), %d step(s)\n", len(scenarios), steps)
		return nil
	},
}
