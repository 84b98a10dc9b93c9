package commands

import (
	"fmt"
	"time"

	"github.com/loadsheet/loadsheet/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// HistoryCmd lists recent run records from the history store.
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scenario run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Store.Disabled {
			return fmt.Errorf("run history store is disabled in config")
		}

		st, err := store.Open(cfg.Store.Config)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		records, err := st.ListRecent(viper.GetInt("limit"))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no run history")
			return nil
		}

		fmt.Printf("%-20s %-30s %-6s %-5s %-10s %s\n",
			"RUN AT", "SCENARIO", "STATUS", "EXIT", "DURATION", "CHECKS (pass/fail)")
		for _, r := range records {
			fmt.Printf("%-20s %-30s %-6s %-5d %-10s %.0f/%.0f\n",
				r.RunAt.Local().Format(time.DateTime),
				r.Scenario,
				r.Status,
				r.ExitCode,
				(time.Duration(r.DurationMs) * time.Millisecond).String(),
				r.ChecksPassed,
				r.ChecksFailed,
			)
		}
		return nil
	},
}
