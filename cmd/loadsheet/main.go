package main

import (
	"github.com/loadsheet/loadsheet/cmd/loadsheet/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "loadsheet",
	Short: "Compile spreadsheet/CSV test cases into load scripts and run them",
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "./config/config.yaml")
	v.SetDefault("limit", 20)

	// Environment variables support: LOADSHEET_CONFIG, ...
	v.SetEnvPrefix("LOADSHEET")
	v.AutomaticEnv()

	// Bind flags via Cobra and then bind to Viper
	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml")
	commands.RunCmd.Flags().String("source", "", "data source file (.csv or .xlsx); overrides config")
	commands.RunCmd.Flags().String("engine", "", "load-engine binary; overrides config")
	commands.RunCmd.Flags().Bool("smoke", false, "run the in-process smoke preflight before the engine")
	commands.RunCmd.Flags().Bool("fail-fast", false, "stop after the first failing scenario")
	commands.RunCmd.Flags().Bool("summary-export", false, "collect the engine's machine-readable summary")
	commands.ValidateCmd.Flags().String("source", "", "data source file (.csv or .xlsx); overrides config")
	commands.ScriptCmd.Flags().String("source", "", "data source file (.csv or .xlsx); overrides config")
	commands.ScriptCmd.Flags().String("out", "./scripts", "directory for rendered scripts")
	commands.HistoryCmd.Flags().Int("limit", v.GetInt("limit"), "number of history records to show")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("source", commands.RunCmd.Flags().Lookup("source"))
	_ = v.BindPFlag("engine", commands.RunCmd.Flags().Lookup("engine"))
	_ = v.BindPFlag("smoke", commands.RunCmd.Flags().Lookup("smoke"))
	_ = v.BindPFlag("fail_fast", commands.RunCmd.Flags().Lookup("fail-fast"))
	_ = v.BindPFlag("summary_export", commands.RunCmd.Flags().Lookup("summary-export"))
	_ = v.BindPFlag("out", commands.ScriptCmd.Flags().Lookup("out"))
	_ = v.BindPFlag("limit", commands.HistoryCmd.Flags().Lookup("limit"))

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.ScriptCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.MockCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
