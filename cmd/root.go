package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudpilot-ai/discoverctl/internal/logs"
	"github.com/cloudpilot-ai/discoverctl/internal/message"
)

var (
	cfgFile      string
	quietFlag    bool
	noColorFlag  bool
	silentFlag   bool
	logLevelFlag string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "discoverctl",
	Short: "discoverctl discovers and inventories live AWS and Azure resources.",
}

// Execute runs the root command; it is the single entrypoint main.go calls.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.discoverctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error, none)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress user messages")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&silentFlag, "silent", false, "Suppress all messages except critical errors")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".discoverctl")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DISCOVERCTL")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	logs.ConfigureDefaults(logLevelFlag)
	message.SetQuiet(quietFlag)
	message.SetNoColor(noColorFlag)
	message.SetSilent(silentFlag)
	message.Banner()
}
