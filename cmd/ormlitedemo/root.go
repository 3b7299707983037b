package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagDBPath string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ormlitedemo",
	Short: "Exercise the ormlite library against a local SQLite database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath(), "path to the SQLite database file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable statement tracing")
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))     //nolint:errcheck
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")) //nolint:errcheck
}

func loadConfig() error {
	viper.SetConfigName("ormlitedemo")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ormlitedemo"))
	}
	viper.SetEnvPrefix("ORMLITEDEMO")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	if viper.IsSet("db") {
		flagDBPath = viper.GetString("db")
	}
	if viper.IsSet("verbose") {
		flagVerbose = viper.GetBool("verbose")
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ormlitedemo.db"
	}
	return filepath.Join(home, ".local", "state", "ormlitedemo", "state.db")
}
