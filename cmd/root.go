package cmd

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/playlist-insights/env"
	"github.com/playlist-insights/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "playlist-insights",
	Short: "Musical profile analysis for playlists",
	Long: `Reads a playlist from the catalog API and derives its musical profile:
genre and artist distributions, average audio features, mood and recommendations.`,
	Version: "0.1.0",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.playlist-insights/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warning, error)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// a missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err == nil {
		logger.Logger.Debug("Loaded variables from .env")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".playlist-insights"))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	env.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		logger.Logger.Infof("Using config file %s", viper.ConfigFileUsed())
	}

	settings := env.Load(viper.GetViper())
	logger.Configure(settings.LogLevel, settings.LogJson || env.IsProd())
}
