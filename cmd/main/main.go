package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/BartekS5/fieldmap/internal/cli"
	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: could not open log file:", err)
		os.Exit(1)
	}
	defer logger.Close()

	if envErr != nil {
		logger.Debugf("No .env file found, using system environment variables")
	}

	rootCmd := cli.NewRootCmd(cfg)
	if err := rootCmd.Execute(); err != nil {
		logger.Close()
		os.Exit(1)
	}
}
