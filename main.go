package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/txn-recon/cmd/fetch"
	"fjacquet/txn-recon/cmd/reconcile"
	"fjacquet/txn-recon/cmd/root"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// Load environment variables silently first, then fix the global log
	// level before any logger is handed out.
	loadEnvSilently()
	logrus.SetLevel(configuredLogLevel())

	root.Init()
	root.Cmd.AddCommand(reconcile.Cmd)
	root.Cmd.AddCommand(fetch.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configuredLogLevel parses LOG_LEVEL, defaulting to info.
func configuredLogLevel() logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	return logLevel
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
