package main

import (
	"fmt"
	"os"

	"github.com/andalize/proptic/common/logger"
	"github.com/andalize/proptic/internal/app"
	"github.com/andalize/proptic/internal/config"
)

func main() {
	rootCmd := newRootCmd(openDatabaseApp)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabaseApp builds the app from the environment and refuses to run on
// in-memory repositories.
func openDatabaseApp() (*app.App, error) {
	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, "console", "proptic-admin")
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, err
	}
	if a.DB == nil {
		a.Close()
		return nil, app.ErrNoDatabase
	}
	return a, nil
}
