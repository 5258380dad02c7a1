package main

import (
	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appName = "resume-matcher"

var (
	cfgFile  string
	debugLog bool
	jsonLog  bool
	rootCmd  = &cobra.Command{
		Use:           appName,
		Short:         "resume-matcher posts jobs, collects applications and scores resumes against them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in . or ./configs)")
	rootCmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// setup loads the configuration and builds the logger, letting the
// logging flags override the configured values.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if debugLog {
		cfg.Logging.Level = "debug"
	}
	if jsonLog {
		cfg.Logging.Format = "json"
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log.Named(appName), nil
}
