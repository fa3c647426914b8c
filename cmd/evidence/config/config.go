// Package config assembles component configurations from CLI flags and
// viper settings.
package config

import (
	"golang-invoice-evidence-service/internal/bankid"
	"golang-invoice-evidence-service/internal/engine"
	"golang-invoice-evidence-service/internal/exporter"
	"golang-invoice-evidence-service/pkg/logger"
)

// CreateLogger builds the run logger; verbose switches to debug level.
func CreateLogger(verbose bool) (logger.Logger, error) {
	cfg := logger.DefaultConfig()
	if verbose {
		cfg = logger.DebugConfig()
	}
	return logger.NewLogger(cfg)
}

// CreateEngineConfig builds the engine configuration from CLI overrides.
// Extra denylist entries extend (not replace) the default BIC denylist so
// corpus-specific words can be layered on top of the built-in guards.
func CreateEngineConfig(workers, previewLimit int, extraBICDenylist []string) *engine.Config {
	cfg := engine.DefaultConfig()
	if workers > 0 {
		cfg.Workers = workers
	}
	if previewLimit >= 0 {
		cfg.PreviewLimit = previewLimit
	}

	bicCfg := bankid.DefaultBICConfig()
	bicCfg.Denylist = append(bicCfg.Denylist, extraBICDenylist...)
	cfg.BIC = bicCfg

	return cfg
}

// CreateExportConfig builds the export configuration for the chosen format.
func CreateExportConfig(format string) *exporter.Config {
	cfg := exporter.DefaultConfig()
	cfg.Format = exporter.OutputFormat(format)
	return cfg
}
