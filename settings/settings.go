package settings

import (
	"os"

	"github.com/femnad/pfsync/internal"
)

const (
	apiBaseEnv        = "PFSYNC_API_BASE"
	configEnv         = "PFSYNC_CONFIG"
	defaultAPIBase    = "https://api.github.com"
	defaultConfigFile = "sync-config.json"
	defaultLogLevel   = "info"
	defaultReportFile = "sync-report.json"
	logLevelEnv       = "PFSYNC_LOG_LEVEL"
	tokenEnv          = "GITHUB_TOKEN"
	workDirEnv        = "PFSYNC_WORKDIR"
)

// Settings are the knobs that come from the environment rather than the config file.
type Settings struct {
	APIBase     string
	ConfigFile  string
	GitHubToken string
	LogLevel    string
	WorkDir     string
}

func getEnvOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func FromEnv() Settings {
	return Settings{
		APIBase:     getEnvOrDefault(apiBaseEnv, defaultAPIBase),
		ConfigFile:  internal.ExpandUser(getEnvOrDefault(configEnv, defaultConfigFile)),
		GitHubToken: os.Getenv(tokenEnv),
		LogLevel:    getEnvOrDefault(logLevelEnv, defaultLogLevel),
		WorkDir:     internal.ExpandUser(getEnvOrDefault(workDirEnv, ".")),
	}
}

func ReportFileOrDefault(reportFile string) string {
	if reportFile == "" {
		return defaultReportFile
	}
	return internal.ExpandUser(reportFile)
}
