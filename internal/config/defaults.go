package config

// Defaults returns the configuration used when no file overrides it. The
// waits follow the sanctioned polling rates of each endpoint tier: history is
// a higher tier than the list endpoints.
func Defaults() *Config {
	return &Config{
		LogLevel:           "info",
		DateFormat:         DateISO8601,
		PageSize:           500,
		HistoryWaitSeconds: 2,
		ListWaitSeconds:    3,
		Output:             "",
	}
}
