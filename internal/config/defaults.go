package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			MaxRecords:      100,
			StorageKey:      "usageData",
			ChartTopDomains: 5,
		},
		Window: WindowConfig{
			Backend:        "playwright",
			MaxWidth:       1200,
			MaxHeight:      800,
			Inset:          50,
			Margin:         100,
			BrowserChannel: "",
			Headless:       false,
			InstallBrowser: true,
			ScreenWidth:    1366,
			ScreenHeight:   768,
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			Path:       "~/.config/urlhider",
			SQLiteFile: "urlhider.db",
		},
		Messaging: MessagingConfig{
			NoticeSeconds:   3,
			MaxMessageBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "urlhider.log",
			Format: "text",
		},
	}
}
