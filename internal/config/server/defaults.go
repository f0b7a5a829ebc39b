package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path: "screener.db",
			},
		},

		Source: SourceServerConfig{
			URL:          "http://localhost:3000/api/data",
			File:         "",
			RecordsField: "",
			Timeout:      "30s",
		},

		HTTP: HTTPServerConfig{
			Address:     "127.0.0.1:8080",
			ResultsPath: "/query-result",
			SavePath:    "/save-query",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)

	viper.SetDefault("source.url", defaults.Source.URL)
	viper.SetDefault("source.file", defaults.Source.File)
	viper.SetDefault("source.records_field", defaults.Source.RecordsField)
	viper.SetDefault("source.timeout", defaults.Source.Timeout)

	viper.SetDefault("http.address", defaults.HTTP.Address)
	viper.SetDefault("http.results_path", defaults.HTTP.ResultsPath)
	viper.SetDefault("http.save_path", defaults.HTTP.SavePath)
}
