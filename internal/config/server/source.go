package server

// SourceServerConfig describes where the record set is fetched from.
// File takes precedence over URL when both are set.
type SourceServerConfig struct {
	URL          string `mapstructure:"url"           yaml:"url"`
	File         string `mapstructure:"file"          yaml:"file"`
	RecordsField string `mapstructure:"records_field" yaml:"records_field"`
	Timeout      string `mapstructure:"timeout"       yaml:"timeout"`
}
