package server

type HTTPServerConfig struct {
	Address     string `mapstructure:"address"      yaml:"address"`
	ResultsPath string `mapstructure:"results_path" yaml:"results_path"`
	SavePath    string `mapstructure:"save_path"    yaml:"save_path"`
}
