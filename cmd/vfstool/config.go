package main

import (
	"github.com/spf13/viper"
)

// config is the minimal ordered-list-in, ordered-list-out shape vfstool
// needs from a config file: where to find game data, and which archives
// (by loose file name, resolved against those roots) to layer over it.
// This is intentionally not the production configuration grammar — that
// is an external collaborator this tool only needs a stand-in for.
type config struct {
	Roots    []string `mapstructure:"roots" yaml:"roots"`
	Archives []string `mapstructure:"archives" yaml:"archives"`
}

func loadConfig(path string) (config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, err
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
