// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. PACKET_EATER_REDIS_ADDR.
const EnvPrefix = "PACKET_EATER"

// Load reads the yaml file at filePath on top of the defaults, applies
// environment overrides and validates the result. An empty filePath loads
// defaults and environment only.
func Load(filePath string) (*Config, error) {
	cfg, err := readAndParseConfig(filePath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Dump renders cfg as yaml.
func Dump(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func readAndParseConfig(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := Dump(NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to render default config: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Queue.Broker = strings.ToLower(strings.TrimSpace(cfg.Queue.Broker))

	return &cfg, nil
}
