// Copyright 2024 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the daemon configuration from a YAML file laid out
// as sections of scalar key/value settings, mirroring the classic mcelog
// ini sections:
//
//	page:
//	  memory-ce: "10 / 24h"
//	  memory-ce-action: soft
//
// The accounting core never reads files itself; it receives a *Config and
// asks for resolved values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
)

var log = logger.NewLogger("config")

// Config is a parsed configuration: section name to key to value.
type Config struct {
	sections map[string]map[string]string
}

// Choice maps one accepted configuration string to its resolved value.
type Choice struct {
	Name  string
	Value int
}

// New returns an empty configuration.
func New() *Config {
	return &Config{sections: make(map[string]map[string]string)}
}

// Load reads and parses the given YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration %q", path)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
func Parse(data []byte) (*Config, error) {
	raw := map[string]map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}

	cfg := New()
	for section, keys := range raw {
		cfg.sections[section] = make(map[string]string, len(keys))
		for key, value := range keys {
			cfg.sections[section][key] = fmt.Sprintf("%v", value)
		}
	}

	return cfg, nil
}

// Set stores one value, creating the section as needed.
func (c *Config) Set(section, key, value string) {
	if c.sections[section] == nil {
		c.sections[section] = make(map[string]string)
	}
	c.sections[section][key] = value
}

// GetString looks up a string value; ok reports whether the key is set.
func (c *Config) GetString(section, key string) (string, bool) {
	value, ok := c.sections[section][key]
	return value, ok
}

// GetInt looks up an integer value, falling back to def when unset.
func (c *Config) GetInt(section, key string, def int) (int, error) {
	value, ok := c.sections[section][key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def, configError("%s.%s: invalid integer '%s'", section, key, value)
	}
	return n, nil
}

// GetChoice resolves an enumerated value against the accepted choices,
// falling back to def when the key is unset.
func (c *Config) GetChoice(section, key string, def int, choices []Choice) (int, error) {
	value, ok := c.sections[section][key]
	if !ok {
		return def, nil
	}
	for _, choice := range choices {
		if choice.Name == value {
			return choice.Value, nil
		}
	}
	return def, configError("%s.%s: unknown value '%s'", section, key, value)
}

// WarnUnknown logs a warning for every key of the section not in known.
// Typoed keys would otherwise silently fall back to defaults.
func (c *Config) WarnUnknown(section string, known []string) {
	for key := range c.sections[section] {
		found := false
		for _, k := range known {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			log.Warn("ignoring unknown configuration key %s.%s", section, key)
		}
	}
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("config: "+format, args...)
}
