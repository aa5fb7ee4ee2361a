// Copyright 2025 Kadir Pekel
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

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file at path, expands environment-variable
// references against the process environment (after loading a .env
// file from the current working directory, if present, the way the
// teacher's CLI does at startup), decodes it, applies defaults, and
// validates the result.
//
// An empty path yields a zero-config Config with every default
// applied, for `orchestrator serve` run with no flags.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional; missing .env is not an error

	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}

		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}

		expanded := expandEnvVarsInData(doc)

		reencoded, err := yaml.Marshal(expanded)
		if err != nil {
			return nil, fmt.Errorf("config: re-encoding %s after expansion: %w", path, err)
		}
		if err := yaml.Unmarshal(reencoded, cfg); err != nil {
			return nil, fmt.Errorf("config: decoding %s: %w", path, err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func invalidValueError(field, got string, allowed []string) error {
	if len(allowed) == 0 {
		return fmt.Errorf("%s is required", field)
	}
	return fmt.Errorf("%s: invalid value %q, must be one of %v", field, got, allowed)
}
