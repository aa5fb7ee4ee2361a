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
	"os"
	"regexp"
	"strconv"
	"strings"
)

// These three patterns are tried in order against every string value
// found while walking the decoded YAML document: ${VAR:-default} first
// (most specific), then ${VAR}, then bare $VAR.
var (
	reWithDefault = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	reBraced      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	reSimple      = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// expandEnvVars resolves ${VAR}, ${VAR:-default}, and bare $VAR
// references in s against the process environment.
func expandEnvVars(s string) string {
	s = reWithDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := reWithDefault.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(parts[1]); ok {
			return v
		}
		return parts[2]
	})
	s = reBraced.ReplaceAllStringFunc(s, func(match string) string {
		name := reBraced.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
	s = reSimple.ReplaceAllStringFunc(s, func(match string) string {
		name := reSimple.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
	return s
}

// expandEnvVarsInData walks a generically-decoded YAML document (as
// produced by yaml.Unmarshal into interface{}) and expands every string
// leaf in place, recursing through maps and slices.
func expandEnvVarsInData(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if !strings.Contains(val, "$") {
			return val
		}
		// Only values that actually underwent substitution get coerced
		// back to bool/int/float: a literal YAML string like "123" must
		// stay a string, but $PORT substituting to "8080" should decode
		// into an int field the same way a bare 8080 literal would.
		return parseValue(expandEnvVars(val))
	case map[string]interface{}:
		for k, item := range val {
			val[k] = expandEnvVarsInData(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = expandEnvVarsInData(item)
		}
		return val
	default:
		return v
	}
}

// parseValue coerces a YAML-expanded string back into the most specific
// Go scalar it looks like, so a value that arrived by environment
// substitution (always a string) still decodes into bool/int/float
// struct fields the way a literal YAML scalar would.
func parseValue(s string) interface{} {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
