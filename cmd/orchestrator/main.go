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

// Command orchestrator is the CLI for the Multi-Agent Task Orchestrator.
//
// Usage:
//
//	orchestrator serve --config config.yaml
//	orchestrator validate --config config.yaml
//	orchestrator version
package main

import (
	"github.com/alecthomas/kong"
)

// CLI defines the orchestrator's command-line interface.
type CLI struct {
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP/SSE surface and keep the task supervisor running."`
	Validate ValidateCmd `cmd:"" help:"Load and validate a config file without starting anything."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("orchestrator"),
		kong.Description("Multi-Agent Task Orchestrator"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
