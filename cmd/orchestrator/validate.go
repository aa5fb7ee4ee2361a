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

package main

import (
	"fmt"

	"github.com/kadirpekel/hector/pkg/config"
)

// ValidateCmd loads a config file and reports whether it is well-formed,
// without constructing or starting anything.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	fmt.Printf("config OK: server %s:%d, broadcaster=%s, decomposition=%s, execution=%s, vector_store=%s, embedder=%s\n",
		cfg.Server.Host, cfg.Server.Port, cfg.Server.Broadcaster,
		cfg.Decomposition.Type, cfg.Execution.Type, cfg.VectorStore.Type, cfg.Embedder.Type)
	return nil
}
