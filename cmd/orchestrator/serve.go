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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/config"
	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/evaluator"
	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/memory"
	"github.com/kadirpekel/hector/pkg/ratelimit"
	"github.com/kadirpekel/hector/pkg/server"
	"github.com/kadirpekel/hector/pkg/task"
	"github.com/kadirpekel/hector/pkg/tool"
	"github.com/kadirpekel/hector/pkg/vector"
)

// ServeCmd starts the HTTP/SSE surface and keeps the task supervisor
// running until interrupted.
type ServeCmd struct {
	Port int `help:"Override the configured server port." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	logger.Init(level, os.Stdout, cli.LogFormat)
	log := logger.GetLogger()

	ctx := context.Background()

	decompositionProvider, err := llms.New(ctx, cfg.Decomposition)
	if err != nil {
		return fmt.Errorf("decomposition provider: %w", err)
	}
	executionProvider, err := llms.New(ctx, cfg.Execution)
	if err != nil {
		return fmt.Errorf("execution provider: %w", err)
	}

	embedder, err := embedders.New(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	vectorProvider, err := vector.NewProvider(&cfg.VectorStore)
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	gateway := vector.NewGateway(vectorProvider)

	longTerm, err := memory.NewLongTerm(gateway, embedder)
	if err != nil {
		return fmt.Errorf("long-term memory: %w", err)
	}

	tools := tool.NewRegistry()
	if err := tools.Register(tool.NewRetrieveTool(gateway, embedder)); err != nil {
		return fmt.Errorf("registering retrieve tool: %w", err)
	}
	if err := tools.Register(tool.NewSummarizeTool(executionProvider)); err != nil {
		return fmt.Errorf("registering summarize tool: %w", err)
	}
	if err := tools.Register(tool.NewWebSearchTool(cfg.Tools.WebSearchEndpoint)); err != nil {
		return fmt.Errorf("registering web search tool: %w", err)
	}

	limiter, err := ratelimit.New(cfg.RateLimit.Enabled, cfg.RateLimit.Limits)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	generate := agent.FromProvider(executionProvider)
	if limiter != nil {
		log.Info("per-agent rate limiting enabled", "limits", len(cfg.RateLimit.Limits))
		generate = ratelimit.NewLimitedProvider(executionProvider, limiter).GenerateForAgent
	}

	runtime := agent.New(agent.Config{
		Generate:           generate,
		Tools:              tools,
		LongTerm:           longTerm,
		Gateway:            gateway,
		Embedder:           embedder,
		MaxContextMessages: cfg.MCP.MaxMessages,
		MaxContextTokens:   cfg.MCP.MaxTokens,
	})

	decomposer := task.NewLLMDecomposer(decompositionProvider)
	eval := evaluator.New(executionProvider)
	supervisor := task.New(decomposer, runtime, eval)

	broadcaster, err := newBroadcaster(cfg)
	if err != nil {
		return fmt.Errorf("event broadcaster: %w", err)
	}

	publisher := server.StartPublisher(supervisor, broadcaster)
	defer publisher.Stop()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.New(supervisor, broadcaster),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("orchestrator listening", "addr", httpServer.Addr, "broadcaster", cfg.Server.Broadcaster)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newBroadcaster(cfg *config.Config) (server.EventBroadcaster, error) {
	switch cfg.Server.Broadcaster {
	case "nats":
		return server.NewNATSBroadcaster(cfg.Server.NATSURL)
	default:
		return server.NewBroadcaster(), nil
	}
}
