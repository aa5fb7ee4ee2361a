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

// Package evaluator scores completed agent work and the system as a
// whole, generalizing the teacher's RAG-focused LLMEvaluator to the
// orchestrator's {accuracy, completeness, coherence, efficiency} rating
// model with provider-aware retry/backoff.
package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/mcp"
)

// Rating is a single scored dimension with supporting rationale.
type Rating struct {
	Value  int    `json:"rating"`
	Reason string `json:"reason"`
}

// AgentEvaluation is the per-agent scoring record the spec requires.
type AgentEvaluation struct {
	Accuracy     Rating  `json:"accuracy"`
	Completeness Rating  `json:"completeness"`
	Coherence    Rating  `json:"coherence"`
	Efficiency   Rating  `json:"efficiency"`
	Overall      float64 `json:"overall"`
	Feedback     string  `json:"feedback"`
}

// SystemEvaluation is the aggregate evaluation across all agents in a task.
type SystemEvaluation struct {
	SystemRating    int      `json:"system_rating"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

// AgentReport is the minimal view of an agent's outcome the evaluator needs.
type AgentReport struct {
	AgentID         string
	Status          string // "completed" or "error"
	Output          string
	ExecutionTimeMs int64
}

// Evaluator scores agent reports and task-level outcomes using an LLM,
// with the retry policy spec.md §4.5 requires: retry only on rate-limit
// errors, up to 5 attempts, exponential backoff from 1s doubling each
// attempt, honoring a provider-suggested delay when given.
type Evaluator struct {
	provider llms.LLMProvider
}

// New creates an Evaluator backed by provider.
func New(provider llms.LLMProvider) *Evaluator {
	return &Evaluator{provider: provider}
}

// EvaluateAgent scores a single agent's report.
//
// An error-status report short-circuits straight to minimum scores
// (rating 1 on every dimension) with a synthesized feedback message,
// exactly as spec.md §4.5 specifies — no LLM call is made for failed
// agents.
func (e *Evaluator) EvaluateAgent(ctx context.Context, report AgentReport) (AgentEvaluation, error) {
	if report.Status == "error" {
		return AgentEvaluation{
			Accuracy:     Rating{1, "agent reported an error"},
			Completeness: Rating{1, "agent reported an error"},
			Coherence:    Rating{1, "agent reported an error"},
			Efficiency:   Rating{1, "agent reported an error"},
			Overall:      1,
			Feedback:     fmt.Sprintf("agent %s failed and was not scored by the LLM", report.AgentID),
		}, nil
	}

	scores, err := e.scoreDimensions(ctx, report.Output)
	if err != nil {
		return AgentEvaluation{
			Accuracy:     Rating{1, "evaluation_llm_error"},
			Completeness: Rating{1, "evaluation_llm_error"},
			Coherence:    Rating{1, "evaluation_llm_error"},
			Efficiency:   efficiencyFor(report.ExecutionTimeMs),
			Overall:      1,
			Feedback:     fmt.Sprintf("evaluation_llm_error: %v", err),
		}, nil
	}

	efficiency := efficiencyFor(report.ExecutionTimeMs)
	overall := mean(scores.Accuracy.Value, scores.Completeness.Value, scores.Coherence.Value, efficiency.Value)

	feedback, err := e.feedback(ctx, report.Output, overall)
	if err != nil {
		feedback = "feedback generation failed: " + err.Error()
	}

	return AgentEvaluation{
		Accuracy:     scores.Accuracy,
		Completeness: scores.Completeness,
		Coherence:    scores.Coherence,
		Efficiency:   efficiency,
		Overall:      overall,
		Feedback:     feedback,
	}, nil
}

// efficiencyFor computes the deterministic efficiency rating from
// execution time, per spec.md §4.5: <1s -> 9, <5s -> 7, else 4.
func efficiencyFor(executionTimeMs int64) Rating {
	switch {
	case executionTimeMs < 1000:
		return Rating{9, "completed in under 1 second"}
	case executionTimeMs < 5000:
		return Rating{7, "completed in under 5 seconds"}
	default:
		return Rating{4, "completed in 5 seconds or more"}
	}
}

func mean(values ...int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

type dimensionScores struct {
	Accuracy     Rating `json:"accuracy"`
	Completeness Rating `json:"completeness"`
	Coherence    Rating `json:"coherence"`
}

// scoreDimensions issues the first LLM prompt: a JSON object rating
// accuracy/completeness/coherence.
func (e *Evaluator) scoreDimensions(ctx context.Context, output string) (dimensionScores, error) {
	prompt := fmt.Sprintf(
		"Evaluate the following agent output. Respond ONLY with a JSON object of the form "+
			`{"accuracy":{"rating":<1-10>,"reason":"..."},"completeness":{"rating":<1-10>,"reason":"..."},"coherence":{"rating":<1-10>,"reason":"..."}}`+
			".\n\nOutput:\n%s", output)

	text, err := e.retryGenerate(ctx, prompt)
	if err != nil {
		return dimensionScores{}, err
	}

	parsed, isJSON := mcp.ParseResponse(text)
	if !isJSON {
		return dimensionScores{}, fmt.Errorf("evaluator: response was not valid JSON")
	}

	raw, err := json.Marshal(parsed)
	if err != nil {
		return dimensionScores{}, fmt.Errorf("evaluator: re-marshal parsed response: %w", err)
	}

	var scores dimensionScores
	if err := json.Unmarshal(raw, &scores); err != nil {
		return dimensionScores{}, fmt.Errorf("evaluator: decode scores: %w", err)
	}
	return scores, nil
}

// feedback issues the second LLM prompt: freeform feedback text.
func (e *Evaluator) feedback(ctx context.Context, output string, overall float64) (string, error) {
	prompt := fmt.Sprintf("In two or three sentences, give constructive feedback on this agent output "+
		"(overall score %.1f/10):\n\n%s", overall, output)
	return e.retryGenerate(ctx, prompt)
}

// EvaluateSystem scores the task as a whole from its per-agent evaluations.
func (e *Evaluator) EvaluateSystem(ctx context.Context, evaluations []AgentEvaluation) (SystemEvaluation, error) {
	if len(evaluations) == 0 {
		return SystemEvaluation{SystemRating: 1, Analysis: "no agents were evaluated"}, nil
	}

	sum := 0.0
	for _, e := range evaluations {
		sum += e.Overall
	}
	avg := sum / float64(len(evaluations))

	prompt := fmt.Sprintf(
		"Given an average per-agent score of %.1f/10 across %d agents, respond ONLY with a JSON object "+
			`{"system_rating":<1-10>,"analysis":"...","recommendations":["...","..."]}`+
			" summarizing overall task quality.", avg, len(evaluations))

	text, err := e.retryGenerate(ctx, prompt)
	if err != nil {
		return SystemEvaluation{SystemRating: 1, Analysis: "evaluation_llm_error: " + err.Error()}, nil
	}

	parsed, isJSON := mcp.ParseResponse(text)
	if !isJSON {
		return SystemEvaluation{SystemRating: 1, Analysis: "evaluator: response was not valid JSON"}, nil
	}

	raw, err := json.Marshal(parsed)
	if err != nil {
		return SystemEvaluation{SystemRating: 1, Analysis: "evaluator: re-marshal failed"}, nil
	}

	var sys SystemEvaluation
	if err := json.Unmarshal(raw, &sys); err != nil {
		return SystemEvaluation{SystemRating: 1, Analysis: "evaluator: decode failed"}, nil
	}
	return sys, nil
}

// retryGenerate issues a single-turn LLM prompt, retrying only on
// llms.RateLimitError, up to 5 attempts with exponential backoff
// starting at 1s (doubling each attempt), honoring the provider's
// suggested retry delay when one is present.
func (e *Evaluator) retryGenerate(ctx context.Context, prompt string) (string, error) {
	var text string

	operation := func() error {
		resp, err := e.provider.Generate(ctx, []llms.Message{{Role: "user", Content: prompt}}, nil)
		if err == nil {
			text = resp.Text
			return nil
		}

		var rle *llms.RateLimitError
		if asRateLimitError(err, &rle) {
			if rle.RetryAfterSeconds > 0 {
				return backoff.RetryAfter(rle.RetryAfterSeconds)
			}
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(1*time.Second),
			backoff.WithMultiplier(2),
			backoff.WithRandomizationFactor(0),
		),
		4, // 5 total attempts
	)

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("evaluator: generation failed after retries: %w", err)
	}
	return text, nil
}

func asRateLimitError(err error, target **llms.RateLimitError) bool {
	rle, ok := err.(*llms.RateLimitError)
	if !ok {
		return false
	}
	*target = rle
	return true
}
