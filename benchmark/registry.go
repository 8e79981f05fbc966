/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// HandlerKind selects how a model is prompted.
type HandlerKind string

const (
	// HandlerFC uses the native tool-calling API of the endpoint.
	HandlerFC HandlerKind = "openai-fc"
	// HandlerPrompt describes the functions in the system prompt and
	// parses a JSON array of calls from the answer.
	HandlerPrompt HandlerKind = "openai-prompt"
)

// ModelConfig describes a model known to the benchmark. Model is the id
// sent to the endpoint when it differs from Name.
type ModelConfig struct {
	Name                  string      `yaml:"name" json:"name"`
	Model                 string      `yaml:"model,omitempty" json:"model,omitempty"`
	DisplayName           string      `yaml:"display_name" json:"display_name"`
	URL                   string      `yaml:"url" json:"url"`
	Organization          string      `yaml:"organization" json:"organization"`
	License               string      `yaml:"license" json:"license"`
	Handler               HandlerKind `yaml:"handler" json:"handler"`
	InputPricePerMillion  float64     `yaml:"input_price_per_million" json:"input_price_per_million"`
	OutputPricePerMillion float64     `yaml:"output_price_per_million" json:"output_price_per_million"`
	FunctionCalling       bool        `yaml:"function_calling" json:"function_calling"`
}

// Validate checks the required fields.
func (m ModelConfig) Validate() error {
	if m.Name == "" {
		return errors.New("model name is required")
	}
	switch m.Handler {
	case HandlerFC, HandlerPrompt:
	default:
		return fmt.Errorf("model %s: unknown handler %q", m.Name, m.Handler)
	}
	if m.InputPricePerMillion < 0 || m.OutputPricePerMillion < 0 {
		return fmt.Errorf("model %s: prices must not be negative", m.Name)
	}
	return nil
}

// APIModel returns the model id sent to the endpoint.
func (m ModelConfig) APIModel() string {
	if m.Model != "" {
		return m.Model
	}
	return m.Name
}

// Cost returns the price in dollars of the given token counts.
func (m ModelConfig) Cost(inputTokens, outputTokens int64) float64 {
	return (float64(inputTokens)*m.InputPricePerMillion + float64(outputTokens)*m.OutputPricePerMillion) / 1e6
}

// builtinModels are always registered.
var builtinModels = []ModelConfig{{
	Name:                  "gpt-4o-2024-11-20",
	DisplayName:           "GPT-4o-2024-11-20 (FC)",
	URL:                   "https://openai.com/index/hello-gpt-4o/",
	Organization:          "OpenAI",
	License:               "Proprietary",
	Handler:               HandlerFC,
	InputPricePerMillion:  2.5,
	OutputPricePerMillion: 10,
	FunctionCalling:       true,
}, {
	Name:                  "gpt-4o-mini-2024-07-18",
	DisplayName:           "GPT-4o-mini-2024-07-18 (FC)",
	URL:                   "https://openai.com/index/gpt-4o-mini-advancing-cost-efficient-intelligence/",
	Organization:          "OpenAI",
	License:               "Proprietary",
	Handler:               HandlerFC,
	InputPricePerMillion:  0.15,
	OutputPricePerMillion: 0.6,
	FunctionCalling:       true,
}, {
	Name:            "meta-llama/Llama-3.1-8B-Instruct",
	DisplayName:     "Llama-3.1-8B-Instruct (FC)",
	URL:             "https://llama.meta.com/llama3",
	Organization:    "Meta",
	License:         "Meta Llama 3 Community",
	Handler:         HandlerFC,
	FunctionCalling: true,
}, {
	Name:         "meta-llama/Llama-3.1-8B-Instruct-prompt",
	Model:        "meta-llama/Llama-3.1-8B-Instruct",
	DisplayName:  "Llama-3.1-8B-Instruct (Prompt)",
	URL:          "https://llama.meta.com/llama3",
	Organization: "Meta",
	License:      "Meta Llama 3 Community",
	Handler:      HandlerPrompt,
}, {
	Name:            "Qwen/Qwen3-8B",
	DisplayName:     "Qwen3-8B (FC)",
	URL:             "https://huggingface.co/Qwen/Qwen3-8B",
	Organization:    "Qwen",
	License:         "apache-2.0",
	Handler:         HandlerFC,
	FunctionCalling: true,
}}

// Registry maps model names to their configuration.
type Registry struct {
	mu     sync.RWMutex
	models map[string]ModelConfig
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]ModelConfig, len(builtinModels))}
	for _, m := range builtinModels {
		r.models[m.Name] = m
	}
	return r
}

// Register adds or replaces a model.
func (r *Registry) Register(m ModelConfig) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.DisplayName == "" {
		m.DisplayName = m.Name
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.Name] = m
	return nil
}

// Lookup returns the named model.
func (r *Registry) Lookup(name string) (ModelConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	if !ok {
		return ModelConfig{}, fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

// Models returns every registered model ordered by name.
func (r *Registry) Models() []ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelConfig, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b ModelConfig) int { return strings.Compare(a.Name, b.Name) })
	return out
}

type overlay struct {
	Models []ModelConfig `yaml:"models"`
}

// LoadOverlay registers the models of a YAML file shaped
//
//	models:
//	  - name: my-model
//	    handler: openai-fc
//
// Entries replace built-in models of the same name.
func (r *Registry) LoadOverlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var o overlay
	if err := yaml.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, m := range o.Models {
		if err := r.Register(m); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// DirName is the directory name results and scores of model are kept under.
func DirName(model string) string {
	return strings.ReplaceAll(model, "/", "_")
}
