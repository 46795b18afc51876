package services

import (
	"strings"

	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/models"
)

type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

type ModelInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Provider    Provider `json:"provider"`
	IsFree      bool     `json:"isFree"`
	RequiresPro bool     `json:"requiresPro"`
	// Hidden models are valid fallbacks but never offered in the model picker.
	Hidden bool `json:"-"`
}

var modelCatalog = []ModelInfo{
	{ID: "gpt-5-mini", Name: "GPT-5 Mini", Provider: ProviderOpenAI, IsFree: true},
	{ID: "gpt-4.1-nano", Name: "GPT-4.1 Nano", Provider: ProviderOpenAI, IsFree: true},
	{ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", Provider: ProviderOpenAI},
	{ID: "gpt-5", Name: "GPT-5", Provider: ProviderOpenAI, RequiresPro: true},
	{ID: "gpt-5-codex", Name: "GPT-5 Codex", Provider: ProviderOpenAI, IsFree: true, Hidden: true},
	{ID: "gpt-5.1-codex", Name: "GPT-5.1 Codex", Provider: ProviderOpenAI, IsFree: true, Hidden: true},
	{ID: "gpt-5.2-codex", Name: "GPT-5.2 Codex", Provider: ProviderOpenAI, IsFree: true, Hidden: true},
	{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Provider: ProviderAnthropic, RequiresPro: true},
	{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", Provider: ProviderAnthropic},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: ProviderGemini, IsFree: true},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: ProviderGemini, RequiresPro: true},
	{ID: "openai/gpt-oss-120b:free", Name: "GPT OSS 120B", Provider: ProviderOpenRouter, IsFree: true},
	{ID: "openai/gpt-oss-20b:free", Name: "GPT OSS 20B", Provider: ProviderOpenRouter, IsFree: true},
	{ID: "qwen/qwen3-coder:free", Name: "Qwen3 Coder", Provider: ProviderOpenRouter, IsFree: true},
	{ID: "deepseek/deepseek-v3.2:nitro", Name: "DeepSeek V3.2", Provider: ProviderOpenRouter},
	{ID: "nvidia/nemotron-nano-9b-v2:free", Name: "Nemotron Nano 9B", Provider: ProviderOpenRouter, IsFree: true, Hidden: true},
	{ID: "z-ai/glm-4.5-air:free", Name: "GLM 4.5 Air", Provider: ProviderOpenRouter, IsFree: true, Hidden: true},
}

var proxyFallbackModels = []string{"gpt-5-codex", "gpt-5.2-codex", "gpt-5.1-codex"}

var openRouterFallbackModels = []string{
	"openai/gpt-oss-120b:free",
	"qwen/qwen3-coder:free",
	"nvidia/nemotron-nano-9b-v2:free",
	"z-ai/glm-4.5-air:free",
	"openai/gpt-oss-20b:free",
	"deepseek/deepseek-v3.2:nitro",
}

func LookupModel(id string) (ModelInfo, bool) {
	for _, m := range modelCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// PublicModels lists the models a user may pick explicitly.
func PublicModels() []ModelInfo {
	out := make([]ModelInfo, 0, len(modelCatalog))
	for _, m := range modelCatalog {
		if !m.Hidden {
			out = append(out, m)
		}
	}
	return out
}

// viaOpenRouter reports whether a model id is routed through OpenRouter ("vendor/model").
func viaOpenRouter(id string) bool {
	return strings.Contains(id, "/")
}

// Candidate is one entry of the ordered model list tried by the fallback runner.
type Candidate struct {
	Model   string
	APIKeys []models.APIKey
}

// Candidates puts the caller's model first, followed by the fallback list for this deployment.
func Candidates(cfg config.AIConfig, reqCfg *models.AIRequestConfig) []Candidate {
	var keys []models.APIKey
	preferred := ""
	if reqCfg != nil {
		keys = reqCfg.APIKeys
		preferred = strings.TrimSpace(reqCfg.Model)
	}

	fallbacks := openRouterFallbackModels
	if cfg.UsesCustomOpenAIProxy() {
		fallbacks = proxyFallbackModels
	}
	if cfg.GeminiAPIKey != "" && cfg.GeminiModel != "" {
		fallbacks = append(append([]string{}, fallbacks...), cfg.GeminiModel)
	}

	candidates := make([]Candidate, 0, len(fallbacks)+1)
	if preferred != "" {
		candidates = append(candidates, Candidate{Model: preferred, APIKeys: keys})
	}
	for _, id := range fallbacks {
		if id == preferred {
			continue
		}
		candidates = append(candidates, Candidate{Model: id, APIKeys: keys})
	}
	return candidates
}
