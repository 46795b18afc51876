package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/models"
)

// GenerateRequest is one system+user exchange with a text model.
type GenerateRequest struct {
	System      string
	Prompt      string
	Temperature float32
	JSON        bool
}

// LLM is the provider-neutral text generation surface every AI step uses.
type LLM interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ClientFactory resolves a candidate model into a ready client for the caller's plan.
type ClientFactory interface {
	Resolve(candidate Candidate, plan models.Plan) (LLM, error)
}

type clientFactory struct {
	cfg     config.AIConfig
	siteURL string
	gemini  func(apiKey, model string) (LLM, error)
}

func NewClientFactory(cfg config.AIConfig, siteURL string) ClientFactory {
	return &clientFactory{
		cfg:     cfg,
		siteURL: siteURL,
		gemini: func(apiKey, model string) (LLM, error) {
			return NewGeminiService(apiKey, model, cfg.GeminiEmbedModel)
		},
	}
}

// Resolve picks the API key for a model.
// Pro users always use server keys. Free users use server keys for free models and
// OpenRouter-routed models, and must bring their own key for everything else.
func (f *clientFactory) Resolve(candidate Candidate, plan models.Plan) (LLM, error) {
	info, ok := LookupModel(candidate.Model)
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", candidate.Model)
	}

	if plan == models.PlanPro || info.IsFree || viaOpenRouter(info.ID) {
		if viaOpenRouter(info.ID) {
			return f.openRouter(info.ID, f.cfg.OpenRouterAPIKey, "OPENROUTER_API_KEY")
		}
		key, envName := f.serverKey(info.Provider)
		if key == "" {
			return nil, fmt.Errorf("%s API key not found (%s)", info.Provider, envName)
		}
		return f.build(info, key)
	}

	key := userKey(candidate.APIKeys, string(info.Provider))
	if key == "" {
		return nil, fmt.Errorf("%s API key not found in user configuration", info.Provider)
	}
	return f.build(info, key)
}

func (f *clientFactory) serverKey(p Provider) (string, string) {
	switch p {
	case ProviderOpenAI:
		return f.cfg.OpenAIAPIKey, "OPENAI_API_KEY"
	case ProviderAnthropic:
		return f.cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY"
	case ProviderOpenRouter:
		return f.cfg.OpenRouterAPIKey, "OPENROUTER_API_KEY"
	case ProviderGemini:
		return f.cfg.GeminiAPIKey, "GEMINI_API_KEY"
	default:
		return "", ""
	}
}

func (f *clientFactory) build(info ModelInfo, apiKey string) (LLM, error) {
	switch info.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(info.ID)}
		if f.cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(f.cfg.OpenAIBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return &langchainLLM{model: llm, jsonMode: true}, nil
	case ProviderAnthropic:
		llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(info.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		return &langchainLLM{model: llm}, nil
	case ProviderOpenRouter:
		return f.openRouter(info.ID, apiKey, "OPENROUTER_API_KEY")
	case ProviderGemini:
		return f.gemini(apiKey, info.ID)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", info.Provider)
	}
}

func (f *clientFactory) openRouter(model, apiKey, envName string) (LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key not found (%s)", envName)
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(openRouterBaseURL),
		openai.WithHTTPClient(&http.Client{Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": f.siteURL,
				"X-Title":      f.cfg.SiteName,
			},
		}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openrouter client: %w", err)
	}
	return &langchainLLM{model: llm}, nil
}

func userKey(keys []models.APIKey, service string) string {
	for _, k := range keys {
		if k.Service == service {
			return k.Key
		}
	}
	return ""
}

type langchainLLM struct {
	model    llms.Model
	jsonMode bool
}

func (l *langchainLLM) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.JSON && l.jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := l.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("no choices in model response")
	}
	return resp.Choices[0].Content, nil
}

// headerTransport adds fixed headers, used for OpenRouter attribution.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		if v != "" {
			r.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(r)
}
