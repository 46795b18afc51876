package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema plus the raw text that is shown to the model.
type Schema struct {
	Name     string
	raw      string
	compiled *gojsonschema.Schema
}

func NewSchema(name, raw string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}
	return &Schema{Name: name, raw: raw, compiled: compiled}, nil
}

func mustSchema(name, raw string) *Schema {
	s, err := NewSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a JSON document and joins every violation into one error.
func (s *Schema) Validate(doc string) error {
	res, err := s.compiled.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

type ObjectRequest struct {
	System      string
	Prompt      string
	Schema      *Schema
	Temperature float32
}

// StructuredGenerator asks a single model for JSON, validates it and decodes it.
type StructuredGenerator struct {
	maxRetries int
}

func NewStructuredGenerator(maxRetries int) *StructuredGenerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &StructuredGenerator{maxRetries: maxRetries}
}

// GenerateObject retries the same model up to maxRetries extra times on any
// generation, parse or validation failure. There is no backoff.
func (g *StructuredGenerator) GenerateObject(ctx context.Context, llm LLM, req ObjectRequest, out interface{}) error {
	system := req.System + "\n\n" + schemaInstruction(req.Schema)

	var lastErr error
	attempts := g.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		raw, err := llm.Generate(ctx, GenerateRequest{
			System:      system,
			Prompt:      req.Prompt,
			Temperature: req.Temperature,
			JSON:        true,
		})
		if err != nil {
			lastErr = err
			continue
		}

		doc := extractJSON(raw)
		if err := req.Schema.Validate(doc); err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal([]byte(doc), out); err != nil {
			lastErr = fmt.Errorf("failed to unmarshal JSON: %w", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("no valid %s object after %d attempts: %w", req.Schema.Name, attempts, lastErr)
}

func schemaInstruction(s *Schema) string {
	return "Respond with a single JSON object only, no markdown and no commentary. " +
		"The object MUST validate against this JSON Schema:\n" + s.raw
}

// extractJSON strips markdown fences and keeps the outermost JSON object or array.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj > startObj && (startArr == -1 || startObj < startArr) {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}
