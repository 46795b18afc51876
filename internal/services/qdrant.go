package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/models"
)

// ResumeIndex keeps one embedding per resume for similarity search.
type ResumeIndex interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, resume *models.Resume) error
	Delete(ctx context.Context, resumeID uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]SearchResult, error)
	Enabled() bool
}

type SearchResult struct {
	ResumeID     uuid.UUID
	Score        float32
	IsBaseResume bool
}

type qdrantIndex struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
	vectorSize     uint64
	log            *slog.Logger
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, embedder Embedder, log *slog.Logger) (ResumeIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port unless the URL names one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		vectorSize:     768,
		log:            log,
	}, nil
}

func (q *qdrantIndex) Enabled() bool { return true }

func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.log.Info("qdrant collection ready", "collection", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      "user_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to index user_id: %w", err)
	}

	q.log.Info("qdrant collection created", "collection", q.collectionName)
	return nil
}

func (q *qdrantIndex) Upsert(ctx context.Context, resume *models.Resume) error {
	embedding, err := q.embedder.GenerateEmbedding(ctx, ResumeEmbeddingText(resume))
	if err != nil {
		return fmt.Errorf("failed to embed resume: %w", err)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(resume.ID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"user_id":        resume.UserID.String(),
			"resume_id":      resume.ID.String(),
			"is_base_resume": resume.IsBaseResume,
		}),
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

func (q *qdrantIndex) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID.String()),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{Score: point.Score}

		if v, ok := point.Payload["resume_id"]; ok {
			id, err := uuid.Parse(v.GetStringValue())
			if err != nil {
				continue
			}
			result.ResumeID = id
		}
		if v, ok := point.Payload["is_base_resume"]; ok {
			result.IsBaseResume = v.GetBoolValue()
		}

		results = append(results, result)
	}
	return results, nil
}

func (q *qdrantIndex) Delete(ctx context.Context, resumeID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(resumeID.String())),
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

type noopIndex struct{}

// NewNoopIndex is used when Qdrant or an embedding key is not configured.
func NewNoopIndex() ResumeIndex { return noopIndex{} }

func (noopIndex) InitCollection(context.Context) error { return nil }
func (noopIndex) Upsert(context.Context, *models.Resume) error { return nil }
func (noopIndex) Delete(context.Context, uuid.UUID) error { return nil }
func (noopIndex) Enabled() bool { return false }
func (noopIndex) Search(context.Context, uuid.UUID, string, int) ([]SearchResult, error) {
	return nil, nil
}

// ResumeEmbeddingText flattens the parts of a resume that matter for matching.
func ResumeEmbeddingText(resume *models.Resume) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", resume.TargetRole)

	for _, w := range resume.WorkExperience {
		fmt.Fprintf(&b, "%s at %s\n", w.Position, w.Company)
		for _, d := range w.Description {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		if len(w.Technologies) > 0 {
			fmt.Fprintf(&b, "%s\n", strings.Join(w.Technologies, ", "))
		}
	}
	for _, e := range resume.Education {
		fmt.Fprintf(&b, "%s %s, %s\n", e.Degree, e.Field, e.School)
	}
	for _, s := range resume.Skills {
		fmt.Fprintf(&b, "%s: %s\n", s.Category, strings.Join(s.Items, ", "))
	}
	for _, p := range resume.Projects {
		fmt.Fprintf(&b, "%s\n", p.Name)
		for _, d := range p.Description {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return strings.TrimSpace(b.String())
}

// NewResumeIndexFromConfig returns a Qdrant-backed index when both Qdrant and a Gemini key
// are configured, and a no-op index otherwise.
func NewResumeIndexFromConfig(ctx context.Context, qcfg config.QdrantConfig, aicfg config.AIConfig, log *slog.Logger) (ResumeIndex, error) {
	if qcfg.URL == "" || aicfg.GeminiAPIKey == "" {
		log.Info("vector index disabled", "qdrant_configured", qcfg.URL != "", "gemini_configured", aicfg.GeminiAPIKey != "")
		return NewNoopIndex(), nil
	}

	embedder, err := NewGeminiService(aicfg.GeminiAPIKey, aicfg.GeminiModel, aicfg.GeminiEmbedModel)
	if err != nil {
		return nil, err
	}

	index, err := NewQdrantIndex(qcfg.URL, qcfg.APIKey, qcfg.Collection, embedder, log)
	if err != nil {
		return nil, err
	}
	if err := index.InitCollection(ctx); err != nil {
		return nil, err
	}
	return index, nil
}
