package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alfredoptarigan/kryptohire/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// scriptedLLM returns its replies in order, then repeats the last one.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedLLM) Generate(_ context.Context, _ GenerateRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], nil
}

// MockClientFactory is a mock implementation of ClientFactory
type MockClientFactory struct {
	mock.Mock
}

func (m *MockClientFactory) Resolve(candidate Candidate, plan models.Plan) (LLM, error) {
	args := m.Called(candidate.Model, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(LLM), args.Error(1)
}

// MockAIService is a mock implementation of AIService
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) FormatJobListing(ctx context.Context, req AIRequest, listing string) (*models.JobListing, error) {
	args := m.Called(ctx, req, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobListing), args.Error(1)
}

func (m *MockAIService) TailorResume(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job) (*models.ResumeContent, error) {
	args := m.Called(ctx, req, resume, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResumeContent), args.Error(1)
}

func (m *MockAIService) ScoreResume(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job) (*models.ResumeScore, error) {
	args := m.Called(ctx, req, resume, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResumeScore), args.Error(1)
}

func (m *MockAIService) OptimizeResume(ctx context.Context, req AIRequest, score *models.ResumeScore, resume *models.Resume, job *models.Job) (*OptimizeResult, error) {
	args := m.Called(ctx, req, score, resume, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OptimizeResult), args.Error(1)
}

func (m *MockAIService) WriteCoverLetter(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job, tone, length string) (string, error) {
	args := m.Called(ctx, req, resume, job, tone, length)
	return args.String(0), args.Error(1)
}

func (m *MockAIService) ChatEdit(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job, message string) (*ChatEditResult, error) {
	args := m.Called(ctx, req, resume, job, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChatEditResult), args.Error(1)
}

func (m *MockAIService) ImportResume(ctx context.Context, req AIRequest, text string) (*ImportedResume, error) {
	args := m.Called(ctx, req, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ImportedResume), args.Error(1)
}

// MockBillingGateway is a mock implementation of BillingGateway
type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) CreateCustomer(email string, userID uuid.UUID) (string, error) {
	args := m.Called(email, userID)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) CreateCheckoutSession(customerID string, userID uuid.UUID) (string, error) {
	args := m.Called(customerID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) CreatePortalSession(customerID string) (string, error) {
	args := m.Called(customerID)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) GetSubscription(id string) (*stripe.Subscription, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}

func (m *MockBillingGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(stripe.Event), args.Error(1)
}

// capturingPublisher records optimize progress events in memory.
type capturingPublisher struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (p *capturingPublisher) PublishOptimizeProgress(_ context.Context, event ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) Close() error { return nil }

// memoryIndex is an in-process ResumeIndex that ranks by insertion order.
type memoryIndex struct {
	mu      sync.Mutex
	resumes map[uuid.UUID]models.Resume
	order   []uuid.UUID
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{resumes: make(map[uuid.UUID]models.Resume)}
}

func (m *memoryIndex) InitCollection(context.Context) error { return nil }
func (m *memoryIndex) Enabled() bool                        { return true }

func (m *memoryIndex) Upsert(_ context.Context, resume *models.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[resume.ID]; !ok {
		m.order = append(m.order, resume.ID)
	}
	m.resumes[resume.ID] = *resume
	return nil
}

func (m *memoryIndex) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resumes, id)
	return nil
}

func (m *memoryIndex) Search(_ context.Context, userID uuid.UUID, _ string, limit int) ([]SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []SearchResult
	for _, id := range m.order {
		r, ok := m.resumes[id]
		if !ok || r.UserID != userID {
			continue
		}
		out = append(out, SearchResult{ResumeID: id, Score: 1 - float32(len(out))*0.1, IsBaseResume: r.IsBaseResume})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryIndex) has(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.resumes[id]
	return ok
}
