package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

type stubParser struct {
	text string
	err  error
}

func (p stubParser) ExtractText(string, []byte) (string, error) { return p.text, p.err }

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	_ = filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Jane Doe\nEngineer", CleanText("  \n Jane Doe  \n\n\t\n Engineer \n"))
	assert.Equal(t, "", CleanText(" \n \n"))
}

func TestStripXMLTags(t *testing.T) {
	xml := `<w:body><w:p><w:r><w:t>Jane &amp; Co</w:t></w:r></w:p><w:p><w:r><w:t>Go</w:t></w:r></w:p></w:body>`
	assert.Equal(t, "Jane & Co\nGo\n", stripXMLTags(xml))
}

func TestDocumentParser_ExtractText(t *testing.T) {
	parser := NewDocumentParser()

	text, err := parser.ExtractText("text/plain", []byte("  Jane Doe \n\n Go developer  "))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer", text)

	_, err = parser.ExtractText("image/png", []byte("x"))
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = parser.ExtractText("text/plain", []byte("   \n  "))
	assert.ErrorContains(t, err, "no text content")

	_, err = parser.ExtractText(MimePDF, []byte("not a pdf"))
	assert.Error(t, err)
}

func TestLocalStorage_SaveUpload(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	storage, err := NewStorageService(ctx, config.StorageConfig{Driver: "local", UploadPath: root})
	require.NoError(t, err)

	stored, err := storage.SaveUpload(ctx, newFileHeader(t, "Resume.PDF", []byte("%PDF-1.4")), "imports/u1")
	require.NoError(t, err)
	assert.Equal(t, MimePDF, stored.ContentType)
	assert.Equal(t, "Resume.PDF", stored.OriginalName)
	assert.Regexp(t, `^imports/u1/[0-9a-f-]{36}\.pdf$`, stored.Key)

	data, err := storage.Get(ctx, stored.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, storage.Delete(ctx, stored.Key))
	_, err = storage.Get(ctx, stored.Key)
	assert.Error(t, err)

	_, err = storage.SaveUpload(ctx, newFileHeader(t, "notes.txt", []byte("hi")), "imports/u1")
	assert.True(t, apperrors.IsValidation(err))
}

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	root := t.TempDir()
	storage, err := NewStorageService(ctx, config.StorageConfig{Driver: "local", UploadPath: root})
	require.NoError(t, err)

	jobs := repositories.NewJobRepository(db)
	resumes := NewResumeService(repositories.NewResumeRepository(db), jobs, repositories.NewProfileRepository(db), NewNoopIndex(), logger.Discard())
	plans := NewPlanService(repositories.NewSubscriptionRepository(db))
	userID := uuid.New()

	t.Run("creates a base resume from the structured text", func(t *testing.T) {
		ai := new(MockAIService)
		ai.On("ImportResume", mock.Anything, AIRequest{Plan: models.PlanFree}, "Jane Doe\nGo developer").Return(&ImportedResume{
			Contact: models.ContactInfo{FirstName: "Jane", LastName: "Doe"},
			Content: models.ResumeContent{
				TargetRole: "Go Developer",
				Skills:     []models.Skill{{Category: "Languages", Items: []string{"Go"}}},
			},
		}, nil)

		svc := NewImportService(storage, stubParser{text: "Jane Doe\nGo developer"}, ai, plans, resumes, 1<<20, logger.Discard())
		resume, err := svc.Import(ctx, userID, newFileHeader(t, "jane_cv.docx", []byte("docx bytes")), "", nil)
		require.NoError(t, err)

		assert.Equal(t, "jane_cv", resume.Name)
		assert.Equal(t, "Jane", resume.FirstName)
		assert.Equal(t, "Go Developer", resume.TargetRole)
		assert.True(t, resume.IsBaseResume)
		assert.Equal(t, 1, countFiles(t, root), "the upload is kept")
		ai.AssertExpectations(t)
	})

	t.Run("unreadable upload is removed", func(t *testing.T) {
		before := countFiles(t, root)
		svc := NewImportService(storage, stubParser{err: errors.New("failed to open PDF")}, new(MockAIService), plans, resumes, 1<<20, logger.Discard())

		_, err := svc.Import(ctx, userID, newFileHeader(t, "broken.pdf", []byte("junk")), "Broken", nil)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, before, countFiles(t, root))
	})

	t.Run("upload without text is removed", func(t *testing.T) {
		before := countFiles(t, root)
		ai := new(MockAIService)
		svc := NewImportService(storage, stubParser{text: " \n\t "}, ai, plans, resumes, 1<<20, logger.Discard())

		_, err := svc.Import(ctx, userID, newFileHeader(t, "scanned.pdf", []byte("%PDF-1.4")), "", nil)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, before, countFiles(t, root))
		ai.AssertNotCalled(t, "ImportResume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversized file is rejected before storing", func(t *testing.T) {
		svc := NewImportService(storage, stubParser{}, new(MockAIService), plans, resumes, 4, logger.Discard())
		_, err := svc.Import(ctx, userID, newFileHeader(t, "big.pdf", []byte("more than four bytes")), "", nil)
		assert.True(t, apperrors.IsValidation(err))
	})
}
