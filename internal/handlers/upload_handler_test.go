package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/services"
)

// MockSiteCreator is a mock implementation of services.SiteCreator
type MockSiteCreator struct {
	mock.Mock
}

func (m *MockSiteCreator) CreateSite(tenantID string, site *models.GuestBlogSite) error {
	args := m.Called(tenantID, site)
	return args.Error(0)
}

func newUploadTestRouter(sites services.SiteCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	uploads := services.NewUploadService(services.NewSessionStore(nil), sites, nil, logger)
	handler := NewUploadHandler(uploads, nil, nil, logger)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant_id", "tenant-1")
		c.Set("user_id", "user-1")
		c.Next()
	})

	imports := router.Group("/api/v1/sites/import")
	{
		imports.GET("/template", handler.GetImportTemplate)
		imports.POST("/upload", handler.UploadFile)
		imports.PUT("/:sessionId/mapping", handler.SetMapping)
		imports.GET("/:sessionId/preview", handler.Preview)
		imports.POST("/:sessionId/commit", handler.Commit)
		imports.DELETE("/:sessionId", handler.Discard)
	}
	return router
}

func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

const testCSV = `Site URL,Domain Authority (DA),Domain Rating (DR),Ahrefs Traffic,Spam Score (SS),Turnaround Time (TAT),Category,Status,Base Price,Country,Publisher,Site Language
https://site-1.com,95,94,15000000,2,2-3 days,TECHNOLOGY_GADGETS,ACTIVE,500,US,,en
https://site-2.com,60,55,40000,,1 week,BUSINESS_FINANCE,,200,UK,,en
`

func uploadTestFile(t *testing.T, router *gin.Engine, content string) models.UploadSessionResponse {
	body, contentType := multipartUpload(t, "sites.csv", content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/import/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp models.UploadSessionResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetImportTemplateJSON(t *testing.T) {
	router := newUploadTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/import/template", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool                 `json:"success"`
		Fields  []models.TargetField `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Fields, 12)
}

func TestGetImportTemplateCSV(t *testing.T) {
	router := newUploadTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites/import/template?format=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Site URL *")
	assert.Contains(t, rec.Body.String(), "Spam Score (SS)")
}

func TestUploadFileCreatesSession(t *testing.T) {
	router := newUploadTestRouter(nil)

	resp := uploadTestFile(t, router, testCSV)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 2, resp.RowCount)
	assert.Len(t, resp.Mapping, 12)
}

func TestUploadFileRejectsUnsupportedFormat(t *testing.T) {
	router := newUploadTestRouter(nil)

	body, contentType := multipartUpload(t, "sites.pdf", "not a spreadsheet")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sites/import/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FORMAT", resp.Error.Code)
}

func TestSetMappingViolationsReturned(t *testing.T) {
	router := newUploadTestRouter(nil)
	session := uploadTestFile(t, router, testCSV)

	payload, _ := json.Marshal(models.SetMappingRequest{
		Mapping: []models.ColumnMapping{
			{CSVColumn: "Site URL", GuestBlogSiteField: models.FieldSiteURL},
			{CSVColumn: "Site URL", GuestBlogSiteField: models.FieldCountry},
		},
	})
	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/api/v1/sites/import/%s/mapping", session.SessionID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp models.MappingErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Violations)
}

func TestPreviewDefaultMarkup(t *testing.T) {
	router := newUploadTestRouter(nil)
	session := uploadTestFile(t, router, testCSV)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/sites/import/%s/preview", session.SessionID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.PreviewResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, 2, resp.ValidCount)
	assert.Equal(t, models.DefaultMarkupPercent, resp.MarkupPercent)
	assert.InDelta(t, 625.0, resp.Rows[0].DisplayedPrice, 1e-9)
	assert.InDelta(t, 250.0, resp.Rows[1].DisplayedPrice, 1e-9)
}

func TestCommitSelectedRows(t *testing.T) {
	sites := new(MockSiteCreator)
	sites.On("CreateSite", "tenant-1", mock.Anything).Return(nil)
	router := newUploadTestRouter(sites)
	session := uploadTestFile(t, router, testCSV)

	payload, _ := json.Marshal(models.CommitRequest{SelectedRows: []int{1}})
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/sites/import/%s/commit", session.SessionID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.CommitResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Saved)
	assert.Empty(t, resp.Data.Errors)
	sites.AssertNumberOfCalls(t, "CreateSite", 1)

	// Committed sessions are gone; a second preview is a 404.
	req = httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/sites/import/%s/preview", session.SessionID), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiscardSession(t *testing.T) {
	router := newUploadTestRouter(nil)
	session := uploadTestFile(t, router, testCSV)

	req := httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/v1/sites/import/%s", session.SessionID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/sites/import/%s/preview", session.SessionID), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
