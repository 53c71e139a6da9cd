package services

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
)

// MockSiteCreator is a mock implementation of SiteCreator
type MockSiteCreator struct {
	mock.Mock
}

var _ SiteCreator = (*MockSiteCreator)(nil)

func (m *MockSiteCreator) CreateSite(tenantID string, site *models.GuestBlogSite) error {
	args := m.Called(tenantID, site)
	return args.Error(0)
}

func newTestUploadService(sites SiteCreator, publishers PublisherResolver) *UploadService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewUploadService(NewSessionStore(nil), sites, publishers, logger)
}

const templateCSVHeader = "Site URL,Domain Authority (DA),Domain Rating (DR),Ahrefs Traffic,Spam Score (SS),Turnaround Time (TAT),Category,Status,Base Price,Country,Publisher,Site Language"

func validCSVLine(site string) string {
	return site + ",95,94,15000000,2,2-3 days,TECHNOLOGY_GADGETS,ACTIVE,500,US,,en"
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		fileName string
		want     models.ImportFormat
		wantErr  bool
	}{
		{"sites.csv", models.ImportFormatCSV, false},
		{"Sites.CSV", models.ImportFormatCSV, false},
		{"sites.xlsx", models.ImportFormatXLSX, false},
		{"sites.xls", models.ImportFormatXLS, false},
		{"sites.txt", "", true},
		{"sites", "", true},
	}
	for _, tt := range tests {
		format, err := DetectFormat(tt.fileName)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.fileName)
		} else {
			assert.NoError(t, err, tt.fileName)
			assert.Equal(t, tt.want, format)
		}
	}
}

func TestCreateSessionParsesAndAutoMaps(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" +
		validCSVLine("https://site-1.com") + "\n" +
		validCSVLine("https://site-2.com") + "\n"

	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))

	assert.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.ImportFormatCSV, session.Format)
	assert.Len(t, session.Rows, 2)
	assert.Equal(t, 1, session.Rows[0].RowIndex)
	assert.Equal(t, 2, session.Rows[1].RowIndex)
	assert.Len(t, session.Mapping, 12)
	assert.Empty(t, ValidateMapping(session.Mapping))
}

func TestCreateSessionSkipsBlankLines(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" +
		validCSVLine("https://site-1.com") + "\n" +
		",,,,,,,,,,,\n" +
		validCSVLine("https://site-2.com") + "\n" +
		"\n" +
		validCSVLine("https://site-3.com") + "\n"

	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))

	assert.NoError(t, err)
	// Blank lines are excluded entirely; indexes stay contiguous over real rows.
	assert.Len(t, session.Rows, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{
		session.Rows[0].RowIndex,
		session.Rows[1].RowIndex,
		session.Rows[2].RowIndex,
	})
	assert.Equal(t, "https://site-3.com", session.Rows[2].Values["Site URL"])
}

func TestCreateSessionRejectsUnsupportedExtension(t *testing.T) {
	svc := newTestUploadService(nil, nil)

	_, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.pdf", strings.NewReader("x"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSetMappingRejectsViolationsAndKeepsPrevious(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" + validCSVLine("https://site-1.com") + "\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)
	original := session.Mapping

	// Double-claim one column.
	bad := []models.ColumnMapping{
		{CSVColumn: "Site URL", GuestBlogSiteField: models.FieldSiteURL},
		{CSVColumn: "Site URL", GuestBlogSiteField: models.FieldCountry},
	}
	_, violations, err := svc.SetMapping(context.Background(), "tenant-1", session.ID, bad)
	assert.NoError(t, err)
	assert.NotEmpty(t, violations)

	reloaded, err := svc.GetSession(context.Background(), "tenant-1", session.ID)
	assert.NoError(t, err)
	assert.Equal(t, original, reloaded.Mapping)
}

func TestSetMappingRejectsClearedRequiredField(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" + validCSVLine("https://site-1.com") + "\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)

	// Clear the base price column; the violation must surface at the
	// mapping stage, not later at preview.
	pairs := fullValidMapping()
	for i := range pairs {
		if pairs[i].GuestBlogSiteField == models.FieldBasePrice {
			pairs[i].CSVColumn = ""
		}
	}
	_, violations, err := svc.SetMapping(context.Background(), "tenant-1", session.ID, pairs)

	assert.NoError(t, err)
	assert.Len(t, violations, 1)
	assert.Equal(t, models.FieldBasePrice, violations[0].Field)
	assert.Equal(t, "Required field must be mapped", violations[0].Message)
}

func TestSetMappingAcceptsValidMapping(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" + validCSVLine("https://site-1.com") + "\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)

	updated, violations, err := svc.SetMapping(context.Background(), "tenant-1", session.ID, fullValidMapping())
	assert.NoError(t, err)
	assert.Empty(t, violations)
	assert.Len(t, updated.Mapping, 12)
}

func TestPreviewAppliesClientMarkup(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" + validCSVLine("https://site-1.com") + "\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)

	rows, violations, err := svc.Preview(context.Background(), "tenant-1", session.ID, 40)
	assert.NoError(t, err)
	assert.Empty(t, violations)
	assert.Len(t, rows, 1)
	assert.InDelta(t, 700.0, rows[0].DisplayedPrice, 1e-9)
}

func TestPreviewUnknownSession(t *testing.T) {
	svc := newTestUploadService(nil, nil)

	_, _, err := svc.Preview(context.Background(), "tenant-1", "no-such-session", 25)

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitSelectiveAndPartialSuccess(t *testing.T) {
	sites := new(MockSiteCreator)
	svc := newTestUploadService(sites, nil)

	csv := templateCSVHeader + "\n" +
		validCSVLine("https://site-1.com") + "\n" +
		"broken,95,94,1000,,2-3 days,NOT_A_CATEGORY,ACTIVE,0,US,,en\n" +
		validCSVLine("https://site-3.com") + "\n" +
		validCSVLine("https://site-4.com") + "\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)

	sites.On("CreateSite", "tenant-1", mock.MatchedBy(func(s *models.GuestBlogSite) bool {
		return s.SiteURL == "https://site-1.com"
	})).Return(nil)
	sites.On("CreateSite", "tenant-1", mock.MatchedBy(func(s *models.GuestBlogSite) bool {
		return s.SiteURL == "https://site-3.com"
	})).Return(errDuplicate{})

	// Rows selected: valid row 1, invalid row 2 (skipped, never attempted),
	// row 3 which fails at the database, and row 4 which is not selected.
	report, err := svc.Commit(context.Background(), "tenant-1", session.ID, []int{1, 2, 3}, 25, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Saved)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].RowIndex)
	sites.AssertNumberOfCalls(t, "CreateSite", 2)
	sites.AssertExpectations(t)

	// The session is torn down after commit regardless of outcome.
	_, err = svc.GetSession(context.Background(), "tenant-1", session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type errDuplicate struct{}

func (errDuplicate) Error() string { return "duplicate key value violates unique constraint" }

func TestCommitResolvesPublisherAtCommitTime(t *testing.T) {
	sites := new(MockSiteCreator)
	resolver := new(MockPublisherResolver)
	svc := newTestUploadService(sites, resolver)

	csv := templateCSVHeader + "\n" +
		"https://site-1.com,95,94,1000,,2-3 days,TECHNOLOGY_GADGETS,ACTIVE,500,US,Gone Publisher,en\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)

	// The publisher was deleted between preview and commit.
	resolver.On("ResolvePublisher", "tenant-1", "Gone Publisher").
		Return(nil, repository.ErrNotFound)

	report, err := svc.Commit(context.Background(), "tenant-1", session.ID, []int{1}, 25, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Saved)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, "PUBLISHER_NOT_FOUND", report.Errors[0].Code)
	sites.AssertNotCalled(t, "CreateSite")
	resolver.AssertExpectations(t)
}

func TestDiscardRemovesSession(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	csv := templateCSVHeader + "\n" + validCSVLine("https://site-1.com") + "\n"
	session, err := svc.CreateSession(context.Background(), "tenant-1", "user-1", "sites.csv", strings.NewReader(csv))
	assert.NoError(t, err)

	assert.NoError(t, svc.Discard(context.Background(), "tenant-1", session.ID))

	_, err = svc.GetSession(context.Background(), "tenant-1", session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDiscardUnknownSessionIsHarmless(t *testing.T) {
	svc := newTestUploadService(nil, nil)
	assert.NoError(t, svc.Discard(context.Background(), "tenant-1", "no-such-session"))
}

func TestCleanHeadersStripsRequiredMarker(t *testing.T) {
	cleaned := cleanHeaders([]string{" Site URL * ", "Base Price *", "Country"})
	assert.Equal(t, []string{"Site URL", "Base Price", "Country"}, cleaned)
}
