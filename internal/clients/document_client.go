package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DocumentClient handles communication with the document-service, which owns
// the actual file bytes for content assets. This service stores metadata only.
type DocumentClient struct {
	baseURL    string
	httpClient *http.Client
}

// PresignRequest asks the document service for an upload slot
type PresignRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// PresignedUpload is the slot returned by the document service. The admin UI
// PUTs the file to UploadURL and then registers StorageURL with this service.
type PresignedUpload struct {
	UploadURL  string `json:"uploadUrl"`
	StorageURL string `json:"storageUrl"`
	ExpiresAt  string `json:"expiresAt"`
}

type presignResponse struct {
	Success bool             `json:"success"`
	Data    *PresignedUpload `json:"data,omitempty"`
	Message *string          `json:"message,omitempty"`
}

// NewDocumentClient creates a new document client
func NewDocumentClient() *DocumentClient {
	baseURL := os.Getenv("DOCUMENT_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://document-service:8090"
	}

	return &DocumentClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PresignUpload requests a presigned upload slot for a content asset.
func (c *DocumentClient) PresignUpload(tenantID string, req PresignRequest) (*PresignedUpload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/documents/presign", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("document service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("document service returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed presignResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode document service response: %w", err)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("document service returned no upload slot")
	}
	return parsed.Data, nil
}

// DeleteObject asks the document service to remove a stored file. Failures are
// returned to the caller; asset metadata removal does not depend on this.
func (c *DocumentClient) DeleteObject(tenantID, storageURL string) error {
	body, err := json.Marshal(map[string]string{"storageUrl": storageURL})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/documents/delete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("document service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("document service returned %d: %s", resp.StatusCode, string(data))
	}
	return nil
}
