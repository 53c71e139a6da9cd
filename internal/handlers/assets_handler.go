package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"linkbuilding-service/internal/clients"
	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
)

// AssetsHandler manages content asset metadata. File bytes live in the
// document service; uploads go through a presigned URL.
type AssetsHandler struct {
	assets    *repository.AssetRepository
	orders    *repository.OrderRepository
	documents *clients.DocumentClient
	logger    *logrus.Entry
}

func NewAssetsHandler(assets *repository.AssetRepository, orders *repository.OrderRepository, documents *clients.DocumentClient, logger *logrus.Logger) *AssetsHandler {
	return &AssetsHandler{
		assets:    assets,
		orders:    orders,
		documents: documents,
		logger:    logger.WithField("component", "assets-handler"),
	}
}

// PresignUpload requests an upload slot from the document service
// POST /api/v1/orders/:id/assets/presign
func (h *AssetsHandler) PresignUpload(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}
	if _, err := h.orders.GetOrderByID(tenantID, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load order")
		return
	}

	var req clients.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Size > models.AssetLimits.MaxDocumentSizeBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Asset exceeds the 10MB limit")
		return
	}

	slot, err := h.documents.PresignUpload(tenantID, req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to presign asset upload")
		respondError(c, http.StatusBadGateway, "DOCUMENT_SERVICE_ERROR", "Could not obtain an upload slot")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: slot})
}

// RegisterAsset records metadata for a file already placed in storage
// POST /api/v1/orders/:id/assets
func (h *AssetsHandler) RegisterAsset(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	var req models.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	kind := models.AssetKind(req.Kind)
	if kind != models.AssetKindDocument && kind != models.AssetKindImage {
		respondError(c, http.StatusBadRequest, "INVALID_KIND", "kind must be DOCUMENT or IMAGE")
		return
	}

	if _, err := h.orders.GetOrderByID(tenantID, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load order")
		return
	}

	count, err := h.assets.CountAssetsForOrder(tenantID, orderID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count order assets")
		return
	}
	if count >= int64(models.AssetLimits.MaxAssetsPerOrder) {
		respondError(c, http.StatusConflict, "ASSET_LIMIT_REACHED", "Order already carries the maximum number of assets")
		return
	}

	asset := &models.ContentAsset{
		OrderID:    orderID,
		Kind:       kind,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		StorageURL: req.StorageURL,
		PreviewURL: req.PreviewURL,
	}
	if userID != "" {
		asset.UploadedBy = &userID
	}

	if err := h.assets.CreateAsset(tenantID, asset); err != nil {
		h.logger.WithError(err).Error("Failed to register asset")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to register asset")
		return
	}

	c.JSON(http.StatusCreated, models.AssetResponse{Success: true, Data: asset})
}

// ListAssets lists the assets attached to an order
// GET /api/v1/orders/:id/assets
func (h *AssetsHandler) ListAssets(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	assets, err := h.assets.ListAssetsForOrder(tenantID, orderID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list assets")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list assets")
		return
	}

	c.JSON(http.StatusOK, models.AssetListResponse{Success: true, Data: assets})
}

// DeleteAsset removes asset metadata and asks the document service to drop the bytes
// DELETE /api/v1/assets/:id
func (h *AssetsHandler) DeleteAsset(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Asset ID must be a valid UUID")
		return
	}

	asset, err := h.assets.GetAssetByID(tenantID, assetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ASSET_NOT_FOUND", "Asset not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load asset")
		return
	}

	if err := h.assets.DeleteAsset(tenantID, assetID); err != nil {
		h.logger.WithError(err).Error("Failed to delete asset")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete asset")
		return
	}

	// Best effort; the document service reconciles orphans on its own schedule.
	if err := h.documents.DeleteObject(tenantID, asset.StorageURL); err != nil {
		h.logger.WithError(err).Warn("Failed to delete stored object")
	}

	message := "Asset deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
