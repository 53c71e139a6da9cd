package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linkbuilding-service/internal/models"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// CreateAsset records metadata for a file already placed in external storage.
func (r *AssetRepository) CreateAsset(tenantID string, asset *models.ContentAsset) error {
	asset.TenantID = tenantID
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = time.Now()
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	return r.db.Create(asset).Error
}

// GetAssetByID retrieves an asset by ID.
func (r *AssetRepository) GetAssetByID(tenantID string, assetID uuid.UUID) (*models.ContentAsset, error) {
	var asset models.ContentAsset
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, assetID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListAssetsForOrder retrieves the assets attached to an order.
func (r *AssetRepository) ListAssetsForOrder(tenantID string, orderID uuid.UUID) ([]models.ContentAsset, error) {
	var assets []models.ContentAsset
	err := r.db.Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at DESC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// CountAssetsForOrder returns how many assets an order carries, enforcing the
// per-order ceiling before registering new ones.
func (r *AssetRepository) CountAssetsForOrder(tenantID string, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.ContentAsset{}).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Count(&count).Error
	return count, err
}

// DeleteAsset soft deletes an asset record. The stored bytes are removed by the
// document service through its own retention job.
func (r *AssetRepository) DeleteAsset(tenantID string, assetID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, assetID).
		Delete(&models.ContentAsset{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
