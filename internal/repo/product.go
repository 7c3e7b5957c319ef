package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func productFilter(q transport.ProductQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !q.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if q.Query != "" {
			db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(q.Query))
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if q.MinPrice != nil {
			db = db.Where("price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("price <= ?", *q.MaxPrice)
		}
		return db
	}
}

func (r *GormRepo) CountProducts(ctx context.Context, q transport.ProductQuery) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(productFilter(q)).Count(&total).Error
	return total, err
}

func (r *GormRepo) FindProducts(ctx context.Context, q transport.ProductQuery, offset, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(productFilter(q)).
		Order("created_at DESC").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", keys).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, translate(err)
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}
	if req.Subcategory != nil {
		prod.Subcategory = *req.Subcategory
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		if *req.DiscountPrice == 0 {
			prod.DiscountPrice = nil
		} else {
			prod.DiscountPrice = req.DiscountPrice
		}
	}
	if req.Images != nil {
		prod.Images = *req.Images
	}
	if req.Specifications != nil {
		prod.Specifications = req.Specifications
	}
	if req.Stock != nil {
		prod.Stock = *req.Stock
	}
	if req.SKU != nil {
		prod.SKU = *req.SKU
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		prod.Tags = *req.Tags
	}

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, translate(err)
	}

	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SeedProducts inserts products only when the catalog is empty and reports
// how many rows were written.
func (r *GormRepo) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	inserted := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&models.Product{}).Count(&total).Error; err != nil {
			return err
		}
		if total > 0 || len(products) == 0 {
			return nil
		}
		if err := tx.Create(&products).Error; err != nil {
			return translate(err)
		}
		inserted = len(products)
		return nil
	})
	return inserted, err
}
