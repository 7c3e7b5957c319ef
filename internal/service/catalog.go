package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, bool)
	Set(ctx context.Context, p *models.Product)
	Invalidate(ctx context.Context, id uuid.UUID)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Cache  ProductCache
	Events events.Publisher
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductQuery) (*transport.ProductPage, error) {
	if (q.MinPrice != nil && *q.MinPrice < 0) || (q.MaxPrice != nil && *q.MaxPrice < 0) {
		return nil, newError(ErrValidation, "price bounds must be >= 0")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, newError(ErrValidation, "minPrice must not exceed maxPrice")
	}
	q.Query = strings.TrimSpace(q.Query)
	q.Category = strings.TrimSpace(q.Category)

	offset, limit, page := util.Calculate(q.Page, q.Limit)

	var (
		total int64
		items []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.Repo.CountProducts(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.Repo.FindProducts(gctx, q, offset, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.FromContext(ctx).Error("list_products_error", "status", 500, "reason", "cannot query catalog", "error", err)
		return nil, err
	}

	return &transport.ProductPage{
		Items: items,
		Total: total,
		Page:  page,
		Pages: util.TotalPages(total, limit),
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.Cache != nil {
		if p, ok := s.Cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Product not found")
		}
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, p)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	if err := transport.Validate(req); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	prod := &models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Category:       strings.TrimSpace(req.Category),
		Subcategory:    strings.TrimSpace(req.Subcategory),
		Price:          req.Price,
		Images:         nonNil(req.Images),
		Specifications: req.Specifications,
		Stock:          req.Stock,
		SKU:            req.SKU,
		IsActive:       true,
		Tags:           nonNil(req.Tags),
	}
	if req.DiscountPrice != nil && *req.DiscountPrice > 0 {
		prod.DiscountPrice = req.DiscountPrice
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}

	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, newError(ErrConflict, "SKU already exists")
		}
		l.Error("create_product_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return nil, err
	}

	s.emit(ctx, "product_created", created)
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	for _, f := range []*string{req.Name, req.SKU, req.Category, req.Subcategory} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := transport.Validate(req); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	prod, err := s.Repo.PatchProduct(ctx, req, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, newError(ErrNotFound, "Product not found")
		case errors.Is(err, repo.ErrDuplicate):
			return nil, newError(ErrConflict, "SKU already exists")
		}
		l.Error("update_product_error", "status", 500, "reason", "cannot save product", "error", err)
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
	s.emit(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, "Product not found")
		}
		logging.FromContext(ctx).Error("delete_product_error", "status", 500, "reason", "cannot delete product", "error", err)
		return err
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
	s.emit(ctx, "product_deleted", &models.Product{ID: id})
	return nil
}

// SeedCatalog fills an empty catalog with the sample products. It never
// touches a catalog that already has rows.
func (s *CatalogService) SeedCatalog(ctx context.Context) (int, error) {
	n, err := s.Repo.SeedProducts(ctx, seed.Products())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.FromContext(ctx).Info("seed_catalog_success", "inserted", n)
	}
	return n, nil
}

func (s *CatalogService) emit(ctx context.Context, typ string, p *models.Product) {
	events.Emit(ctx, s.Events, events.TopicProducts, p.ID.String(), events.ProductEvent{
		Type:      typ,
		ProductID: p.ID.String(),
		Name:      p.Name,
		SKU:       p.SKU,
		At:        time.Now().UTC(),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
