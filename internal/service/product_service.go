package service

import (
	"context"
	"errors"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService is the thin catalog surface the sale engine reads from.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, includeInactive bool) ([]model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	if req.SalePrice.IsNegative() || req.CostPrice.IsNegative() {
		return nil, apierror.Validation("prices cannot be negative")
	}
	unit := req.Unit
	if unit == "" {
		unit = "UN"
	}
	p := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Sku:         req.Sku,
		Barcode:     req.Barcode,
		Unit:        unit,
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("a product with this barcode already exists")
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, includeInactive bool) ([]model.Product, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Sku != nil {
		p.Sku = req.Sku
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.Unit != "" {
		p.Unit = req.Unit
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, apierror.Validation("prices cannot be negative")
		}
		p.CostPrice = *req.CostPrice
	}
	if req.SalePrice != nil {
		if req.SalePrice.IsNegative() {
			return nil, apierror.Validation("prices cannot be negative")
		}
		p.SalePrice = *req.SalePrice
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("a product with this barcode already exists")
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}
