package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	pricing "github.com/jhoicas/POS-api/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. Stock se maneja vía movimientos.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner inventory.TxRunner, repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, categoryRepo: categoryRepo}
}

// Create crea un producto activo. El stock inicial entra al libro como movimiento ENTRY
// en la misma transacción que el alta.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price.IsNegative() || in.Stock.IsNegative() || in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := validDiscounts(in.Discounts); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:         uuid.New().String(),
		Name:       name,
		Price:      in.Price,
		Stock:      decimal.Zero,
		MinStock:   in.MinStock,
		Active:     true,
		CategoryID: in.CategoryID,
		Discounts:  in.Discounts,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if !in.Stock.IsPositive() {
			return nil
		}
		stock, _, err := inventory.NewLedger(productRepo, movRepo, nil).
			ApplyDelta(ctx, product.ID, in.Stock, entity.MovementEntry, inventory.ReasonInitialStock, "")
		product.Stock = stock
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.MinStock = *in.MinStock
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Discounts != nil {
		if err := validDiscounts(in.Discounts); err != nil {
			return nil, err
		}
		product.Discounts = in.Discounts
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: ToProductResponses(list),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListByCategory productos de una categoría existente.
func (uc *ProductUseCase) ListByCategory(ctx context.Context, categoryID string) ([]dto.ProductResponse, error) {
	if categoryID == "" {
		return nil, domain.ErrCategoryNotFound
	}
	if err := uc.checkCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(list), nil
}

// Search busca por nombre (contiene, sin distinguir mayúsculas).
func (uc *ProductUseCase) Search(ctx context.Context, criteria string) ([]dto.ProductResponse, error) {
	criteria = strings.TrimSpace(criteria)
	if criteria == "" {
		return nil, fmt.Errorf("%w: criterio vacío", domain.ErrInvalidInput)
	}
	list, err := uc.repo.SearchByName(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(list), nil
}

// CheckAvailability indica si el stock actual cubre la cantidad pedida.
func (uc *ProductUseCase) CheckAvailability(ctx context.Context, id string, qty decimal.Decimal) (*dto.AvailabilityResponse, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		ProductID: product.ID,
		Quantity:  qty,
		Available: product.Active && product.HasStockFor(qty),
	}, nil
}

// Delete elimina un producto. Si figura en ventas devuelve ErrConflict (desactivarlo en su lugar).
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	c, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func validDiscounts(discounts []decimal.Decimal) error {
	for _, d := range discounts {
		if !pricing.ValidDiscount(d) {
			return fmt.Errorf("%w: descuento fuera de 0-100", domain.ErrInvalidInput)
		}
	}
	return nil
}

// ToProductResponse mapea la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	discounts := p.Discounts
	if discounts == nil {
		discounts = []decimal.Decimal{}
	}
	return &dto.ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		MinStock:   p.MinStock,
		Active:     p.Active,
		CategoryID: p.CategoryID,
		Discounts:  discounts,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToProductResponses versión para listas; nunca devuelve nil.
func ToProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return items
}
