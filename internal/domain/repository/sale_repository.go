package repository

import (
	"context"
	"time"

	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
// Los rangos de fecha son inclusivos en ambos extremos.
type SaleRepository interface {
	// Create persiste la cabecera y todas sus líneas.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venta con sus líneas, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera (anulación concurrente).
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	MarkVoided(ctx context.Context, id string, at time.Time) error
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Sale, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Sale, error)
	ListByDate(ctx context.Context, date time.Time) ([]*entity.Sale, error)
	// Search busca por nombre del operador (contiene, sin mayúsculas) o prefijo del id.
	Search(ctx context.Context, criteria string) ([]*entity.Sale, error)
	// SumTotal suma el total de ventas no anuladas en el rango.
	SumTotal(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}
