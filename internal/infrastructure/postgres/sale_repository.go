package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo cabecera y líneas de venta (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `s.id, s.user_id, s.client_id, s.sale_date, s.sale_time, s.total, s.tax_inclusive, s.branch, s.voided, s.voided_at, s.created_at`

// Create persiste la cabecera y sus líneas; usar dentro de RunSale para que sea atómico.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, user_id, client_id, sale_date, sale_time, total, tax_inclusive, branch, voided, voided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.UserID, nullIfEmpty(sale.ClientID), sale.Date, sale.Time, sale.Total,
		sale.TaxInclusive, sale.Branch, sale.Voided, sale.VoidedAt, sale.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, l := range sale.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_lines (id, sale_id, position, product_id, quantity, discount_percent, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, sale.ID, l.Position, l.ProductID, l.Quantity, l.DiscountPercent, l.UnitPrice, l.Subtotal,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la venta con sus líneas, o (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = $1`, id)
}

// GetForUpdate bloquea la cabecera para que dos anulaciones no corran a la vez.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// MarkVoided pasa la venta a anulada. Solo actualiza si sigue activa.
func (r *SaleRepo) MarkVoided(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET voided = TRUE, voided_at = $2 WHERE id = $1 AND NOT voided`, id, at)
	if err != nil {
		return fmt.Errorf("void sale: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var voided bool
	err = r.q.QueryRow(ctx, `SELECT voided FROM sales WHERE id = $1`, id).Scan(&voided)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSaleNotFound
	}
	if err != nil {
		return fmt.Errorf("void sale: %w", err)
	}
	return domain.ErrAlreadyVoided
}

func (r *SaleRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Sale, error) {
	return r.list(ctx,
		`SELECT `+saleColumns+` FROM sales s WHERE s.sale_date BETWEEN $1::date AND $2::date ORDER BY s.created_at, s.id`,
		start, end,
	)
}

func (r *SaleRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Sale, error) {
	return r.list(ctx,
		`SELECT `+saleColumns+` FROM sales s WHERE s.user_id = $1 ORDER BY s.created_at, s.id`,
		userID,
	)
}

func (r *SaleRepo) ListByDate(ctx context.Context, date time.Time) ([]*entity.Sale, error) {
	return r.list(ctx,
		`SELECT `+saleColumns+` FROM sales s WHERE s.sale_date = $1::date ORDER BY s.created_at, s.id`,
		date,
	)
}

// Search por prefijo del id o nombre del operador (contiene, sin mayúsculas).
func (r *SaleRepo) Search(ctx context.Context, criteria string) ([]*entity.Sale, error) {
	needle := strings.ToLower(strings.TrimSpace(criteria))
	return r.list(ctx, `
		SELECT `+saleColumns+` FROM sales s JOIN users u ON u.id = s.user_id
		WHERE starts_with(lower(s.id), $1) OR strpos(lower(u.name), $1) > 0
		ORDER BY s.created_at, s.id`,
		needle,
	)
}

// SumTotal suma las ventas no anuladas del rango inclusivo.
func (r *SaleRepo) SumTotal(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM sales WHERE NOT voided AND sale_date BETWEEN $1::date AND $2::date`,
		start, end,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum sales: %w", err)
	}
	return total, nil
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadLines trae en una sola consulta las líneas de todas las ventas, en orden de captura.
func (r *SaleRepo) loadLines(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sales))
	byID := make(map[string]*entity.Sale, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, position, product_id, quantity, discount_percent, unit_price, subtotal
		FROM sale_lines WHERE sale_id = ANY($1) ORDER BY sale_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.Position, &l.ProductID, &l.Quantity,
			&l.DiscountPercent, &l.UnitPrice, &l.Subtotal); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s := byID[l.SaleID]
		s.Lines = append(s.Lines, l)
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s        entity.Sale
		clientID *string
	)
	if err := row.Scan(&s.ID, &s.UserID, &clientID, &s.Date, &s.Time, &s.Total, &s.TaxInclusive,
		&s.Branch, &s.Voided, &s.VoidedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ClientID = deref(clientID)
	return &s, nil
}
