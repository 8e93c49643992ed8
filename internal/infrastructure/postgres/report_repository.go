package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregaciones de solo lectura. Todas las consultas filtran NOT s.voided.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// TopSellingProducts por cantidad vendida; limit <= 0 devuelve todos.
func (r *ReportRepo) TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]repository.ProductSales, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, SUM(l.quantity), SUM(l.subtotal)
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		JOIN products p ON p.id = l.product_id
		WHERE NOT s.voided AND s.sale_date BETWEEN $1::date AND $2::date
		GROUP BY p.id, p.name
		ORDER BY SUM(l.quantity) DESC, p.name
		LIMIT $3`, start, end, lim)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return collect(rows, func(row pgx.Row) (repository.ProductSales, error) {
		var ps repository.ProductSales
		err := row.Scan(&ps.ProductID, &ps.ProductName, &ps.Quantity, &ps.Revenue)
		return ps, err
	})
}

func (r *ReportRepo) SalesByUser(ctx context.Context, start, end time.Time) ([]repository.UserSales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT u.id, u.name, COUNT(*), SUM(s.total)
		FROM sales s JOIN users u ON u.id = s.user_id
		WHERE NOT s.voided AND s.sale_date BETWEEN $1::date AND $2::date
		GROUP BY u.id, u.name
		ORDER BY SUM(s.total) DESC, u.name`, start, end)
	if err != nil {
		return nil, fmt.Errorf("sales by user: %w", err)
	}
	return collect(rows, func(row pgx.Row) (repository.UserSales, error) {
		var us repository.UserSales
		err := row.Scan(&us.UserID, &us.UserName, &us.Sales, &us.Total)
		return us, err
	})
}

// SalesByCategory suma subtotales de línea; los productos sin categoría van al grupo UncategorizedName.
func (r *ReportRepo) SalesByCategory(ctx context.Context, start, end time.Time) ([]repository.CategorySales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(c.id, ''), COALESCE(c.name, $3), SUM(l.subtotal)
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		JOIN products p ON p.id = l.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE NOT s.voided AND s.sale_date BETWEEN $1::date AND $2::date
		GROUP BY c.id, c.name
		ORDER BY SUM(l.subtotal) DESC, 2`, start, end, repository.UncategorizedName)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}
	return collect(rows, func(row pgx.Row) (repository.CategorySales, error) {
		var cs repository.CategorySales
		err := row.Scan(&cs.CategoryID, &cs.CategoryName, &cs.Total)
		return cs, err
	})
}

func (r *ReportRepo) DailySales(ctx context.Context, start, end time.Time) ([]repository.PeriodSales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.sale_date, SUM(s.total)
		FROM sales s
		WHERE NOT s.voided AND s.sale_date BETWEEN $1::date AND $2::date
		GROUP BY s.sale_date
		ORDER BY s.sale_date`, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	return collect(rows, func(row pgx.Row) (repository.PeriodSales, error) {
		var ps repository.PeriodSales
		err := row.Scan(&ps.Date, &ps.Total)
		return ps, err
	})
}

func (r *ReportRepo) MonthlySales(ctx context.Context, year int) ([]repository.PeriodSales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT EXTRACT(MONTH FROM s.sale_date)::int, SUM(s.total)
		FROM sales s
		WHERE NOT s.voided AND EXTRACT(YEAR FROM s.sale_date)::int = $1
		GROUP BY 1
		ORDER BY 1`, year)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	return collect(rows, func(row pgx.Row) (repository.PeriodSales, error) {
		var ps repository.PeriodSales
		err := row.Scan(&ps.Month, &ps.Total)
		return ps, err
	})
}

// collect recorre rows aplicando scan y siempre las cierra.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
