package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregaciones sobre el estado en memoria. Ignora ventas anuladas.
type ReportRepo struct{ b binding }

func NewReportRepository(s *Store) *ReportRepo { return &ReportRepo{b: s.bind()} }

func (r *ReportRepo) TopSellingProducts(_ context.Context, start, end time.Time, limit int) ([]repository.ProductSales, error) {
	acc := map[string]*repository.ProductSales{}
	err := r.eachLine(start, end, func(st *state, _ entity.Sale, l entity.SaleLine) {
		ps, ok := acc[l.ProductID]
		if !ok {
			ps = &repository.ProductSales{ProductID: l.ProductID, ProductName: st.products[l.ProductID].Name}
			acc[l.ProductID] = ps
		}
		ps.Quantity = ps.Quantity.Add(l.Quantity)
		ps.Revenue = ps.Revenue.Add(l.Subtotal)
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.ProductSales, 0, len(acc))
	for _, ps := range acc {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Quantity.Cmp(out[j].Quantity); c != 0 {
			return c > 0
		}
		return out[i].ProductName < out[j].ProductName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReportRepo) SalesByUser(_ context.Context, start, end time.Time) ([]repository.UserSales, error) {
	acc := map[string]*repository.UserSales{}
	err := r.eachSale(start, end, func(st *state, s entity.Sale) {
		us, ok := acc[s.UserID]
		if !ok {
			us = &repository.UserSales{UserID: s.UserID, UserName: st.users[s.UserID].Name}
			acc[s.UserID] = us
		}
		us.Sales++
		us.Total = us.Total.Add(s.Total)
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.UserSales, 0, len(acc))
	for _, us := range acc {
		out = append(out, *us)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].UserName < out[j].UserName
	})
	return out, nil
}

func (r *ReportRepo) SalesByCategory(_ context.Context, start, end time.Time) ([]repository.CategorySales, error) {
	acc := map[string]*repository.CategorySales{}
	err := r.eachLine(start, end, func(st *state, _ entity.Sale, l entity.SaleLine) {
		catID := st.products[l.ProductID].CategoryID
		cs, ok := acc[catID]
		if !ok {
			name := repository.UncategorizedName
			if c, found := st.categories[catID]; found {
				name = c.Name
			}
			cs = &repository.CategorySales{CategoryID: catID, CategoryName: name}
			acc[catID] = cs
		}
		cs.Total = cs.Total.Add(l.Subtotal)
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.CategorySales, 0, len(acc))
	for _, cs := range acc {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func (r *ReportRepo) DailySales(_ context.Context, start, end time.Time) ([]repository.PeriodSales, error) {
	acc := map[int]*repository.PeriodSales{}
	err := r.eachSale(start, end, func(_ *state, s entity.Sale) {
		k := dateKey(s.Date)
		ps, ok := acc[k]
		if !ok {
			y, m, d := s.Date.Date()
			ps = &repository.PeriodSales{Date: time.Date(y, m, d, 0, 0, 0, 0, s.Date.Location())}
			acc[k] = ps
		}
		ps.Total = ps.Total.Add(s.Total)
	})
	if err != nil {
		return nil, err
	}
	return sortedPeriods(acc), nil
}

func (r *ReportRepo) MonthlySales(_ context.Context, year int) ([]repository.PeriodSales, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	acc := map[int]*repository.PeriodSales{}
	err := r.eachSale(start, end, func(_ *state, s entity.Sale) {
		m := int(s.Date.Month())
		ps, ok := acc[m]
		if !ok {
			ps = &repository.PeriodSales{Month: m}
			acc[m] = ps
		}
		ps.Total = ps.Total.Add(s.Total)
	})
	if err != nil {
		return nil, err
	}
	return sortedPeriods(acc), nil
}

func (r *ReportRepo) eachSale(start, end time.Time, fn func(*state, entity.Sale)) error {
	return r.b.do(func(st *state) error {
		for _, s := range st.sales {
			if !s.Voided && inRange(s.Date, start, end) {
				fn(st, s)
			}
		}
		return nil
	})
}

func (r *ReportRepo) eachLine(start, end time.Time, fn func(*state, entity.Sale, entity.SaleLine)) error {
	return r.eachSale(start, end, func(st *state, s entity.Sale) {
		for _, l := range s.Lines {
			fn(st, s, l)
		}
	})
}

func sortedPeriods(acc map[int]*repository.PeriodSales) []repository.PeriodSales {
	keys := make([]int, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]repository.PeriodSales, 0, len(keys))
	for _, k := range keys {
		out = append(out, *acc[k])
	}
	return out
}
