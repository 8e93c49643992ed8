package memory

import (
	"strings"
	"time"

	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func copyProduct(p entity.Product) entity.Product {
	if p.Discounts != nil {
		p.Discounts = append([]decimal.Decimal(nil), p.Discounts...)
	}
	return p
}

func copySale(s entity.Sale) entity.Sale {
	s.Lines = append([]entity.SaleLine(nil), s.Lines...)
	if s.VoidedAt != nil {
		at := *s.VoidedAt
		s.VoidedAt = &at
	}
	return s
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func inRange(t, start, end time.Time) bool {
	k := dateKey(t)
	return k >= dateKey(start) && k <= dateKey(end)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
