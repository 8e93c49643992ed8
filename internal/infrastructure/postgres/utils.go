package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isForeignKeyViolation detecta referencias rotas (23503): borrar algo usado o insertar con FK inexistente.
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

// isCheckViolation detecta violaciones de CHECK (23514), p.ej. stock >= 0.
func isCheckViolation(err error) bool {
	return hasCode(err, "23514")
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), code)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Los descuentos viajan como text[] para no depender del codec de arrays NUMERIC.
func decimalsToText(ds []decimal.Decimal) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}

func textToDecimals(ss []string) ([]decimal.Decimal, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]decimal.Decimal, 0, len(ss))
	for _, s := range ss {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
