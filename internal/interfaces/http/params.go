package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/domain"
	pricing "github.com/jhoicas/POS-api/internal/domain/sales"
)

const dateLayout = "2006-01-02"

// parseDate interpreta YYYY-MM-DD como fecha calendario en la zona de la caja.
func parseDate(key, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), pricing.StoreZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, key)
	}
	return t, nil
}

// dateRange lee ?start=&end= (ambos obligatorios, inclusivos).
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	q := dto.DateRangeQuery{Start: c.Query("start"), End: c.Query("end")}
	if err := validate.Struct(q); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start y end son obligatorios (YYYY-MM-DD)", domain.ErrInvalidInput)
	}
	start, err := parseDate("start", q.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("end", q.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
