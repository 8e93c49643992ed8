package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postSale(t *testing.T, body string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto.CreateSaleRequest
		if ok, err := bindAndValidate(c, &in); !ok {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if resp.StatusCode == fiber.StatusNoContent {
		return resp, dto.ErrorResponse{}
	}
	defer resp.Body.Close()
	return resp, readError(t, resp)
}

func TestBindAndValidate_Decimales(t *testing.T) {
	resp, _ := postSale(t, `{"lines":[{"product_id":"P1","quantity":"1.5","discount_percent":"10"}]}`)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, er := postSale(t, `{"lines":[{"product_id":"P1","quantity":"2","discount_percent":"150"}]}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "lte", er.Fields["lines[0].discount_percent"])

	resp, er = postSale(t, `{"lines":[{"quantity":"-1"}]}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "required", er.Fields["lines[0].product_id"])
	assert.Equal(t, "gt", er.Fields["lines[0].quantity"])
}

func TestBindAndValidate_JSONInvalido(t *testing.T) {
	resp, er := postSale(t, `{"lines":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", er.Code)
}

func TestParseDate_ZonaDeLaCaja(t *testing.T) {
	d, err := parseDate("date", "2024-02-29")
	require.NoError(t, err)
	_, offset := d.Zone()
	assert.Equal(t, -6*60*60, offset)
	assert.Equal(t, 29, d.Day())

	_, err = parseDate("date", "29/02/2024")
	assert.Error(t, err)
}
