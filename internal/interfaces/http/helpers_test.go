package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/stretchr/testify/require"
)

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func readError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
