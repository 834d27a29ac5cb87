package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/server/handlers"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
)

type fakeInventory struct {
	records   []models.Record
	err       error
	filter    models.LowStockFilter
	threshold int
}

func (f *fakeInventory) ImportFrom(context.Context, inventory.Source) (models.ImportResult, error) {
	if f.err != nil {
		return models.ImportResult{}, f.err
	}
	return models.ImportResult{Records: 3, Matched: 1, Upserted: 2}, nil
}

func (f *fakeInventory) LowStock(_ context.Context, filter models.LowStockFilter) ([]models.Record, error) {
	f.filter = filter
	return f.records, f.err
}

func (f *fakeInventory) Export(_ context.Context, _ inventory.Sink, threshold int) (int, error) {
	f.threshold = threshold
	return len(f.records), f.err
}

func serve(t *testing.T, inv *fakeInventory, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	engine := New(handlers.NewInventoryHandler(inv, nil, nil, models.DefaultThreshold, nil), nil)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, &fakeInventory{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLowStockEndpoint(t *testing.T) {
	inv := &fakeInventory{records: []models.Record{{
		{Key: "_id", Value: "abc"},
		{Key: "brand", Value: "A"},
		{Key: "stock", Value: int64(5)},
	}}}

	rec := serve(t, inv, http.MethodGet, "/low-stock?threshold=7&type=red&brand=A", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, models.LowStockFilter{Threshold: 7, Type: "red", Brand: "A"}, inv.filter)

	var body struct {
		Threshold int                      `json:"threshold"`
		Count     int                      `json:"count"`
		Items     []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Threshold)
	assert.Equal(t, 1, body.Count)
	assert.NotContains(t, body.Items[0], "_id")
	assert.Equal(t, "A", body.Items[0]["brand"])
}

func TestLowStockDefaultsAndValidation(t *testing.T) {
	inv := &fakeInventory{}
	rec := serve(t, inv, http.MethodGet, "/low-stock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultThreshold, inv.filter.Threshold)
	assert.JSONEq(t, `{"threshold":10,"count":0,"items":[]}`, rec.Body.String())

	rec = serve(t, inv, http.MethodGet, "/low-stock?threshold=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, inv.filter.Threshold)
	assert.JSONEq(t, `{"threshold":0,"count":0,"items":[]}`, rec.Body.String())

	rec = serve(t, inv, http.MethodGet, "/low-stock?threshold=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: down", models.ErrStorage), http.StatusBadGateway},
		{fmt.Errorf("%w: missing", models.ErrFileAccess), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: bad header", models.ErrFormat), http.StatusUnprocessableEntity},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := serve(t, &fakeInventory{err: tc.err}, http.MethodPost, "/import", "")
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestImportEndpoint(t *testing.T) {
	rec := serve(t, &fakeInventory{}, http.MethodPost, "/import", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":3,"matched":1,"upserted":2}`, rec.Body.String())
}

func TestExportEndpoint(t *testing.T) {
	inv := &fakeInventory{records: []models.Record{{{Key: "brand", Value: "A"}}}}

	rec := serve(t, inv, http.MethodPost, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultThreshold, inv.threshold)
	assert.JSONEq(t, `{"exported":1}`, rec.Body.String())

	rec = serve(t, inv, http.MethodPost, "/export", `{"threshold":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, inv.threshold)

	rec = serve(t, inv, http.MethodPost, "/export", `{"threshold":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, inv.threshold)

	rec = serve(t, inv, http.MethodPost, "/export", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
