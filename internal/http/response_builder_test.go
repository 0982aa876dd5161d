package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
)

func TestWriteErrorMapping(t *testing.T) {
	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        core.NewValidationError("valor", core.ErrInvalidAmount),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "premium expired",
			err:        &core.PremiumExpiredError{PremiumUntil: &until, PlanType: core.PlanIA},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("user %s: %w", uuid.New(), core.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("remotejid taken: %w", core.ErrConflict),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown error stays opaque",
			err:        errors.New("database disk image is malformed"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/gastos", nil)
			writeError(rec, req, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not json: %v", err)
			}
			if success, _ := body["success"].(bool); success {
				t.Fatal("error responses must carry success=false")
			}
			if tc.wantStatus == http.StatusInternalServerError {
				if body["message"] != "erro interno" {
					t.Fatalf("internal details leaked: %v", body["message"])
				}
			}
		})
	}
}

func TestWriteErrorPremiumPayload(t *testing.T) {
	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gastos", nil)
	writeError(rec, req, &core.PremiumExpiredError{PremiumUntil: &until, PlanType: core.PlanLifetime})

	var body struct {
		Error        string     `json:"error"`
		PremiumUntil *time.Time `json:"premium_until"`
		TipoPremium  string     `json:"tipo_premium"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "premium_expired" {
		t.Fatalf("expected error=premium_expired, got %q", body.Error)
	}
	if body.PremiumUntil == nil || !body.PremiumUntil.Equal(until) {
		t.Fatalf("premium_until not carried: %v", body.PremiumUntil)
	}
	if body.TipoPremium != string(core.PlanLifetime) {
		t.Fatalf("tipo_premium not carried: %q", body.TipoPremium)
	}
}

func TestToExpenseJSON(t *testing.T) {
	e := core.Expense{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Description: "mercado",
		Amount:      core.Money{Cents: 12345},
		Category:    core.ExpenseFood,
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	got := toExpenseJSON(e)
	if got.Valor != "123.45" {
		t.Fatalf("expected decimal string 123.45, got %q", got.Valor)
	}
	if got.Categoria != "Alimentação" {
		t.Fatalf("unexpected category: %q", got.Categoria)
	}
	if got.ID != e.ID.String() || got.Usuario != e.UserID.String() {
		t.Fatalf("identifiers not stringified: %+v", got)
	}
}

func TestToDashboardJSON(t *testing.T) {
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	d := core.Dashboard{
		Total: core.Money{Cents: 12950},
		Count: 3,
		ByCategory: []core.CategorySummary{
			{Category: "Alimentação", Total: core.Money{Cents: 12500}, Count: 2},
			{Category: "Transporte", Total: core.Money{Cents: 450}, Count: 1},
		},
		PeriodStart: &from,
	}

	got := toDashboardJSON(d)
	if got.Total != "129.50" || got.Count != 3 {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
	if len(got.ByCategory) != 2 || got.ByCategory[0].Total != "125.00" {
		t.Fatalf("unexpected category rows: %+v", got.ByCategory)
	}
	if got.PeriodStart == nil || !got.PeriodStart.Equal(from) {
		t.Fatalf("period not carried: %v", got.PeriodStart)
	}
	if got.PeriodEnd != nil {
		t.Fatalf("absent period end must stay nil, got %v", got.PeriodEnd)
	}

	// An empty dashboard serializes with an empty array, not null
	data, err := json.Marshal(toDashboardJSON(core.Dashboard{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		PorCategoria []any `json:"por_categoria"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.PorCategoria == nil {
		t.Fatal("expected empty array for por_categoria")
	}
}
