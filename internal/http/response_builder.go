// Package http exposes the REST surface: user registration and
// maintenance, expense and income records, and dashboard summaries.
//
// This file builds the JSON response envelope and maps domain errors
// onto HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"granaia/internal/core"
)

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    *core.PageMeta `json:"meta,omitempty"`
}

// premiumDenied is the access-denied payload the billing flow consumes.
type premiumDenied struct {
	Success      bool       `json:"success"`
	Error        string     `json:"error"`
	Message      string     `json:"message"`
	PremiumUntil *time.Time `json:"premium_until"`
	TipoPremium  string     `json:"tipo_premium"`
}

type fieldError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writePage(w http.ResponseWriter, message string, data any, meta core.PageMeta) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// writeError maps domain failures to status codes. Anything not in the
// taxonomy is a store fault and stays opaque to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	var pe *core.PremiumExpiredError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, fieldError{
			Message: ve.Error(),
			Field:   ve.Field,
		})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusForbidden, premiumDenied{
			Error:        "premium_expired",
			Message:      "Seu período premium expirou. Renove para continuar usando o serviço.",
			PremiumUntil: pe.PremiumUntil,
			TipoPremium:  string(pe.PlanType),
		})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: "registro não encontrado"})
	case errors.Is(err, core.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Message: "registro já existe"})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "erro interno"})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Message: message})
}

// userJSON is the wire shape of a user.
type userJSON struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	RemoteJID    string     `json:"remotejid"`
	LastMessage  string     `json:"last_message"`
	PremiumUntil *time.Time `json:"premium_until"`
	TipoPremium  string     `json:"tipo_premium"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toUserJSON(u core.User) userJSON {
	return userJSON{
		ID:           u.ID.String(),
		Name:         u.Name,
		Phone:        u.Phone,
		RemoteJID:    u.RemoteJID,
		LastMessage:  u.LastMessage,
		PremiumUntil: u.PremiumUntil,
		TipoPremium:  string(u.PlanType),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserListJSON(users []core.User) []userJSON {
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	return out
}

// recordJSON is the wire shape of an expense or income. Amounts travel
// as decimal strings so clients never see float drift.
type recordJSON struct {
	ID        string    `json:"id"`
	Usuario   string    `json:"usuario"`
	Descricao string    `json:"descricao"`
	Valor     string    `json:"valor"`
	Categoria string    `json:"categoria"`
	Data      time.Time `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toExpenseJSON(e core.Expense) recordJSON {
	return recordJSON{
		ID:        e.ID.String(),
		Usuario:   e.UserID.String(),
		Descricao: e.Description,
		Valor:     core.FormatCents(e.Amount.Cents),
		Categoria: string(e.Category),
		Data:      e.Date,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toIncomeJSON(in core.Income) recordJSON {
	return recordJSON{
		ID:        in.ID.String(),
		Usuario:   in.UserID.String(),
		Descricao: in.Description,
		Valor:     core.FormatCents(in.Amount.Cents),
		Categoria: string(in.Category),
		Data:      in.Date,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
}

func toExpenseListJSON(items []core.Expense) []recordJSON {
	out := make([]recordJSON, 0, len(items))
	for _, e := range items {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

func toIncomeListJSON(items []core.Income) []recordJSON {
	out := make([]recordJSON, 0, len(items))
	for _, in := range items {
		out = append(out, toIncomeJSON(in))
	}
	return out
}

// dashboardJSON is the aggregate summary shape.
type dashboardJSON struct {
	Total       string              `json:"total"`
	Count       int64               `json:"count"`
	ByCategory  []categorySummaryRow `json:"por_categoria"`
	PeriodStart *time.Time          `json:"data_inicio,omitempty"`
	PeriodEnd   *time.Time          `json:"data_fim,omitempty"`
}

type categorySummaryRow struct {
	Categoria string `json:"categoria"`
	Total     string `json:"total"`
	Count     int64  `json:"count"`
}

func toDashboardJSON(d core.Dashboard) dashboardJSON {
	rows := make([]categorySummaryRow, 0, len(d.ByCategory))
	for _, c := range d.ByCategory {
		rows = append(rows, categorySummaryRow{
			Categoria: c.Category,
			Total:     core.FormatCents(c.Total.Cents),
			Count:     c.Count,
		})
	}
	return dashboardJSON{
		Total:       core.FormatCents(d.Total.Cents),
		Count:       d.Count,
		ByCategory:  rows,
		PeriodStart: d.PeriodStart,
		PeriodEnd:   d.PeriodEnd,
	}
}
