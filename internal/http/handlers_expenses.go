package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"granaia/internal/core"
	"granaia/internal/services"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	userID, err := uuid.Parse(strings.TrimSpace(req.Usuario))
	if err != nil {
		writeError(w, r, core.NewValidationError("usuario", err))
		return
	}

	cents, err := req.Valor.cents()
	if err != nil {
		writeError(w, r, core.NewValidationError("valor", err))
		return
	}

	date := s.clock.Now()
	if req.Data != nil {
		date, err = parseDate(*req.Data)
		if err != nil {
			writeError(w, r, core.NewValidationError("data", err))
			return
		}
	}

	e, err := s.expenses.Create(r.Context(), core.Expense{
		UserID:      userID,
		Description: strings.TrimSpace(req.Descricao),
		Amount:      core.Money{Cents: cents},
		Category:    core.ExpenseCategory(strings.TrimSpace(req.Categoria)),
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(core.KindExpense)
	writeData(w, http.StatusCreated, "gasto registrado", toExpenseJSON(e))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	page := parsePage(r.URL.Query())

	items, meta, err := s.expenses.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, "gastos listados", toExpenseListJSON(items), meta)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	e, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "gasto encontrado", toExpenseJSON(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req updateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	upd := services.RecordUpdate{
		Description: req.Descricao,
		Category:    req.Categoria,
	}
	if req.Valor.present() {
		cents, err := req.Valor.cents()
		if err != nil {
			writeError(w, r, core.NewValidationError("valor", err))
			return
		}
		upd.AmountCents = &cents
	}
	if req.Data != nil {
		date, err := parseDate(*req.Data)
		if err != nil {
			writeError(w, r, core.NewValidationError("data", err))
			return
		}
		upd.Date = &date
	}

	e, err := s.expenses.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(core.KindExpense)
	writeData(w, http.StatusOK, "gasto atualizado", toExpenseJSON(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(core.KindExpense)
	writeMessage(w, http.StatusOK, "gasto removido")
}

func (s *Server) handleExpenseDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDashboardFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := s.dashboardKey(core.KindExpense, filter)
	if d, ok := s.dashCache.Get(key); ok {
		writeData(w, http.StatusOK, "dashboard de gastos", toDashboardJSON(d))
		return
	}

	d, err := s.expenses.Dashboard(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dashCache.Set(key, d)

	writeData(w, http.StatusOK, "dashboard de gastos", toDashboardJSON(d))
}
