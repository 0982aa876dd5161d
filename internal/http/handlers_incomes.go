package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"granaia/internal/core"
	"granaia/internal/services"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
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

	in, err := s.incomes.Create(r.Context(), core.Income{
		UserID:      userID,
		Description: strings.TrimSpace(req.Descricao),
		Amount:      core.Money{Cents: cents},
		Category:    core.IncomeCategory(strings.TrimSpace(req.Categoria)),
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(core.KindIncome)
	writeData(w, http.StatusCreated, "receita registrada", toIncomeJSON(in))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	page := parsePage(r.URL.Query())

	items, meta, err := s.incomes.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, "receitas listadas", toIncomeListJSON(items), meta)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	in, err := s.incomes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "receita encontrada", toIncomeJSON(in))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
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

	in, err := s.incomes.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(core.KindIncome)
	writeData(w, http.StatusOK, "receita atualizada", toIncomeJSON(in))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.incomes.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(core.KindIncome)
	writeMessage(w, http.StatusOK, "receita removida")
}

func (s *Server) handleIncomeDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDashboardFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := s.dashboardKey(core.KindIncome, filter)
	if d, ok := s.dashCache.Get(key); ok {
		writeData(w, http.StatusOK, "dashboard de receitas", toDashboardJSON(d))
		return
	}

	d, err := s.incomes.Dashboard(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dashCache.Set(key, d)

	writeData(w, http.StatusOK, "dashboard de receitas", toDashboardJSON(d))
}
