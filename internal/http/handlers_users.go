package http

import (
	"net/http"
	"strings"

	"granaia/internal/core"
	"granaia/internal/services"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, err := s.users.Create(r.Context(), core.User{
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		RemoteJID: strings.TrimSpace(req.RemoteJID),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "usuário criado", toUserJSON(u))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUserFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	page := parsePage(r.URL.Query())

	users, meta, err := s.users.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, "usuários listados", toUserListJSON(users), meta)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "usuário encontrado", toUserJSON(u))
}

func (s *Server) handleGetUserByRemoteJID(w http.ResponseWriter, r *http.Request) {
	remoteJID := strings.TrimSpace(r.PathValue("remotejid"))
	if remoteJID == "" {
		writeBadRequest(w, "remotejid obrigatório")
		return
	}

	u, err := s.users.GetByRemoteJID(r.Context(), remoteJID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "usuário encontrado", toUserJSON(u))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, err := s.users.Update(r.Context(), id, services.UserUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		LastMessage: req.LastMessage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "usuário atualizado", toUserJSON(u))
}

func (s *Server) handleUpdatePremium(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req premiumRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	upd := services.PremiumUpdate{PremiumUntil: req.PremiumUntil}
	if req.TipoPremium != nil {
		plan := core.PlanType(*req.TipoPremium)
		upd.PlanType = &plan
	}

	u, err := s.users.UpdatePremium(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "premium atualizado", toUserJSON(u))
}

func (s *Server) handleUpdateLastMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req lastMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, err := s.users.UpdateLastMessage(r.Context(), id, req.LastMessage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "última mensagem atualizada", toUserJSON(u))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "usuário removido")
}
