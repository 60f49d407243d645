package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	"teachshare/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	filter := repository.UserFilter{
		Search:         q.Get("search"),
		Status:         q.Get("status"),
		MembershipType: q.Get("membershipType"),
		Role:           q.Get("role"),
	}

	users, total, err := s.userAdmin.List(r.Context(), filter, limit, (page-1)*limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewUser(u))
	}
	writePaginated(w, "ok", views, NewPagination(page, limit, total))
}

type updateUserStatusRequest struct {
	IsActive   *bool `json:"isActive"`
	Membership *struct {
		Type      string     `json:"type"`
		ExpiresAt *time.Time `json:"expiresAt"`
	} `json:"membership"`
}

func (s *Server) handleAdminUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req updateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := usecase.StatusUpdate{IsActive: req.IsActive}
	if req.Membership != nil {
		upd.Membership = &model.Membership{
			Type:      model.MembershipType(req.Membership.Type),
			ExpiresAt: req.Membership.ExpiresAt,
		}
	}

	user, err := s.userAdmin.UpdateStatus(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "user updated", viewUser(user))
}

type codeView struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	MembershipType string    `json:"membershipType"`
	DurationDays   int       `json:"durationDays"`
	Batch          string    `json:"batch"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	UsedBy         *string   `json:"usedBy"`
	UsedAt         *jsonTime `json:"usedAt"`
	CreatedAt      jsonTime  `json:"createdAt"`
	ExpiresAt      *jsonTime `json:"expiresAt"`
}

func viewCode(c *model.ActivationCode) codeView {
	return codeView{
		ID:             c.ID,
		Code:           c.Code,
		MembershipType: string(c.MembershipType),
		DurationDays:   c.DurationDays,
		Batch:          c.Batch,
		Description:    c.Description,
		Status:         string(c.Status),
		UsedBy:         c.UsedBy,
		UsedAt:         optTime(c.UsedAt),
		CreatedAt:      jsonTime(c.CreatedAt),
		ExpiresAt:      optTime(c.ExpiresAt),
	}
}

func (s *Server) handleAdminListCodes(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	filter := repository.CodeFilter{
		Status: q.Get("status"),
		Batch:  q.Get("batch"),
		Search: q.Get("search"),
	}

	codes, total, err := s.codeAdmin.List(r.Context(), filter, limit, (page-1)*limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]codeView, 0, len(codes))
	for _, c := range codes {
		views = append(views, viewCode(c))
	}
	writePaginated(w, "ok", views, NewPagination(page, limit, total))
}

type generateCodesRequest struct {
	Count          int    `json:"count"`
	MembershipType string `json:"membershipType"`
	Duration       int    `json:"duration"`
	Batch          string `json:"batch"`
	Description    string `json:"description"`
}

func (s *Server) handleAdminGenerateCodes(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	var req generateCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	codes, err := s.codeAdmin.Generate(r.Context(), usecase.GenerateParams{
		Count:          req.Count,
		MembershipType: model.MembershipType(req.MembershipType),
		DurationDays:   req.Duration,
		Batch:          req.Batch,
		Description:    req.Description,
		IssuerID:       subject.ID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "codes generated", map[string]interface{}{
		"count": len(codes),
		"codes": codes,
	})
}

type exportCodesRequest struct {
	Codes []string `json:"codes"`
	Batch string   `json:"batch"`
}

func (s *Server) handleAdminExportCodes(w http.ResponseWriter, r *http.Request) {
	var req exportCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, filename, err := s.codeAdmin.ExportCSV(r.Context(), req.Codes, req.Batch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Warn().Err(err).Msg("failed to stream csv export")
	}
}
