package api

import (
	"encoding/json"
	"net/http"

	"teachshare/internal/domain"
	red "teachshare/internal/infra/redis"
)

type membershipStatusView struct {
	Membership membershipView `json:"membership"`
	Active     bool           `json:"active"`
	DaysLeft   *int           `json:"daysLeft"`
}

func (s *Server) handleMembershipStatus(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	status, err := s.membership.Status(r.Context(), subject.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", membershipStatusView{
		Membership: viewMembership(status.Membership),
		Active:     status.Active,
		DaysLeft:   status.DaysLeft,
	})
}

type redemptionView struct {
	Code           string   `json:"code"`
	MembershipType string   `json:"membershipType"`
	UsedAt         jsonTime `json:"usedAt"`
}

func (s *Server) handleRedemptionHistory(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	entries, err := s.membership.History(r.Context(), subject.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]redemptionView, 0, len(entries))
	for _, e := range entries {
		views = append(views, redemptionView{
			Code:           e.Code,
			MembershipType: string(e.MembershipType),
			UsedAt:         jsonTime(e.UsedAt),
		})
	}
	writeSuccess(w, http.StatusOK, "ok", views)
}

type activateRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	if !s.allow(r, red.RedeemKey(subject.ID), s.limits.RedeemPerMinute) {
		s.writeError(w, r, domain.ErrRateLimited)
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	granted, err := s.membership.Redeem(r.Context(), subject.ID, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "membership activated", viewMembership(granted))
}
