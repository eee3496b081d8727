package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.auth.Register(r.Context(), req.Name, req.Email, req.Password) {
		writeError(w, http.StatusBadRequest, "Invalid registration details")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.auth.Login(r.Context(), req.Email, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	cur := s.auth.Current()
	if cur == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*cur))
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionHandler(w http.ResponseWriter, _ *http.Request) {
	cur := s.auth.Current()
	if cur == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*cur))
}

// plansListHandler is open to anonymous browsing; only admins see
// deactivated plans.
func (s *Server) plansListHandler(w http.ResponseWriter, _ *http.Request) {
	cur := s.auth.Current()
	admin := cur != nil && cur.IsAdmin()

	var data []planDTO
	for _, p := range s.catalog.Plans() {
		if !admin && !p.IsActive {
			continue
		}
		data = append(data, toPlanDTO(*p))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []planDTO `json:"data"`
	}{Data: data})
}

func (s *Server) planCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Invalid plan details")
		return
	}

	plan, err := model.NewPlan("", req.Name, req.Description, req.Price, req.Duration, req.Features, req.PointsReward, req.IsActive)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan details")
		return
	}
	if !s.catalog.CreatePlan(r.Context(), plan) {
		writeError(w, http.StatusInternalServerError, "Failed to create plan")
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(*plan))
}

func (s *Server) planUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch := model.PlanPatch{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Duration:     req.Duration,
		Features:     req.Features,
		PointsReward: req.PointsReward,
		IsActive:     req.IsActive,
	}
	if !s.catalog.UpdatePlan(r.Context(), id, patch) {
		writeError(w, http.StatusInternalServerError, "Failed to update plan")
		return
	}

	for _, p := range s.catalog.Plans() {
		if p.ID == id {
			writeJSON(w, http.StatusOK, toPlanDTO(*p))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// planDeleteHandler always answers 204: deletion failures are logged by the
// catalog store and the cache is left untouched.
func (s *Server) planDeleteHandler(w http.ResponseWriter, r *http.Request) {
	s.catalog.DeletePlan(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) codesImportHandler(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")

	var req addCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	codes, err := s.catalog.AddCodes(r.Context(), planID, req.Codes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import codes")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Imported int       `json:"imported"`
		Data     []codeDTO `json:"data"`
	}{Imported: len(codes), Data: toCodeDTOs(codes)})
}

func (s *Server) codesGenerateHandler(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")

	var req generateCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	codes, err := s.catalog.GenerateCodes(r.Context(), planID, req.Count)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, "Count must be positive")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to generate codes")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Imported int       `json:"imported"`
		Data     []codeDTO `json:"data"`
	}{Imported: len(codes), Data: toCodeDTOs(codes)})
}

func (s *Server) codesListHandler(w http.ResponseWriter, _ *http.Request) {
	var data []codeDTO
	for _, c := range s.catalog.Codes() {
		data = append(data, toCodeDTO(*c))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []codeDTO `json:"data"`
	}{Data: data})
}

func (s *Server) usersListHandler(w http.ResponseWriter, _ *http.Request) {
	var data []userDTO
	for _, u := range s.catalog.Users() {
		data = append(data, toUserDTO(*u))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []userDTO `json:"data"`
	}{Data: data})
}

func (s *Server) purchaseHandler(w http.ResponseWriter, r *http.Request) {
	// Re-read the principal: a logout can race the middleware check.
	cur := s.auth.Current()
	if cur == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	purchase, err := s.catalog.PurchasePlan(r.Context(), cur.ID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Plan not found")
		case errors.Is(err, domain.ErrPlanInactive):
			writeError(w, http.StatusConflict, "Plan is not available")
		case errors.Is(err, domain.ErrNoAvailableCodes):
			writeError(w, http.StatusConflict, "No codes available for this plan")
		default:
			writeError(w, http.StatusInternalServerError, "Purchase failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseDTO(*purchase))
}

// purchasesListHandler: admins see the full history, clients only their own.
func (s *Server) purchasesListHandler(w http.ResponseWriter, _ *http.Request) {
	cur := s.auth.Current()
	if cur == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var purchases []*model.Purchase
	if cur.IsAdmin() {
		purchases = s.catalog.Purchases()
	} else {
		purchases = s.catalog.PurchasesByClient(cur.ID)
	}

	var data []purchaseDTO
	for _, p := range purchases {
		data = append(data, toPurchaseDTO(*p))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []purchaseDTO `json:"data"`
	}{Data: data})
}

func toCodeDTOs(codes []*model.Code) []codeDTO {
	out := make([]codeDTO, 0, len(codes))
	for _, c := range codes {
		out = append(out, toCodeDTO(*c))
	}
	return out
}
