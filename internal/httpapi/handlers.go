package httpapi

import (
	"net/http"
	"strings"
	"time"

	"routinepet/internal/coach"
	"routinepet/internal/engine"
	"routinepet/internal/storage"
)

type completeRequest struct {
	UserID    int64   `json:"user_id"`
	RoutineID int64   `json:"routine_id"`
	Status    string  `json:"status"`
	StartedAt string  `json:"started_at"`
	EndedAt   string  `json:"ended_at"`
	Note      *string `json:"note"`
}

type completeResponse struct {
	PetState  engine.PetState `json:"pet_state"`
	Streak    int             `json:"streak"`
	CoachHint string          `json:"coach_hint"`
	XPGain    int             `json:"xp_gain"`
	LeveledUp bool            `json:"leveled_up"`
}

type chatRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type petPatchRequest struct {
	UserID int64 `json:"user_id"`
	engine.PetPatch
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().UTC()
	if s.svc != nil {
		now = s.svc.Clock().Now().UTC()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "routinepet",
		"time":    now.Format(time.RFC3339),
	})
}

func (s *Server) petState(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	pet, err := s.svc.Pet(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (s *Server) completeRoutine(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := engine.ParseStatus(req.Status)
	if !status.IsValid() {
		writeError(w, http.StatusBadRequest, "status: must be one of done, partial, late, miss")
		return
	}
	res, err := s.svc.CompleteRoutine(r.Context(), engine.CompleteInput{
		UserID:    req.UserID,
		RoutineID: req.RoutineID,
		Status:    status,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
		Note:      req.Note,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{
		PetState:  res.Pet,
		Streak:    res.Streak,
		CoachHint: res.Hint,
		XPGain:    res.XPGain,
		LeveledUp: res.LeveledUp,
	})
}

func (s *Server) listRoutines(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	list, err := s.svc.ListRoutines(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createRoutine(w http.ResponseWriter, r *http.Request) {
	var in engine.RoutineInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if in.UserID == 0 {
		in.UserID = storage.DefaultUserID
	}
	rt, err := s.svc.CreateRoutine(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (s *Server) updateRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var patch engine.RoutinePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	rt, err := s.svc.UpdateRoutine(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (s *Server) deleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.svc.DeleteRoutine(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) weeklyStats(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	ws, err := s.svc.WeeklyStats(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) streak(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	n, err := s.svc.Streak(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": n})
}

func (s *Server) coachChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.UserID < 1 {
		writeError(w, http.StatusBadRequest, "user_id: must be >= 1")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message: is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": s.coach.Chat(r.Context(), req.UserID, req.Message)})
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req coach.RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.UserID < 1 {
		writeError(w, http.StatusBadRequest, "user_id: must be >= 1")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]coach.Plan{"plans": s.coach.Recommend(r.Context(), req)})
}

func (s *Server) patchPet(w http.ResponseWriter, r *http.Request) {
	var req petPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.UserID == 0 {
		req.UserID = storage.DefaultUserID
	}
	pet, err := s.svc.PatchPet(r.Context(), req.UserID, req.PetPatch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (s *Server) adminLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", storage.DefaultLogListLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	logs, err := s.svc.RecentLogs(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
