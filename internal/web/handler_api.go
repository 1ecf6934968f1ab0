package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Akshith040/EcoScan1/internal/auth"
	"github.com/Akshith040/EcoScan1/internal/domain"
	"github.com/Akshith040/EcoScan1/internal/service"
)

const maxJSONBody = 1 << 20

type historyJSON struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId"`
	ImageURL              string    `json:"imageUrl"`
	WasteType             string    `json:"wasteType"`
	Confidence            float64   `json:"confidence"`
	UserDescription       string    `json:"userDescription"`
	RecyclingInstructions string    `json:"recyclingInstructions"`
	CreatedAt             time.Time `json:"createdAt"`
}

func toHistoryJSON(e *domain.HistoryEntry) historyJSON {
	imageURL := e.ImageURL
	if imageURL == "" && e.ImageKey != "" {
		imageURL = "/history/" + e.ID + "/photo"
	}
	return historyJSON{
		ID:                    e.ID,
		UserID:                e.UserID,
		ImageURL:              imageURL,
		WasteType:             e.WasteType,
		Confidence:            e.Confidence,
		UserDescription:       e.UserDescription,
		RecyclingInstructions: e.RecyclingInstructions,
		CreatedAt:             e.CreatedAt,
	}
}

type historyRequest struct {
	ImageURL              string  `json:"imageUrl" validate:"max=2048"`
	WasteType             string  `json:"wasteType" validate:"required,max=200"`
	Confidence            float64 `json:"confidence" validate:"gte=0,lte=1"`
	UserDescription       string  `json:"userDescription" validate:"max=1000"`
	RecyclingInstructions string  `json:"recyclingInstructions"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	User userJSON `json:"user"`
}

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleAPIListHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := apiUser(w, r)
	if !ok {
		return
	}

	entries, err := s.service.History(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list history failed", "user_id", user.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	out := make([]historyJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPICreateHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := apiUser(w, r)
	if !ok {
		return
	}

	var req historyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "wasteType is required and confidence must be between 0 and 1")
		return
	}

	entry, err := s.service.RecordHistory(r.Context(), user.ID, service.HistoryInput{
		ImageURL:              req.ImageURL,
		WasteType:             req.WasteType,
		Confidence:            req.Confidence,
		UserDescription:       req.UserDescription,
		RecyclingInstructions: req.RecyclingInstructions,
	})
	if errors.Is(err, service.ErrInvalidInput) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("create history failed", "user_id", user.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create history entry")
		return
	}
	writeJSON(w, http.StatusOK, toHistoryJSON(entry))
}

func (s *Server) handleAPIRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if err := s.validate.Var(req.Email, "email"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	user, err := s.service.Register(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeJSONError(w, http.StatusConflict, "User with this email already exists")
		return
	case errors.Is(err, service.ErrPasswordTooLong):
		writeJSONError(w, http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	case errors.Is(err, service.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	case err != nil:
		s.logger.Error("register failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong during registration")
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		User: userJSON{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// apiUser returns the session user or answers with a JSON 401.
func apiUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return u, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
