package handler

import (
	"net/http"

	"github.com/mindfixhq/mindfix/internal/session"
)

type quizResultRequest struct {
	ProtocolName string `json:"protocolName"`
	Description  string `json:"description"`
}

// putQuizResult stores the onboarding quiz outcome on the session, the
// server-side equivalent of the old quizResult browser-storage key.
func (h *handlers) putQuizResult(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "No active session")
		return
	}

	var req quizResultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ProtocolName == "" {
		respondError(w, http.StatusBadRequest, "Missing protocolName")
		return
	}

	sess.QuizResult = &session.QuizResult{
		ProtocolName: req.ProtocolName,
		Description:  req.Description,
	}
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		h.Log.ErrorContext(r.Context(), "quiz result save failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save quiz result")
		return
	}

	respondJSON(w, http.StatusOK, sess.QuizResult)
}

func (h *handlers) getQuizResult(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "No active session")
		return
	}
	if sess.QuizResult == nil {
		respondError(w, http.StatusNotFound, "No quiz result stored")
		return
	}
	respondJSON(w, http.StatusOK, sess.QuizResult)
}
