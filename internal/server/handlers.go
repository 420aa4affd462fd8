package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/store"
)

type registerRequest struct {
	CompanyName string `json:"company_name"`
	ProductName string `json:"product_name"`
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Domain      string `json:"domain"`
}

type registerResponse struct {
	Status             string   `json:"status"`
	SessionID          string   `json:"session_id"`
	ProductID          string   `json:"product_id"`
	FirstQuestion      string   `json:"first_question"`
	RemainingQuestions []string `json:"remaining_questions"`
	Message            string   `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reg, err := s.engine.Register(r.Context(), assessment.RegisterInput{
		CompanyName: req.CompanyName,
		ProductName: req.ProductName,
		ProductKey:  req.ProductID,
		Description: req.Description,
		Domain:      req.Domain,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Status:             "success",
		SessionID:          reg.SessionID,
		ProductID:          reg.ProductKey,
		FirstQuestion:      reg.FirstQuestion,
		RemainingQuestions: reg.RemainingQuestions,
		Message:            "Product registered. Assessment started.",
	})
}

type respondRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type respondResponse struct {
	SessionID          string   `json:"session_id"`
	QuestionNumber     int      `json:"question_number"`
	Answer             string   `json:"answer"`
	Score              int      `json:"score"`
	Degraded           bool     `json:"degraded,omitempty"`
	IsComplete         bool     `json:"is_complete"`
	FinalScore         *float64 `json:"final_score,omitempty"`
	AllScores          []int    `json:"all_scores,omitempty"`
	RemainingQuestions []string `json:"remaining_questions,omitempty"`
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	step, err := s.engine.SubmitAnswer(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, respondResponse{
		SessionID:          step.SessionID,
		QuestionNumber:     step.QuestionNumber,
		Answer:             step.Answer,
		Score:              step.Score,
		Degraded:           step.Degraded,
		IsComplete:         step.IsComplete,
		FinalScore:         step.FinalScore,
		AllScores:          step.AllScores,
		RemainingQuestions: step.RemainingQuestions,
	})
}

type respondBatchRequest struct {
	SessionID string   `json:"session_id"`
	Responses []string `json:"responses"`
}

type respondBatchResponse struct {
	SessionID          string   `json:"session_id"`
	QuestionsAnswered  int      `json:"questions_answered"`
	NextQuestionNumber int      `json:"next_question_number"`
	IsComplete         bool     `json:"is_complete"`
	FinalScore         *float64 `json:"final_score,omitempty"`
	AllScores          []int    `json:"all_scores,omitempty"`
	RemainingQuestions []string `json:"remaining_questions,omitempty"`
}

func (s *Server) handleRespondBatch(w http.ResponseWriter, r *http.Request) {
	var req respondBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := s.engine.SubmitBatch(r.Context(), req.SessionID, req.Responses)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, respondBatchResponse{
		SessionID:          batch.SessionID,
		QuestionsAnswered:  batch.QuestionsAnswered,
		NextQuestionNumber: batch.NextQuestion,
		IsComplete:         batch.IsComplete,
		FinalScore:         batch.FinalScore,
		AllScores:          batch.AllScores,
		RemainingQuestions: batch.RemainingQuestions,
	})
}

type statusResponse struct {
	SessionID       string   `json:"session_id"`
	ProductID       string   `json:"product_id"`
	CurrentQuestion int      `json:"current_question"`
	Status          string   `json:"status"`
	FinalScore      *float64 `json:"final_score"`
	ResponsesCount  int      `json:"responses_count"`
	NextQuestion    string   `json:"next_question,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.Status(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		SessionID:       info.SessionID,
		ProductID:       info.ProductKey,
		CurrentQuestion: info.CurrentQuestion,
		Status:          info.Status,
		FinalScore:      info.FinalScore,
		ResponsesCount:  info.AnsweredCount,
		NextQuestion:    info.NextQuestion,
	})
}

type reportAnswer struct {
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Response       string    `json:"response"`
	Timestamp      time.Time `json:"timestamp"`
	Degraded       bool      `json:"degraded,omitempty"`
}

type reportResponse struct {
	SessionID         string         `json:"session_id"`
	ProductID         string         `json:"product_id"`
	Status            string         `json:"status"`
	FinalScore        *float64       `json:"final_score"`
	DetailedResponses []reportAnswer `json:"detailed_responses"`
	Scores            []int          `json:"scores"`
	CreatedAt         time.Time      `json:"created_at"`
	CompletedAt       *time.Time     `json:"completed_at"`
	HTMLReport        string         `json:"html_report"`
	ReportDegraded    bool           `json:"report_degraded,omitempty"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine.Report(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	html, degraded := s.reports.GenerateHTML(r.Context(), data)

	sess := data.Session
	answers := make([]reportAnswer, 0, len(sess.Answers))
	for _, a := range sess.Answers {
		answers = append(answers, reportAnswer{
			QuestionNumber: a.QuestionNumber,
			Question:       a.Question,
			Response:       a.Response,
			Timestamp:      a.Timestamp,
			Degraded:       a.Degraded,
		})
	}

	resp := reportResponse{
		SessionID:         sess.SessionID,
		ProductID:         sess.ProductKey,
		Status:            sess.Status,
		FinalScore:        sess.FinalScore,
		DetailedResponses: answers,
		Scores:            sess.Scores,
		CreatedAt:         sess.CreatedAt,
		HTMLReport:        html,
		ReportDegraded:    degraded,
	}
	if sess.Status == store.StatusCompleted {
		completed := sess.UpdatedAt
		resp.CompletedAt = &completed
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// writeEngineError maps engine errors to HTTP statuses. Anything not a
// typed engine outcome is a server failure.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assessment.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assessment.ErrDuplicateProduct):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, assessment.ErrSessionNotFound), errors.Is(err, assessment.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		fmt.Fprintf(os.Stderr, "prism: internal error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "prism: encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
