package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/abhisek/studyhall/internal/quiz"
)

// questionView hides the answer until the question is revealed.
type questionView struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type quizView struct {
	State     quiz.State    `json:"state"`
	Subject   string        `json:"subject,omitempty"`
	Index     int           `json:"index"`
	Total     int           `json:"total"`
	Question  *questionView `json:"question,omitempty"`
	Selected  string        `json:"selected,omitempty"`
	Revealed  bool          `json:"revealed"`
	Correct   bool          `json:"correct"`
	Score     int           `json:"score"`
	WeakAreas []string      `json:"weak_areas"`
	Report    *quiz.Report  `json:"report,omitempty"`
	LoadError string        `json:"load_error,omitempty"`
}

func newQuizView(s quiz.Snapshot) quizView {
	v := quizView{
		State:     s.State,
		Subject:   s.Subject,
		Index:     s.Index,
		Total:     s.Total,
		Selected:  s.Selected,
		Revealed:  s.Revealed,
		Correct:   s.Correct,
		Score:     s.Score,
		WeakAreas: s.WeakAreas,
		Report:    s.Report,
		LoadError: s.LoadError,
	}
	if q := s.Question; q != nil {
		v.Question = &questionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
		if s.Revealed {
			v.Question.CorrectOption = q.CorrectOption
			v.Question.Explanation = q.Explanation
		}
	}
	return v
}

func (h *handler) getQuiz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newQuizView(h.quiz.Snapshot()))
}

type startQuizRequest struct {
	Subject string `json:"subject"`
}

func (h *handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.quiz.Start(r.Context(), req.Subject); err != nil {
		if errors.Is(err, quiz.ErrSuperseded) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		var qle *quiz.QuestionLoadError
		if errors.As(err, &qle) {
			writeError(w, http.StatusBadGateway, qle.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newQuizView(h.quiz.Snapshot()))
}

type selectAnswerRequest struct {
	Option string `json:"option"`
}

func (h *handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req selectAnswerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Option) == "" {
		writeError(w, http.StatusBadRequest, "option is required")
		return
	}
	h.quiz.SelectAnswer(req.Option)
	writeJSON(w, http.StatusOK, newQuizView(h.quiz.Snapshot()))
}

func (h *handler) checkAnswer(w http.ResponseWriter, _ *http.Request) {
	if err := h.quiz.CheckAnswer(); err != nil {
		if errors.Is(err, quiz.ErrNoAnswerSelected) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newQuizView(h.quiz.Snapshot()))
}

func (h *handler) advanceQuiz(w http.ResponseWriter, r *http.Request) {
	h.quiz.Advance(r.Context())
	writeJSON(w, http.StatusOK, newQuizView(h.quiz.Snapshot()))
}

func (h *handler) restartQuiz(w http.ResponseWriter, _ *http.Request) {
	h.quiz.Restart()
	writeJSON(w, http.StatusOK, newQuizView(h.quiz.Snapshot()))
}
