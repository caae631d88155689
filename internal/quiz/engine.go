// Package quiz runs a fixed-length multiple-choice mock test: question
// delivery, answer capture, scoring, weak-area tracking and the final
// report.
package quiz

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the engine's lifecycle stage.
type State string

const (
	StateWelcome  State = "welcome"
	StateLoading  State = "loading"
	StateActive   State = "active"
	StateComplete State = "complete"
)

var (
	// ErrNoAnswerSelected is returned by CheckAnswer when nothing has been
	// picked for the current question. It is safe to ignore.
	ErrNoAnswerSelected = errors.New("no answer selected")

	// ErrSuperseded is returned by Start when a Reset or a later Start
	// replaced it before its question set arrived. The engine reflects the
	// newer call.
	ErrSuperseded = errors.New("quiz start superseded")
)

// Engine drives one quiz attempt at a time. It is safe for concurrent use.
type Engine struct {
	source  QuestionSource
	reports *ReportLog
	log     *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	subject   string
	questions []Question
	index     int
	answers   map[int]string
	revealed  map[int]bool
	score     int
	weakAreas []string
	report    *Report
	loadErr   error
	startSeq  uint64
}

// NewEngine creates an Engine in the Welcome state. reports and log may
// be nil.
func NewEngine(source QuestionSource, reports *ReportLog, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		source:  source,
		reports: reports,
		log:     log.Named("quiz"),
		now:     time.Now,
		state:   StateWelcome,
	}
}

// Start resolves subject to a question set and begins the quiz. A blank
// subject means DefaultSubject. On failure the engine stays in Loading
// with no partial state, and the error is a *QuestionLoadError. A Start
// overtaken by Reset or another Start returns ErrSuperseded.
func (e *Engine) Start(ctx context.Context, subject string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}

	e.mu.Lock()
	e.startSeq++
	seq := e.startSeq
	e.clear()
	e.questions = nil
	e.report = nil
	e.loadErr = nil
	e.subject = subject
	e.state = StateLoading
	e.mu.Unlock()

	questions, err := e.source.Questions(ctx, subject)
	if err == nil && len(questions) == 0 {
		err = errors.New("question set is empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.startSeq != seq {
		e.log.Debug("discarding superseded question set", zap.String("subject", subject))
		return ErrSuperseded
	}

	if err != nil {
		var qle *QuestionLoadError
		if !errors.As(err, &qle) {
			qle = &QuestionLoadError{Subject: subject, Err: err}
		}
		e.loadErr = qle
		e.log.Warn("question set failed to load", zap.String("subject", subject), zap.Error(err))
		return qle
	}

	e.questions = questions
	e.state = StateActive
	e.log.Debug("quiz started", zap.String("subject", subject), zap.Int("questions", len(questions)))
	return nil
}

// SelectAnswer records option for the current question. It is a no-op
// unless the quiz is active, the current question is not yet revealed,
// and option is one of its choices.
func (e *Engine) SelectAnswer(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive || e.revealed[e.index] {
		return
	}
	if !e.questions[e.index].HasOption(option) {
		return
	}
	e.answers[e.index] = option
}

// CheckAnswer reveals the current question and scores it. A question is
// scored at most once; repeated calls change nothing.
func (e *Engine) CheckAnswer() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return nil
	}
	answer, ok := e.answers[e.index]
	if !ok {
		return ErrNoAnswerSelected
	}
	if e.revealed[e.index] {
		return nil
	}

	e.revealed[e.index] = true
	q := e.questions[e.index]
	if q.IsCorrect(answer) {
		e.score++
	} else {
		e.addWeakArea(q.Prompt)
	}
	return nil
}

// Advance moves past a revealed question. After the last one the quiz is
// complete and the report is appended to the report log.
func (e *Engine) Advance(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateActive || !e.revealed[e.index] {
		e.mu.Unlock()
		return
	}

	if e.index+1 < len(e.questions) {
		e.index++
		delete(e.revealed, e.index)
		e.mu.Unlock()
		return
	}

	e.index = len(e.questions)
	e.state = StateComplete
	r := e.buildReport()
	e.report = &r
	e.mu.Unlock()

	if e.reports != nil {
		if err := e.reports.Append(ctx, r); err != nil {
			e.log.Warn("failed to save quiz report", zap.Error(err))
		}
	}
}

// Restart replays the same question set from the beginning. Only valid
// once the quiz is complete.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateComplete {
		return
	}
	e.clear()
	e.report = nil
	e.state = StateActive
}

// Reset discards the current attempt and returns to Welcome.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.startSeq++
	e.clear()
	e.questions = nil
	e.report = nil
	e.loadErr = nil
	e.subject = ""
	e.state = StateWelcome
}

// Report returns the final report once the quiz is complete.
func (e *Engine) Report() (Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.report == nil {
		return Report{}, false
	}
	r := *e.report
	r.WeakAreas = append([]string(nil), r.WeakAreas...)
	return r, true
}

// Snapshot is a read-only copy of the engine state for rendering.
type Snapshot struct {
	State     State     `json:"state"`
	Subject   string    `json:"subject,omitempty"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Question  *Question `json:"question,omitempty"`
	Selected  string    `json:"selected,omitempty"`
	Revealed  bool      `json:"revealed"`
	Correct   bool      `json:"correct,omitempty"`
	Score     int       `json:"score"`
	WeakAreas []string  `json:"weak_areas"`
	Report    *Report   `json:"report,omitempty"`
	LoadError string    `json:"load_error,omitempty"`
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		State:     e.state,
		Subject:   e.subject,
		Index:     e.index,
		Total:     len(e.questions),
		Score:     e.score,
		WeakAreas: append([]string{}, e.weakAreas...),
	}
	if e.loadErr != nil {
		s.LoadError = e.loadErr.Error()
	}
	if e.state == StateActive {
		q := e.questions[e.index].clone()
		s.Question = &q
		s.Selected = e.answers[e.index]
		s.Revealed = e.revealed[e.index]
		s.Correct = s.Revealed && q.IsCorrect(s.Selected)
	}
	if e.report != nil {
		r := *e.report
		r.WeakAreas = append([]string(nil), r.WeakAreas...)
		s.Report = &r
	}
	return s
}

// clear resets the per-attempt fields. Caller holds mu.
func (e *Engine) clear() {
	e.index = 0
	e.answers = make(map[int]string)
	e.revealed = make(map[int]bool)
	e.score = 0
	e.weakAreas = nil
}

func (e *Engine) addWeakArea(prompt string) {
	for _, w := range e.weakAreas {
		if w == prompt {
			return
		}
	}
	e.weakAreas = append(e.weakAreas, prompt)
}

// buildReport derives the report. Caller holds mu.
func (e *Engine) buildReport() Report {
	total := len(e.questions)
	pct := math.Round(1000*float64(e.score)/float64(total)) / 10
	return Report{
		Subject:     e.subject,
		Score:       e.score,
		Total:       total,
		Percentage:  pct,
		Performance: PerformanceLabel(pct),
		WeakAreas:   append([]string{}, e.weakAreas...),
		CompletedAt: e.now().UTC(),
	}
}
