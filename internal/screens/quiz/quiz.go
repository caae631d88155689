package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// QuizScreen runs a mock test on the quiz engine.
type QuizScreen struct {
	engine   *qz.Engine
	fresh    bool
	snap     qz.Snapshot
	input    components.TextInput
	choice   components.MultiChoice
	choiceOf int // question index the selector was built for
	starting bool
	spinner  int
	errMsg   string
	timeout  time.Duration
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen that starts from the subject prompt.
func New(engine *qz.Engine) *QuizScreen {
	return &QuizScreen{
		engine:   engine,
		fresh:    true,
		input:    components.NewTextInput(qz.DefaultSubject, false, 60),
		choiceOf: -1,
	}
}

// Continue creates a QuizScreen over the engine's current attempt, used
// after a restart from the report.
func Continue(engine *qz.Engine) *QuizScreen {
	s := New(engine)
	s.fresh = false
	return s
}

// WithTimeout bounds loading a question set by d. Zero means no bound.
func (s *QuizScreen) WithTimeout(d time.Duration) *QuizScreen {
	s.timeout = d
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.fresh {
		s.engine.Reset()
	}
	s.refresh()
	return s.input.Init()
}

func (s *QuizScreen) Title() string {
	return "Mock Test"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.snap.State {
	case qz.StateActive:
		if s.snap.Revealed {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Next"},
				{Key: "Esc", Description: "Quit test"},
			}
		}
		return []layout.KeyHint{
			{Key: "↑↓/1-4", Description: "Choose"},
			{Key: "Space", Description: "Select"},
			{Key: "Enter", Description: "Check"},
			{Key: "Esc", Description: "Quit test"},
		}
	case qz.StateLoading:
		if s.errMsg != "" {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Retry"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return nil
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizStartedMsg:
		if errors.Is(msg.Err, qz.ErrSuperseded) {
			// A newer start owns the engine and reports on its own.
			return s, nil
		}
		s.starting = false
		s.refresh()
		if msg.Err != nil {
			s.errMsg = describeLoadError(msg.Err)
		}
		return s, nil

	case spinnerTickMsg:
		if !s.starting {
			return s, nil
		}
		s.spinner = (s.spinner + 1) % len(spinnerFrames)
		return s, spinnerTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.snap.State == qz.StateWelcome {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.snap.State {
	case qz.StateWelcome:
		if key == "enter" {
			return s, s.start(s.input.Trimmed())
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case qz.StateLoading:
		if key == "enter" && !s.starting && s.errMsg != "" {
			return s, s.start(s.snap.Subject)
		}
		return s, nil

	case qz.StateActive:
		if s.snap.Revealed {
			if key == "enter" || key == "right" || key == "n" {
				return s.advance()
			}
			return s, nil
		}
		switch key {
		case "space", " ":
			s.engine.SelectAnswer(s.choice.Current())
			s.refresh()
			return s, nil
		case "enter":
			if s.snap.Selected == "" {
				s.engine.SelectAnswer(s.choice.Current())
			}
			if err := s.engine.CheckAnswer(); err != nil && !errors.Is(err, qz.ErrNoAnswerSelected) {
				s.errMsg = err.Error()
			}
			s.refresh()
			return s, nil
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd

	case qz.StateComplete:
		return s, s.showReport()
	}

	return s, nil
}

func (s *QuizScreen) start(subject string) tea.Cmd {
	s.starting = true
	s.errMsg = ""
	// Loading is entered synchronously so the spinner shows at once.
	s.snap.State = qz.StateLoading
	s.snap.Subject = subject
	if s.snap.Subject == "" {
		s.snap.Subject = qz.DefaultSubject
	}

	return tea.Batch(startQuiz(s.engine, subject, s.timeout), spinnerTick())
}

func startQuiz(engine *qz.Engine, subject string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return quizStartedMsg{Err: engine.Start(ctx, subject)}
	}
}

func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	s.engine.Advance(context.Background())
	s.refresh()
	if s.snap.State == qz.StateComplete {
		return s, s.showReport()
	}
	return s, nil
}

func (s *QuizScreen) showReport() tea.Cmd {
	report, ok := s.engine.Report()
	if !ok {
		return nil
	}
	engine, timeout := s.engine, s.timeout
	next := summary.New(report, func() screen.Screen {
		engine.Restart()
		return Continue(engine).WithTimeout(timeout)
	})
	return router.ReplaceCmd(next)
}

// refresh re-reads the engine and rebuilds the option selector when the
// question changes.
func (s *QuizScreen) refresh() {
	s.snap = s.engine.Snapshot()
	if s.snap.Question == nil {
		s.choiceOf = -1
		return
	}
	if s.choiceOf != s.snap.Index {
		s.choice = components.NewMultiChoice(s.snap.Question.Options)
		s.choiceOf = s.snap.Index
	}
	s.choice.Chosen = s.snap.Selected
	s.choice.Revealed = s.snap.Revealed
	if s.snap.Revealed {
		s.choice.Correct = s.snap.Question.CorrectOption
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func describeLoadError(err error) string {
	var qle *qz.QuestionLoadError
	if errors.As(err, &qle) {
		return "Could not load questions for " + qle.Subject + "."
	}
	return "Could not load questions."
}
