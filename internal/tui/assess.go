// Package tui provides the interactive terminal flow for running a
// transparency assessment question by question.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/questions"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// stepResultMsg is sent when the engine has scored an answer.
type stepResultMsg struct {
	Step *assessment.StepResult
	Err  error
}

// spinnerTickMsg animates the scoring spinner.
type spinnerTickMsg time.Time

type phase int

const (
	phaseAnswering phase = iota
	phaseScoring
	phaseFeedback
	phaseDone
	phaseFailed
)

// Model drives one assessment session in the terminal.
type Model struct {
	engine      *assessment.Engine
	sessionID   string
	productName string

	input textinput.Model
	phase phase

	questionNumber int
	questionText   string
	lastStep       *assessment.StepResult
	finalScore     *float64
	allScores      []int

	spinTick int
	err      error
	width    int
}

// New creates the assessment model positioned at the given question.
func New(engine *assessment.Engine, sessionID, productName string, questionNumber int) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your answer and press Enter"
	ti.Focus()

	return Model{
		engine:         engine,
		sessionID:      sessionID,
		productName:    productName,
		input:          ti,
		phase:          phaseAnswering,
		questionNumber: questionNumber,
		questionText:   questions.Get(questionNumber),
		width:          80,
	}
}

// Run starts the interactive assessment program.
func Run(engine *assessment.Engine, sessionID, productName string, questionNumber int) error {
	p := tea.NewProgram(New(engine, sessionID, productName, questionNumber))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinnerTickMsg:
		if m.phase != phaseScoring {
			return m, nil
		}
		m.spinTick++
		return m, spinnerTick()

	case stepResultMsg:
		return m.handleStepResult(msg)
	}

	if m.phase == phaseAnswering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		switch m.phase {
		case phaseAnswering:
			answer := strings.TrimSpace(m.input.Value())
			if answer == "" {
				return m, nil
			}
			m.phase = phaseScoring
			m.spinTick = 0
			return m, tea.Batch(m.submit(answer), spinnerTick())

		case phaseFeedback:
			// Advance to the next question.
			m.phase = phaseAnswering
			m.questionNumber = m.lastStep.QuestionNumber + 1
			m.questionText = questions.Get(m.questionNumber)
			m.input.SetValue("")
			return m, m.input.Focus()

		case phaseDone, phaseFailed:
			return m, tea.Quit
		}
	}

	if m.phase == phaseAnswering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleStepResult(msg stepResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.phase = phaseFailed
		m.err = msg.Err
		return m, nil
	}

	m.lastStep = msg.Step
	m.allScores = msg.Step.AllScores
	if msg.Step.IsComplete {
		m.phase = phaseDone
		m.finalScore = msg.Step.FinalScore
		return m, nil
	}
	m.phase = phaseFeedback
	return m, nil
}

// submit scores the answer off the UI goroutine.
func (m Model) submit(answer string) tea.Cmd {
	engine, sessionID := m.engine, m.sessionID
	return func() tea.Msg {
		step, err := engine.SubmitAnswer(context.Background(), sessionID, answer)
		return stepResultMsg{Step: step, Err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (m Model) View() tea.View {
	return tea.NewView(m.content())
}

func (m Model) content() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Transparency Assessment"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s", m.productName)))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseAnswering, phaseScoring:
		b.WriteString(dimStyle.Render(fmt.Sprintf("Question %d of %d", m.questionNumber, questions.Count())))
		b.WriteString("\n")
		b.WriteString(questionStyle.Width(min(m.width-2, 76)).Render(m.questionText))
		b.WriteString("\n\n")
		if m.phase == phaseScoring {
			frame := spinnerFrames[m.spinTick%len(spinnerFrames)]
			b.WriteString(warnStyle.Render(frame + " Scoring your answer..."))
		} else {
			b.WriteString(m.input.View())
			b.WriteString("\n\n")
			b.WriteString(hintStyle.Render("Enter to submit · Ctrl+C to quit"))
		}

	case phaseFeedback:
		b.WriteString(m.renderScoreLine(m.lastStep))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Enter for the next question"))

	case phaseDone:
		b.WriteString(scoreStyle.Render("Assessment complete"))
		b.WriteString("\n\n")
		for i, s := range m.allScores {
			b.WriteString(fmt.Sprintf("  Q%d: %d/100\n", i+1, s))
		}
		if m.finalScore != nil {
			b.WriteString("\n")
			b.WriteString(scoreStyle.Render(fmt.Sprintf("Final transparency score: %.1f/100", *m.finalScore)))
		}
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Enter to exit"))

	case phaseFailed:
		b.WriteString(errorStyle.Render("Assessment failed"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %v\n\n", m.err))
		b.WriteString(hintStyle.Render("Enter to exit"))
	}

	b.WriteString("\n")
	return b.String()
}

func (m Model) renderScoreLine(step *assessment.StepResult) string {
	line := fmt.Sprintf("Question %d scored %d/100", step.QuestionNumber, step.Score)
	if step.Degraded {
		return warnStyle.Render(line + " (fallback score; the scoring service was unavailable)")
	}
	return scoreStyle.Render(line)
}
