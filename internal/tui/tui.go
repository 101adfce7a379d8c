package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/dungeon-guardian/internal/guardian"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

type sessionState int

const (
	stateMenu sessionState = iota
	stateCustom
	stateRunning
	stateStepping
	stateFinished
	stateError
)

type model struct {
	state     sessionState
	factory   guardian.Factory
	scenarios []models.Scenario
	queue     []models.Scenario
	current   models.Scenario
	sim       *guardian.Simulation
	textInput textinput.Model
	viewport  viewport.Model
	question  int
	answers   models.CustomAnswers
	runLog    string
	notice    string
	err       error
	width     int
	height    int
}

var (
	goalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

const menuText = `1. Run all scenarios
2. Create custom scenario
3. Quick demo
4. Exit`

func NewModel(factory guardian.Factory, scenarios []models.Scenario) model {
	ti := textinput.New()
	ti.Placeholder = "Choose an option (1-4)"
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 40

	return model{
		state:     stateMenu,
		factory:   factory,
		scenarios: scenarios,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type stepMsg struct {
	step guardian.Step
	ok   bool
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			switch m.state {
			case stateMenu:
				choice := strings.TrimSpace(m.textInput.Value())
				m.textInput.Reset()
				return m.chooseMenu(choice)
			case stateCustom:
				models.CustomQuestions[m.question].Set(&m.answers, m.textInput.Value())
				m.textInput.Reset()
				m.question++
				if m.question < len(models.CustomQuestions) {
					m.textInput.Placeholder = models.CustomQuestions[m.question].Prompt
					return m, nil
				}
				return m.startQueue([]models.Scenario{models.CustomScenario(m.answers)})
			case stateRunning:
				m.state = stateStepping
				return m, m.step()
			case stateFinished:
				return m.next()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.65)
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.runLog)

	case stepMsg:
		if !msg.ok {
			m.state = stateFinished
			return m, nil
		}
		m.appendStep(msg.step)
		m.state = stateRunning
		if msg.step.Outcome.Terminal() {
			m.state = stateFinished
			m.runLog += titleStyle.Render("Outcome: "+msg.step.Outcome.String()) + "\n"
			m.viewport.SetContent(m.runLog)
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	if m.state == stateMenu || m.state == stateCustom {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	if m.state == stateRunning || m.state == stateFinished {
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) chooseMenu(choice string) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch choice {
	case "1":
		return m.startQueue(m.scenarios)
	case "2":
		m.state = stateCustom
		m.question = 0
		m.answers = models.CustomAnswers{}
		m.textInput.Placeholder = models.CustomQuestions[0].Prompt
		return m, nil
	case "3":
		demo, err := models.FindScenario(models.QuickDemo, m.scenarios)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		return m.startQueue([]models.Scenario{demo})
	case "4":
		return m, tea.Quit
	}
	m.notice = "Invalid choice. Please try again."
	return m, nil
}

func (m model) startQueue(queue []models.Scenario) (tea.Model, tea.Cmd) {
	m.queue = append([]models.Scenario(nil), queue...)
	return m.next()
}

// next starts the next queued scenario or goes back to the menu.
func (m model) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.state = stateMenu
		m.sim = nil
		m.textInput.Placeholder = "Choose an option (1-4)"
		return m, nil
	}
	m.current, m.queue = m.queue[0], m.queue[1:]
	sim, err := m.factory(m.current)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.sim = sim
	m.state = stateRunning

	logWidth := m.logWidth()
	header := textStyle.Bold(true).Render("Scenario: " + m.current.Name)
	description := textStyle.Width(logWidth).Render(m.current.Description)
	m.runLog = header + "\n" + description + "\n\n"
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(logWidth, max(m.height-6, 10))
	}
	m.viewport.SetContent(m.runLog)
	m.viewport.GotoTop()
	return m, nil
}

func (m *model) appendStep(st guardian.Step) {
	logWidth := m.logWidth()
	var b strings.Builder
	b.WriteString(goalStyle.Width(logWidth).Render(fmt.Sprintf("Step %d: %s", st.Number, st.Goal)))
	b.WriteString("\n")
	b.WriteString(textStyle.Width(logWidth).Render(st.GoalText))
	b.WriteString("\n")
	if len(st.Plan) > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("Plan: %v", st.Plan)))
		b.WriteString("\n")
	}
	if st.Action != "" {
		b.WriteString(textStyle.Width(logWidth).Render(st.ActionText))
		b.WriteString("\n")
		if st.Success {
			b.WriteString(textStyle.Width(logWidth).Render(st.Message))
		} else {
			b.WriteString(failStyle.Width(logWidth).Render(st.Message))
			b.WriteString("\n")
			b.WriteString(failStyle.Width(logWidth).Render(st.Reflection))
		}
		b.WriteString("\n")
	}
	m.runLog += b.String() + "\n"
	m.viewport.SetContent(m.runLog)
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	if m.width == 0 {
		return 60
	}
	return int(float64(m.width) * 0.65)
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateMenu:
		s = fmt.Sprintf("%s\n\n%s\n\n%s", titleStyle.Render("DUNGEON GUARDIAN"), menuText, m.textInput.View())
		if m.notice != "" {
			s += "\n\n" + failStyle.Render(m.notice)
		}

	case stateCustom:
		s = fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s",
			titleStyle.Render("CUSTOM SCENARIO"),
			fmt.Sprintf("Question %d of %d: %s", m.question+1, len(models.CustomQuestions), models.CustomQuestions[m.question].Prompt),
			m.textInput.View(),
			helpStyle.Render("Invalid numbers fall back to a default guardian."),
		)

	case stateRunning, stateStepping, stateFinished:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderState())
		help := "Enter: next step. Esc: quit."
		if m.state == stateFinished {
			help = "Enter: continue. Esc: quit."
			if len(m.queue) > 0 {
				help = fmt.Sprintf("Enter: next scenario (%d left). Esc: quit.", len(m.queue))
			}
		}
		s = lipgloss.JoinVertical(lipgloss.Left, mainView, "\n"+helpStyle.Render(help))

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderState() string {
	if m.sim == nil {
		return ""
	}
	state := m.sim.State()

	content := titleStyle.Render("GUARDIAN") + "\n" +
		fmt.Sprintf("Health: %d/%d\nStamina: %d\nPotions: %d\nPotion in hand: %s\n\n",
			state.Health, models.MaxHealth, state.Stamina, state.PotionCount, yesNo(state.HasPotion)) +
		titleStyle.Render("SURROUNDINGS") + "\n" +
		fmt.Sprintf("Treasure threat: %s\nEnemy nearby: %s\nIn safe zone: %s\nBackup: %s\n\n",
			state.TreasureThreatLevel, yesNo(state.EnemyNearby), yesNo(state.IsInSafeZone), yesNo(state.BackupAvailable)) +
		titleStyle.Render("RUN") + "\n" +
		fmt.Sprintf("Step: %d/%d\nFailures: %d\n", len(m.sim.Steps()), m.sim.MaxSteps(), m.sim.Memory().Len())

	stateWidth := int(float64(m.width) * 0.30)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (m model) step() tea.Cmd {
	sim := m.sim
	return func() tea.Msg {
		st, ok := sim.Step(context.Background())
		return stepMsg{step: st, ok: ok}
	}
}

// Run starts the interactive menu.
func Run(factory guardian.Factory, scenarios []models.Scenario) error {
	p := tea.NewProgram(NewModel(factory, scenarios), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
