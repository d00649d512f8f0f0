package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stylec/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	defaultWidth = 80
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help            Print this cruft
  target <Type>   Resolve setters against Type
  props [Type]    List the properties of Type (default: target)
  types           List every known type
  clear           Clear screen
  quit            Exit REPL

Usage:
  Type setter props as a YAML flow mapping to compile them, e.g.
    Property: Width, Value: 42
    PropertyPath: (Grid.Row), Value: 1
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between setter and command modes
  Use Up/Down for history, Shift+Up/Shift+Down within the current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode is the kind of line being entered.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	codeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx     context.Context
	input   textinput.Model
	session *Session
	logger  log.Logger
	history *History
	histIdx int

	matches   fuzzy.Matches
	wordStart int
	wordEnd   int
	suggIdx   int  // selected candidate, -1 when none
	tabActive bool // cycling candidates with Tab
	preTab    string
	preCursor int

	width    int
	quitting bool
	mode     inputMode
	saved    [2]string // input of the inactive mode
}

// Run starts an interactive session compiling setters with session. Input
// history is kept in cacheDir.
func Run(ctx context.Context, session *Session, cacheDir string, logger log.Logger) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("target", session.Target().Name),
		slog.Int("history", history.Len()),
	)

	_, err = tea.NewProgram(newModel(ctx, session, history, logger), tea.WithContext(ctx)).Run()

	return err
}

func newModel(ctx context.Context, session *Session, history *History, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctx:     ctx,
		input:   ti,
		session: session,
		logger:  logger,
		history: history,
		histIdx: history.Len(),
		suggIdx: -1,
		width:   defaultWidth,
		mode:    modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var hint string

	switch {
	case m.histIdx < m.history.Len():
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.histIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(m.input.Value()) == "" && m.mode == modeEval:
		hint = hintStyle.Render(fmt.Sprintf(
			"Setter props for %s, or press Esc for commands", m.session.Target().Name))

	case strings.TrimSpace(m.input.Value()) == "" && len(m.matches) == 0:
		hint = hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")

	default:
		sel := -1
		if m.tabActive {
			sel = m.suggIdx
		}

		hint = renderCandidateBar(m.matches, sel, m.width)
	}

	return m.input.View() + "\n" + hint + "\n"
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.histIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refresh(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1, false), nil

	case tea.KeyDown:
		return m.recall(+1, false), nil

	case tea.KeyShiftUp:
		return m.recall(-1, true), nil

	case tea.KeyShiftDown:
		return m.recall(+1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTab)
			m.input.SetCursor(m.preCursor)
			m.refresh(false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchMode(modeCtrl), nil
		}

		return m.switchMode(modeEval), nil
	}

	// Typing confirms a tab selection; Space commits it.
	typed := msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace
	if !typed || msg.String() == " " {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.histIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(typed)

	return m, cmd
}

// cycle selects the next (step +1) or previous (step -1) candidate and
// writes it over the current word. A sole candidate is accepted outright.
func (m model) cycle(step int) model {
	switch n := len(m.matches); {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTab = m.input.Value()
		m.preCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refresh recomputes the candidates for the word at the cursor. With
// confirm set, a word already equal to its sole candidate is accepted.
func (m *model) refresh(confirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if confirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// recall moves through history by step. Unless sameMode is set, recalled
// entries switch the input to the mode they were entered in. Moving past
// the newest entry clears the input.
func (m model) recall(step int, sameMode bool) model {
	var keep func(HistoryEntry) bool
	if sameMode {
		mode := m.mode
		keep = func(e HistoryEntry) bool { return e.Mode == mode }
	}

	i := m.history.Seek(m.histIdx, step, keep)
	if i < 0 {
		if step > 0 && m.histIdx < m.history.Len() {
			m.histIdx = m.history.Len()
			m.input.SetValue("")
			m.refresh(false)
		}

		return m
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.histIdx = i

	if entry.Mode != m.mode {
		m = m.switchMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refresh(false)

	return m
}

// switchMode changes the input mode, keeping each mode's pending input.
func (m model) switchMode(mode inputMode) model {
	m.saved[m.mode] = m.input.Value()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.saved[mode])
	m.input.SetCursor(len(m.saved[mode]))
	m.refresh(false)

	return m
}

func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]string{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.histIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(input)
	}

	return m, tea.Sequence(
		tea.Println(promptStyle.Render(evalPrompt)+inputStyle.Render(input)),
		tea.Println(m.eval(input)),
	)
}

// eval compiles one setter and renders the result or error.
func (m model) eval(input string) string {
	res, err := m.session.Eval(m.ctx, input)
	if err != nil {
		m.logger.TraceContext(m.ctx, "repl eval failed", slog.Any("error", err))

		out := errorStyle.Render("error: " + err.Error())

		if col := m.session.Column(input, err); col > 0 {
			caret := strings.Repeat(" ", lipgloss.Width(evalPrompt)+col-1) + "^"
			out = errorStyle.Render(caret) + "\n" + out
		}

		return out
	}

	lines := make([]string, 0, len(res.Tree)+len(res.Code))
	for _, s := range res.Tree {
		lines = append(lines, resultStyle.Render(s))
	}

	for _, s := range res.Code {
		lines = append(lines, codeStyle.Render(s))
	}

	return strings.Join(lines, "\n")
}

func (m model) command(input string) (model, tea.Cmd) {
	args := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", args[0]),
		slog.Any("args", args[1:]),
	)

	var out string

	switch args[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "h", "help":
		out = helpMessage

	case "t", "target":
		if len(args) < 2 {
			out = resultStyle.Render(m.session.Target().Name)

			break
		}

		if err := m.session.SetTarget(args[1]); err != nil {
			out = errorStyle.Render("error: " + err.Error())

			break
		}

		out = resultStyle.Render("target " + m.session.Target().Name)

	case "p", "props":
		out = m.props(args[1:])

	case "types":
		out = m.types()

	default:
		out = errorStyle.Render("error: " +
			ErrUnknownCommand.With(slog.String("command", args[0])).Error())
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// props lists the properties of the named type, or of the target.
func (m model) props(args []string) string {
	owner := m.session.Target()

	if len(args) > 0 {
		if owner = m.session.Type(args[0]); owner == nil {
			return errorStyle.Render("error: " +
				ErrUnknownType.With(slog.String("type", args[0])).Error())
		}
	}

	var b strings.Builder

	for _, p := range m.session.Properties(owner) {
		fmt.Fprintf(&b, "  %s %s\n", p.Name,
			hintStyle.Render(p.Type.Name+" ("+p.DeclaringType.Name+")"))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no properties)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) types() string {
	var b strings.Builder

	for _, name := range m.session.TypeNames() {
		typ := m.session.Type(name)
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(typ.Kind.String()))
	}

	return strings.TrimSuffix(b.String(), "\n")
}
