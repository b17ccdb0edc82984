package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/taskplan/internal/model"
	"github.com/sandeepkv93/taskplan/internal/persist"
	"github.com/sandeepkv93/taskplan/internal/report"
	"github.com/sandeepkv93/taskplan/internal/store"
)

type Mode string

const (
	ModeBrowse  Mode = "browse"
	ModeInput   Mode = "input"
	ModeConfirm Mode = "confirm"
	ModePalette Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	NewTask    string
	AddSubtask string
	Expand     string
	Status     string
	Priority   string
	Delete     string
	ClearAll   string
	Export     string
	AutoSave   string
	Report     string
	Palette    string
	Help       string
	Quit       string
}

type inputPurpose string

const (
	inputNewTask inputPurpose = "new-task"
	inputSubtask inputPurpose = "subtask"
)

type InputState struct {
	Purpose  inputPurpose
	ParentID string
}

type confirmAction string

const (
	confirmDelete   confirmAction = "delete"
	confirmClearAll confirmAction = "clear-all"
)

// Confirmation is a pending destructive action waiting for y.
type Confirmation struct {
	Action   confirmAction
	TaskID   string
	Title    string
	Message  string
	ItemName string
}

type treeRow struct {
	Task  model.Task
	Depth int
}

type Model struct {
	Store   *store.Store
	Persist *persist.Coordinator

	Mode           Mode
	SelectedTaskID string
	Input          InputState
	Confirm        *Confirmation
	Status         StatusBar
	HelpVisible    bool
	ReportVisible  bool
	ReportDays     int
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	rows    []treeRow
	cursor  int
	changes chan store.Change
	now     func() time.Time
	log     zerolog.Logger

	titleInput    textinput.Model
	commandInput  textinput.Model
	saveSpinner   spinner.Model
	spinnerActive bool
	helpModel     help.Model
	progressBar   progress.Model
	detailView    viewport.Model
}

// StoreChangedMsg is delivered after every store mutation, including those
// made outside the UI such as a hydrating auto-load.
type StoreChangedMsg struct {
	Change store.Change
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type Options struct {
	Store   *store.Store
	Persist *persist.Coordinator
	Logger  zerolog.Logger
	Now     func() time.Time
}

func NewModel(opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := Model{
		Store:      opts.Store,
		Persist:    opts.Persist,
		Mode:       ModeBrowse,
		ReportDays: report.DefaultRecentDays,
		Keys: GlobalKeyMap{
			NewTask:    "n",
			AddSubtask: "a",
			Expand:     " ",
			Status:     "s",
			Priority:   "p",
			Delete:     "d",
			ClearAll:   "X",
			Export:     "w",
			AutoSave:   "A",
			Report:     "r",
			Palette:    "/",
			Help:       "?",
			Quit:       "q",
		},
		changes: make(chan store.Change, 1),
		now:     now,
		log:     opts.Logger.With().Str("component", "ui").Logger(),
	}
	if m.Store != nil {
		changes := m.changes
		m.Store.Subscribe(func(c store.Change) {
			select {
			case changes <- c:
			default:
			}
		})
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.titleInput = textinput.New()
	m.titleInput.Prompt = "title> "
	m.titleInput.CharLimit = 256
	m.titleInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 512
	m.commandInput.Width = 56

	m.saveSpinner = spinner.New()
	m.saveSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.progressBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(12), progress.WithoutPercentage())
	m.detailView = viewport.New(52, 14)
}
