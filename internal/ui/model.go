package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/tidysheet/internal/config"
	"github.com/nconklindev/tidysheet/internal/converter"
	"github.com/nconklindev/tidysheet/internal/logger"
	"github.com/nconklindev/tidysheet/internal/profile"
	"github.com/nconklindev/tidysheet/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateProcessing
	statePreview
	stateError
)

const (
	minColumnWidth = 4
	maxColumnWidth = 24
)

type Model struct {
	state        state
	cfg          *config.Config
	conv         *converter.Converter
	log          logger.Logger
	filepicker   filepicker.Model
	spinner      spinner.Model
	table        table.Model
	selectedFile string
	dataset      *types.Dataset
	profiles     []profile.ColumnProfile
	// loadSeq identifies the latest load; results carrying an older
	// number arrive after a reset and are dropped.
	loadSeq   int
	saving    bool
	savedPath string
	notice    string
	err       error
	width     int
	height    int
}

type datasetLoadedMsg struct {
	seq  int
	data *types.Dataset
	err  error
}

type exportCompleteMsg struct {
	path string
	err  error
}

func InitialModel(cfg *config.Config, conv *converter.Converter, log logger.Logger) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if conv == nil {
		conv = converter.New()
	}
	if log == nil {
		log = logger.Nop()
	}

	fp := filepicker.New()
	fp.AllowedTypes = converter.AllowedExtensions
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(accentDim)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(accentDim)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(accent)),
	)

	return Model{
		state:      stateFilePicker,
		cfg:        cfg,
		conv:       conv,
		log:        log,
		filepicker: fp,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, subtitle, notices and help text
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateProcessing:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "r":
				return m.reset()
			}
			return m, nil

		case statePreview:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "r":
				return m.reset()
			case "s", "enter":
				if m.saving {
					return m, nil
				}
				m.saving = true
				m.savedPath = ""
				m.err = nil
				return m, saveDataset(m.conv, m.dataset, m.exportDir())
			}
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case stateError:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "r", "enter", "esc":
				return m.reset()
			}
			return m, nil
		}

	case datasetLoadedMsg:
		if msg.seq != m.loadSeq || m.state != stateProcessing {
			m.log.Debug("Discarding stale load result", "seq", msg.seq, "current", m.loadSeq)
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("Load failed", "file", m.selectedFile, "error", msg.err.Error())
			m.err = msg.err
			m.state = stateError
			return m, nil
		}

		m.dataset = msg.data
		m.profiles = profile.Summarize(msg.data)
		m.table = m.buildTable()
		m.state = statePreview
		return m, nil

	case exportCompleteMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.savedPath = msg.path
		return m, nil

	case spinner.TickMsg:
		if m.state != stateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.startLoad(path)
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.notice = fmt.Sprintf("%s is not an Excel file. Please choose a .xlsx or .xls file.", filepath.Base(path))
			return m, cmd
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) startLoad(path string) (Model, tea.Cmd) {
	m.selectedFile = path
	m.loadSeq++
	m.state = stateProcessing
	m.notice = ""
	m.err = nil

	return m, tea.Batch(loadDataset(m.conv, path, m.loadSeq), m.spinner.Tick)
}

// reset drops the current dataset and any load still in flight, and goes
// back to the file picker.
func (m Model) reset() (Model, tea.Cmd) {
	m.loadSeq++
	m.state = stateFilePicker
	m.dataset = nil
	m.profiles = nil
	m.selectedFile = ""
	m.saving = false
	m.savedPath = ""
	m.notice = ""
	m.err = nil
	return m, m.filepicker.Init()
}

func (m Model) exportDir() string {
	if m.cfg.OutputDir != "" {
		return m.cfg.OutputDir
	}
	return filepath.Dir(m.selectedFile)
}

func loadDataset(conv *converter.Converter, path string, seq int) tea.Cmd {
	return func() tea.Msg {
		ds, err := conv.Load(path)
		return datasetLoadedMsg{seq: seq, data: ds, err: err}
	}
}

func saveDataset(conv *converter.Converter, ds *types.Dataset, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := conv.Save(ds, dir)
		return exportCompleteMsg{path: path, err: err}
	}
}

func (m Model) buildTable() table.Model {
	preview := m.dataset.Preview(m.cfg.PreviewRows)

	columns := make([]table.Column, len(m.dataset.Headers))
	for i, h := range m.dataset.Headers {
		width := len(h)
		for _, row := range preview {
			if w := lipgloss.Width(row.At(i).String()); w > width {
				width = w
			}
		}
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		columns[i] = table.Column{Title: h, Width: width}
	}

	rows := make([]table.Row, len(preview))
	for r, row := range preview {
		cells := make(table.Row, len(m.dataset.Headers))
		for i := range cells {
			cells[i] = row.At(i).String()
		}
		rows[r] = cells
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)
	t.SetStyles(tableStyles())
	return t
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateProcessing:
		return m.viewProcessing()
	case statePreview:
		return m.viewPreview()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ tidysheet - Spreadsheet Header Normalizer"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Turn messy column titles into snake_case names ready for a database"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a .xlsx or .xls file"))
	s.WriteString("\n\n")
	if m.notice != "" {
		s.WriteString(NoticeStyle.Render(m.notice))
		s.WriteString("\n\n")
	}
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Processing..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Reading %s", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("esc: choose another file • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewPreview() string {
	var s strings.Builder
	ds := m.dataset
	shown := len(ds.Preview(m.cfg.PreviewRows))

	s.WriteString(TitleStyle.Render("✓ Preview"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s • showing %d of %d processed rows", filepath.Base(m.selectedFile), shown, len(ds.Rows))))
	s.WriteString("\n\n")
	s.WriteString(m.table.View())
	s.WriteString("\n")

	if hidden := ds.Hidden(m.cfg.PreviewRows); hidden > 0 {
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("... and %d more rows hidden", hidden)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	for _, p := range m.profiles {
		s.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(p.Header), p.Describe()))
	}

	switch {
	case m.saving:
		s.WriteString("\nSaving...\n")
	case m.savedPath != "":
		s.WriteString("\n")
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("Saved %s", m.savedPath)))
		s.WriteString("\n")
	case m.err != nil:
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Export failed: %v", m.err)))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render(fmt.Sprintf("s/enter: save %s%s • r: convert another file • q: quit", ds.BaseName, converter.ExportSuffix)))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Processing failed"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("r/enter: try another file • q: quit"))

	return BoxStyle.Render(s.String())
}
