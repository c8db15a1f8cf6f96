package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-farrier-sync/internal/report"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

type indicatorModel struct {
	title   string
	spinner spinner.Model
	events  <-chan models.IndicatorEvent

	// stores in the order they first changed
	order  []schema.StoreName
	states map[schema.StoreName]models.IndicatorState

	done       bool
	err        error
	quitByUser bool
}

func newIndicatorModel(title string, events <-chan models.IndicatorEvent) indicatorModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return indicatorModel{
		title:   title,
		spinner: s,
		events:  events,
		states:  make(map[schema.StoreName]models.IndicatorState),
	}
}

func (m indicatorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m indicatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case indicatorMsg:
		if _, seen := m.states[msg.Store]; !seen {
			m.order = append(m.order, msg.Store)
		}
		m.states[msg.Store] = msg.State
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, nil

	case runDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			m.quitByUser = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m indicatorModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	if len(m.order) == 0 && !m.done {
		b.WriteString("\n" + m.spinner.View() + " starting...")
	}
	for _, name := range m.order {
		state := m.states[name]
		glyph := report.Glyph(state)
		if state == models.IndicatorInProgress {
			glyph = m.spinner.View()
		}
		b.WriteString("\n" + glyph + " " + string(name))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render(m.err.Error()))
	}
	if !m.done {
		b.WriteString("\n\n" + helpStyle.Render(keys.quit.Help().Key+": "+keys.quit.Help().Desc))
	}

	return appStyle.Render(b.String())
}
