package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-farrier-sync/models"
)

type indicatorMsg models.IndicatorEvent

type eventsClosedMsg struct{}

type runDoneMsg struct {
	err error
}

// waitForEvent delivers the next board change as a message.
func waitForEvent(events <-chan models.IndicatorEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return indicatorMsg(event)
	}
}
