// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package report renders the end-of-run summary of a push or pull for the
// terminal.
//
// Failures are collected into one bordered errors box, shown first so it
// reads like a modal. Stores or tables that succeeded, or had nothing to
// do, are listed in a separate panel, each line prefixed with the colored
// indicator of its final state.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// line is one row of either section.
type line struct {
	state    models.IndicatorState
	name     string
	messages []string
}

// RenderBackup renders the report of a push.
func RenderBackup(result models.BackupResult) string {
	var failures, successes []line
	for _, s := range result.Stores {
		l := line{state: s.State, name: string(s.Store), messages: s.Messages}
		if s.State == models.IndicatorRed || s.Skipped {
			failures = append(failures, l)
			continue
		}
		successes = append(successes, l)
	}
	return render("Backup", result.AuthRequired, failures, successes)
}

// RenderTransfer renders the report of a pull.
func RenderTransfer(result models.TransferResult) string {
	var failures, successes []line
	for _, t := range result.Tables {
		l := line{state: t.State, name: string(t.Table), messages: t.Messages}
		if t.State == models.IndicatorRed {
			failures = append(failures, l)
			continue
		}
		successes = append(successes, l)
	}
	return render("Transfer", result.AuthRequired, failures, successes)
}

func render(title string, authRequired bool, failures, successes []line) string {
	var sections []string

	if authRequired || len(failures) > 0 {
		var b strings.Builder
		b.WriteString(titleStyle.Render(title + " errors"))
		if authRequired {
			b.WriteString("\n" + Glyph(models.IndicatorRed) + " " + app.MsgAuthRequired)
		}
		for _, l := range failures {
			b.WriteString("\n" + l.String())
		}
		sections = append(sections, errorBox.Render(b.String()))
	}

	if len(successes) > 0 {
		var b strings.Builder
		b.WriteString(titleStyle.Render(title))
		for _, l := range successes {
			b.WriteString("\n" + l.String())
		}
		sections = append(sections, successPanel.Render(b.String()))
	}

	if len(sections) == 0 {
		return faintStyle.Render(fmt.Sprintf("%s: nothing to do", title))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (l line) String() string {
	text := Glyph(l.state) + " " + l.name
	if len(l.messages) > 0 {
		text += ": " + strings.Join(l.messages, "; ")
	}
	return text
}
