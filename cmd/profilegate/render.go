package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/target/profilegate/internal/domain/gate"
	"github.com/target/profilegate/internal/multipart"
	"github.com/target/profilegate/internal/service"
)

var (
	// Styles
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Width(12)

	dashboardStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	incompleteStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	loggedOutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

func modeText(m gate.Mode) string {
	switch m.Kind {
	case gate.KindDashboard:
		return dashboardStyle.Render("dashboard")
	case gate.KindProfileIncomplete:
		return incompleteStyle.Render("profile incomplete")
	default:
		return loggedOutStyle.Render("logged out")
	}
}

func row(w io.Writer, label, value string) error {
	_, err := fmt.Fprintln(w, labelStyle.Render(label)+value)
	return err
}

// printState writes the mode, identity and, for a gated role, what is still missing.
func printState(w io.Writer, st service.State, missing []string) error {
	if err := row(w, "Mode", modeText(st.Mode)); err != nil {
		return err
	}
	if !st.Session.LoggedIn() {
		return nil
	}
	rows := [][2]string{
		{"User", st.Session.UserID},
		{"Role", string(st.Session.Role)},
	}
	if st.Session.Role.RequiresProfile() {
		rows = append(rows, [2]string{"Profile", st.Session.Completion.String()})
	}
	if len(missing) > 0 {
		rows = append(rows, [2]string{"Missing", incompleteStyle.Render(strings.Join(missing, ", "))})
	}
	for _, r := range rows {
		if err := row(w, r[0], r[1]); err != nil {
			return err
		}
	}
	return nil
}

func printWarnings(w io.Writer, warnings []multipart.Warning) error {
	for _, warn := range warnings {
		if _, err := fmt.Fprintln(w, warnStyle.Render("skipped "+warn.String())); err != nil {
			return err
		}
	}
	return nil
}

func printDocuments(w io.Writer, docs []multipart.Attachment) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, loggedOutStyle.Render("no documents uploaded"))
		return err
	}
	for _, d := range docs {
		name := d.Filename
		if name == "" {
			name = d.Source
		}
		if err := row(w, d.Name, name); err != nil {
			return err
		}
	}
	return nil
}
