package main

import (
	"fmt"
	"strconv"

	"github.com/ashureev/rasman/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type styles struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	pending lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain, ok: plain, fail: plain, pending: plain, muted: plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (a *app) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(a.styles.muted).
		Headers(headers...)
}

func (a *app) renderSettings(s *domain.ServerSettings) {
	fmt.Fprintln(a.out, a.styles.title.Render("Server Settings"))
	if s == nil {
		s = &domain.ServerSettings{}
	}
	t := a.table("BASE URL", "PORT").Row(s.BaseURL, s.Port)
	fmt.Fprintln(a.out, t.Render())
	if !s.Configured() {
		fmt.Fprintln(a.out, a.styles.pending.Render("Server settings must be configured to continue."))
	}
}

func (a *app) renderUsers(users []domain.User) {
	fmt.Fprintln(a.out, a.styles.title.Render("Users"))
	t := a.table("ID", "SCREEN NAME")
	for _, u := range users {
		t.Row(u.ID, u.ScreenName)
	}
	fmt.Fprintln(a.out, t.Render())
}

func (a *app) renderHistory(msgs []*domain.SentMessage) {
	t := a.table("TIME", "FROM", "TO", "MESSAGE", "RESULT")
	for _, m := range msgs {
		result := a.styles.pending.Render(m.Result)
		switch m.State {
		case domain.SendSucceeded:
			result = a.styles.ok.Render(m.Result)
		case domain.SendFailed:
			result = a.styles.fail.Render(m.Result)
		}
		t.Row(m.Timestamp.Format("2006-01-02 15:04:05"), m.From, m.To, m.Message, result)
	}
	fmt.Fprintln(a.out, t.Render())
}

func (a *app) renderRooms(title string, rooms []domain.ChatRoom) {
	fmt.Fprintln(a.out, a.styles.title.Render(title))
	t := a.table("NAME", "PARTICIPANTS", "CREATED")
	for _, r := range rooms {
		t.Row(r.Name, strconv.Itoa(r.ParticipantCount()), r.CreateTime)
	}
	fmt.Fprintln(a.out, t.Render())
}

func (a *app) renderRoomDetail(room domain.ChatRoom) {
	fmt.Fprintln(a.out, a.styles.title.Render(room.Name))
	if room.CreatorID != nil {
		fmt.Fprintf(a.out, "Created by %s at %s\n", *room.CreatorID, room.CreateTime)
	}
	if room.URL != nil {
		fmt.Fprintf(a.out, "Address: %s\n", *room.URL)
	}
	fmt.Fprintf(a.out, "Participants (%d)\n", room.ParticipantCount())
	if room.ParticipantCount() == 0 {
		return
	}
	t := a.table("ID", "SCREEN NAME")
	for _, p := range room.Participants {
		t.Row(p.ID, p.ScreenName)
	}
	fmt.Fprintln(a.out, t.Render())
}

func (a *app) renderSessions(list domain.SessionList) {
	fmt.Fprintln(a.out, a.styles.title.Render(fmt.Sprintf("%d Active Sessions", list.Count)))
	t := a.table("ID", "SCREEN NAME")
	for _, s := range list.Sessions {
		t.Row(s.ID, s.ScreenName)
	}
	fmt.Fprintln(a.out, t.Render())
}
