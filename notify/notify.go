// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package notify delivers stream notifications to the user.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/creachadair/flatjson/internal/logging"
	"github.com/creachadair/flatjson/twitch"
)

// A Notifier reports that a channel has started streaming.
type Notifier interface {
	Notify(ctx context.Context, e twitch.Event) error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	iconStyle  = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Terminal writes notifications to an output stream. When the stream is a
// terminal, notifications are drawn as boxes; otherwise each is written as a
// single line of text.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewTerminal constructs a Terminal that writes to w.
func NewTerminal(w io.Writer) *Terminal {
	var styled bool
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{w: w, styled: styled}
}

// Notify implements the Notifier interface.
func (t *Terminal) Notify(_ context.Context, e twitch.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, t.render(e))
	return err
}

func (t *Terminal) render(e twitch.Event) string {
	if !t.styled {
		return fmt.Sprintf("%s: %s\n", e.Title(), e.Message())
	}
	lines := []string{titleStyle.Render(e.Title()), e.Message()}
	if e.Icon != "" {
		lines = append(lines, iconStyle.Render(e.Icon))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

// Log reports notifications to the logger attached to the context.
type Log struct{}

// Notify implements the Notifier interface.
func (Log) Notify(ctx context.Context, e twitch.Event) error {
	kv := []any{logging.FieldChannel, e.Name, logging.FieldGame, e.Game}
	if e.Icon != "" {
		kv = append(kv, logging.FieldPath, e.Icon)
	}
	logging.FromContext(ctx).Info(e.Title(), kv...)
	return nil
}

// Multi is a Notifier that delivers each notification to all its elements,
// and reports the first error.
type Multi []Notifier

// Notify implements the Notifier interface.
func (m Multi) Notify(ctx context.Context, e twitch.Event) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
