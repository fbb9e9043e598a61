package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by PickOne when the user backs out.
var ErrCancelled = errors.New("selection cancelled")

// SelectorItem represents an item in the selector
type SelectorItem struct {
	ID          string
	Label       string
	Description string
	Current     bool
}

// SelectorKeyMap defines the selector's key bindings
type SelectorKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// DefaultSelectorKeys returns the arrow/vim bindings
func DefaultSelectorKeys() SelectorKeyMap {
	return SelectorKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
	}
}

func (k SelectorKeyMap) help() string {
	parts := make([]string, 0, 4)
	for _, b := range []key.Binding{k.Up, k.Down, k.Select, k.Cancel} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, ", ")
}

// Selector is an interactive list selector
type Selector struct {
	title    string
	items    []SelectorItem
	keys     SelectorKeyMap
	cursor   int
	selected int
	active   bool
}

// NewSelector creates a new selector
func NewSelector(title string, items []SelectorItem) Selector {
	// Find currently selected item
	selected := 0
	for i, item := range items {
		if item.Current {
			selected = i
			break
		}
	}

	return Selector{
		title:    title,
		items:    items,
		keys:     DefaultSelectorKeys(),
		cursor:   selected,
		selected: selected,
		active:   true,
	}
}

// Active returns whether the selector is active
func (s Selector) Active() bool {
	return s.active
}

// Selected returns the selected item ID, or empty if cancelled
func (s Selector) Selected() string {
	if s.selected >= 0 && s.selected < len(s.items) {
		return s.items[s.selected].ID
	}
	return ""
}

// Cancelled returns whether the selector was cancelled
func (s Selector) Cancelled() bool {
	return !s.active && s.selected == -1
}

// Init implements tea.Model
func (s Selector) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s Selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !s.active {
		return s, tea.Quit
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch {
	case key.Matches(keyMsg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(keyMsg, s.keys.Down):
		if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case key.Matches(keyMsg, s.keys.Select):
		s.selected = s.cursor
		s.active = false
		return s, tea.Quit
	case key.Matches(keyMsg, s.keys.Cancel):
		s.selected = -1
		s.active = false
		return s, tea.Quit
	}

	return s, nil
}

// View renders the selector
func (s Selector) View() string {
	if !s.active {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(s.title))
	b.WriteString(" ")
	b.WriteString(HelpStyle.Render("(" + s.keys.help() + ")"))
	b.WriteString("\n\n")

	for i, item := range s.items {
		isCursor := i == s.cursor

		if isCursor {
			b.WriteString(SelectorCursor.Render(SymbolArrow) + " ")
		} else {
			b.WriteString("  ")
		}

		display := item.Label
		if display == "" {
			display = item.ID
		}
		label := fmt.Sprintf("%-20s", display)
		if isCursor {
			b.WriteString(SelectorActive.Render(label))
		} else {
			b.WriteString(SelectorItemStyle.Render(label))
		}

		if item.Description != "" {
			desc := item.Description
			if item.Current {
				desc += " (default)"
			}
			b.WriteString(SelectorDim.Render(desc))
		}

		b.WriteString("\n")
	}

	return b.String()
}

// PickOne runs a selector on the terminal and returns the chosen item ID.
func PickOne(in io.Reader, out io.Writer, title string, items []SelectorItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("nothing to select")
	}

	p := tea.NewProgram(NewSelector(title, items), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run selector: %w", err)
	}

	s, ok := final.(Selector)
	if !ok || s.Cancelled() {
		return "", ErrCancelled
	}
	return s.Selected(), nil
}
