package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Hint is shown dimmed under the
// selected item.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. Navigation wraps around and
// skips disabled items; digits 1-9 jump to an item.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	return m
}

// move steps the selection by dir until an enabled item is found.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	if n == 0 {
		return
	}
	i := m.Selected
	for range n {
		i = (i + dir + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Current returns the selected item, or false when every item is disabled.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) || m.Items[m.Selected].Disabled {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k":
		m.move(-1)
	case "down", "j", "tab":
		m.move(1)
	case "enter":
		if item, ok := m.Current(); ok && item.Action != nil {
			return m, item.Action()
		}
	default:
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(m.Items) && !m.Items[n-1].Disabled {
			m.Selected = n - 1
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			b.WriteString(theme.Hint.Render("    " + item.Label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + item.Label))
			if item.Hint != "" {
				b.WriteString("\n" + theme.Hint.Render("      "+item.Hint))
			}
		default:
			b.WriteString(theme.Unselected.Render("    " + item.Label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
