package tui

import (
	"strings"

	"github.com/emiliopalmerini/mclass/internal/pkg/tui/theme"
)

// NavItem is one tab of the navigation bar.
type NavItem struct {
	Key    string
	Label  string
	Active bool
}

// NavBar renders tabs with their key hints.
type NavBar struct {
	Items  []NavItem
	styles *theme.Styles
}

func NewNavBar(items []NavItem) *NavBar {
	return &NavBar{Items: items, styles: theme.Default()}
}

func (n NavBar) View() string {
	items := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		if item.Active {
			items = append(items, n.styles.Active.Render(item.Label))
			continue
		}
		items = append(items, n.styles.Muted.Render("["+item.Key+"]")+" "+n.styles.Inactive.Render(item.Label))
	}
	return strings.Join(items, n.styles.Muted.Render("  /  "))
}
