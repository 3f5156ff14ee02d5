package kiosk

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/qrorder/internal/order"
)

const paneWidth = 44

// View implements tea.Model.
func (m Model) View() string {
	v := m.session.View()

	menu := m.pane("Menu", m.renderMenu(v))
	cart := m.pane("Cart", m.renderCart(v))
	var panes string
	if m.width > 0 && m.width < 2*(paneWidth+2) {
		panes = lipgloss.JoinVertical(lipgloss.Left, menu, cart)
	} else {
		panes = lipgloss.JoinHorizontal(lipgloss.Top, menu, cart)
	}

	var b strings.Builder
	b.WriteString(panes)
	b.WriteByte('\n')
	b.WriteString(m.renderOrder(v))
	b.WriteByte('\n')
	b.WriteString(m.renderNotice())
	b.WriteByte('\n')
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) pane(title, body string) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.HeaderForeground).
		Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Width(paneWidth).
		Padding(0, 1).
		Render(header + "\n" + body)
}

func (m Model) renderMenu(v order.View) string {
	unavailable := make(map[string]bool, len(v.Unavailable))
	for _, id := range v.Unavailable {
		unavailable[id] = true
	}

	nameStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	priceStyle := lipgloss.NewStyle().Foreground(m.theme.Price)
	highlightStyle := lipgloss.NewStyle().Foreground(m.theme.Highlight)
	soldOutStyle := lipgloss.NewStyle().Foreground(m.theme.SoldOut).Bold(true)
	categoryStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText).Italic(true)

	var lines []string
	category := ""
	for i, item := range m.items {
		if item.Category != category {
			category = item.Category
			for _, c := range m.catalog.Categories() {
				if c.ID == category {
					lines = append(lines, categoryStyle.Render(strings.TrimSpace(c.Icon+" "+c.Name)))
				}
			}
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + nameStyle.Render(item.Name) + "  " + priceStyle.Render(m.catalog.FormatPrice(item.Price))
		switch {
		case unavailable[item.ID]:
			line += "  " + soldOutStyle.Render("SOLD OUT")
		case item.Highlight != "":
			line += "  " + highlightStyle.Render(item.Highlight)
		}
		if i == m.cursor {
			line = lipgloss.NewStyle().
				Background(m.theme.SelectedBackground).
				Foreground(m.theme.SelectedForeground).
				Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCart(v order.View) string {
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	if v.Cart.IsEmpty() {
		return faint.Render("Your cart is empty.")
	}

	var lines []string
	for _, line := range v.Cart.Lines() {
		lines = append(lines, fmt.Sprintf("%d x %s  %s",
			line.Quantity, line.Name, m.catalog.FormatPrice(line.Subtotal())))
	}
	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%d items  Total %s", v.Cart.Count(), m.catalog.FormatPrice(v.Cart.Total()))))
	return strings.Join(lines, "\n")
}

func (m Model) renderOrder(v order.View) string {
	c := v.Commitment
	switch c.Status {
	case order.StatusPending:
		var parts []string
		if qr, err := renderQR(c.Token); err == nil {
			parts = append(parts, lipgloss.NewStyle().
				Foreground(m.theme.QRDark).
				Background(m.theme.QRLight).
				Render(qr))
		}
		parts = append(parts,
			"ORDER CODE  "+c.Token,
			m.renderConfirmed(c.Remaining()),
		)
		return lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(m.theme.Pending).
			Padding(0, 1).
			Render(strings.Join(parts, "\n"))

	case order.StatusInvalidated:
		reason := "the cart changed"
		if c.Cause == order.CauseItemsUnavailable {
			reason = "some items sold out"
			if len(c.Withdrawn) > 0 {
				reason += ": " + strings.Join(m.catalog.Names(c.Withdrawn), ", ")
			}
		}
		msg := lipgloss.NewStyle().
			Foreground(m.theme.Invalidated).
			Render(fmt.Sprintf("Order code void (%s). Press c to order again.", reason))
		if left := c.Remaining(); !left.IsEmpty() {
			msg += "\n" + lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Still available from that order:") +
				"\n" + m.renderConfirmed(left)
		}
		return msg
	}
	return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("No order yet. Press c when you are ready.")
}

// renderConfirmed lists the committed lines that have not sold out since.
func (m Model) renderConfirmed(cart order.Cart) string {
	var lines []string
	for _, l := range cart.Lines() {
		lines = append(lines, fmt.Sprintf("  %d x %s  %s",
			l.Quantity, l.Name, m.catalog.FormatPrice(l.Subtotal())))
	}
	lines = append(lines, fmt.Sprintf("%d items  %s", cart.Count(), m.catalog.FormatPrice(cart.Total())))
	return strings.Join(lines, "\n")
}

func (m Model) renderNotice() string {
	if m.feed.err != "" {
		return lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render(m.feed.err)
	}
	return lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(m.feed.notice)
}

func (m Model) renderHelp() string {
	var parts []string
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Render(strings.Join(parts, " · "))
}
