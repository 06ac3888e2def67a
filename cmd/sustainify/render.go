package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aryannaik/sustainify/internal/catalog"
	"github.com/aryannaik/sustainify/internal/session"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6B7280")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Foreground(muted).Width(16)
	footerStyle = lipgloss.NewStyle().Foreground(muted)
)

func productTable(items []catalog.Product, bookmarked func(string) bool) *table.Table {
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		mark := ""
		if bookmarked(p.ID) {
			mark = "★"
		}
		rows = append(rows, []string{p.ID, p.Name, p.Category, strconv.Itoa(p.Score), mark})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers("ID", "NAME", "CATEGORY", "SCORE", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderPage(w io.Writer, snap session.Snapshot, bookmarked func(string) bool) {
	if len(snap.Result.Items) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	fmt.Fprintln(w, productTable(snap.Result.Items, bookmarked))
	fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("Page %d of %d, %d products",
		snap.View.Page, snap.TotalPages, snap.Result.Total)))
}

func renderList(w io.Writer, items []catalog.Product, bookmarked func(string) bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No bookmarks yet.")
		return
	}
	fmt.Fprintln(w, productTable(items, bookmarked))
}

func renderProduct(w io.Writer, p catalog.Product, bookmarked bool) {
	title := p.Name
	if bookmarked {
		title += " ★"
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintln(w, labelStyle.Render(label)+value)
	}
	field("ID", p.ID)
	field("Kind", string(p.Kind))
	field("Category", p.Category)
	field("Replaces", p.Replaces)
	field("Score", strconv.Itoa(p.Score))
	field("Description", p.Description)
	field("Materials", strings.Join(p.Materials, ", "))
	field("Certifications", strings.Join(p.Certifications, ", "))
	field("Tags", strings.Join(p.Tags, ", "))
	field("CO2 saved", fmt.Sprintf("%g kg", p.Impact.CO2))
	field("Water saved", fmt.Sprintf("%g L", p.Impact.Water))
	field("Waste avoided", fmt.Sprintf("%g g", p.Impact.Waste))
	for _, l := range p.Links {
		field(l.Label, l.URL)
	}
}
