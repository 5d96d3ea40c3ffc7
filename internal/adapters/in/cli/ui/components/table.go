package components

import (
	"strings"

	"github.com/bnema/dexplore/internal/adapters/in/cli/ui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TableColumn defines a table column.
type TableColumn struct {
	Title string
	Width int
}

// TableModel is a styled table component.
type TableModel struct {
	columns     []TableColumn
	rows        [][]string
	border      lipgloss.Border
	borderStyle lipgloss.Style
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
	oddStyle    lipgloss.Style
	evenStyle   lipgloss.Style
}

// TableOption configures a TableModel.
type TableOption func(*TableModel)

// NewTable creates a new styled table.
func NewTable(opts ...TableOption) *TableModel {
	t := &TableModel{
		border:      lipgloss.RoundedBorder(),
		borderStyle: lipgloss.NewStyle().Foreground(styles.ColorBorder),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorPrimary).
			Padding(0, 1),
		cellStyle: lipgloss.NewStyle().
			Foreground(styles.ColorText).
			Padding(0, 1),
		oddStyle: lipgloss.NewStyle().
			Foreground(styles.ColorText).
			Padding(0, 1),
		evenStyle: lipgloss.NewStyle().
			Foreground(styles.ColorText).
			Padding(0, 1),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithColumns sets the table columns.
func WithColumns(cols []TableColumn) TableOption {
	return func(t *TableModel) {
		t.columns = cols
	}
}

// WithRows sets the table rows.
func WithRows(rows [][]string) TableOption {
	return func(t *TableModel) {
		t.rows = rows
	}
}

// WithBorder sets the table border style.
func WithBorder(b lipgloss.Border) TableOption {
	return func(t *TableModel) {
		t.border = b
	}
}

// WithHeaderStyle sets the header style.
func WithHeaderStyle(s lipgloss.Style) TableOption {
	return func(t *TableModel) {
		t.headerStyle = s
	}
}

// WithCellStyle sets the cell style.
func WithCellStyle(s lipgloss.Style) TableOption {
	return func(t *TableModel) {
		t.cellStyle = s
		t.oddStyle = s
		t.evenStyle = s
	}
}

// Render renders the table as a string.
func (t *TableModel) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	// Extract headers
	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = truncateCell(col.Title, col.Width)
	}

	rows := make([][]string, len(t.rows))
	for rowIdx, row := range t.rows {
		rows[rowIdx] = make([]string, len(row))
		for colIdx, cell := range row {
			width := 0
			if colIdx < len(t.columns) {
				width = t.columns[colIdx].Width
			}
			rows[rowIdx][colIdx] = truncateCell(cell, width)
		}
	}

	// Create table
	tbl := table.New().
		Border(t.border).
		BorderStyle(t.borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			width := 0
			if col >= 0 && col < len(t.columns) {
				width = t.columns[col].Width
			}

			applyWidth := func(s lipgloss.Style) lipgloss.Style {
				if width > 0 {
					return s.Width(width).MaxWidth(width)
				}
				return s
			}

			if row == table.HeaderRow {
				return applyWidth(t.headerStyle)
			}
			if row%2 == 0 {
				return applyWidth(t.evenStyle)
			}
			return applyWidth(t.oddStyle)
		})

	return tbl.String()
}

func truncateCell(value string, maxWidth int) string {
	if strings.Contains(value, "\x1b[") {
		return value
	}

	if maxWidth <= 0 || runewidth.StringWidth(value) <= maxWidth {
		return value
	}

	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	targetWidth := maxWidth - 3
	b := strings.Builder{}
	currentWidth := 0
	g := uniseg.NewGraphemes(value)
	for g.Next() {
		grapheme := g.Str()
		graphemeWidth := runewidth.StringWidth(grapheme)
		if currentWidth+graphemeWidth > targetWidth {
			break
		}
		b.WriteString(grapheme)
		currentWidth += graphemeWidth
	}

	if b.Len() == 0 {
		return strings.Repeat(".", maxWidth)
	}

	return b.String() + "..."
}

// View returns the table view (alias for Render).
func (t *TableModel) View() string {
	return t.Render()
}

// ContainerTable renders the container listing.
func ContainerTable(rows [][]string, plain bool) string {
	opts := []TableOption{
		WithColumns([]TableColumn{
			{Title: "CONTAINER ID", Width: 14},
			{Title: "NAME", Width: 28},
			{Title: "IMAGE", Width: 36},
			{Title: "CREATED", Width: 18},
			{Title: "STATE", Width: 11},
			{Title: "PORTS", Width: 24},
		}),
		WithRows(rows),
	}
	if plain {
		opts = append(opts,
			WithBorder(lipgloss.NormalBorder()),
			WithHeaderStyle(lipgloss.NewStyle().Padding(0, 1)),
			WithCellStyle(lipgloss.NewStyle().Padding(0, 1)),
		)
	}
	return NewTable(opts...).Render()
}
