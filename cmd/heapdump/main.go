// Command heapdump is an interactive inspector for heap table files. Given a
// backing file and its schema it renders per-page slot occupancy and lets you
// drill into the tuples stored on each page.
//
// Usage:
//
//	heapdump <heap-file> <schema>
//
// The schema is a comma-separated list of name:type pairs, e.g.
// "id:int,name:string,price:decimal,active:bool".
package main

import (
	"fmt"
	"os"
	"strings"

	"heapstore/pkg/memory"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type pageSummary struct {
	pageNo primitives.PageNumber
	used   primitives.SlotID
	total  primitives.SlotID
}

type model struct {
	filePath    string
	schema      *tuple.TupleDescription
	file        *heap.HeapFile
	currentView string // "loading", "pages", "tuples"
	cursor      int
	rowCursor   int
	width       int
	height      int
	err         error

	pages       []pageSummary
	currentPage primitives.PageNumber
	headers     []string
	rows        [][]string
}

func initialModel(filePath string, schema *tuple.TupleDescription) model {
	return model{
		filePath:    filePath,
		schema:      schema,
		currentView: "loading",
	}
}

func (m model) Init() tea.Cmd {
	return openHeapFile(m.filePath, m.schema)
}

type fileOpenedMsg struct {
	file  *heap.HeapFile
	pages []pageSummary
	err   error
}

func openHeapFile(filePath string, schema *tuple.TupleDescription) tea.Cmd {
	return func() tea.Msg {
		tm := memory.NewTableManager()
		store := memory.NewPageStore(tm)

		hf, err := heap.NewHeapFile(primitives.Filepath(filePath), schema, store)
		if err != nil {
			return fileOpenedMsg{err: err}
		}
		if err := tm.AddTable(hf, filePath); err != nil {
			return fileOpenedMsg{err: err}
		}

		pages, err := summarizePages(hf)
		if err != nil {
			return fileOpenedMsg{err: err}
		}
		return fileOpenedMsg{file: hf, pages: pages}
	}
}

func summarizePages(hf *heap.HeapFile) ([]pageSummary, error) {
	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	summaries := make([]pageSummary, 0, numPages)
	for n := primitives.PageNumber(0); n < numPages; n++ {
		pid := page.NewPageDescriptor(hf.GetID(), n)
		pg, err := hf.ReadPage(pid)
		if err != nil {
			return nil, err
		}

		hp, ok := pg.(*heap.HeapPage)
		if !ok {
			return nil, fmt.Errorf("page %d is not a heap page", n)
		}

		total := hp.NumSlots()
		summaries = append(summaries, pageSummary{
			pageNo: n,
			used:   total - hp.GetNumEmptySlots(),
			total:  total,
		})
	}
	return summaries, nil
}

type pageLoadedMsg struct {
	pageNo  primitives.PageNumber
	headers []string
	rows    [][]string
	err     error
}

func loadPage(hf *heap.HeapFile, pageNo primitives.PageNumber) tea.Cmd {
	return func() tea.Msg {
		pid := page.NewPageDescriptor(hf.GetID(), pageNo)
		pg, err := hf.ReadPage(pid)
		if err != nil {
			return pageLoadedMsg{err: err}
		}

		hp, ok := pg.(*heap.HeapPage)
		if !ok {
			return pageLoadedMsg{err: fmt.Errorf("page %d is not a heap page", pageNo)}
		}

		schema := hf.GetTupleDesc()
		headers := make([]string, 0, schema.NumFields()+1)
		headers = append(headers, "slot")
		for i := 0; i < schema.NumFields(); i++ {
			name, _ := schema.GetFieldName(i)
			headers = append(headers, name)
		}

		var rows [][]string
		for _, tup := range hp.GetTuples() {
			row := make([]string, 0, schema.NumFields()+1)
			if tup.RecordID != nil {
				row = append(row, fmt.Sprintf("%d", tup.RecordID.Slot))
			} else {
				row = append(row, "?")
			}
			for i := 0; i < schema.NumFields(); i++ {
				field, err := tup.GetField(i)
				if err != nil || field == nil {
					row = append(row, "NULL")
					continue
				}
				row = append(row, formatField(field))
			}
			rows = append(rows, row)
		}

		return pageLoadedMsg{pageNo: pageNo, headers: headers, rows: rows}
	}
}

func formatField(field types.Field) string {
	if sf, ok := field.(*types.StringField); ok {
		return strings.TrimSpace(sf.Value)
	}
	return field.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.file = msg.file
		m.pages = msg.pages
		m.currentView = "pages"
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.currentPage = msg.pageNo
		m.headers = msg.headers
		m.rows = msg.rows
		m.rowCursor = 0
		m.currentView = "tuples"
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.currentView {
		case "pages":
			switch {
			case key.Matches(msg, keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
			case key.Matches(msg, keys.Down):
				if m.cursor < len(m.pages)-1 {
					m.cursor++
				}
			case key.Matches(msg, keys.Select):
				if m.cursor < len(m.pages) {
					return m, loadPage(m.file, m.pages[m.cursor].pageNo)
				}
			}

		case "tuples":
			switch {
			case key.Matches(msg, keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, keys.Back):
				m.currentView = "pages"
				m.rows = nil
				m.headers = nil
				return m, nil
			case key.Matches(msg, keys.Up):
				if m.rowCursor > 0 {
					m.rowCursor--
				}
			case key.Matches(msg, keys.Down):
				if m.rowCursor < len(m.rows)-1 {
					m.rowCursor++
				}
			}

		default:
			if key.Matches(msg, keys.Quit) {
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Heap File Inspector") + "\n\n")

	switch m.currentView {
	case "loading":
		b.WriteString("Opening heap file...\n")
	case "pages":
		b.WriteString(m.renderPageList())
	case "tuples":
		b.WriteString(m.renderTuples())
	}

	b.WriteString("\n" + m.renderStatusBar())
	return b.String()
}

const fillBarWidth = 20

func (m model) renderPageList() string {
	var b strings.Builder

	header := headerStyle.Render(fmt.Sprintf(" Pages (%d) ", len(m.pages)))
	b.WriteString(header + "\n\n")

	if len(m.pages) == 0 {
		b.WriteString("File is empty.\n\n")
		b.WriteString(helpStyle.Render("Press q to quit"))
		return b.String()
	}

	for i, p := range m.pages {
		filled := 0
		if p.total > 0 {
			filled = int(p.used) * fillBarWidth / int(p.total)
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", fillBarWidth-filled)
		line := fmt.Sprintf("page %-4d %s %d/%d slots", p.pageNo, fillBarStyle.Render(bar), p.used, p.total)

		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("▶ "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: navigate | enter: view page | q: quit"))
	return b.String()
}

func (m model) renderTuples() string {
	var b strings.Builder

	title := headerStyle.Render(fmt.Sprintf(" Page %d (%d tuples) ", m.currentPage, len(m.rows)))
	b.WriteString(title + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString("No tuples on this page.\n\n")
		b.WriteString(helpStyle.Render("Press esc to go back | q to quit"))
		return b.String()
	}

	const maxColWidth = 30
	colWidths := make([]int, len(m.headers))
	for i, h := range m.headers {
		colWidths[i] = len(h)
	}
	for _, row := range m.rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}
	for i := range colWidths {
		if colWidths[i] > maxColWidth {
			colWidths[i] = maxColWidth
		}
	}

	headerRow := ""
	for i, h := range m.headers {
		headerRow += tableHeaderStyle.Render(padString(h, colWidths[i])) + " "
	}
	b.WriteString(headerRow + "\n")

	for i, row := range m.rows {
		rowStr := ""
		for j, cell := range row {
			if j >= len(colWidths) {
				break
			}
			content := padString(truncateString(cell, maxColWidth), colWidths[j])
			if i == m.rowCursor {
				rowStr += selectedItemStyle.Render(content)
			} else {
				rowStr += cellStyle.Render(content)
			}
			rowStr += " "
		}
		b.WriteString(rowStr + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: navigate tuples | esc: back | q: quit"))
	return b.String()
}

func (m model) renderStatusBar() string {
	var status string
	switch m.currentView {
	case "pages":
		status = fmt.Sprintf(" %s | %d pages | %s ", m.filePath, len(m.pages), m.schema.String())
	case "tuples":
		status = fmt.Sprintf(" %s | page %d/%d ", m.filePath, m.currentPage+1, primitives.PageNumber(len(m.pages)))
	default:
		status = " Loading... "
	}
	return statusBarStyle.Render(status)
}

// parseSchema turns "id:int,name:string" into a tuple description.
func parseSchema(spec string) (*tuple.TupleDescription, error) {
	parts := strings.Split(spec, ",")
	fieldTypes := make([]types.Type, 0, len(parts))
	fieldNames := make([]string, 0, len(parts))

	for _, part := range parts {
		name, typeName, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid schema entry %q, want name:type", part)
		}

		var t types.Type
		switch strings.ToLower(typeName) {
		case "int":
			t = types.IntType
		case "string":
			t = types.StringType
		case "bool":
			t = types.BoolType
		case "float":
			t = types.FloatType
		case "decimal":
			t = types.DecimalType
		default:
			return nil, fmt.Errorf("unknown field type %q", typeName)
		}

		fieldNames = append(fieldNames, name)
		fieldTypes = append(fieldTypes, t)
	}

	return tuple.NewTupleDesc(fieldTypes, fieldNames)
}

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: heapdump <heap-file> <schema>")
		fmt.Println(`Example: heapdump users.dat "id:int,name:string,active:bool"`)
		os.Exit(1)
	}

	schema, err := parseSchema(os.Args[2])
	if err != nil {
		fmt.Printf("Invalid schema: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		initialModel(os.Args[1], schema),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
