package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// ExportDir is where exports are written; empty means the working directory.
var ExportDir = ""

func (m Model) getCellValueAt(row, col int) string {
	if row < 0 || row >= len(m.cells) {
		return ""
	}
	r := m.cells[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// --- Copy ---

func (m *Model) doCopyCell() {
	val := m.getCellValueAt(m.cursorY, m.cursorX)
	if val == "" {
		m.statusMessage = "Nothing to copy"
		return
	}
	if err := clipboard.WriteAll(val); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied: " + truncateStatus(val, 40)
}

func (m *Model) doCopyRowCSV() {
	if m.cursorY < 0 || m.cursorY >= len(m.cells) {
		m.statusMessage = "No row to copy"
		return
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.headers)
	_ = w.Write(m.cells[m.cursorY])
	w.Flush()
	if err := clipboard.WriteAll(b.String()); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied row as CSV"
}

// --- Export ---

func exportPath(ext string) string {
	ts := time.Now().Format("20060102_150405")
	return filepath.Join(ExportDir, fmt.Sprintf("stockq_export_%s.%s", ts, ext))
}

// WriteCSV writes headers and rows as CSV to path.
func WriteCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write(headers)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
	return w.Error()
}

// WriteJSON writes rows as a JSON array of objects, keys in column order.
func WriteJSON(path string, headers []string, rows [][]string) error {
	var b strings.Builder
	b.WriteString("[\n")
	for ri, row := range rows {
		if ri > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(rowToJSON(headers, row))
	}
	b.WriteString("\n]")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func (m Model) exportCSVCmd() tea.Cmd {
	if !m.shown {
		return nil
	}
	headers, rows := m.headers, m.cells
	return func() tea.Msg {
		path := exportPath("csv")
		if err := WriteCSV(path, headers, rows); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(rows), path)}
	}
}

func (m Model) exportJSONCmd() tea.Cmd {
	if !m.shown {
		return nil
	}
	headers, rows := m.headers, m.cells
	return func() tea.Msg {
		path := exportPath("json")
		if err := WriteJSON(path, headers, rows); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(rows), path)}
	}
}

// --- Helpers ---

// rowToJSON preserves column order unlike map marshaling
func rowToJSON(columns []string, row []string) string {
	var b strings.Builder
	b.WriteString("{")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteString(": ")
		if i < len(row) && row[i] != NullText {
			val, _ := json.Marshal(row[i])
			b.Write(val)
		} else {
			b.WriteString("null")
		}
	}
	b.WriteString("}")
	return b.String()
}

func truncateStatus(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
