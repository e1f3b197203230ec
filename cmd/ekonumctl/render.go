package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/ekonum/internal/forecast"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorRed    = lipgloss.Color("#D14D41")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	monthStyle  = lipgloss.NewStyle().Padding(0, 1)
	lossStyle   = cellStyle.Foreground(colorRed)
)

var amounts = message.NewPrinter(language.English)

// formatMoney groups thousands and keeps two decimals.
func formatMoney(v float64) string {
	return amounts.Sprintf("%.2f", v)
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatCSV, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (table, csv or json)", format)
	}
}

// renderTable draws rows below a title. Cells holding negative amounts are
// highlighted.
func renderTable(title string, headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return monthStyle
			case row >= 0 && row < len(rows) && col < len(rows[row]) && len(rows[row][col]) > 0 && rows[row][col][0] == '-':
				return lossStyle
			default:
				return cellStyle
			}
		})
	return titleStyle.Render(title) + "\n" + t.String() + "\n"
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderProjection(w io.Writer, format string, p forecast.Projection) error {
	switch format {
	case formatJSON:
		return writeJSON(w, p)
	case formatCSV:
		return writeCSV(w, forecast.ExportStatements(p.Periods))
	}
	headers := []string{"Month", "Revenue", "Var. costs", "Fixed", "Amort.", "Interest", "Principal", "EBT", "Cash in", "Cash out", "Cash"}
	rows := make([][]string, 0, len(p.Periods))
	for _, s := range p.Periods {
		rows = append(rows, []string{
			s.Month.Format("2006-01"),
			formatMoney(s.Revenue),
			formatMoney(s.VariableCosts),
			formatMoney(s.FixedCosts),
			formatMoney(s.Amortization),
			formatMoney(s.LoanInterest),
			formatMoney(s.LoanPrincipal),
			formatMoney(s.EBT),
			formatMoney(s.CashIn),
			formatMoney(s.CashOut),
			formatMoney(s.Cash),
		})
	}
	title := fmt.Sprintf("PROJECTION  FY%d  %d year(s)", p.Metadata.StartYear, p.Metadata.Years)
	_, err := io.WriteString(w, renderTable(title, headers, rows))
	return err
}

func renderBudgetVsActual(w io.Writer, format string, r forecast.BudgetVsActual) error {
	switch format {
	case formatJSON:
		return writeJSON(w, r)
	case formatCSV:
		return writeCSV(w, forecast.ExportVariance(r.Rows))
	}
	headers := []string{"Month", "Revenue", "Δ", "Costs", "Δ", "EBT", "Δ", "Cash", "Δ"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		costs := forecast.Line{
			Budget:   row.VariableCosts.Budget + row.FixedCosts.Budget,
			Actual:   row.VariableCosts.Actual + row.FixedCosts.Actual,
			Variance: row.VariableCosts.Variance + row.FixedCosts.Variance,
		}
		rows = append(rows, []string{
			row.Month.Format("2006-01"),
			formatMoney(row.Revenue.Actual), formatMoney(row.Revenue.Variance),
			formatMoney(costs.Actual), formatMoney(costs.Variance),
			formatMoney(row.EBT.Actual), formatMoney(row.EBT.Variance),
			formatMoney(row.Cash.Actual), formatMoney(row.Cash.Variance),
		})
	}
	title := fmt.Sprintf("BUDGET VS ACTUAL  FY%d  %d year(s)", r.Metadata.StartYear, r.Metadata.Years)
	_, err := io.WriteString(w, renderTable(title, headers, rows))
	return err
}

func renderLoanSchedule(w io.Writer, format string, s forecast.LoanSchedule) error {
	switch format {
	case formatJSON:
		return writeJSON(w, s)
	}
	rows := make([][]string, 0, len(s.Rows))
	for _, inst := range s.Rows {
		rows = append(rows, []string{
			inst.Month.Format("2006-01"),
			formatMoney(inst.Payment),
			formatMoney(inst.Interest),
			formatMoney(inst.Principal),
			formatMoney(inst.Balance),
		})
	}
	headers := []string{"Month", "Payment", "Interest", "Principal", "Balance"}
	if format == formatCSV {
		plain := make([][]string, 0, len(s.Rows)+1)
		plain = append(plain, headers)
		for _, inst := range s.Rows {
			plain = append(plain, []string{
				inst.Month.Format("2006-01"),
				fmt.Sprintf("%.2f", inst.Payment),
				fmt.Sprintf("%.2f", inst.Interest),
				fmt.Sprintf("%.2f", inst.Principal),
				fmt.Sprintf("%.2f", inst.Balance),
			})
		}
		return writeCSV(w, plain)
	}
	title := fmt.Sprintf("LOAN %d  %s  payment %s", s.LoanID, s.Name, formatMoney(s.Payment))
	_, err := io.WriteString(w, renderTable(title, headers, rows))
	return err
}
