// Package render produces PDF documents for invoices.
package render

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/lexhour/lexhour/internal/calculator"
	"github.com/lexhour/lexhour/internal/models"
)

var tableGrid = []uint{2, 6, 2, 2}

// InvoicePDF renders a fully-formed invoice as a PDF document. The caller is
// responsible for loading the invoice, its client and the issuing user; this
// function does no data access.
func InvoicePDF(invoice *models.Invoice, client *models.Client, user *models.User, currencySymbol string) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(12, func() {
			m.Col(6, func() {
				m.Text("INVOICE", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Left,
					Size:  18,
				})
			})
			m.Col(6, func() {
				m.Text(invoice.Number, props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Right,
					Size:  14,
				})
			})
		})
	})

	m.Row(8, func() {
		m.Col(6, func() {
			m.Text("From: "+user.DisplayName, props.Text{Size: 10, Align: consts.Left})
		})
		m.Col(6, func() {
			m.Text("Issued: "+invoice.IssueDate.Format("2006-01-02"), props.Text{Size: 10, Align: consts.Right})
		})
	})
	m.Row(8, func() {
		m.Col(6, func() {
			m.Text("Bill to: "+client.Name, props.Text{Size: 10, Align: consts.Left})
		})
		m.Col(6, func() {
			if invoice.DueDate != nil {
				m.Text("Due: "+invoice.DueDate.Format("2006-01-02"), props.Text{Size: 10, Align: consts.Right})
			}
		})
	})
	if client.ContactPerson != "" || client.Email != "" {
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(clientContactLine(client), props.Text{Size: 9, Align: consts.Left})
			})
		})
	}

	m.Row(6, func() {})

	headers := []string{"Date", "Description", "Hours", "Amount"}
	rows := make([][]string, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		rows = append(rows, []string{
			item.Date.Format("2006-01-02"),
			item.Description,
			fmt.Sprintf("%.2f", item.Hours),
			calculator.FormatAmountWith(currencySymbol, item.Amount),
		})
	}

	m.TableList(headers, rows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: tableGrid,
		},
		ContentProp: props.TableListContent{
			Size:      9,
			GridSizes: tableGrid,
		},
		Align:                consts.Left,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	})

	m.Row(12, func() {
		m.Col(12, func() {
			totals := fmt.Sprintf("Total: %.2f hours  /  %s",
				invoice.TotalHours,
				calculator.FormatAmountWith(currencySymbol, invoice.TotalAmount))
			m.Text(totals, props.Text{
				Top:   5,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	if invoice.Notes != "" {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(invoice.Notes, props.Text{Top: 3, Size: 9, Align: consts.Left})
			})
		})
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", invoice.Number, err)
	}
	return buf.Bytes(), nil
}

func clientContactLine(client *models.Client) string {
	switch {
	case client.ContactPerson != "" && client.Email != "":
		return fmt.Sprintf("Attn: %s (%s)", client.ContactPerson, client.Email)
	case client.ContactPerson != "":
		return "Attn: " + client.ContactPerson
	default:
		return client.Email
	}
}
