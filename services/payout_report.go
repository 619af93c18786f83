package services

import (
	"fmt"
	"io"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

func boldStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	return style
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func moneyFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// BuildPayoutsWorkbook renders payouts as an Excel workbook
func BuildPayoutsWorkbook(payouts []models.AffiliatePayout, generatedAt time.Time) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payouts")
	if err != nil {
		return nil, err
	}

	title := sheet.AddRow()
	title.AddCell().SetString(fmt.Sprintf("%s - Affiliate Payouts", utils.AppName))
	title.Cells[0].SetStyle(boldStyle())
	sheet.AddRow().AddCell().SetString("Generated: " + generatedAt.Format("2006-01-02 15:04"))
	sheet.AddRow()

	headers := []string{"Payout ID", "Affiliate ID", "Referral Code", "Affiliate Email", "Amount", "Method", "Status", "Commissions", "Bank", "Account Holder", "IBAN", "Transaction ID", "Created", "Processed"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		cell.SetStyle(boldStyle())
	}

	total := decimal.Zero
	for _, p := range payouts {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetInt(int(p.AffiliateID))
		row.AddCell().SetString(p.Affiliate.ReferralCode)
		row.AddCell().SetString(p.Affiliate.User.Email)
		row.AddCell().SetFloat(moneyFloat(p.Amount))
		row.AddCell().SetString(p.Method)
		row.AddCell().SetString(p.Status)
		row.AddCell().SetInt(len(p.CommissionIDs))
		row.AddCell().SetString(deref(p.BankName))
		row.AddCell().SetString(deref(p.AccountHolder))
		row.AddCell().SetString(deref(p.IBAN))
		row.AddCell().SetString(deref(p.TransactionID))
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04"))
		processed := ""
		if p.ProcessedAt != nil {
			processed = p.ProcessedAt.Format("2006-01-02 15:04")
		}
		row.AddCell().SetString(processed)
		total = total.Add(p.Amount)
	}

	sheet.AddRow()
	summary := sheet.AddRow()
	summary.AddCell().SetString("Total")
	summary.Cells[0].SetStyle(boldStyle())
	summary.AddCell().SetString(fmt.Sprintf("%d payouts", len(payouts)))
	summary.AddCell().SetString("")
	summary.AddCell().SetString("")
	summary.AddCell().SetFloat(moneyFloat(total))

	return file, nil
}

// WritePayoutStatementPDF renders a single payout statement
func WritePayoutStatementPDF(w io.Writer, payout *models.AffiliatePayout, currency string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, fmt.Sprintf("%s - Payout Statement", utils.AppName))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	details := [][2]string{
		{"Payout", fmt.Sprintf("#%d", payout.ID)},
		{"Status", utils.HumanizeEnum(payout.Status)},
		{"Method", utils.HumanizeEnum(payout.Method)},
		{"Affiliate", fmt.Sprintf("%s (%s)", payout.Affiliate.User.FullName, payout.Affiliate.ReferralCode)},
		{"Bank", deref(payout.BankName)},
		{"Account holder", deref(payout.AccountHolder)},
		{"IBAN", deref(payout.IBAN)},
		{"Transaction", deref(payout.TransactionID)},
		{"Created", payout.CreatedAt.Format("2006-01-02 15:04")},
	}
	for _, d := range details {
		pdf.CellFormat(45, 7, d[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, d[1], "", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	colWidths := []float64{25, 35, 40, 30, 40}
	headers := []string{"Commission", "Subscription", "Subscription Amount", "Rate %", "Commission Amount"}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, c := range payout.Commissions {
		fill := i%2 == 0
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colWidths[0], 7, fmt.Sprintf("%d", c.ID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[1], 7, fmt.Sprintf("%d", c.SubscriptionID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[2], 7, c.SubscriptionAmount.StringFixed(2), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[3], 7, c.Percentage.StringFixed(2), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[4], 7, c.Amount.StringFixed(2), "1", 0, "R", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(130, 9, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, fmt.Sprintf("%s %s", payout.Amount.StringFixed(2), currency), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	return pdf.Output(w)
}
