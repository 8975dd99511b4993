package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	billing "greenergy-billing/internal/billing/domain"
	customer "greenergy-billing/internal/customer/domain"
)

const supplierName = "Greenergy SRL"

// invoiceLine is one render-ready table row: label, unit and rounded values.
type invoiceLine struct {
	Label    string
	Unit     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Value    decimal.Decimal
	VAT      decimal.Decimal
}

func invoiceLines(record *billing.BillRecord) []invoiceLine {
	breakdown := record.Breakdown()
	lines := []invoiceLine{
		{Label: billing.CategoryLabels[billing.CategoryEnergy], Unit: billing.CategoryUnits[billing.CategoryEnergy], Quantity: breakdown.Energy.Quantity, Price: breakdown.Energy.UnitPrice, Value: breakdown.Energy.Value, VAT: breakdown.Energy.VAT},
		{Label: billing.CategoryLabels[billing.CategoryExcise], Unit: billing.CategoryUnits[billing.CategoryExcise], Quantity: breakdown.Excise.Quantity, Price: breakdown.Excise.UnitPrice, Value: breakdown.Excise.Value, VAT: breakdown.Excise.VAT},
		{Label: billing.CategoryLabels[billing.CategoryCertificate], Unit: billing.CategoryUnits[billing.CategoryCertificate], Quantity: breakdown.Certificate.Quantity, Price: breakdown.Certificate.UnitPrice, Value: breakdown.Certificate.Value, VAT: breakdown.Certificate.VAT},
		{Label: billing.CategoryLabels[billing.CategoryRebate], Unit: billing.CategoryUnits[billing.CategoryRebate], Quantity: breakdown.Rebate.Quantity, Price: breakdown.Rebate.UnitPrice, Value: breakdown.Rebate.Value, VAT: breakdown.Rebate.VAT},
	}
	return lines
}

// BuildInvoicePDF renders the monthly invoice for a bill record.
func BuildInvoicePDF(record *billing.BillRecord, account *customer.Customer) ([]byte, error) {
	monthName, err := billing.MonthName(record.BillMonth)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("Factura fiscala seria %s nr. %s", record.Serial, record.Number))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Furnizor")
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, supplierName)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Client")
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, account.Name)
	pdf.Ln(5)
	pdf.Cell(0, 6, account.Street)
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("%s %s, jud. %s", account.Zipcode, account.City, account.County))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Perioada de facturare: %s %d (%s - %s)",
		monthName, record.BillYear,
		record.Start.Format("02.01.2006"), record.End.Format("02.01.2006")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Data emiterii: %s", record.Generated.Format("02.01.2006")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Data scadenta: %s", record.Due.Format("02.01.2006")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Index contor: %s", record.IndexValue.StringFixed(3)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(48, 6, "Produs / serviciu", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Cantitate", "1", 0, "C", false, 0, "")
	pdf.CellFormat(14, 6, "U.M.", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Pret unitar fara TVA", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Valoare fara TVA", "1", 0, "C", false, 0, "")
	pdf.CellFormat(34, 6, "Valoare TVA (19%)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, line := range invoiceLines(record) {
		pdf.CellFormat(48, 6, line.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, 6, line.Quantity.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(14, 6, line.Unit, "1", 0, "C", false, 0, "")
		pdf.CellFormat(34, 6, line.Price.StringFixed(5), "1", 0, "R", false, 0, "")
		pdf.CellFormat(34, 6, line.Value.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(34, 6, line.VAT.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total fara TVA: %s lei", record.TotalPreVAT.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total TVA: %s lei", record.TotalVAT.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total de plata: %s lei", record.GrandTotal.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoiceXLSX renders the monthly invoice as a workbook.
func BuildInvoiceXLSX(record *billing.BillRecord, account *customer.Customer) ([]byte, error) {
	monthName, err := billing.MonthName(record.BillMonth)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "invoice"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Factura fiscala seria %s nr. %s", record.Serial, record.Number))
	_ = f.SetCellValue(sheet, "A3", "Furnizor")
	_ = f.SetCellValue(sheet, "B3", supplierName)
	_ = f.SetCellValue(sheet, "A4", "Client")
	_ = f.SetCellValue(sheet, "B4", account.Name)
	_ = f.SetCellValue(sheet, "A5", "Adresa")
	_ = f.SetCellValue(sheet, "B5", fmt.Sprintf("%s, %s %s, jud. %s", account.Street, account.Zipcode, account.City, account.County))
	_ = f.SetCellValue(sheet, "A6", "Perioada")
	_ = f.SetCellValue(sheet, "B6", fmt.Sprintf("%s %d", monthName, record.BillYear))
	_ = f.SetCellValue(sheet, "A7", "Data emiterii")
	_ = f.SetCellValue(sheet, "B7", record.Generated.Format("02.01.2006"))
	_ = f.SetCellValue(sheet, "A8", "Data scadenta")
	_ = f.SetCellValue(sheet, "B8", record.Due.Format("02.01.2006"))
	_ = f.SetCellValue(sheet, "A9", "Index contor")
	_ = f.SetCellValue(sheet, "B9", record.IndexValue.StringFixed(3))

	_ = f.SetCellValue(sheet, "A11", "Produs / serviciu")
	_ = f.SetCellValue(sheet, "B11", "Cantitate")
	_ = f.SetCellValue(sheet, "C11", "U.M.")
	_ = f.SetCellValue(sheet, "D11", "Pret unitar fara TVA")
	_ = f.SetCellValue(sheet, "E11", "Valoare fara TVA")
	_ = f.SetCellValue(sheet, "F11", "Valoare TVA (19%)")
	for i, line := range invoiceLines(record) {
		row := i + 12
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line.Label)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line.Quantity.StringFixed(3))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), line.Unit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), line.Price.StringFixed(5))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), line.Value.StringFixed(2))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), line.VAT.StringFixed(2))
	}

	_ = f.SetCellValue(sheet, "A17", "Total fara TVA")
	_ = f.SetCellValue(sheet, "B17", record.TotalPreVAT.StringFixed(2))
	_ = f.SetCellValue(sheet, "A18", "Total TVA")
	_ = f.SetCellValue(sheet, "B18", record.TotalVAT.StringFixed(2))
	_ = f.SetCellValue(sheet, "A19", "Total de plata")
	_ = f.SetCellValue(sheet, "B19", record.GrandTotal.StringFixed(2))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildYearlyConsumptionXLSX renders a customer's year of readings as a
// workbook, one row per billed month.
func BuildYearlyConsumptionXLSX(account *customer.Customer, year int, records []*billing.BillRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "consumption"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Consum %s - %d", account.Name, year))
	_ = f.SetCellValue(sheet, "A3", "Luna")
	_ = f.SetCellValue(sheet, "B3", "Index contor")
	_ = f.SetCellValue(sheet, "C3", "Energie (kWh)")
	_ = f.SetCellValue(sheet, "D3", "Total fara TVA")
	_ = f.SetCellValue(sheet, "E3", "Total TVA")
	_ = f.SetCellValue(sheet, "F3", "Total de plata")
	for i, record := range records {
		monthName, err := billing.MonthName(record.BillMonth)
		if err != nil {
			return nil, err
		}
		row := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), monthName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), record.IndexValue.StringFixed(3))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.EnergyQty.StringFixed(3))
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), record.TotalPreVAT.StringFixed(2))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), record.TotalVAT.StringFixed(2))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), record.GrandTotal.StringFixed(2))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
