package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

func addQuantities(a, b string) string {
	da, err := decimal.NewFromString(a)
	if err != nil {
		da = decimal.Zero
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		db = decimal.Zero
	}
	return FormatQuantity(da.Add(db))
}

// UserInfo is the establishment block printed on the report header.
type UserInfo struct {
	FullName    string
	CompanyName string
	Email       string
}

// RenderPDF renders the quarterly report as a landscape A4 PDF.
func RenderPDF(period string, rows []Row, user UserInfo, totalNFEs int) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("RELATÓRIO TRIMESTRAL - MAPA"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr("MINISTÉRIO DA AGRICULTURA, PECUÁRIA E ABASTECIMENTO"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	quarter, year, _ := ParsePeriod(period)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Estabelecimento: %s", user.CompanyName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Responsável: %s  |  Email: %s", user.FullName, user.Email)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Trimestre: %dº  |  Ano: %d  |  NF-es processadas: %d", quarter, year, totalNFEs)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Data de Geração: %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	headers := []string{
		"Nº Registro MAPA", "Produto", "Referência", "Unidade",
		"Compra Importada (Ton)", "Compra Nacional (Ton)", "Total (Ton)", "NF-es Origem",
	}
	widths := []float64{40, 45, 40, 22, 35, 35, 25, 35}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(204, 204, 204)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		total := addQuantities(row.QuantityImport, row.QuantityDomestic)
		nfes := ""
		for i, n := range row.SourceNFEs {
			if i > 0 {
				nfes += ", "
			}
			nfes += n
		}
		cells := []string{
			row.MapaRegistration, row.ProductName, row.ProductReference, row.Unit,
			row.QuantityImport, row.QuantityDomestic, total, nfes,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, tr("Documento gerado automaticamente. Quantidades expressas em toneladas."), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
