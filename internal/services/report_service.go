package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"repairshop/internal/catalog"
	"repairshop/internal/domain/models"
	"repairshop/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// LowStockReportPDF renders the low-stock list as an A4 table with the cost of
// restocking each line back to its minimum.
func (s InventoryService) LowStockReportPDF(ctx context.Context, kind models.Kind) ([]byte, string, error) {
	views, err := s.LowStock(ctx, kind)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "inventory", "low_stock_report", "kind="+safe(string(kind), "all")+" rows="+strconv.Itoa(len(views)))
	return buildLowStockPDF(views, kind, s.now())
}

func buildLowStockPDF(views []catalog.ItemView, kind models.Kind, generated time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Low stock report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "LOW STOCK REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Generated : "+utils.FormatDateTime(generated))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Scope     : "+safe(string(kind), "all kinds"))
	pdf.Ln(10)

	widths := []float64{14, 26, 80, 40, 36, 18, 18, 45}
	headers := []string{"ID", "Type", "Name", "Brand / Model", "Category", "Stock", "Min", "Restock cost"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	total := decimal.Zero
	for _, v := range views {
		cost := restockCost(v.CatalogItem)
		total = total.Add(cost)

		brand := strings.TrimSpace(strings.Join([]string{v.Brand, v.Model}, " "))
		cells := []string{
			strconv.FormatInt(v.ID, 10),
			string(v.Kind),
			truncate(v.Name, 48),
			truncate(safe(brand, "-"), 24),
			truncate(safe(v.Category, "-"), 22),
			strconv.Itoa(v.InStock),
			strconv.Itoa(v.MinStock),
			utils.FormatMoney(cost),
		}
		for i, c := range cells {
			align := "L"
			if i == 0 || i >= 5 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(views) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(sum(widths), 7, "Every item is above its minimum stock.", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Items: %d    Total restock cost: %s", len(views), utils.FormatMoney(total)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("LOW_STOCK_%s_%s.pdf", safeFilenamePart(safe(string(kind), "all")), generated.Format("20060102_1504"))
	return buf.Bytes(), filename, nil
}

// restockCost prices the units needed to get back to minStock. Items already
// at their minimum still need one unit to clear the low-stock flag.
func restockCost(it models.CatalogItem) decimal.Decimal {
	need := it.MinStock - it.InStock
	if need <= 0 {
		need = 1
	}
	return it.Price.Mul(decimal.NewFromInt(int64(need)))
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
