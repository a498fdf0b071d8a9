package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF invoice generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// InvoiceData is the template input for an invoice
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Lines         []InvoiceLine
	Total         string
	Currency      string
	Company       config.CompanyConfig
}

// InvoiceLine is a rendered invoice row
type InvoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Amount    string
}

// GenerateInvoice renders an order as a PDF invoice
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%06d", o.ID),
		InvoiceDate:   o.CreatedAt.Format("January 2, 2006"),
		Order:         o,
		Total:         formatCents(o.Amount),
		Currency:      o.Currency,
		Company:       s.config.Company,
	}
	for _, item := range o.Items {
		data.Lines = append(data.Lines, InvoiceLine{
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: formatCents(item.Product.Price),
			Amount:    formatCents(item.Product.Price * int64(item.Quantity)),
		})
	}

	html, err := s.renderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(html)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfg.Buffer(), nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; color: #333; margin: 40px; }
  h1 { font-size: 24px; }
  .meta { margin-bottom: 30px; color: #666; }
  table { width: 100%; border-collapse: collapse; }
  th, td { padding: 8px 12px; border-bottom: 1px solid #ddd; text-align: left; }
  th { background: #f5f5f5; }
  .right { text-align: right; }
  .total { font-weight: bold; font-size: 16px; }
  .footer { margin-top: 40px; font-size: 12px; color: #999; }
</style>
</head>
<body>
  <h1>Invoice {{.InvoiceNumber}}</h1>
  <div class="meta">
    <div>{{.InvoiceDate}}</div>
    <div>Billed to: {{.Order.CustomerEmail}}</div>
    <div>Payment reference: {{.Order.CheckoutID}}</div>
  </div>
  <table>
    <tr><th>Item</th><th class="right">Qty</th><th class="right">Unit price</th><th class="right">Amount</th></tr>
    {{range .Lines}}
    <tr>
      <td>{{.Name}}</td>
      <td class="right">{{.Quantity}}</td>
      <td class="right">{{.UnitPrice}}</td>
      <td class="right">{{.Amount}}</td>
    </tr>
    {{end}}
    <tr>
      <td colspan="3" class="right total">Total</td>
      <td class="right total">{{.Total}} {{.Currency}}</td>
    </tr>
  </table>
  <div class="footer">
    {{.Company.Name}}{{if .Company.Address}} · {{.Company.Address}}{{end}}{{if .Company.Email}} · {{.Company.Email}}{{end}}{{if .Company.Website}} · {{.Company.Website}}{{end}}
  </div>
</body>
</html>`))

func (s *Service) renderHTML(data InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
