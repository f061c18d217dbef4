package contracts

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"crediario/portal-backend/internal/customers"
	"crediario/portal-backend/internal/ledger"
	"crediario/portal-backend/internal/money"
	"crediario/portal-backend/internal/sales"
)

var hundred = decimal.NewFromInt(100)

// ContractData is the snapshot a contract is rendered from.
type ContractData struct {
	Sale         sales.Sale
	Installments []ledger.Installment
	Customer     customers.Customer
	StoreName    string
}

// Generator renders installment-sale contracts as PDF documents.
type Generator struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func NewGenerator() *Generator {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)

	return &Generator{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Generate renders the contract and writes the PDF to w.
func (g *Generator) Generate(data ContractData, w io.Writer) error {
	g.pdf.AddPage()

	g.addTitle()
	g.addSellerBlock(data)
	g.addBuyerBlock(data.Customer)
	g.addSaleBlock(data.Sale)
	g.addScheduleTable(data.Installments)
	g.addTerms(data.Sale)
	g.addSignatures(data)
	g.addFooter()

	if g.pdf.Err() {
		return fmt.Errorf("failed to render contract: %v", g.pdf.Error())
	}

	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to write contract: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (g *Generator) addTitle() {
	g.pdf.SetFont("Arial", "B", 14)
	g.pdf.CellFormat(0, 10, g.tr("CONTRATO DE COMPRA E VENDA A PRAZO"), "", 1, "C", false, 0, "")
	g.pdf.Ln(4)
}

func (g *Generator) addSellerBlock(data ContractData) {
	g.sectionHeader("VENDEDOR")
	g.pdf.SetFont("Arial", "", 10)
	g.pdf.CellFormat(0, 6, g.tr(data.StoreName), "", 1, "L", false, 0, "")
	g.pdf.Ln(2)
}

func (g *Generator) addBuyerBlock(customer customers.Customer) {
	g.sectionHeader("COMPRADOR")
	g.pdf.SetFont("Arial", "", 10)
	g.field("Nome", customer.FullName)
	g.field("CPF", customer.CPF)
	if customer.RG != nil {
		g.field("RG", *customer.RG)
	}
	g.field("Telefone", customer.Phone)
	g.field("Endereço", fmt.Sprintf("%s, %s - %s", customer.Address, customer.City, customer.State))
	g.pdf.Ln(2)
}

func (g *Generator) addSaleBlock(sale sales.Sale) {
	g.sectionHeader("DADOS DA VENDA")
	g.pdf.SetFont("Arial", "", 10)
	g.field("Venda nº", sale.SaleNumber)
	g.field("Data", sale.SaleDate.Format("02/01/2006"))
	g.field("Descrição", sale.Description)
	g.field("Valor total", money.FormatBRL(sale.TotalAmount))
	g.field("Entrada", money.FormatBRL(sale.DownPayment))
	g.field("Valor financiado", money.FormatBRL(sale.FinancedAmount))
	if sale.InterestRate.IsPositive() {
		g.field("Juros ao mês", sale.InterestRate.Mul(hundred).StringFixed(2)+"%")
	}
	g.field("Total a prazo", money.FormatBRL(sale.TotalWithInterest))
	g.field("Parcelas", fmt.Sprintf("%dx de %s", sale.InstallmentCount, money.FormatBRL(sale.InstallmentValue)))
	g.pdf.Ln(2)
}

func (g *Generator) addScheduleTable(installments []ledger.Installment) {
	g.sectionHeader("CRONOGRAMA DE PAGAMENTO")

	g.pdf.SetFont("Arial", "B", 9)
	g.pdf.SetFillColor(230, 230, 230)
	g.pdf.CellFormat(25, 7, g.tr("Parcela"), "1", 0, "C", true, 0, "")
	g.pdf.CellFormat(45, 7, g.tr("Vencimento"), "1", 0, "C", true, 0, "")
	g.pdf.CellFormat(45, 7, g.tr("Valor"), "1", 0, "C", true, 0, "")
	g.pdf.CellFormat(45, 7, g.tr("Situação"), "1", 1, "C", true, 0, "")

	g.pdf.SetFont("Arial", "", 9)
	for _, inst := range installments {
		g.pdf.CellFormat(25, 6, fmt.Sprintf("%d", inst.InstallmentNumber), "1", 0, "C", false, 0, "")
		g.pdf.CellFormat(45, 6, inst.DueDate.Format("02/01/2006"), "1", 0, "C", false, 0, "")
		g.pdf.CellFormat(45, 6, money.FormatBRL(inst.Amount), "1", 0, "R", false, 0, "")
		g.pdf.CellFormat(45, 6, g.tr(statusLabel(inst.Status)), "1", 1, "C", false, 0, "")
	}
	g.pdf.Ln(4)
}

func (g *Generator) addTerms(sale sales.Sale) {
	g.sectionHeader("CLÁUSULAS")
	g.pdf.SetFont("Arial", "", 9)

	terms := []string{
		"1. O COMPRADOR compromete-se a pagar as parcelas nas datas de vencimento acordadas acima.",
		"2. O atraso no pagamento de qualquer parcela sujeita o COMPRADOR a multa e juros de mora.",
		"3. O pagamento antecipado de parcelas poderá ser negociado com desconto junto ao VENDEDOR.",
		"4. A propriedade dos bens descritos permanece com o VENDEDOR até a quitação integral do contrato.",
		fmt.Sprintf("5. O valor total financiado neste contrato é de %s, a ser pago em %d parcela(s).",
			money.FormatBRL(sale.TotalWithInterest), sale.InstallmentCount),
		"6. Fica eleito o foro da comarca do VENDEDOR para dirimir quaisquer controvérsias deste contrato.",
	}
	for _, term := range terms {
		g.pdf.MultiCell(0, 5, g.tr(term), "", "L", false)
		g.pdf.Ln(1)
	}
	g.pdf.Ln(6)
}

func (g *Generator) addSignatures(data ContractData) {
	g.pdf.SetFont("Arial", "", 10)

	y := g.pdf.GetY()
	if y > 240 {
		g.pdf.AddPage()
		y = g.pdf.GetY()
	}
	y += 15

	g.pdf.Line(20, y, 90, y)
	g.pdf.Line(115, y, 185, y)
	g.pdf.SetY(y + 1)
	g.pdf.CellFormat(85, 5, g.tr(data.StoreName), "", 0, "C", false, 0, "")
	g.pdf.CellFormat(10, 5, "", "", 0, "C", false, 0, "")
	g.pdf.CellFormat(85, 5, g.tr(data.Customer.FullName), "", 1, "C", false, 0, "")
	g.pdf.CellFormat(85, 5, "VENDEDOR", "", 0, "C", false, 0, "")
	g.pdf.CellFormat(10, 5, "", "", 0, "C", false, 0, "")
	g.pdf.CellFormat(85, 5, "COMPRADOR", "", 1, "C", false, 0, "")
}

func (g *Generator) addFooter() {
	g.pdf.SetY(-25)
	g.pdf.SetFont("Arial", "I", 8)
	g.pdf.CellFormat(0, 5,
		g.tr(fmt.Sprintf("Documento gerado em %s", time.Now().Format("02/01/2006 15:04"))),
		"", 1, "C", false, 0, "")
}

func (g *Generator) sectionHeader(title string) {
	g.pdf.SetFont("Arial", "B", 11)
	g.pdf.CellFormat(0, 8, g.tr(title), "", 1, "L", false, 0, "")
}

func (g *Generator) field(label, value string) {
	g.pdf.SetFont("Arial", "B", 10)
	g.pdf.CellFormat(40, 6, g.tr(label+":"), "", 0, "L", false, 0, "")
	g.pdf.SetFont("Arial", "", 10)
	g.pdf.CellFormat(0, 6, g.tr(value), "", 1, "L", false, 0, "")
}

func statusLabel(status ledger.InstallmentStatus) string {
	switch status {
	case ledger.StatusPaid:
		return "Pago"
	case ledger.StatusCancelled:
		return "Cancelado"
	default:
		return "Pendente"
	}
}
