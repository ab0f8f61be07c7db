package nfe

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	Street     string `json:"logradouro"`
	Number     string `json:"numero"`
	Complement string `json:"complemento"`
	District   string `json:"bairro"`
	City       string `json:"municipio"`
	UF         string `json:"uf"`
	ZipCode    string `json:"cep"`
}

// Party is the emitter or recipient of an invoice.
type Party struct {
	CNPJ              string  `json:"cnpj"`
	Name              string  `json:"razao_social"`
	TradeName         string  `json:"nome_fantasia,omitempty"`
	StateRegistration string  `json:"inscricao_estadual,omitempty"`
	Address           Address `json:"endereco"`
	Phone             string  `json:"telefone,omitempty"`
	Email             string  `json:"email,omitempty"`
}

type Item struct {
	ItemNumber       string            `json:"numero_item"`
	Code             string            `json:"codigo"`
	Description      string            `json:"descricao"`
	NCM              string            `json:"ncm"`
	CFOP             string            `json:"cfop"`
	Unit             string            `json:"unidade"`
	Quantity         decimal.Decimal   `json:"quantidade"`
	UnitValue        decimal.Decimal   `json:"valor_unitario"`
	TotalValue       decimal.Decimal   `json:"valor_total"`
	AdditionalInfo   string            `json:"info_adicional,omitempty"`
	Guarantees       map[string]string `json:"garantias,omitempty"`
	MapaRegistration string            `json:"registro_mapa,omitempty"`
}

type Totals struct {
	Products  decimal.Decimal `json:"valor_produtos"`
	Freight   decimal.Decimal `json:"valor_frete"`
	Insurance decimal.Decimal `json:"valor_seguro"`
	Discount  decimal.Decimal `json:"valor_desconto"`
	Total     decimal.Decimal `json:"valor_total_nota"`
}

type Transport struct {
	FreightMode string `json:"modalidade_frete"`
	CarrierCNPJ string `json:"transportadora_cnpj,omitempty"`
	CarrierName string `json:"transportadora_nome,omitempty"`
	CarrierUF   string `json:"transportadora_uf,omitempty"`
}

// Invoice is the structured content of one NF-e.
type Invoice struct {
	AccessKey         string     `json:"chave_acesso"`
	Number            string     `json:"numero_nota"`
	Series            string     `json:"serie"`
	IssuedAt          *time.Time `json:"data_emissao,omitempty"`
	Emitter           Party      `json:"emitente"`
	Recipient         Party      `json:"destinatario"`
	Items             []Item     `json:"produtos"`
	Totals            Totals     `json:"totais"`
	Transport         Transport  `json:"transporte"`
	ComplementaryInfo string     `json:"info_complementar,omitempty"`
	FiscoInfo         string     `json:"info_fisco,omitempty"`
}

// IsImport reports whether the invoice was issued abroad (emitter UF "EX").
func (inv *Invoice) IsImport() bool {
	return inv.Emitter.Address.UF == "EX"
}

// Period returns the quarter the invoice belongs to, e.g. "Q3-2025".
// Empty when the emission date is unknown.
func (inv *Invoice) Period() string {
	if inv.IssuedAt == nil {
		return ""
	}
	return Quarter(*inv.IssuedAt)
}

// Quarter formats a time as a reporting period "Q{1-4}-{year}".
func Quarter(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d-%d", q, t.Year())
}
