// Package report aggregates processed NF-e invoices into the MAPA quarterly
// report: catalog matching, unit conversion to tonnes, import/domestic
// classification and PDF rendering.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/nfe"
)

// Row is one aggregated line of the quarterly report. Quantities are
// decimal strings in tonnes, two decimal places, trailing zeros trimmed.
type Row struct {
	MapaRegistration string   `json:"mapa_registration"`
	ProductName      string   `json:"product_name"`
	ProductReference string   `json:"product_reference,omitempty"`
	Unit             string   `json:"unit"`
	QuantityImport   string   `json:"quantity_import"`
	QuantityDomestic string   `json:"quantity_domestic"`
	SourceNFEs       []string `json:"source_nfes"`
}

// UnregisteredEntry is an invoice line that could not be matched against the
// user's catalog. ErrorType is "company" or "product".
type UnregisteredEntry struct {
	ErrorType   string `json:"error_type"`
	CompanyName string `json:"company_name"`
	ProductName string `json:"product_name"`
	NFENumber   string `json:"nfe_number"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
}

// CatalogError reports catalog gaps found while aggregating. The batch is
// never cut short: Entries covers every unmatched line of every invoice.
type CatalogError struct {
	Entries []UnregisteredEntry
}

func (e *CatalogError) counts() (companies, products int) {
	for _, en := range e.Entries {
		if en.ErrorType == "company" {
			companies++
		} else {
			products++
		}
	}
	return
}

func (e *CatalogError) Error() string {
	companies, products := e.counts()
	switch {
	case companies > 0 && products > 0:
		return fmt.Sprintf("Encontrados erros: %d empresa(s) não cadastrada(s), %d produto(s) não cadastrado(s) no catálogo.", companies, products)
	case companies > 0:
		return fmt.Sprintf("%d empresa(s) não cadastrada(s) no catálogo.", companies)
	default:
		return fmt.Sprintf("%d produto(s) não cadastrado(s) no catálogo.", products)
	}
}

// Result is a successfully aggregated report.
type Result struct {
	Rows      []Row `json:"rows"`
	TotalNFEs int   `json:"total_nfes"`
}

type productKey struct {
	companyID uint
	name      string
}

// Processor matches invoices against one user's catalog. The catalog is
// loaded once into memory; registration lookups are map hits.
type Processor struct {
	companyIndex map[string]*models.Company
	productIndex map[productKey]*models.Product
}

func NewProcessor(db *gorm.DB, userID uint) (*Processor, error) {
	var companies []models.Company
	if err := db.Preload("Products").Where("user_id = ?", userID).Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	p := &Processor{
		companyIndex: make(map[string]*models.Company, len(companies)),
		productIndex: make(map[productKey]*models.Product),
	}
	for i := range companies {
		c := &companies[i]
		p.companyIndex[strings.TrimSpace(c.CompanyName)] = c
		for j := range c.Products {
			prod := &c.Products[j]
			p.productIndex[productKey{c.ID, strings.TrimSpace(prod.ProductName)}] = prod
		}
	}
	return p, nil
}

type aggRow struct {
	productName      string
	productReference string
	quantityImport   decimal.Decimal
	quantityDomestic decimal.Decimal
	sourceNFEs       []string
}

// Process aggregates invoices by full MAPA registration. A *CatalogError is
// returned when any emitter or product is missing from the catalog; partial
// results are never produced in that case.
func (p *Processor) Process(invoices []*nfe.Invoice) (*Result, error) {
	aggregated := map[string]*aggRow{}
	var unregistered []UnregisteredEntry

	for _, inv := range invoices {
		companyName := strings.TrimSpace(inv.Emitter.Name)
		company := p.companyIndex[companyName]
		if company == nil {
			// unknown emitter taints every line of this invoice
			for _, item := range inv.Items {
				unregistered = append(unregistered, UnregisteredEntry{
					ErrorType:   "company",
					CompanyName: companyName,
					ProductName: item.Description,
					NFENumber:   inv.Number,
					Quantity:    item.Quantity.String(),
					Unit:        item.Unit,
				})
			}
			continue
		}

		for _, item := range inv.Items {
			productName := strings.TrimSpace(item.Description)
			product := p.productIndex[productKey{company.ID, productName}]
			if product == nil {
				unregistered = append(unregistered, UnregisteredEntry{
					ErrorType:   "product",
					CompanyName: companyName,
					ProductName: productName,
					NFENumber:   inv.Number,
					Quantity:    item.Quantity.String(),
					Unit:        item.Unit,
				})
				continue
			}

			registration := company.MapaRegistration + "-" + product.MapaRegistration
			tonnes := ToTonnes(item.Quantity, item.Unit)

			row := aggregated[registration]
			if row == nil {
				row = &aggRow{productName: product.ProductName}
				if product.ProductReference != nil {
					row.productReference = *product.ProductReference
				}
				aggregated[registration] = row
			}
			if inv.IsImport() {
				row.quantityImport = row.quantityImport.Add(tonnes)
			} else {
				row.quantityDomestic = row.quantityDomestic.Add(tonnes)
			}
			if inv.Number != "" && !contains(row.sourceNFEs, inv.Number) {
				row.sourceNFEs = append(row.sourceNFEs, inv.Number)
			}
		}
	}

	if len(unregistered) > 0 {
		return nil, &CatalogError{Entries: unregistered}
	}

	registrations := make([]string, 0, len(aggregated))
	for reg := range aggregated {
		registrations = append(registrations, reg)
	}
	sort.Strings(registrations)

	result := &Result{TotalNFEs: len(invoices), Rows: make([]Row, 0, len(aggregated))}
	for _, reg := range registrations {
		row := aggregated[reg]
		result.Rows = append(result.Rows, Row{
			MapaRegistration: reg,
			ProductName:      row.productName,
			ProductReference: row.productReference,
			Unit:             "Tonelada",
			QuantityImport:   FormatQuantity(row.quantityImport),
			QuantityDomestic: FormatQuantity(row.quantityDomestic),
			SourceNFEs:       row.sourceNFEs,
		})
	}
	return result, nil
}

var (
	tonneUnits = map[string]bool{
		"TON": true, "TONELADA": true, "TONELADAS": true, "TN": true, "T": true,
		"TONS": true, "TONELADA(S)": true, "TON(S)": true, "TONNE": true,
		"TONNES": true, "MT": true,
	}
	kgUnits = map[string]bool{
		"KG": true, "QUILOGRAMA": true, "QUILOGRAMAS": true, "KGS": true,
		"KILO": true, "KILOS": true, "QUILOGRAMA(S)": true, "KG(S)": true,
		"KILOGRAMAS": true, "KILOGRAMA": true,
	}
	thousand = decimal.NewFromInt(1000)
)

// ToTonnes converts an invoice quantity to tonnes. Unknown units are treated
// as kilograms, the conservative default for fertilizer invoices.
func ToTonnes(quantity decimal.Decimal, unit string) decimal.Decimal {
	normalized := strings.ToUpper(strings.TrimSpace(unit))
	normalized = strings.NewReplacer(".", "", ",", "", " ", "").Replace(normalized)
	if tonneUnits[normalized] {
		return quantity
	}
	if normalized == "" || kgUnits[normalized] {
		return quantity.Div(thousand)
	}
	return quantity.Div(thousand)
}

// FormatQuantity renders a tonne quantity with two decimal places and
// trailing zeros trimmed; zero becomes "0".
func FormatQuantity(q decimal.Decimal) string {
	if q.IsZero() {
		return "0"
	}
	s := q.Round(2).StringFixed(2)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
