package nfe

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

var ErrNotNFE = errors.New("xml is not a valid NF-e")

type xmlAddress struct {
	Street     string `xml:"xLgr"`
	Number     string `xml:"nro"`
	Complement string `xml:"xCpl"`
	District   string `xml:"xBairro"`
	City       string `xml:"xMun"`
	UF         string `xml:"UF"`
	ZipCode    string `xml:"CEP"`
	Phone      string `xml:"fone"`
}

type xmlEmit struct {
	CNPJ              string     `xml:"CNPJ"`
	Name              string     `xml:"xNome"`
	TradeName         string     `xml:"xFant"`
	StateRegistration string     `xml:"IE"`
	Address           xmlAddress `xml:"enderEmit"`
}

type xmlDest struct {
	CNPJ              string     `xml:"CNPJ"`
	CPF               string     `xml:"CPF"`
	Name              string     `xml:"xNome"`
	StateRegistration string     `xml:"IE"`
	Email             string     `xml:"email"`
	Address           xmlAddress `xml:"enderDest"`
}

type xmlProd struct {
	Code        string `xml:"cProd"`
	Description string `xml:"xProd"`
	NCM         string `xml:"NCM"`
	CFOP        string `xml:"CFOP"`
	Unit        string `xml:"uCom"`
	Quantity    string `xml:"qCom"`
	UnitValue   string `xml:"vUnCom"`
	TotalValue  string `xml:"vProd"`
}

type xmlDet struct {
	NItem     string  `xml:"nItem,attr"`
	Prod      xmlProd `xml:"prod"`
	InfAdProd string  `xml:"infAdProd"`
}

type xmlCarrier struct {
	CNPJ string `xml:"CNPJ"`
	CPF  string `xml:"CPF"`
	Name string `xml:"xNome"`
	UF   string `xml:"UF"`
}

type xmlInfNFe struct {
	ID  string `xml:"Id,attr"`
	Ide struct {
		Number string `xml:"nNF"`
		Series string `xml:"serie"`
		DhEmi  string `xml:"dhEmi"`
	} `xml:"ide"`
	Emit  xmlEmit  `xml:"emit"`
	Dest  xmlDest  `xml:"dest"`
	Det   []xmlDet `xml:"det"`
	Total struct {
		ICMSTot struct {
			Products  string `xml:"vProd"`
			Freight   string `xml:"vFrete"`
			Insurance string `xml:"vSeg"`
			Discount  string `xml:"vDesc"`
			Total     string `xml:"vNF"`
		} `xml:"ICMSTot"`
	} `xml:"total"`
	Transp struct {
		FreightMode string     `xml:"modFrete"`
		Carrier     xmlCarrier `xml:"transporta"`
	} `xml:"transp"`
	InfAdic struct {
		InfCpl     string `xml:"infCpl"`
		InfAdFisco string `xml:"infAdFisco"`
	} `xml:"infAdic"`
}

type xmlNFe struct {
	InfNFe xmlInfNFe `xml:"infNFe"`
}

// xmlEnvelope matches either a bare <NFe> or a processed <nfeProc> root.
type xmlEnvelope struct {
	XMLName xml.Name
	InfNFe  xmlInfNFe `xml:"infNFe"`
	NFe     xmlNFe    `xml:"NFe"`
}

// Parse reads an NF-e XML document and extracts its structured content.
// Returns ErrNotNFE when the document is well-formed XML but not an NF-e.
func Parse(r io.Reader) (*Invoice, error) {
	var env xmlEnvelope
	dec := xml.NewDecoder(r)
	// municipal/state documents show up in latin-1 every now and then
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("invalid xml: %w", err)
	}

	local := env.XMLName.Local
	if local != "nfeProc" && local != "NFe" {
		return nil, ErrNotNFE
	}
	inf := env.InfNFe
	if local == "nfeProc" {
		inf = env.NFe.InfNFe
	}
	if strings.TrimSpace(inf.Ide.Number) == "" {
		return nil, ErrNotNFE
	}
	return buildInvoice(inf), nil
}

// ParseBytes is a convenience wrapper around Parse.
func ParseBytes(data []byte) (*Invoice, error) {
	return Parse(strings.NewReader(string(data)))
}

func buildInvoice(inf xmlInfNFe) *Invoice {
	inv := &Invoice{
		AccessKey: strings.TrimPrefix(strings.TrimSpace(inf.ID), "NFe"),
		Number:    strings.TrimSpace(inf.Ide.Number),
		Series:    strings.TrimSpace(inf.Ide.Series),
		IssuedAt:  parseEmissionDate(inf.Ide.DhEmi),
		Emitter: Party{
			CNPJ:              strings.TrimSpace(inf.Emit.CNPJ),
			Name:              strings.TrimSpace(inf.Emit.Name),
			TradeName:         strings.TrimSpace(inf.Emit.TradeName),
			StateRegistration: strings.TrimSpace(inf.Emit.StateRegistration),
			Phone:             strings.TrimSpace(inf.Emit.Address.Phone),
			Address:           buildAddress(inf.Emit.Address),
		},
		Recipient: Party{
			CNPJ:              firstNonEmpty(strings.TrimSpace(inf.Dest.CNPJ), strings.TrimSpace(inf.Dest.CPF)),
			Name:              strings.TrimSpace(inf.Dest.Name),
			StateRegistration: strings.TrimSpace(inf.Dest.StateRegistration),
			Email:             strings.TrimSpace(inf.Dest.Email),
			Phone:             strings.TrimSpace(inf.Dest.Address.Phone),
			Address:           buildAddress(inf.Dest.Address),
		},
		Totals: Totals{
			Products:  parseDecimal(inf.Total.ICMSTot.Products),
			Freight:   parseDecimal(inf.Total.ICMSTot.Freight),
			Insurance: parseDecimal(inf.Total.ICMSTot.Insurance),
			Discount:  parseDecimal(inf.Total.ICMSTot.Discount),
			Total:     parseDecimal(inf.Total.ICMSTot.Total),
		},
		Transport: Transport{
			FreightMode: strings.TrimSpace(inf.Transp.FreightMode),
			CarrierCNPJ: firstNonEmpty(strings.TrimSpace(inf.Transp.Carrier.CNPJ), strings.TrimSpace(inf.Transp.Carrier.CPF)),
			CarrierName: strings.TrimSpace(inf.Transp.Carrier.Name),
			CarrierUF:   strings.TrimSpace(inf.Transp.Carrier.UF),
		},
		ComplementaryInfo: strings.TrimSpace(inf.InfAdic.InfCpl),
		FiscoInfo:         strings.TrimSpace(inf.InfAdic.InfAdFisco),
	}

	for _, det := range inf.Det {
		item := Item{
			ItemNumber:     strings.TrimSpace(det.NItem),
			Code:           strings.TrimSpace(det.Prod.Code),
			Description:    strings.TrimSpace(det.Prod.Description),
			NCM:            strings.TrimSpace(det.Prod.NCM),
			CFOP:           strings.TrimSpace(det.Prod.CFOP),
			Unit:           strings.TrimSpace(det.Prod.Unit),
			Quantity:       parseDecimal(det.Prod.Quantity),
			UnitValue:      parseDecimal(det.Prod.UnitValue),
			TotalValue:     parseDecimal(det.Prod.TotalValue),
			AdditionalInfo: strings.TrimSpace(det.InfAdProd),
		}
		item.Guarantees = ExtractGuarantees(item.AdditionalInfo)
		item.MapaRegistration = ExtractMapaRegistration(item.AdditionalInfo + " " + inv.ComplementaryInfo)
		inv.Items = append(inv.Items, item)
	}
	return inv
}

func buildAddress(a xmlAddress) Address {
	return Address{
		Street:     strings.TrimSpace(a.Street),
		Number:     strings.TrimSpace(a.Number),
		Complement: strings.TrimSpace(a.Complement),
		District:   strings.TrimSpace(a.District),
		City:       strings.TrimSpace(a.City),
		UF:         strings.ToUpper(strings.TrimSpace(a.UF)),
		ZipCode:    strings.TrimSpace(a.ZipCode),
	}
}

// parseEmissionDate handles the NF-e dhEmi format 2025-10-01T16:10:39-03:00,
// with or without the timezone offset.
func parseEmissionDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseDecimal accepts Brazilian comma-decimal values; unparseable input is zero.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}
