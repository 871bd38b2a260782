package anaf

import (
	"encoding/xml"
	"sort"
	"strconv"
	"strings"

	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/internal/domain/invoice"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	ublNamespace = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	cacNamespace = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	cbcNamespace = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:efactura.mfinante.ro:CIUS-RO:1.0.1"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	invoiceTypeCommercial = "380"
	paymentMeansTransfer  = "30"
	cuiScheme             = "9947"
	vatScheme             = "VAT"
	dateLayout            = "2006-01-02"
)

type ublInvoice struct {
	XMLName         xml.Name        `xml:"Invoice"`
	Xmlns           string          `xml:"xmlns,attr"`
	XmlnsCAC        string          `xml:"xmlns:cac,attr"`
	XmlnsCBC        string          `xml:"xmlns:cbc,attr"`
	CustomizationID string          `xml:"cbc:CustomizationID"`
	ProfileID       string          `xml:"cbc:ProfileID"`
	ID              string          `xml:"cbc:ID"`
	IssueDate       string          `xml:"cbc:IssueDate"`
	DueDate         string          `xml:"cbc:DueDate,omitempty"`
	TypeCode        string          `xml:"cbc:InvoiceTypeCode"`
	Note            string          `xml:"cbc:Note,omitempty"`
	CurrencyCode    string          `xml:"cbc:DocumentCurrencyCode"`
	TaxCurrencyCode string          `xml:"cbc:TaxCurrencyCode,omitempty"`
	Supplier        ublPartyWrapper `xml:"cac:AccountingSupplierParty"`
	Customer        ublPartyWrapper `xml:"cac:AccountingCustomerParty"`
	PaymentMeans    *ublPayment     `xml:"cac:PaymentMeans,omitempty"`
	TaxTotals       []ublTaxTotal   `xml:"cac:TaxTotal"`
	Totals          ublTotals       `xml:"cac:LegalMonetaryTotal"`
	Lines           []ublLine       `xml:"cac:InvoiceLine"`
}

type ublPartyWrapper struct {
	Party ublParty `xml:"cac:Party"`
}

type ublParty struct {
	EndpointID     ublIdentifier  `xml:"cbc:EndpointID"`
	Identification ublPartyID     `xml:"cac:PartyIdentification"`
	Name           ublPartyName   `xml:"cac:PartyName"`
	Address        ublAddress     `xml:"cac:PostalAddress"`
	TaxScheme      *ublPartyTax   `xml:"cac:PartyTaxScheme,omitempty"`
	LegalEntity    ublLegalEntity `xml:"cac:PartyLegalEntity"`
	Contact        *ublContact    `xml:"cac:Contact,omitempty"`
}

type ublIdentifier struct {
	SchemeID string `xml:"schemeID,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type ublPartyID struct {
	ID ublIdentifier `xml:"cbc:ID"`
}

type ublPartyName struct {
	Name string `xml:"cbc:Name"`
}

type ublAddress struct {
	Street    string     `xml:"cbc:StreetName,omitempty"`
	City      string     `xml:"cbc:CityName,omitempty"`
	Subentity string     `xml:"cbc:CountrySubentity,omitempty"`
	Country   ublCountry `xml:"cac:Country"`
}

type ublCountry struct {
	Code string `xml:"cbc:IdentificationCode"`
}

type ublPartyTax struct {
	CompanyID string       `xml:"cbc:CompanyID"`
	TaxScheme ublTaxScheme `xml:"cac:TaxScheme"`
}

type ublTaxScheme struct {
	ID string `xml:"cbc:ID"`
}

type ublLegalEntity struct {
	Name      string `xml:"cbc:RegistrationName"`
	CompanyID string `xml:"cbc:CompanyID,omitempty"`
}

type ublContact struct {
	Phone string `xml:"cbc:Telephone,omitempty"`
	Email string `xml:"cbc:ElectronicMail,omitempty"`
}

type ublPayment struct {
	Code    string      `xml:"cbc:PaymentMeansCode"`
	Account *ublAccount `xml:"cac:PayeeFinancialAccount,omitempty"`
}

type ublAccount struct {
	ID   string `xml:"cbc:ID"`
	Name string `xml:"cbc:Name,omitempty"`
}

type ublAmount struct {
	Currency string `xml:"currencyID,attr"`
	Value    string `xml:",chardata"`
}

type ublQuantity struct {
	UnitCode string `xml:"unitCode,attr"`
	Value    string `xml:",chardata"`
}

type ublTaxTotal struct {
	TaxAmount ublAmount        `xml:"cbc:TaxAmount"`
	Subtotals []ublTaxSubtotal `xml:"cac:TaxSubtotal,omitempty"`
}

type ublTaxSubtotal struct {
	TaxableAmount ublAmount      `xml:"cbc:TaxableAmount"`
	TaxAmount     ublAmount      `xml:"cbc:TaxAmount"`
	Category      ublTaxCategory `xml:"cac:TaxCategory"`
}

type ublTaxCategory struct {
	ID              string       `xml:"cbc:ID"`
	Percent         string       `xml:"cbc:Percent,omitempty"`
	ExemptionReason string       `xml:"cbc:TaxExemptionReasonCode,omitempty"`
	TaxScheme       ublTaxScheme `xml:"cac:TaxScheme"`
}

type ublTotals struct {
	LineExtension ublAmount `xml:"cbc:LineExtensionAmount"`
	TaxExclusive  ublAmount `xml:"cbc:TaxExclusiveAmount"`
	TaxInclusive  ublAmount `xml:"cbc:TaxInclusiveAmount"`
	Payable       ublAmount `xml:"cbc:PayableAmount"`
}

type ublLine struct {
	ID            string      `xml:"cbc:ID"`
	Quantity      ublQuantity `xml:"cbc:InvoicedQuantity"`
	LineExtension ublAmount   `xml:"cbc:LineExtensionAmount"`
	Item          ublItem     `xml:"cac:Item"`
	Price         ublPrice    `xml:"cac:Price"`
}

type ublItem struct {
	Name     string         `xml:"cbc:Name"`
	Category ublTaxCategory `xml:"cac:ClassifiedTaxCategory"`
}

type ublPrice struct {
	Amount ublAmount `xml:"cbc:PriceAmount"`
}

// unitCodes maps the Romanian units used on invoices to UN/ECE Recommendation 20 codes.
var unitCodes = map[string]string{
	"buc":    "H87",
	"bucata": "H87",
	"ora":    "HUR",
	"ore":    "HUR",
	"zi":     "DAY",
	"zile":   "DAY",
	"luna":   "MON",
	"kg":     "KGM",
	"g":      "GRM",
	"t":      "TNE",
	"l":      "LTR",
	"m":      "MTR",
	"mp":     "MTK",
	"m2":     "MTK",
	"mc":     "MTQ",
	"m3":     "MTQ",
	"km":     "KMT",
	"set":    "SET",
	"kwh":    "KWH",
}

// UnitCode returns the UN/ECE code of a unit, falling back to H87 (piece).
func UnitCode(unit string) string {
	if code, ok := unitCodes[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return code
	}
	return "H87"
}

// BuildInvoiceXML renders an issued invoice as a CIUS-RO compliant UBL 2.1 document.
func BuildInvoiceXML(inv *invoice.Invoice, supplier *company.Company) ([]byte, error) {
	if inv == nil || supplier == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice and supplier are required")
	}
	if inv.Type != invoice.TypeIssued {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Only issued invoices can be sent to e-Factura")
	}
	if len(inv.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice has no lines")
	}

	currency := string(inv.Currency)
	if currency == "" {
		currency = string(valueobject.RON)
	}

	doc := ublInvoice{
		Xmlns:           ublNamespace,
		XmlnsCAC:        cacNamespace,
		XmlnsCBC:        cbcNamespace,
		CustomizationID: CustomizationID,
		ProfileID:       ProfileID,
		ID:              inv.Number,
		IssueDate:       inv.IssueDate.Format(dateLayout),
		TypeCode:        invoiceTypeCommercial,
		Note:            strings.TrimSpace(inv.Notes),
		CurrencyCode:    currency,
		Supplier:        ublPartyWrapper{Party: supplierParty(supplier)},
		Customer:        ublPartyWrapper{Party: customerParty(inv.Partner)},
	}
	if inv.DueDate != nil {
		doc.DueDate = inv.DueDate.Format(dateLayout)
	}
	if supplier.IBAN != "" {
		doc.PaymentMeans = &ublPayment{
			Code:    paymentMeansTransfer,
			Account: &ublAccount{ID: strings.ReplaceAll(supplier.IBAN, " ", ""), Name: supplier.BankName},
		}
	}

	doc.TaxTotals = []ublTaxTotal{vatTotal(inv, currency, supplier.VATPayer)}
	// Foreign currency invoices also report the VAT in lei (BR-53).
	if inv.IsForeignCurrency() {
		doc.TaxCurrencyCode = string(valueobject.RON)
		doc.TaxTotals = append(doc.TaxTotals, ublTaxTotal{
			TaxAmount: amount(string(valueobject.RON), inv.BaseVATAmount),
		})
	}

	doc.Totals = ublTotals{
		LineExtension: amount(currency, inv.NetAmount),
		TaxExclusive:  amount(currency, inv.NetAmount),
		TaxInclusive:  amount(currency, inv.GrossAmount),
		Payable:       amount(currency, inv.GrossAmount),
	}

	for i, line := range inv.Lines {
		number := line.LineNumber
		if number == 0 {
			number = i + 1
		}
		doc.Lines = append(doc.Lines, ublLine{
			ID:            strconv.Itoa(number),
			Quantity:      ublQuantity{UnitCode: UnitCode(line.Unit), Value: line.Quantity.String()},
			LineExtension: amount(currency, line.NetAmount),
			Item: ublItem{
				Name:     line.Description,
				Category: taxCategory(line.VATRate, supplier.VATPayer),
			},
			Price: ublPrice{Amount: ublAmount{Currency: currency, Value: priceString(line.UnitPrice)}},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func supplierParty(c *company.Company) ublParty {
	cui := valueobject.NormalizeCUI(c.CUI)
	p := ublParty{
		EndpointID:     ublIdentifier{SchemeID: cuiScheme, Value: cui},
		Identification: ublPartyID{ID: ublIdentifier{SchemeID: cuiScheme, Value: cui}},
		Name:           ublPartyName{Name: c.Name},
		Address: ublAddress{
			Street:    c.Address,
			City:      c.City,
			Subentity: countySubentity(c.County),
			Country:   ublCountry{Code: countryCode(c.Country)},
		},
		LegalEntity: ublLegalEntity{Name: c.Name, CompanyID: c.RegCom},
	}
	if c.VATPayer {
		p.TaxScheme = &ublPartyTax{CompanyID: "RO" + cui, TaxScheme: ublTaxScheme{ID: vatScheme}}
	}
	if c.Phone != "" || c.Email != "" {
		p.Contact = &ublContact{Phone: c.Phone, Email: c.Email}
	}
	return p
}

func customerParty(partner invoice.Partner) ublParty {
	raw := strings.ToUpper(strings.TrimSpace(partner.CUI))
	cui := valueobject.NormalizeCUI(raw)
	p := ublParty{
		EndpointID:     ublIdentifier{SchemeID: cuiScheme, Value: cui},
		Identification: ublPartyID{ID: ublIdentifier{SchemeID: cuiScheme, Value: cui}},
		Name:           ublPartyName{Name: partner.Name},
		Address: ublAddress{
			Street:  partner.Address,
			Country: ublCountry{Code: "RO"},
		},
		LegalEntity: ublLegalEntity{Name: partner.Name},
	}
	if strings.HasPrefix(raw, "RO") {
		p.TaxScheme = &ublPartyTax{CompanyID: "RO" + cui, TaxScheme: ublTaxScheme{ID: vatScheme}}
	}
	return p
}

func vatTotal(inv *invoice.Invoice, currency string, vatPayer bool) ublTaxTotal {
	type bucket struct {
		rate    decimal.Decimal
		taxable decimal.Decimal
		tax     decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	for _, line := range inv.Lines {
		key := line.VATRate.String()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{rate: line.VATRate}
			buckets[key] = b
		}
		b.taxable = b.taxable.Add(line.NetAmount)
		b.tax = b.tax.Add(line.VATAmount)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return buckets[keys[i]].rate.GreaterThan(buckets[keys[j]].rate)
	})

	total := ublTaxTotal{TaxAmount: amount(currency, inv.VATAmount)}
	for _, k := range keys {
		b := buckets[k]
		total.Subtotals = append(total.Subtotals, ublTaxSubtotal{
			TaxableAmount: amount(currency, b.taxable),
			TaxAmount:     amount(currency, b.tax),
			Category:      taxCategory(b.rate, vatPayer),
		})
	}
	return total
}

// taxCategory picks the EN 16931 VAT category: S standard, Z zero rated, O outside scope.
func taxCategory(rate decimal.Decimal, vatPayer bool) ublTaxCategory {
	switch {
	case !vatPayer:
		return ublTaxCategory{ID: "O", ExemptionReason: "VATEX-EU-O", TaxScheme: ublTaxScheme{ID: vatScheme}}
	case rate.IsZero():
		return ublTaxCategory{ID: "Z", Percent: "0.00", TaxScheme: ublTaxScheme{ID: vatScheme}}
	default:
		return ublTaxCategory{ID: "S", Percent: rate.StringFixed(2), TaxScheme: ublTaxScheme{ID: vatScheme}}
	}
}

func amount(currency string, v decimal.Decimal) ublAmount {
	return ublAmount{Currency: currency, Value: v.StringFixed(2)}
}

// priceString keeps up to four decimals on unit prices, never fewer than two.
func priceString(v decimal.Decimal) string {
	if v.Round(2).Equal(v) {
		return v.StringFixed(2)
	}
	return v.Round(4).String()
}

func countryCode(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if len(c) == 2 {
		return c
	}
	return "RO"
}

// countySubentity renders the ISO 3166-2:RO code CIUS-RO expects (BR-RO-110).
func countySubentity(county string) string {
	county = strings.TrimSpace(county)
	if county == "" {
		return ""
	}
	upper := strings.ToUpper(county)
	if strings.HasPrefix(upper, "RO-") {
		return upper
	}
	if code, ok := countyCodes[foldDiacritics(upper)]; ok {
		return "RO-" + code
	}
	if len(upper) <= 2 {
		return "RO-" + upper
	}
	return county
}

var countyCodes = map[string]string{
	"ALBA": "AB", "ARAD": "AR", "ARGES": "AG", "BACAU": "BC", "BIHOR": "BH",
	"BISTRITA-NASAUD": "BN", "BOTOSANI": "BT", "BRAILA": "BR", "BRASOV": "BV",
	"BUCURESTI": "B", "BUZAU": "BZ", "CALARASI": "CL", "CARAS-SEVERIN": "CS",
	"CLUJ": "CJ", "CONSTANTA": "CT", "COVASNA": "CV", "DAMBOVITA": "DB",
	"DOLJ": "DJ", "GALATI": "GL", "GIURGIU": "GR", "GORJ": "GJ", "HARGHITA": "HR",
	"HUNEDOARA": "HD", "IALOMITA": "IL", "IASI": "IS", "ILFOV": "IF",
	"MARAMURES": "MM", "MEHEDINTI": "MH", "MURES": "MS", "NEAMT": "NT", "OLT": "OT",
	"PRAHOVA": "PH", "SALAJ": "SJ", "SATU MARE": "SM", "SIBIU": "SB",
	"SUCEAVA": "SV", "TELEORMAN": "TR", "TIMIS": "TM", "TULCEA": "TL",
	"VALCEA": "VL", "VASLUI": "VS", "VRANCEA": "VN",
}

var diacritics = strings.NewReplacer(
	"Ă", "A", "Â", "A", "Î", "I", "Ș", "S", "Ş", "S", "Ț", "T", "Ţ", "T",
)

func foldDiacritics(s string) string {
	return diacritics.Replace(s)
}
