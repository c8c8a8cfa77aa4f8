// Package export writes invoice records for downstream rendering.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/alexanderramin/invoicer/internal/domain"
)

const dateLayout = "2006-01-02"

// Exporter persists one invoice record and returns where it went.
type Exporter interface {
	Export(rec *domain.InvoiceRecord) (string, error)
}

// JSONExporter writes one indented JSON document per invoice into Dir.
type JSONExporter struct {
	Dir string
}

func NewJSONExporter(dir string) *JSONExporter {
	return &JSONExporter{Dir: dir}
}

// Export writes the record to <slug>.json. The file appears atomically so a
// renderer watching Dir never reads a partial document.
func (e *JSONExporter) Export(rec *domain.InvoiceRecord) (string, error) {
	doc, err := newDocument(rec)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding invoice %s: %w", doc.InvoiceNumber, err)
	}

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(e.Dir, FileName(rec.Client.Name, rec.Client.InvoiceNum)+".json")

	tmp, err := os.CreateTemp(e.Dir, ".invoice-*.json")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving invoice into place: %w", err)
	}
	return path, nil
}

// FileName is the slug of "<client>_<number>", e.g. "acme_ltd_000_042".
func FileName(client string, num domain.InvoiceNumber) string {
	return Slugify(client + "_" + num.String())
}

// Slugify lower-cases s and collapses every run of characters other than
// letters and digits into a single underscore.
func Slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

type document struct {
	InvoiceNumber      string         `json:"invoice_number"`
	InvoiceDate        string         `json:"invoice_date"`
	InvoiceDue         string         `json:"invoice_due"`
	Currency           string         `json:"currency"`
	CurrencySymbol     string         `json:"currency_symbol"`
	Client             partyDocument  `json:"client"`
	Sender             partyDocument  `json:"sender"`
	BankAccount        bankDocument   `json:"bank_account"`
	WorkItems          []itemDocument `json:"work_items"`
	WorkTotal          string         `json:"work_total"`
	ExchangeRate       string         `json:"exchange_rate"`
	WorkTotalConverted string         `json:"work_total_converted"`
}

type partyDocument struct {
	Name    string   `json:"name"`
	Email   string   `json:"email,omitempty"`
	Address []string `json:"address"`
}

type bankDocument struct {
	Holder  string   `json:"holder"`
	Bank    string   `json:"bank,omitempty"`
	Number  string   `json:"number,omitempty"`
	Routing string   `json:"routing,omitempty"`
	IBAN    string   `json:"iban,omitempty"`
	SWIFT   string   `json:"swift,omitempty"`
	Address []string `json:"address,omitempty"`
}

type itemDocument struct {
	Project      string `json:"project"`
	Description  string `json:"description"`
	Hours        string `json:"hours"`
	RoundedHours string `json:"rounded_hours"`
	Rate         string `json:"rate"`
	Total        string `json:"total"`
}

func newDocument(rec *domain.InvoiceRecord) (*document, error) {
	items := make([]itemDocument, 0, len(rec.WorkItems))
	for _, item := range rec.WorkItems {
		rounded, err := item.RoundedHours()
		if err != nil {
			return nil, err
		}
		total, err := item.Total()
		if err != nil {
			return nil, err
		}
		items = append(items, itemDocument{
			Project:      item.Project,
			Description:  item.Description,
			Hours:        item.Hours.Round(4).String(),
			RoundedHours: rounded.Round(4).String(),
			Rate:         item.Rate.StringFixed(2),
			Total:        total.StringFixed(2),
		})
	}

	currency := rec.Client.Terms.Currency
	return &document{
		InvoiceNumber:  rec.Client.InvoiceNum.String(),
		InvoiceDate:    rec.InvoiceDate.Format(dateLayout),
		InvoiceDue:     rec.InvoiceDue.Format(dateLayout),
		Currency:       currency.Code(),
		CurrencySymbol: currency.Symbol(),
		Client: partyDocument{
			Name:    rec.Client.Name,
			Address: lo.Ternary(rec.Client.Terms.Address == nil, []string{}, rec.Client.Terms.Address),
		},
		Sender: partyDocument{
			Name:    rec.Sender.Name,
			Email:   rec.Sender.Email,
			Address: lo.Ternary(rec.Sender.Address == nil, []string{}, rec.Sender.Address),
		},
		BankAccount: bankDocument{
			Holder:  rec.BankAccount.Holder,
			Bank:    rec.BankAccount.Bank,
			Number:  rec.BankAccount.Number,
			Routing: rec.BankAccount.Routing,
			IBAN:    rec.BankAccount.IBAN,
			SWIFT:   rec.BankAccount.SWIFT,
			Address: rec.BankAccount.Address,
		},
		WorkItems:          items,
		WorkTotal:          rec.WorkTotal.StringFixed(2),
		ExchangeRate:       rec.ExchangeRate.String(),
		WorkTotalConverted: rec.WorkTotalConverted.StringFixed(2),
	}, nil
}
