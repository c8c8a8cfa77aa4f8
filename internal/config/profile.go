package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Profile is the invoicing profile: who sends invoices, where the data
// comes from, how each client is billed and where they pay.
// It is loaded once per run and not modified afterwards.
type Profile struct {
	Sender       SenderProfile                 `yaml:"sender" validate:"required"`
	Clockify     ClockifyProfile               `yaml:"clockify"`
	Wise         WiseProfile                   `yaml:"wise"`
	BankAccounts map[string]BankAccountProfile `yaml:"bank_accounts" validate:"required,min=1,dive"`
	Clients      map[string]ClientProfile      `yaml:"clients" validate:"required,min=1,dive"`
}

type SenderProfile struct {
	Name    string   `yaml:"name" validate:"required"`
	Email   string   `yaml:"email" validate:"omitempty,email"`
	Address []string `yaml:"address"`
}

type ClockifyProfile struct {
	BaseURL         string `yaml:"base_url" validate:"omitempty,url"`
	WorkspaceID     string `yaml:"workspace_id" validate:"required"`
	UserID          string `yaml:"user_id" validate:"required"`
	APIKey          string `yaml:"api_key"`
	UninvoicedTagID string `yaml:"uninvoiced_tag_id" validate:"required"`
}

type WiseProfile struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key"`
}

type BankAccountProfile struct {
	Holder  string   `yaml:"holder" validate:"required"`
	Bank    string   `yaml:"bank"`
	Number  string   `yaml:"number"`
	Routing string   `yaml:"routing"`
	IBAN    string   `yaml:"iban"`
	SWIFT   string   `yaml:"swift"`
	Address []string `yaml:"address"`
}

type ClientProfile struct {
	Address      []string `yaml:"address"`
	BillTimeStep int      `yaml:"bill_time_step" validate:"gt=0"`
	CurrencyCode string   `yaml:"currency_code" validate:"required"`
	DaysUntilDue int      `yaml:"days_until_due" validate:"gte=0"`
}

// LoadProfile reads and validates a YAML (or JSON) profile. API keys may be
// supplied through INVOICER_CLOCKIFY_API_KEY and INVOICER_WISE_API_KEY
// instead of the file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		b := ierr.WithError(err).WithMessagef("reading profile %s", path)
		if errors.Is(err, fs.ErrNotExist) {
			b = b.WithHint("set INVOICER_PROFILE or create profile.yaml")
		}
		return nil, b.Mark(ierr.ErrConfiguration)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates profile data.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, ierr.WithError(err).WithMessage("parsing profile").Mark(ierr.ErrConfiguration)
	}
	if v := os.Getenv("INVOICER_CLOCKIFY_API_KEY"); v != "" {
		p.Clockify.APIKey = v
	}
	if v := os.Getenv("INVOICER_WISE_API_KEY"); v != "" {
		p.Wise.APIKey = v
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks struct constraints and that every currency is supported.
func (p *Profile) Validate() error {
	var problems []string

	if err := validator.New().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ierr.WithError(err).WithMessage("validating profile").Mark(ierr.ErrConfiguration)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %s", fe.Namespace(), describeTag(fe)))
		}
	}

	clientNames := lo.Keys(p.Clients)
	slices.Sort(clientNames)
	for _, name := range clientNames {
		if _, err := domain.ParseCurrency(p.Clients[name].CurrencyCode); err != nil && p.Clients[name].CurrencyCode != "" {
			problems = append(problems, fmt.Sprintf("clients.%s.currency_code: unsupported currency %q", name, p.Clients[name].CurrencyCode))
		}
	}
	currencyCodes := lo.Keys(p.BankAccounts)
	slices.Sort(currencyCodes)
	for _, code := range currencyCodes {
		if _, err := domain.ParseCurrency(code); err != nil {
			problems = append(problems, fmt.Sprintf("bank_accounts.%s: unsupported currency", code))
		}
	}

	if len(problems) > 0 {
		return ierr.NewErrorf("invalid profile: %s", strings.Join(problems, "; ")).
			WithHint("fix the listed profile fields").
			Mark(ierr.ErrConfiguration)
	}
	return nil
}

// ClientTerms returns the billing terms for a client found in the time entries.
func (p *Profile) ClientTerms(name string) (domain.ClientTerms, error) {
	cp, ok := p.Clients[name]
	if !ok {
		return domain.ClientTerms{}, ierr.NewErrorf("no profile for client %q", name).
			WithHintf("add clients.%q to the profile", name).
			Mark(ierr.ErrConfiguration)
	}
	currency, err := domain.ParseCurrency(cp.CurrencyCode)
	if err != nil {
		return domain.ClientTerms{}, err
	}
	terms := domain.ClientTerms{
		Address:      cp.Address,
		BillTimeStep: cp.BillTimeStep,
		Currency:     currency,
		DaysUntilDue: cp.DaysUntilDue,
	}
	if err := terms.Validate(); err != nil {
		return domain.ClientTerms{}, ierr.WithError(err).WithMessagef("client %q", name).Mark(ierr.ErrConfiguration)
	}
	return terms, nil
}

// Accounts returns the bank accounts keyed by currency.
func (p *Profile) Accounts() (map[domain.Currency]domain.BankAccount, error) {
	accounts := make(map[domain.Currency]domain.BankAccount, len(p.BankAccounts))
	for code, ba := range p.BankAccounts {
		c, err := domain.ParseCurrency(code)
		if err != nil {
			return nil, err
		}
		accounts[c] = domain.BankAccount{
			Holder:  ba.Holder,
			Bank:    ba.Bank,
			Number:  ba.Number,
			Routing: ba.Routing,
			IBAN:    ba.IBAN,
			SWIFT:   ba.SWIFT,
			Address: ba.Address,
		}
	}
	return accounts, nil
}

func (p *Profile) SenderIdentity() domain.Sender {
	return domain.Sender{
		Name:    p.Sender.Name,
		Email:   p.Sender.Email,
		Address: p.Sender.Address,
	}
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
