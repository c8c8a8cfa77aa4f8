package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProfile = `
sender:
  name: Jane Doe
  email: jane@example.com
  address: ["1 Main St", "Springfield"]
clockify:
  workspace_id: ws1
  user_id: u1
  api_key: ck
  uninvoiced_tag_id: tag1
wise:
  api_key: wk
bank_accounts:
  usd:
    holder: Jane Doe
    bank: First Bank
    number: "123"
    routing: "026"
  gbp:
    holder: Jane Doe
    iban: GB00TEST
    swift: TESTGB2L
clients:
  Acme:
    address: ["Acme Ltd", "London"]
    bill_time_step: 15
    currency_code: GBP
    days_until_due: 30
  Globex:
    bill_time_step: 6
    currency_code: usd
    days_until_due: 14
`

func TestParseProfile_Valid(t *testing.T) {
	t.Setenv("INVOICER_CLOCKIFY_API_KEY", "")
	t.Setenv("INVOICER_WISE_API_KEY", "")

	p, err := ParseProfile([]byte(validProfile))
	require.NoError(t, err)

	terms, err := p.ClientTerms("Acme")
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyGBP, terms.Currency)
	assert.Equal(t, 15, terms.BillTimeStep)
	assert.Equal(t, 30, terms.DaysUntilDue)
	assert.Equal(t, []string{"Acme Ltd", "London"}, terms.Address)

	accounts, err := p.Accounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, "GB00TEST", accounts[domain.CurrencyGBP].IBAN)

	assert.Equal(t, "Jane Doe", p.SenderIdentity().Name)
	assert.Equal(t, "ck", p.Clockify.APIKey)
}

func TestParseProfile_JSON(t *testing.T) {
	data := `{"sender":{"name":"J"},"clockify":{"workspace_id":"w","user_id":"u","uninvoiced_tag_id":"t"},
"bank_accounts":{"usd":{"holder":"J"}},"clients":{"Acme":{"bill_time_step":15,"currency_code":"usd","days_until_due":0}}}`
	p, err := ParseProfile([]byte(data))
	require.NoError(t, err)
	_, err = p.ClientTerms("Acme")
	require.NoError(t, err)
}

func TestParseProfile_EnvSecretsOverride(t *testing.T) {
	t.Setenv("INVOICER_CLOCKIFY_API_KEY", "from-env")
	t.Setenv("INVOICER_WISE_API_KEY", "wise-env")

	p, err := ParseProfile([]byte(validProfile))
	require.NoError(t, err)
	assert.Equal(t, "from-env", p.Clockify.APIKey)
	assert.Equal(t, "wise-env", p.Wise.APIKey)
}

func TestParseProfile_ValidationErrors(t *testing.T) {
	data := `
sender:
  name: ""
clockify:
  workspace_id: ws1
  user_id: u1
  uninvoiced_tag_id: tag1
bank_accounts:
  chf:
    holder: X
clients:
  Acme:
    bill_time_step: 0
    currency_code: jpy
    days_until_due: 3
`
	_, err := ParseProfile([]byte(data))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
	msg := err.Error()
	assert.Contains(t, msg, "Sender.Name")
	assert.Contains(t, msg, "BillTimeStep")
	assert.Contains(t, msg, `unsupported currency "jpy"`)
	assert.Contains(t, msg, "bank_accounts.chf")
}

func TestParseProfile_ProblemsListedInKeyOrder(t *testing.T) {
	data := validProfile + `
  Zeta:
    bill_time_step: 10
    currency_code: jpy
  Beta:
    bill_time_step: 10
    currency_code: chf
  Mu:
    bill_time_step: 10
    currency_code: sek
`
	for range 5 {
		_, err := ParseProfile([]byte(data))
		require.Error(t, err)
		msg := err.Error()
		beta, mu, zeta := strings.Index(msg, "clients.Beta"), strings.Index(msg, "clients.Mu"), strings.Index(msg, "clients.Zeta")
		require.True(t, beta >= 0 && mu >= 0 && zeta >= 0, msg)
		assert.True(t, beta < mu && mu < zeta, msg)
	}
}

func TestParseProfile_Malformed(t *testing.T) {
	_, err := ParseProfile([]byte("clients: [unclosed"))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
	assert.Contains(t, ierr.Hint(err), "INVOICER_PROFILE")
}

func TestLoadProfile_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validProfile), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Len(t, p.Clients, 2)
}

func TestClientTerms_UnknownClient(t *testing.T) {
	p, err := ParseProfile([]byte(validProfile))
	require.NoError(t, err)

	_, err = p.ClientTerms("Initech")
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
	assert.Contains(t, err.Error(), "Initech")
}
