package mailreach_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/mailreach"
)

func TestLoadOptions_Defaults(t *testing.T) {
	o, err := mailreach.LoadOptions()
	require.NoError(t, err)
	assert.Equal(t, mailreach.DefaultOptions(), o)
}

func TestLoadOptions_Environment(t *testing.T) {
	t.Setenv(mailreach.EnvDNSServers, "1.1.1.1, 8.8.8.8:53")
	t.Setenv(mailreach.EnvDNSLifetime, "4s")
	t.Setenv(mailreach.EnvSMTPHeloDomain, "probe.myapp.com")
	t.Setenv(mailreach.EnvSMTPMailFrom, "verify@myapp.com")
	t.Setenv(mailreach.EnvSMTPSessionTimeout, "8s")
	t.Setenv(mailreach.EnvSMTPProxy, "127.0.0.1:1080")
	t.Setenv(mailreach.EnvSMTPProbesPerSecond, "2.5")
	t.Setenv(mailreach.EnvTypoThreshold, "1")
	t.Setenv(mailreach.EnvBatchWorkers, "25")
	t.Setenv(mailreach.EnvWhoisEnabled, "true")

	o, err := mailreach.LoadOptions()
	require.NoError(t, err)

	assert.Equal(t, []string{"1.1.1.1", "8.8.8.8:53"}, o.DNS.Servers)
	assert.Equal(t, 4*time.Second, o.DNS.Lifetime)
	assert.Equal(t, time.Second, o.DNS.AttemptTimeout)
	assert.Equal(t, "probe.myapp.com", o.SMTP.HeloDomain)
	assert.Equal(t, "verify@myapp.com", o.SMTP.MailFrom)
	assert.Equal(t, 8*time.Second, o.SMTP.SessionTimeout)
	assert.Equal(t, "127.0.0.1:1080", o.SMTP.ProxyAddr)
	assert.InDelta(t, 2.5, o.SMTP.ProbesPerSecond, 1e-9)
	assert.Equal(t, 1, o.Domain.TypoThreshold)
	assert.Equal(t, 25, o.Batch.Workers)
	assert.True(t, o.Whois.Enabled)
}

func TestLoadOptions_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"MAILREACH_BATCH_WORKERS=7\nMAILREACH_SMTP_HELO_DOMAIN=file.example.org\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv(mailreach.EnvBatchWorkers)
		_ = os.Unsetenv(mailreach.EnvSMTPHeloDomain)
	})

	o, err := mailreach.LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 7, o.Batch.Workers)
	assert.Equal(t, "file.example.org", o.SMTP.HeloDomain)
}

func TestLoadOptions_ProcessEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAILREACH_BATCH_WORKERS=7\n"), 0o600))
	t.Setenv(mailreach.EnvBatchWorkers, "3")

	o, err := mailreach.LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Batch.Workers)
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := mailreach.LoadOptions(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, mailreach.ErrInvalidOptions)
}

func TestLoadOptions_ParseErrors(t *testing.T) {
	t.Setenv(mailreach.EnvDNSLifetime, "soon")
	t.Setenv(mailreach.EnvBatchWorkers, "many")

	_, err := mailreach.LoadOptions()
	assert.ErrorIs(t, err, mailreach.ErrInvalidOptions)
	assert.ErrorContains(t, err, mailreach.EnvDNSLifetime)
	assert.ErrorContains(t, err, mailreach.EnvBatchWorkers)
}

func TestLoadOptions_ValidationErrors(t *testing.T) {
	t.Setenv(mailreach.EnvSMTPMailFrom, "not-an-address")
	t.Setenv(mailreach.EnvSMTPProxy, "no-port")

	_, err := mailreach.LoadOptions()
	assert.ErrorIs(t, err, mailreach.ErrInvalidOptions)
	assert.ErrorContains(t, err, "MailFrom")
	assert.ErrorContains(t, err, "ProxyAddr")
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, mailreach.DefaultOptions().Validate())

	o := mailreach.DefaultOptions()
	o.DNS.Servers = []string{"not a server!"}
	assert.ErrorIs(t, o.Validate(), mailreach.ErrInvalidOptions)

	o = mailreach.DefaultOptions()
	o.SMTP.SessionTimeout = -time.Second
	assert.ErrorIs(t, o.Validate(), mailreach.ErrInvalidOptions)
}
