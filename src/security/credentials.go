package security

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/errs"
)

// Credentials identify the relay to the exchange.
type Credentials struct {
	KeyName    string `json:"name"`
	PrivateKey string `json:"privateKey"`
}

// KeyID is the last "/" separated segment of the key name, which is what the
// exchange expects in the CB-ACCESS-KEY header.
func (c Credentials) KeyID() string {
	if i := strings.LastIndex(c.KeyName, "/"); i >= 0 {
		return c.KeyName[i+1:]
	}
	return c.KeyName
}

func (c Credentials) complete() bool {
	return strings.TrimSpace(c.KeyName) != "" && strings.TrimSpace(c.PrivateKey) != ""
}

// CredentialProvider resolves the exchange API identity.
type CredentialProvider interface {
	GetCredentials(ctx context.Context) (Credentials, error)
}

// Provider reads credentials from the environment first and falls back to a
// JSON key file. The first successful resolution is cached.
type Provider struct {
	cfg      Config
	readFile func(string) ([]byte, error)
	log      *logger.Entry

	mu     sync.Mutex
	cached *Credentials
}

func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:      cfg,
		readFile: os.ReadFile,
		log:      logger.WithField("component", "credentials"),
	}
}

func (p *Provider) GetCredentials(_ context.Context) (Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached, nil
	}

	creds, source, err := p.resolve()
	if err != nil {
		return Credentials{}, err
	}

	p.log.WithFields(logger.Fields{"source": source, "key_id": creds.KeyID()}).Info("Exchange credentials loaded")
	p.cached = &creds
	return creds, nil
}

func (p *Provider) resolve() (Credentials, string, error) {
	fromEnv := Credentials{KeyName: p.cfg.APIKeyName, PrivateKey: p.cfg.APIPrivateKey}
	if fromEnv.complete() {
		creds, err := p.finish(fromEnv)
		return creds, "env", err
	}

	if p.cfg.KeyFile == "" {
		return Credentials{}, "", &errs.CredentialError{Message: "COINBASE_API_KEY_NAME/COINBASE_API_PRIVATE_KEY are not set and no key file is configured"}
	}

	raw, err := p.readFile(p.cfg.KeyFile)
	if err != nil {
		return Credentials{}, "", &errs.CredentialError{Message: "could not load Coinbase API credentials", Err: err}
	}

	var fromFile Credentials
	if err := json.Unmarshal(raw, &fromFile); err != nil {
		return Credentials{}, "", &errs.CredentialError{Message: fmt.Sprintf("invalid key file %s", p.cfg.KeyFile), Err: err}
	}
	if !fromFile.complete() {
		return Credentials{}, "", &errs.CredentialError{Message: fmt.Sprintf("key file %s has no name or privateKey", p.cfg.KeyFile)}
	}

	creds, err := p.finish(fromFile)
	return creds, "file", err
}

// finish unseals the private key and expands escaped newlines from env values.
func (p *Provider) finish(c Credentials) (Credentials, error) {
	key := c.PrivateKey
	if IsSealed(key) {
		plain, err := DecryptStringWithKey(p.cfg.ExchangeCRKey, key)
		if err != nil {
			return Credentials{}, &errs.CredentialError{Message: "could not unseal private key", Err: err}
		}
		key = plain
	}
	c.PrivateKey = strings.ReplaceAll(key, `\n`, "\n")
	return c, nil
}

// StaticProvider always returns the same credentials.
type StaticProvider struct {
	Creds Credentials
}

func (s StaticProvider) GetCredentials(_ context.Context) (Credentials, error) {
	if !s.Creds.complete() {
		return Credentials{}, &errs.CredentialError{Message: "static credentials are empty"}
	}
	return s.Creds, nil
}
