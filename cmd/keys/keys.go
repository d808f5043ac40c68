package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/security"
)

// Sealer encrypts Coinbase private keys so they can be stored in the key file.
type Sealer struct {
	Log *logger.Entry
	// SealingKey overrides EXCHANGE_CREDENTIALS_KEY when set.
	SealingKey string
}

func (s *Sealer) seal(value string) (string, error) {
	if s.SealingKey != "" {
		return security.EncryptStringWithKey(s.SealingKey, value)
	}
	return security.EncryptString(value)
}

// SealValue returns the sealed form of a raw private key.
func (s *Sealer) SealValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("nothing to seal")
	}
	if security.IsSealed(value) {
		return value, nil
	}
	return s.seal(value)
}

// SealFile rewrites the privateKey of a key file in sealed form. Already sealed files are left alone.
func (s *Sealer) SealFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}

	var creds security.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return fmt.Errorf("parse key file: %w", err)
	}
	if creds.KeyName == "" || creds.PrivateKey == "" {
		return errors.New("key file must contain name and privateKey")
	}
	if security.IsSealed(creds.PrivateKey) {
		s.Log.WithField("file", path).Info("Key file already sealed")
		return nil
	}

	sealed, err := s.seal(creds.PrivateKey)
	if err != nil {
		return err
	}
	creds.PrivateKey = sealed

	out, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(out, '\n'), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	s.Log.WithField("file", path).Info("Sealed private key in key file")
	return nil
}
