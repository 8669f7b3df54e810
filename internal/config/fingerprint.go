package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainConfig prefixes configuration fingerprints.
// The version suffix allows the encoding to change later.
const DomainConfig = "hitprep/config/v1"

// Fingerprint returns a stable identifier for cfg: SHA256 over
// DomainConfig, a 0x00 separator and the JSON encoding of cfg.
//
// Two runs with equal fingerprints used the same paths, columns, strata
// and batch parameters. The seed is included, so a seeded run is
// reproducible from its fingerprint alone.
func Fingerprint(cfg *Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainConfig))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
