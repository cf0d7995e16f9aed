package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/groundworkhq/provision/internal/types"
)

// Credential is a secret surfaced in the final report. Insecure marks values
// that came from a fixed default rather than generation or operator input;
// the report flags those for immediate rotation.
type Credential struct {
	Name      string
	Value     string
	Generated bool
	Insecure  bool
}

// Generate returns a cryptographically random credential string. Values are
// never derived from a seed.
func Generate(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Resolve turns a configured credential field into a concrete Credential.
//
//   - "generate" (or empty with no default) produces a random value
//   - any other non-empty value is taken as operator-supplied
//   - an empty value with a non-empty fallback is the degraded mode: the
//     fixed default is used and flagged insecure
func Resolve(name, configured, fallback string) (Credential, error) {
	switch {
	case configured == types.GeneratePlaceholder || (configured == "" && fallback == ""):
		value, err := Generate(18)
		if err != nil {
			return Credential{}, err
		}
		return Credential{Name: name, Value: value, Generated: true}, nil
	case configured != "":
		return Credential{Name: name, Value: configured}, nil
	default:
		return Credential{Name: name, Value: fallback, Insecure: true}, nil
	}
}
