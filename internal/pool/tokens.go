package pool

import "fmt"

// TokenID enumerates the pooled asset kinds. The set is closed by design:
// the proportional-share math in this package assumes a small fixed number
// of tokens, so new assets require a new constant here, not runtime
// registration.
type TokenID uint8

const (
	NRSH TokenID = iota
	ELXR
	IMRT
)

var tokenNames = map[TokenID]string{
	NRSH: "NRSH",
	ELXR: "ELXR",
	IMRT: "IMRT",
}

// Tokens returns all pooled tokens in declaration order.
func Tokens() []TokenID {
	return []TokenID{NRSH, ELXR, IMRT}
}

// Valid reports whether t is a member of the closed token set.
func (t TokenID) Valid() bool {
	_, ok := tokenNames[t]
	return ok
}

func (t TokenID) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenID(%d)", uint8(t))
}

// ParseToken resolves a token symbol (case-sensitive) to its TokenID.
func ParseToken(symbol string) (TokenID, error) {
	for id, name := range tokenNames {
		if name == symbol {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
}
