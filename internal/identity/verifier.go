package identity

import "context"

// Verifier answers the access-guard predicate: is this account a verified
// human? Implementations must be side-effect-free from the pool's
// perspective; the pool calls it before any state-changing operation.
type Verifier interface {
	IsHuman(ctx context.Context, account string) (bool, error)
}

// StaticVerifier is an in-memory verifier for development and tests.
type StaticVerifier struct {
	allowAll bool
	allowed  map[string]struct{}
}

// AllowAll returns a verifier that admits every account.
func AllowAll() *StaticVerifier {
	return &StaticVerifier{allowAll: true}
}

// Allowlist returns a verifier that admits only the given accounts.
func Allowlist(accounts ...string) *StaticVerifier {
	allowed := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		allowed[a] = struct{}{}
	}
	return &StaticVerifier{allowed: allowed}
}

func (v *StaticVerifier) IsHuman(_ context.Context, account string) (bool, error) {
	if v.allowAll {
		return true, nil
	}
	_, ok := v.allowed[account]
	return ok, nil
}
