package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nourish-chain/liquidity-pool/internal/identity"
	"github.com/nourish-chain/liquidity-pool/internal/keyring"
	"github.com/nourish-chain/liquidity-pool/internal/models"
	"github.com/sirupsen/logrus"
)

// EventSink receives one notification per successful state transition.
// Publishing is side-effect only: a sink failure is logged and never fails
// the operation that produced the event.
type EventSink interface {
	Emit(ctx context.Context, event *models.PoolEvent) error
}

// Pool is the unified liquidity ledger: per-token reserves, per-account
// ownership shares, and the protocol treasury, all mutated atomically by
// the three public operations.
//
// Execution is serialized by a single mutex, the multi-threaded equivalent
// of a sequential-transaction host: each operation observes only the fully
// committed result of the previous one, so the proportional-share and
// constant-product formulas never see an interleaved read-modify-write.
type Pool struct {
	mu sync.Mutex

	feeRate      uint64 // basis points taken from every swap output
	treasuryRate uint64 // basis points of the fee routed to the treasury

	reserves    map[TokenID]uint64
	totalShares map[TokenID]uint64
	shares      map[shareKey]uint64
	treasury    map[TokenID]uint64

	// providerData holds sealed blobs handed to us by providers. The pool
	// stores bytes and forwards them; it never interprets the contents.
	providerData map[string][]byte

	verifier identity.Verifier
	keys     keyring.Keyring
	sink     EventSink
	logger   *logrus.Logger

	// Audit material produced at construction: the pool's public signing
	// key and a signature over the genesis parameters.
	auditPublicKey []byte
	genesisSig     []byte
}

type shareKey struct {
	account string
	token   TokenID
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithVerifier sets the human-verification oracle gating mutations.
func WithVerifier(v identity.Verifier) Option {
	return func(p *Pool) { p.verifier = v }
}

// WithKeyring sets the signer/encryptor used for provider-data sealing and
// the genesis audit signature.
func WithKeyring(k keyring.Keyring) Option {
	return func(p *Pool) { p.keys = k }
}

// WithEventSink sets the destination for state-transition events.
func WithEventSink(s EventSink) Option {
	return func(p *Pool) { p.sink = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// New constructs a pool with the given protocol rates, both in basis points.
// Rates above 10000 are rejected with ErrInvalidRate. The default verifier
// admits everyone and the default keyring is a fresh ed25519 keyring; hosts
// override both through options.
func New(feeRate, treasuryRate uint64, opts ...Option) (*Pool, error) {
	if feeRate > BpsDenominator || treasuryRate > BpsDenominator {
		return nil, fmt.Errorf("%w: fee=%d treasury=%d", ErrInvalidRate, feeRate, treasuryRate)
	}

	p := &Pool{
		feeRate:      feeRate,
		treasuryRate: treasuryRate,
		reserves:     make(map[TokenID]uint64),
		totalShares:  make(map[TokenID]uint64),
		shares:       make(map[shareKey]uint64),
		treasury:     make(map[TokenID]uint64),
		providerData: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logrus.New()
	}
	if p.verifier == nil {
		p.verifier = identity.AllowAll()
	}
	if p.keys == nil {
		k, err := keyring.NewEd25519Keyring()
		if err != nil {
			return nil, fmt.Errorf("default keyring: %w", err)
		}
		p.keys = k
	}

	// Sign the genesis parameters so auditors can verify the pool was
	// constructed with the rates it claims.
	pub, priv, err := p.keys.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("generate audit keypair: %w", err)
	}
	genesis := fmt.Appendf(nil, "liquidity-pool genesis fee=%d treasury=%d", feeRate, treasuryRate)
	sig, err := p.keys.Sign(priv, genesis)
	if err != nil {
		return nil, fmt.Errorf("sign genesis record: %w", err)
	}
	p.auditPublicKey = pub
	p.genesisSig = sig

	return p, nil
}

// FeeRate returns the swap fee in basis points.
func (p *Pool) FeeRate() uint64 { return p.feeRate }

// TreasuryRate returns the treasury share of the fee in basis points.
func (p *Pool) TreasuryRate() uint64 { return p.treasuryRate }

// AuditPublicKey returns the public half of the construction-time audit key.
func (p *Pool) AuditPublicKey() []byte { return p.auditPublicKey }

// GenesisSignature returns the signature over the genesis parameters.
func (p *Pool) GenesisSignature() []byte { return p.genesisSig }

// AddLiquidity deposits amount of token for account and mints ownership
// shares in return. The first deposit into an empty reserve mints shares
// 1:1; later deposits mint amount*totalShares/reserve, floored, so rounding
// loss accrues to existing holders.
func (p *Pool) AddLiquidity(ctx context.Context, account string, token TokenID, amount uint64) (uint64, error) {
	if !token.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	if amount == 0 {
		return 0, ErrZeroAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.guard(ctx, account); err != nil {
		return 0, err
	}

	minted, err := p.mintShares(token, amount)
	if err != nil {
		return 0, err
	}
	// A deposit small enough to floor to zero shares would be a pure
	// donation to existing holders; refuse it.
	if minted == 0 {
		return 0, fmt.Errorf("%w: deposit too small to mint shares", ErrZeroAmount)
	}

	// Check the share balances before the reserve write, so a late
	// overflow aborts with the ledger untouched.
	key := shareKey{account: account, token: token}
	newBalance, err := checkedAdd(p.shares[key], minted)
	if err != nil {
		return 0, err
	}
	newTotal, err := checkedAdd(p.totalShares[token], minted)
	if err != nil {
		return 0, err
	}

	if err := p.updateReserve(token, amount, reserveAdd); err != nil {
		return 0, err
	}
	p.shares[key] = newBalance
	p.totalShares[token] = newTotal

	p.emit(ctx, &models.PoolEvent{
		Kind:      models.KindLiquidityAdded,
		Account:   account,
		Token:     token.String(),
		Amount:    amount,
		Shares:    minted,
		Timestamp: time.Now().UTC(),
	})

	return minted, nil
}

// RemoveLiquidity burns shareAmount of account's shares in token and returns
// the proportional slice of the reserve, floored. Withdrawals can therefore
// never drain more than the entitlement.
func (p *Pool) RemoveLiquidity(ctx context.Context, account string, token TokenID, shareAmount uint64) (uint64, error) {
	if !token.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	if shareAmount == 0 {
		return 0, ErrZeroAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.guard(ctx, account); err != nil {
		return 0, err
	}

	key := shareKey{account: account, token: token}
	balance := p.shares[key]
	if balance < shareAmount {
		return 0, fmt.Errorf("%w: have %d, want %d", ErrInsufficientShares, balance, shareAmount)
	}

	amount, err := p.burnShares(token, shareAmount)
	if err != nil {
		return 0, err
	}

	if err := p.updateReserve(token, amount, reserveSub); err != nil {
		return 0, err
	}
	p.shares[key] = balance - shareAmount
	p.totalShares[token] -= shareAmount

	p.emit(ctx, &models.PoolEvent{
		Kind:      models.KindLiquidityRemoved,
		Account:   account,
		Token:     token.String(),
		Amount:    amount,
		Shares:    shareAmount,
		Timestamp: time.Now().UTC(),
	})

	return amount, nil
}

// Swap trades amountIn of from for to at the constant-product price and
// returns the net amount delivered to the trader after the protocol fee.
// The treasury receives its cut of the fee; the remainder of the fee stays
// inside the destination reserve, compounding value for liquidity providers.
func (p *Pool) Swap(ctx context.Context, account string, from, to TokenID, amountIn uint64) (uint64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, from)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, to)
	}
	if from == to {
		return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTokenPair, from, to)
	}
	if amountIn == 0 {
		return 0, ErrZeroAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.guard(ctx, account); err != nil {
		return 0, err
	}

	amountOut, err := constantProductOut(p.reserves[from], p.reserves[to], amountIn)
	if err != nil {
		return 0, err
	}

	fee, err := applyBps(amountOut, p.feeRate)
	if err != nil {
		return 0, err
	}
	treasuryCut, err := applyBps(fee, p.treasuryRate)
	if err != nil {
		return 0, err
	}
	net := amountOut - fee // fee <= amountOut since feeRate <= 10000

	// Only the trader payout and the treasury cut leave the reserve. The
	// rest of the fee (fee - treasuryCut) is retained in the destination
	// reserve for liquidity providers.
	newTreasury, err := checkedAdd(p.treasury[to], treasuryCut)
	if err != nil {
		return 0, err
	}

	if err := p.updateReserve(from, amountIn, reserveAdd); err != nil {
		return 0, err
	}
	if err := p.updateReserve(to, net+treasuryCut, reserveSub); err != nil {
		// Unreachable: the deduction is strictly below the destination
		// reserve. Restore the source side before reporting.
		_ = p.updateReserve(from, amountIn, reserveSub)
		return 0, err
	}
	p.treasury[to] = newTreasury

	p.emit(ctx, &models.PoolEvent{
		Kind:      models.KindTokenSwapped,
		Account:   account,
		FromToken: from.String(),
		ToToken:   to.String(),
		AmountIn:  amountIn,
		AmountOut: net,
		Fee:       fee,
		Timestamp: time.Now().UTC(),
	})

	return net, nil
}

// QuoteSwap prices a trade without mutating state.
func (p *Pool) QuoteSwap(from, to TokenID, amountIn uint64) (uint64, error) {
	if !from.Valid() || !to.Valid() {
		return 0, ErrUnknownToken
	}
	if from == to {
		return 0, fmt.Errorf("%w: %s -> %s", ErrInvalidTokenPair, from, to)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	amountOut, err := constantProductOut(p.reserves[from], p.reserves[to], amountIn)
	if err != nil {
		return 0, err
	}
	fee, err := applyBps(amountOut, p.feeRate)
	if err != nil {
		return 0, err
	}
	return amountOut - fee, nil
}

// GetReserves returns the reserve balance for token, zero if unset.
func (p *Pool) GetReserves(token TokenID) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserves[token]
}

// GetShares returns account's share balance in token, zero if unset.
func (p *Pool) GetShares(account string, token TokenID) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shares[shareKey{account: account, token: token}]
}

// GetTotalShares returns the total shares issued for token, zero if unset.
func (p *Pool) GetTotalShares(token TokenID) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalShares[token]
}

// GetTreasury returns the accumulated protocol-fee balance for token.
func (p *Pool) GetTreasury(token TokenID) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasury[token]
}

// StoreProviderData seals data through the keyring and keeps the resulting
// blob for account. The pool never looks inside it.
func (p *Pool) StoreProviderData(ctx context.Context, account string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.guard(ctx, account); err != nil {
		return err
	}
	sealed, err := p.keys.Encrypt(data)
	if err != nil {
		return fmt.Errorf("seal provider data: %w", err)
	}
	p.providerData[account] = sealed
	return nil
}

// ProviderData returns the sealed blob stored for account, nil if none.
func (p *Pool) ProviderData(account string) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.providerData[account]
}

type reserveDirection bool

const (
	reserveAdd reserveDirection = true
	reserveSub reserveDirection = false
)

// updateReserve adjusts the stored balance for token by amount in the given
// direction. It is the single choke point through which every reserve change
// passes; no other code writes p.reserves. Overflow on addition and
// underflow below zero both fail with ErrArithmetic before anything is
// written — the underflow case is unreachable from a correctly sequenced
// caller, but the ledger enforces it anyway.
func (p *Pool) updateReserve(token TokenID, amount uint64, dir reserveDirection) error {
	current := p.reserves[token]

	var next uint64
	var err error
	if dir == reserveAdd {
		next, err = checkedAdd(current, amount)
	} else {
		next, err = checkedSub(current, amount)
	}
	if err != nil {
		return err
	}

	p.reserves[token] = next
	return nil
}

// guard evaluates the human-verification predicate before any mutation. A
// rejected or failed check aborts the operation with the ledger untouched.
func (p *Pool) guard(ctx context.Context, account string) error {
	human, err := p.verifier.IsHuman(ctx, account)
	if err != nil {
		return fmt.Errorf("verify account %s: %w", account, err)
	}
	if !human {
		return fmt.Errorf("%w: %s", ErrNotHuman, account)
	}
	return nil
}

// mintShares computes the shares owed for a deposit against current state.
// Bootstrap rule: while no shares are outstanding, the first depositor sets
// the exchange rate at 1:1. An empty reserve with shares still outstanding
// cannot price a deposit; the public operations never produce that state,
// but the mint refuses to bootstrap over it regardless.
func (p *Pool) mintShares(token TokenID, amount uint64) (uint64, error) {
	total := p.totalShares[token]
	if total == 0 {
		return amount, nil
	}
	reserve := p.reserves[token]
	if reserve == 0 {
		return 0, ErrInsufficientLiquidity
	}
	return mulDivFloor(amount, total, reserve)
}

// burnShares computes the amount owed for a share burn against current
// state: shareAmount * reserve / totalShares, floored.
func (p *Pool) burnShares(token TokenID, shareAmount uint64) (uint64, error) {
	total := p.totalShares[token]
	if total == 0 {
		// Unreachable after the ownership check, enforced defensively.
		return 0, ErrInsufficientShares
	}
	return mulDivFloor(shareAmount, p.reserves[token], total)
}

// emit publishes the event to the configured sink, if any. Failures are
// logged and swallowed: events are notifications, not state.
func (p *Pool) emit(ctx context.Context, ev *models.PoolEvent) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Emit(ctx, ev); err != nil {
		p.logger.WithError(err).WithField("kind", ev.Kind).Warn("failed to emit pool event")
	}
}
