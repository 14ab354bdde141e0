package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nourish-chain/liquidity-pool/internal/ai"
	"github.com/nourish-chain/liquidity-pool/internal/flags"
	"github.com/nourish-chain/liquidity-pool/internal/pool"
	"github.com/nourish-chain/liquidity-pool/internal/storage"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Pool         *pool.Pool         // The liquidity pool ledger
	Cache        storage.EventCache // Redis-backed recent-event cache (optional)
	Flags        *flags.Store       // Redis-backed kill-switch store (optional)
	AI           *ai.Agent          // AI agent for natural language queries
	AIBaseConfig ai.AgentConfig     // Base configuration for AI agents
	DevMode      bool               // Enable detailed error responses in development
	Logger       *logrus.Logger     // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// poolErr maps a pool sentinel error onto an HTTP status and JSON envelope.
func (h *Handlers) poolErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pool.ErrNotHuman):
		return h.err(c, http.StatusForbidden, "account is not a verified human", map[string]any{"err": err.Error()})
	case errors.Is(err, pool.ErrInsufficientShares):
		return h.err(c, http.StatusConflict, "insufficient shares", map[string]any{"err": err.Error()})
	case errors.Is(err, pool.ErrInsufficientLiquidity):
		return h.err(c, http.StatusConflict, "insufficient liquidity", map[string]any{"err": err.Error()})
	case errors.Is(err, pool.ErrInvalidTokenPair):
		return h.err(c, http.StatusBadRequest, "invalid token pair", map[string]any{"err": err.Error()})
	case errors.Is(err, pool.ErrUnknownToken):
		return h.err(c, http.StatusBadRequest, "unknown token", map[string]any{"err": err.Error()})
	case errors.Is(err, pool.ErrZeroAmount):
		return h.err(c, http.StatusBadRequest, "amount must be greater than zero", nil)
	case errors.Is(err, pool.ErrArithmetic):
		return h.err(c, http.StatusInternalServerError, "arithmetic overflow", nil)
	default:
		h.Logger.WithError(err).Error("pool operation failed")
		return h.err(c, http.StatusInternalServerError, "operation failed", map[string]any{"err": err.Error()})
	}
}

// enabled consults the kill-switch store; operations stay available when no
// flag store is wired.
func (h *Handlers) enabled(ctx context.Context, key string) bool {
	if h.Flags == nil {
		return true
	}
	return h.Flags.Enabled(ctx, key)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func parseToken(c echo.Context, param string) (pool.TokenID, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param(param)))
	token, err := pool.ParseToken(symbol)
	if err != nil {
		return 0, false
	}
	return token, true
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Reserves returns the pooled reserve balance for a token (0 if unset)
func (h *Handlers) Reserves(c echo.Context) error {
	token, ok := parseToken(c, "token")
	if !ok {
		return h.err(c, http.StatusBadRequest, "unknown token", map[string]any{"token": "must be NRSH, ELXR or IMRT"})
	}
	return c.JSON(http.StatusOK, ReserveResponse{
		Token:   token.String(),
		Reserve: h.Pool.GetReserves(token),
	})
}

// Shares returns an account's ownership shares for a token (0 if unset)
func (h *Handlers) Shares(c echo.Context) error {
	account := strings.TrimSpace(c.Param("account"))
	if account == "" {
		return h.err(c, http.StatusBadRequest, "invalid account", nil)
	}
	token, ok := parseToken(c, "token")
	if !ok {
		return h.err(c, http.StatusBadRequest, "unknown token", map[string]any{"token": "must be NRSH, ELXR or IMRT"})
	}
	return c.JSON(http.StatusOK, SharesResponse{
		Account:     account,
		Token:       token.String(),
		Shares:      h.Pool.GetShares(account, token),
		TotalShares: h.Pool.GetTotalShares(token),
	})
}

// Treasury returns the accumulated protocol-fee balance for a token
func (h *Handlers) Treasury(c echo.Context) error {
	token, ok := parseToken(c, "token")
	if !ok {
		return h.err(c, http.StatusBadRequest, "unknown token", map[string]any{"token": "must be NRSH, ELXR or IMRT"})
	}
	return c.JSON(http.StatusOK, TreasuryResponse{
		Token:   token.String(),
		Balance: h.Pool.GetTreasury(token),
	})
}

// AddLiquidity deposits tokens and mints proportional ownership shares
func (h *Handlers) AddLiquidity(c echo.Context) error {
	if !h.enabled(c.Request().Context(), flags.KeyAddLiquidityEnabled) {
		return h.err(c, http.StatusServiceUnavailable, "liquidity deposits are disabled", nil)
	}

	var req AddLiquidityRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(req.Account) == "" {
		return h.err(c, http.StatusBadRequest, "account is required", nil)
	}
	token, err := pool.ParseToken(strings.ToUpper(strings.TrimSpace(req.Token)))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown token", map[string]any{"token": "must be NRSH, ELXR or IMRT"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	shares, err := h.Pool.AddLiquidity(ctx, req.Account, token, req.Amount)
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, AddLiquidityResponse{Shares: shares})
}

// RemoveLiquidity burns shares and returns the proportional token amount
func (h *Handlers) RemoveLiquidity(c echo.Context) error {
	if !h.enabled(c.Request().Context(), flags.KeyRemoveLiquidityEnabled) {
		return h.err(c, http.StatusServiceUnavailable, "liquidity withdrawals are disabled", nil)
	}

	var req RemoveLiquidityRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(req.Account) == "" {
		return h.err(c, http.StatusBadRequest, "account is required", nil)
	}
	token, err := pool.ParseToken(strings.ToUpper(strings.TrimSpace(req.Token)))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown token", map[string]any{"token": "must be NRSH, ELXR or IMRT"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	amount, err := h.Pool.RemoveLiquidity(ctx, req.Account, token, req.Shares)
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, RemoveLiquidityResponse{Amount: amount})
}

// Swap trades between two pooled tokens at the constant-product price
func (h *Handlers) Swap(c echo.Context) error {
	if !h.enabled(c.Request().Context(), flags.KeySwapEnabled) {
		return h.err(c, http.StatusServiceUnavailable, "swaps are disabled", nil)
	}

	var req SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(req.Account) == "" {
		return h.err(c, http.StatusBadRequest, "account is required", nil)
	}
	from, err := pool.ParseToken(strings.ToUpper(strings.TrimSpace(req.FromToken)))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown from_token", map[string]any{"from_token": "must be NRSH, ELXR or IMRT"})
	}
	to, err := pool.ParseToken(strings.ToUpper(strings.TrimSpace(req.ToToken)))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown to_token", map[string]any{"to_token": "must be NRSH, ELXR or IMRT"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	net, err := h.Pool.Swap(ctx, req.Account, from, to, req.AmountIn)
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, SwapResponse{NetAmountOut: net})
}

// Quote prices a swap without executing it
// Accepts from, to and amount_in query parameters
func (h *Handlers) Quote(c echo.Context) error {
	from, err := pool.ParseToken(strings.ToUpper(strings.TrimSpace(c.QueryParam("from"))))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown from token", map[string]any{"from": "must be NRSH, ELXR or IMRT"})
	}
	to, err := pool.ParseToken(strings.ToUpper(strings.TrimSpace(c.QueryParam("to"))))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "unknown to token", map[string]any{"to": "must be NRSH, ELXR or IMRT"})
	}
	amountIn, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam("amount_in")), 10, 64)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount_in", map[string]any{"amount_in": "must be uint64"})
	}

	net, err := h.Pool.QuoteSwap(from, to, amountIn)
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, QuoteResponse{
		FromToken:    from.String(),
		ToToken:      to.String(),
		AmountIn:     amountIn,
		NetAmountOut: net,
	})
}

// RecentEvents returns the most recent pool events with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentEvents(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "event cache is not configured", nil)
	}

	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentEvents(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get events", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsUpsert creates or updates a feature flag with the given key and value
// Validates key format and returns the created/updated flag
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags store is not configured", nil)
	}
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags store is not configured", nil)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags store is not configured", nil)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all feature flags in the system
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags store is not configured", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) FlagsDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags store is not configured", nil)
	}
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// AIAsk processes natural language questions about pool activity using AI
// Supports optional model override for one-off requests
// Returns SQL query and answer with execution time
func (h *Handlers) AIAsk(c echo.Context) error {
	if h.AI == nil {
		return h.err(c, http.StatusBadRequest, "ai is not configured", nil)
	}

	var req AIAskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	start := time.Now()

	// Use default AI agent or create temporary one with custom model
	agent := h.AI
	var tmp *ai.Agent
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg := h.AIBaseConfig
		cfg.Model = m
		a, err := ai.NewAgent(ctx, cfg)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to create ai agent", nil)
		}
		tmp = a
		agent = a
		defer func() {
			_ = tmp.Close() // Clean up temporary agent
		}()
	}

	res, err := agent.Ask(ctx, req.Question)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "ai ask failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, AIAskResponse{SQL: res.SQL, Answer: res.Answer, TookMs: time.Since(start).Milliseconds()})
}
