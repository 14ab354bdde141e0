package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// ReserveResponse reports a token's pooled reserve balance
type ReserveResponse struct {
	Token   string `json:"token"`
	Reserve uint64 `json:"reserve"`
}

// SharesResponse reports an account's ownership shares in a token
type SharesResponse struct {
	Account     string `json:"account"`
	Token       string `json:"token"`
	Shares      uint64 `json:"shares"`
	TotalShares uint64 `json:"total_shares"`
}

// TreasuryResponse reports the accumulated protocol fees for a token
type TreasuryResponse struct {
	Token   string `json:"token"`
	Balance uint64 `json:"balance"`
}

// AddLiquidityRequest deposits tokens in exchange for ownership shares
type AddLiquidityRequest struct {
	Account string `json:"account"`
	Token   string `json:"token"`
	Amount  uint64 `json:"amount"`
}

// AddLiquidityResponse reports the shares minted for a deposit
type AddLiquidityResponse struct {
	Shares uint64 `json:"shares"`
}

// RemoveLiquidityRequest burns shares in exchange for pooled tokens
type RemoveLiquidityRequest struct {
	Account string `json:"account"`
	Token   string `json:"token"`
	Shares  uint64 `json:"shares"`
}

// RemoveLiquidityResponse reports the amount returned for a burn
type RemoveLiquidityResponse struct {
	Amount uint64 `json:"amount"`
}

// SwapRequest trades amount_in of from_token for to_token
type SwapRequest struct {
	Account   string `json:"account"`
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	AmountIn  uint64 `json:"amount_in"`
}

// SwapResponse reports the net amount delivered to the trader
type SwapResponse struct {
	NetAmountOut uint64 `json:"net_amount_out"`
}

// QuoteResponse reports a swap price without executing it
type QuoteResponse struct {
	FromToken    string `json:"from_token"`
	ToToken      string `json:"to_token"`
	AmountIn     uint64 `json:"amount_in"`
	NetAmountOut uint64 `json:"net_amount_out"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}

// AIAskRequest represents a natural language query request
type AIAskRequest struct {
	Question string `json:"question"` // Natural language question about pool activity
	Model    string `json:"model"`    // Optional AI model override
}

// AIAskResponse represents the response from an AI query
type AIAskResponse struct {
	SQL    string `json:"sql"`     // Generated SQL query
	Answer string `json:"answer"`  // Natural language answer
	TookMs int64  `json:"took_ms"` // Execution time in milliseconds
}
