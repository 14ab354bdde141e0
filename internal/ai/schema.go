package ai

// eventsSchemaDescription describes the ClickHouse schema used for NL→SQL prompting.
//
// Keep it in sync with the columns the indexer writes (internal/cache/clickhouse.go).
const eventsSchemaDescription = `
Database: pool
Table: events

Columns:
  - kind       String        -- "liquidity_added", "liquidity_removed" or "token_swapped"
  - account    String        -- Account that performed the operation
  - token      String        -- Token symbol for liquidity events (NRSH, ELXR, IMRT), empty for swaps
  - from_token String        -- Token sold in a swap, empty for liquidity events
  - to_token   String        -- Token bought in a swap, empty for liquidity events
  - amount     UInt64        -- Token amount deposited or withdrawn (liquidity events)
  - shares     UInt64        -- Ownership shares minted or burned (liquidity events)
  - amount_in  UInt64        -- Amount of from_token paid in (swaps)
  - amount_out UInt64        -- Net amount of to_token delivered after fee (swaps)
  - fee        UInt64        -- Protocol fee taken from the raw swap output (swaps)
  - timestamp  DateTime      -- Time of the operation (UTC)
`
