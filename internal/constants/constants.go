package constants

// Centralized constants for env keys, routes, JSON keys and log fields.
const (
	// Environment variable keys
	EnvConfigPath = "ARENA_CONFIG"
	EnvDBPath     = "ARENA_DB"
	EnvAdminToken = "ARENA_ADMIN_TOKEN"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderAdminToken    = "X-Admin-Token"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	// Defaults
	DefaultConfigPath    = "./arena_config.json"
	DefaultDBPath        = "./data/arena.db"
	DefaultServerAddress = ":8080"

	// Formatter default character budget when the caller does not pass one.
	DefaultSummaryBudget = 2000
)

// Routes used by the backend router
const (
	RouteAPIPrefix = "/api"

	RouteEntityResource      = "/entities/:entityID/resources/:resourceType"
	RouteEntityResourceSpend = "/entities/:entityID/resources/:resourceType/spend"
	RouteEntityResourceBonus = "/entities/:entityID/resources/:resourceType/bonus"
	RouteEntityBalance       = "/entities/:entityID/balance"
	RouteEntityBalanceAdjust = "/entities/:entityID/balance/adjust"
	RouteEntityInventory     = "/entities/:entityID/inventory"
	RouteEntityInventoryItem = "/entities/:entityID/inventory/:itemID"
	RouteEntityItemUse       = "/entities/:entityID/inventory/:itemID/use"

	RouteRounds       = "/rounds"
	RouteRoundCurrent = "/rounds/current"
	RouteRoundAttacks = "/rounds/current/attacks"
	RouteRoundSettle  = "/rounds/current/settle"
	RouteRoundEvents  = "/rounds/events"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyRetry   = "retry"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest     = "Invalid request"
	ErrInvalidEntityID    = "Invalid entity ID"
	ErrUnknownResource    = "Unknown resource type"
	ErrUnknownItem        = "Unknown item"
	ErrRoundNotFound      = "No round is currently open"
	ErrFailedFetchState   = "Failed to fetch state"
	ErrFailedApplyChange  = "Failed to apply change"
	ErrFailedStartRound   = "Failed to start round"
	ErrFailedSettleRound  = "Failed to settle round"
	ErrConflictRetry      = "State changed concurrently, retry"
	ErrAdminTokenRequired = "Admin token required"
	ErrAdminTokenInvalid  = "Invalid admin token"
)

// Logging field names
const (
	LogFieldEntityID = "entity_id"
	LogFieldItemID   = "item_id"
	LogFieldResource = "resource_type"
	LogFieldRound    = "round"
	LogFieldIntentID = "intent_id"
	LogFieldReason   = "reason"
	LogFieldAddr     = "addr"
	LogFieldOutcome  = "outcome"
	LogFieldDefender = "defender_id"
	LogFieldAttacker = "attacker_id"
)
