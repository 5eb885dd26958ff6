package constants

// Centralized constants for env keys, routes, response keys and log fields.
const (
	// Environment variable prefix read by viper (ELEMENTAL_SERVER_ADDRESS, ...)
	EnvPrefix = "ELEMENTAL"
	// Optional explicit config file path
	EnvConfigFile = "ELEMENTAL_CONFIG"
	// URL probed by cmd/healthcheck
	EnvHealthcheckURL     = "ELEMENTAL_HEALTHCHECK_URL"
	DefaultHealthcheckURL = "http://127.0.0.1:8080/"

	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"

	// Identity of the caller; set by the fronting gateway
	HeaderPlayerID = "X-Player-ID"
	// Gin context key holding the caller id
	ContextKeyPlayerID = "playerID"
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteVersion         = "/version"
	RouteCards           = "/cards"
	RouteEffectiveness   = "/effectiveness"
	RouteMatches         = "/matches"
	RouteMatchByID       = "/matches/:matchID"
	RouteMatchActions    = "/matches/:matchID/actions"
	RouteMatchForfeit    = "/matches/:matchID/forfeit"
	RouteMatchStream     = "/matches/:matchID/stream"
	RouteProgressions    = "/progressions"
	RouteProgressionByID = "/progressions/:progressionID"
	RouteProgressionWin  = "/progressions/:progressionID/battles"
	RouteEvolve          = "/progressions/:progressionID/evolve"
	RouteFusions         = "/fusions"
	RouteInventory       = "/inventory"
	RouteResults         = "/results"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest        = "Invalid request"
	ErrMatchNotFound         = "Match not found"
	ErrMatchNotActive        = "Match is not active"
	ErrIllegalAction         = "Illegal action"
	ErrFailedCreateMatch     = "Failed to create match"
	ErrUnknownCard           = "Unknown card"
	ErrUnknownElement        = "Unknown element"
	ErrProgressionNotFound   = "Progression not found"
	ErrFailedSaveProgression = "Failed to save progression"
	ErrEvolutionNotAllowed   = "Evolution requirements not met"
	ErrUnknownEvolutionPath  = "Unknown evolution path"
	ErrUnknownFusionRecipe   = "Unknown fusion recipe"
	ErrFusionNotAllowed      = "Fusion requirements not met"
	ErrQueueFull             = "Action queue is full; retry"
	ErrNotYourCard           = "Card or seat belongs to another player"
	ErrIdentityRequired      = "Missing player identity"
	ErrFailedFetchResults    = "Failed to fetch match results"
	ErrFailedFetchInventory  = "Failed to fetch inventory"
)

// Logging field names
const (
	LogFieldMatchID       = "match_id"
	LogFieldPlayerID      = "player_id"
	LogFieldTurn          = "turn"
	LogFieldAction        = "action"
	LogFieldCardID        = "card_id"
	LogFieldAbilityID     = "ability_id"
	LogFieldProgressionID = "progression_id"
	LogFieldRecipeID      = "recipe_id"
	LogFieldDifficulty    = "difficulty"
	LogFieldPersonality   = "personality"
	LogFieldAddr          = "addr"
	LogFieldReason        = "reason"
)
