package constants

import "time"

// Centralized default values for timeouts, intervals, and related settings.
// These provide sane defaults; environment/config may override where supported.

const (
	// Database
	DBReadTimeoutDefault  = 8 * time.Second
	DBWriteTimeoutDefault = 6 * time.Second

	// PSGC geographic API
	PSGCRequestTimeout     = 10 * time.Second
	PSGCBreakerOpenFor     = 30 * time.Second
	PSGCBreakerMaxFailures = 3
	PSGCBreakerSlowCall    = 5 * time.Second

	// Health
	HealthTimeoutDefault = 30 * time.Second

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second

	// Events store SQL operations
	EventsSQLTimeoutDefault = 5 * time.Second
)

// DefaultPSGCBaseURL is the public base URL of the PSGC API.
const DefaultPSGCBaseURL = "https://psgc.gitlab.io/api"

// DefaultProvinceCode scopes all location lookups to Camarines Sur.
const DefaultProvinceCode = "050500000"

// DefaultFoodTypes is the fixed tag list offered by the restaurant form
// when no embedded config overrides it.
var DefaultFoodTypes = []string{
	"Filipino",
	"Korean",
	"Japanese",
	"Sea Food",
	"Fast Food",
	"Desserts",
	"Cafe",
	"Casual",
	"Buffet",
}

// FoodTypeSeparator joins the selected tags into the persisted food_type column.
const FoodTypeSeparator = ", "
