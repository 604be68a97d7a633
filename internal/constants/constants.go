// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Planner constants
const (
	// DefaultPlannerTimeout bounds one call to an external planner
	DefaultPlannerTimeout = 60 * time.Second

	// DefaultPlanCacheTTL is how long a cached planner answer stays valid
	DefaultPlanCacheTTL = 24 * time.Hour
)
