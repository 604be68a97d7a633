// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Request limits
const (
	// MaxRequestBodySize is the largest JSON body accepted by the API (10MB)
	MaxRequestBodySize = 10 << 20

	// MaxPhotosPerRequest caps the photo collection of a single album request
	MaxPhotosPerRequest = 2000
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// Job constants
const (
	// JobRetention is how long finished album jobs stay queryable
	JobRetention = time.Hour
)
