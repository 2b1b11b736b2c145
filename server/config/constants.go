package config

// Network defaults
const (
	// HTTP Server Port - public card API
	HTTP_SERVER_PORT = 8000

	// Default bind address for the API
	DEFAULT_SERVER_ADDRESS = "0.0.0.0"

	// Localhost address for development
	LOCALHOST_ADDRESS = "127.0.0.1"
)

// API defaults
const (
	DEFAULT_ROOT_PATH   = "/api/v1"
	DEFAULT_API_VERSION = "0.1.0"
)

// Upstream defaults
const (
	DEFAULT_MTGIO_BASE_URL    = "https://api.magicthegathering.io"
	DEFAULT_MTGIO_VERSION     = "v1"
	DEFAULT_RATE_LIMIT_HEADER = "Ratelimit-Remaining"
)

// Port validation constants
const (
	MIN_PORT = 1
	MAX_PORT = 65535
)

// IsValidPort checks if a port number is within valid range
func IsValidPort(port int) bool {
	return port >= MIN_PORT && port <= MAX_PORT
}
