package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the protected API.
	// Public lookup and image endpoints are exempt.
	ApiKey string `mapstructure:"api_key" default:""`
	// BasePath is the prefix under which all routes are mounted.
	BasePath string `mapstructure:"base_path" default:"/api/v1"`
}
