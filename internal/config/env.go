package config

import (
	"os"
	"strings"
)

// Server is the environment configuration of the API binary.
type Server struct {
	Port        string
	Env         string
	ConfigPath  string
	JWTSecret   string
	CORSOrigins []string
}

// ServerFromEnv reads API_PORT, API_ENV, API_CONFIG, API_JWT_SECRET and
// API_CORS_ORIGINS (comma separated).
func ServerFromEnv() Server {
	s := Server{
		Port:       getenv("API_PORT", "8080"),
		Env:        os.Getenv("API_ENV"),
		ConfigPath: getenv("API_CONFIG", "examples/config.yaml"),
		JWTSecret:  os.Getenv("API_JWT_SECRET"),
	}
	for _, o := range strings.Split(os.Getenv("API_CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			s.CORSOrigins = append(s.CORSOrigins, o)
		}
	}
	return s
}

func (s Server) Production() bool { return s.Env == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
