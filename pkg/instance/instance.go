package instance

import "os"

// GetID returns the process identifier logged at boot. Heroku-style dynos
// expose DYNO; everything else falls back to "local".
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if id := os.Getenv("HOSTNAME"); id != "" {
		return id
	}
	return "local"
}
