// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// Shared client for the card-image and meta scrapers. Single attempt with a
// bounded timeout; callers degrade to a fallback payload on failure.
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
