package main

import (
	"net/http"
	"os"
	"time"

	"github.com/ericogr/arena-engine/internal/constants"
)

// Probes the current-round endpoint on the local engine. A 404 just means no
// round has been opened yet; only transport errors and 5xx mark the process
// unhealthy.
func main() {
	client := &http.Client{Timeout: 2 * time.Second}
	url := "http://127.0.0.1:8080" + constants.RouteAPIPrefix + constants.RouteRoundCurrent
	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		os.Exit(1)
	}
	os.Exit(0)
}
