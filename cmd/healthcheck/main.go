// Package main probes the local server's liveness endpoint for container
// health checks. It exits 0 when /livez answers 200.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/zokybot/zoky-messenger-go/internal/config"
)

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8989"
	}

	client := &http.Client{Timeout: config.ReadinessCheckTimeout}
	url := fmt.Sprintf("http://localhost:%s/livez", port)

	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
