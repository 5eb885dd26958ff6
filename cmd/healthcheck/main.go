package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/ericogr/elemental-cards/internal/constants"
)

func main() {
	url := os.Getenv(constants.EnvHealthcheckURL)
	if url == "" {
		url = constants.DefaultHealthcheckURL
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body[constants.JSONKeyStatus] != "ok" {
		os.Exit(1)
	}
	os.Exit(0)
}
