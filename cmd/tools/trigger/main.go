package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8081", "Dashboard base URL")
	flag.Parse()

	url := strings.TrimRight(*baseURL, "/") + "/api/v1/refresh"
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var body struct {
		CycleID string `json:"cycle_id"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	fmt.Printf("Response Status: %s\n", resp.Status)
	switch resp.StatusCode {
	case http.StatusAccepted:
		fmt.Printf("Cycle %s started\n", body.CycleID)
	case http.StatusConflict:
		fmt.Printf("%s (cycle %s)\n", body.Error, body.CycleID)
		os.Exit(2)
	default:
		os.Exit(1)
	}
}
