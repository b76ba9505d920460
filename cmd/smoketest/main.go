// Command smoketest exercises a running forcematch server end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/agenthands/forcematch/internal/logging"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "server base URL")
	wait := flag.Duration("wait", 2*time.Second, "delay before the first request")
	flag.Parse()

	logger := logging.New(os.Stderr, "info")
	client := &http.Client{Timeout: 2 * time.Minute}
	time.Sleep(*wait)

	logger.Info("1. health")
	if _, err := call(client, http.MethodGet, *baseURL+"/health", nil); err != nil {
		logger.Fatal("health failed", "err", err)
	}

	logger.Info("2. constraints")
	var list struct {
		Constraints []string `json:"constraints"`
	}
	body, err := call(client, http.MethodGet, *baseURL+"/api/constraints", nil)
	if err != nil {
		logger.Fatal("constraints failed", "err", err)
	}
	if err := json.Unmarshal(body, &list); err != nil || len(list.Constraints) == 0 {
		logger.Fatal("constraints response unusable", "body", string(body), "err", err)
	}

	logger.Info("3. match", "constraints", list.Constraints)
	var match struct {
		MatchID           string            `json:"match_id"`
		Pairings          map[string]string `json:"pairings"`
		SatisfactionScore float64           `json:"satisfaction_score"`
	}
	body, err = call(client, http.MethodPost, *baseURL+"/api/match", map[string]any{"constraints": list.Constraints})
	if err != nil {
		logger.Fatal("match failed", "err", err)
	}
	if err := json.Unmarshal(body, &match); err != nil || len(match.Pairings) == 0 {
		logger.Fatal("match response unusable", "body", string(body), "err", err)
	}
	for giver, receiver := range match.Pairings {
		if giver == receiver {
			logger.Fatal("self assignment", "giver", giver)
		}
	}
	logger.Info("match ok", "match_id", match.MatchID, "pairs", len(match.Pairings), "satisfaction", match.SatisfactionScore)

	logger.Info("4. recommend")
	for giver, receiver := range match.Pairings {
		body, err = call(client, http.MethodPost, *baseURL+"/api/recommend", map[string]string{
			"giver_uri":    giver,
			"receiver_uri": receiver,
		})
		if err != nil {
			logger.Fatal("recommend failed", "err", err)
		}
		logger.Info("recommend ok", "giver", giver, "response", string(body))
		break
	}

	fmt.Println("PASSED")
}

func call(client *http.Client, method, url string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
