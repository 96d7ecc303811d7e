package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const baseURL = "http://localhost:3000/api/advisory/v1"

// Simplified DTOs for the script
type submitQueryRequest struct {
	SessionId string `json:"sessionId"`
	Query     string `json:"query"`
}

type submitQueryResponse struct {
	Data struct {
		Response           string   `json:"response"`
		Confidence         string   `json:"confidence"`
		Operation          string   `json:"operation"`
		SuggestedQuestions []string `json:"suggestedQuestions"`
		Citations          []struct {
			Title string  `json:"title"`
			Score float32 `json:"score"`
		} `json:"citations"`
		InsufficientEvidence bool  `json:"insufficientEvidence"`
		Degraded             bool  `json:"degraded"`
		LatencyMs            int64 `json:"latencyMs"`
	} `json:"data"`
}

func main() {
	token := os.Getenv("ADVISOR_ACCESS_TOKEN")
	if token == "" {
		color.Red("ADVISOR_ACCESS_TOKEN is not set (needs a tenant_id claim)")
		os.Exit(1)
	}

	sessionId := uuid.NewString()
	color.Cyan("=== Advisory Pipeline Simulation ===")
	color.Cyan("Session: %s\n", sessionId)

	// A conversation that exercises each operation plus coreference
	queries := []string{
		"What case studies do we have for the fintech industry?",
		"How is our content spread across funnel stages?",
		"Do we have anything about making onboarding faster?",
		"What should we publish next quarter to fill the gaps you found?",
	}

	for _, query := range queries {
		color.Yellow("\nUSER: %s", query)

		start := time.Now()
		res, err := submitQuery(token, sessionId, query)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		color.Green("ADVISOR (%v wall, %dms server) [%s/%s]:", elapsed.Round(time.Millisecond), res.Data.LatencyMs, res.Data.Operation, res.Data.Confidence)
		fmt.Println(res.Data.Response)

		if len(res.Data.Citations) > 0 {
			color.White("Cited:")
			for _, c := range res.Data.Citations {
				if c.Score > 0 {
					color.White("  - %s (%.2f)", c.Title, c.Score)
				} else {
					color.White("  - %s", c.Title)
				}
			}
		}
		if res.Data.InsufficientEvidence {
			color.Magenta("(answered with insufficient evidence)")
		}
		if res.Data.Degraded {
			color.Magenta("(one retrieval channel was unavailable)")
		}
	}
}

func submitQuery(token, sessionId, query string) (*submitQueryResponse, error) {
	payload := submitQueryRequest{SessionId: sessionId, Query: query}
	jsonBytes, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", baseURL+"/query", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res submitQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
