package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:3000/api/assistant/v1"

// Simplified DTOs for the script
type QueryRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query"`
	Debug     bool   `json:"debug"`
}

type QueryResponse struct {
	Data struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
		Products  []struct {
			Title string  `json:"title"`
			Price float64 `json:"price"`
			Score float64 `json:"score"`
		} `json:"products"`
		FollowUpQuestions []string `json:"follow_up_questions"`
		Debug             *struct {
			Intent    string `json:"intent"`
			Strategy  string `json:"strategy"`
			ElapsedMs int64  `json:"elapsed_ms"`
		} `json:"debug"`
	} `json:"data"`
}

func main() {
	fmt.Println("=== Assistant Simulation Client ===")
	fmt.Println("Driving a multi-turn shopping conversation against", baseURL)

	// The session id comes back on the first turn; resending it keeps
	// the preference memory alive across the script.
	sessionID := ""

	testCases := []string{
		"hi there",
		"I'm looking for a watch for my husband, something elegant",
		"under 2000 euros please",
		"what's the difference between quartz and automatic movements?",
		"ok show me the second one again",
	}

	for _, text := range testCases {
		fmt.Printf("\nUSER: %s\n", text)

		start := time.Now()
		res, err := sendQuery(sessionID, text)
		elapsed := time.Since(start)

		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		sessionID = res.Data.SessionID
		fmt.Printf("AI (%v): %s\n", elapsed, res.Data.Answer)

		if dbg := res.Data.Debug; dbg != nil {
			fmt.Printf("   [intent=%s strategy=%s server=%dms]\n", dbg.Intent, dbg.Strategy, dbg.ElapsedMs)
		}
		for i, p := range res.Data.Products {
			fmt.Printf("   %d. %s (%.2f) score=%.3f\n", i+1, p.Title, p.Price, p.Score)
		}
		if len(res.Data.FollowUpQuestions) > 0 {
			fmt.Printf("   Follow-ups: %v\n", res.Data.FollowUpQuestions)
		}

		// Small delay to allow async logs to flush on server side (optional)
		time.Sleep(1 * time.Second)
	}

	if sessionID != "" {
		fmt.Printf("\nSession: %s\n", sessionID)
		fmt.Println("Replaying history...")
		if err := printHistory(sessionID); err != nil {
			log.Fatalf("Failed to fetch history: %v", err)
		}
	}
}

func sendQuery(sessionID, text string) (*QueryResponse, error) {
	payload := QueryRequest{
		SessionID: sessionID,
		Query:     text,
		Debug:     true,
	}
	jsonBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", baseURL+"/query", bytes.NewBuffer(jsonBytes))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func printHistory(sessionID string) error {
	resp, err := http.Get(baseURL + "/session/" + sessionID + "/history")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res struct {
		Data struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
				Intent  string `json:"intent"`
			} `json:"messages"`
			Preferences map[string]string `json:"preferences"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return err
	}

	for _, m := range res.Data.Messages {
		tag := ""
		if m.Intent != "" {
			tag = fmt.Sprintf(" (%s)", m.Intent)
		}
		fmt.Printf("   %-9s%s: %.80s\n", m.Role, tag, m.Content)
	}
	if len(res.Data.Preferences) > 0 {
		fmt.Printf("   Remembered preferences: %v\n", res.Data.Preferences)
	}
	return nil
}
