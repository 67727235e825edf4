package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, LLM answers can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Shop Assistant API Test\n")

	// 1. Health Check
	color.Yellow("\n[SYSTEM] 1. Health Check")
	resp, body, err := sendRequest("GET", "/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var healthResp map[string]interface{}
	json.Unmarshal(body, &healthResp)
	prettyPrint(healthResp)

	// 2. Upsert a test product
	color.Yellow("\n[CATALOG] 2. Upsert Test Product")
	productReq := map[string]interface{}{
		"external_id": "smoke-test-watch",
		"title":       "Smoke Test Chrono",
		"description": "Automatic chronograph used by the API smoke test.",
		"category":    "watch",
		"gender":      "men",
		"brand":       "Meridian",
		"price":       499,
		"attributes":  map[string]string{"movement": "automatic"},
	}
	resp, body, err = sendRequest("POST", "/catalog/v1", productReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var upsertResp map[string]interface{}
	json.Unmarshal(body, &upsertResp)
	prettyPrint(upsertResp)

	// Extract product ID for cleanup
	var productID string
	if data, ok := upsertResp["data"].(map[string]interface{}); ok {
		if id, ok := data["id"].(string); ok {
			productID = id
		}
	}

	// 3. Rebuild the search index so the product is queryable immediately
	color.Yellow("\n[CATALOG] 3. Rebuild Search Index")
	resp, body, err = sendRequest("POST", "/catalog/v1/reindex", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var reindexResp map[string]interface{}
	json.Unmarshal(body, &reindexResp)
	prettyPrint(reindexResp)

	// 4. Assistant query (new session)
	color.Yellow("\n[ASSISTANT] 4. Query: 'show me mens watches under 1000'")
	queryReq := map[string]interface{}{
		"query": "show me mens watches under 1000",
		"debug": true,
	}
	resp, body, err = sendRequest("POST", "/assistant/v1/query", queryReq)
	var sessionID string
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var queryResp map[string]interface{}
	json.Unmarshal(body, &queryResp)
	if data, ok := queryResp["data"].(map[string]interface{}); ok {
		if id, ok := data["session_id"].(string); ok {
			sessionID = id
			fmt.Printf("Session ID: %s\n", sessionID)
		}
		fmt.Printf("Answer: %s\n", data["answer"])
		if products, ok := data["products"].([]interface{}); ok {
			fmt.Printf("Products: %d\n", len(products))
		}
		if debug, ok := data["debug"].(map[string]interface{}); ok {
			fmt.Printf("Intent: %v | Strategy: %v | Confidence: %v\n", debug["intent"], debug["strategy"], debug["confidence"])
		}
	} else {
		prettyPrint(queryResp)
	}

	// 5. Follow-up query on the same session (context refinement)
	color.Yellow("\n[ASSISTANT] 5. Follow-up: 'which of those has a leather strap?'")
	if sessionID == "" {
		color.Red("Skipping follow-up: no session id returned")
	} else {
		followReq := map[string]interface{}{
			"session_id": sessionID,
			"query":      "which of those has a leather strap?",
			"debug":      true,
		}
		resp, body, err = sendRequest("POST", "/assistant/v1/query", followReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var followResp map[string]interface{}
			json.Unmarshal(body, &followResp)
			if data, ok := followResp["data"].(map[string]interface{}); ok {
				fmt.Printf("Answer: %s\n", data["answer"])
				if debug, ok := data["debug"].(map[string]interface{}); ok {
					fmt.Printf("Intent: %v | Strategy: %v\n", debug["intent"], debug["strategy"])
				}
			}
		}
	}

	// 6. Session history
	color.Yellow("\n[ASSISTANT] 6. Session History")
	if sessionID == "" {
		color.Red("Skipping history: no session id")
	} else {
		resp, body, err = sendRequest("GET", "/assistant/v1/session/"+sessionID+"/history", nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			var histResp map[string]interface{}
			json.Unmarshal(body, &histResp)
			if data, ok := histResp["data"].(map[string]interface{}); ok {
				if messages, ok := data["messages"].([]interface{}); ok {
					fmt.Printf("Turns: %d\n", len(messages))
				}
			}
		}
	}

	// 7. Knowledge search
	color.Yellow("\n[KNOWLEDGE] 7. Search: 'return policy'")
	resp, body, err = sendRequest("GET", "/knowledge/v1/search?q=return+policy", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var searchResp map[string]interface{}
		json.Unmarshal(body, &searchResp)
		prettyPrint(searchResp)
	}

	// 8. Cleanup: delete session and test product
	color.Yellow("\n[CLEANUP] 8. Delete Session & Test Product")
	if sessionID != "" {
		resp, _, err = sendRequest("DELETE", "/assistant/v1/session/"+sessionID, nil)
		if err != nil {
			color.Red("Delete session failed: %v", err)
		} else {
			color.Green("Delete session: %s", resp.Status)
		}
	}
	if productID != "" {
		resp, _, err = sendRequest("DELETE", "/catalog/v1/"+productID, nil)
		if err != nil {
			color.Red("Delete product failed: %v", err)
		} else {
			color.Green("Delete product: %s", resp.Status)
		}
	} else {
		color.Red("[SKIP] Product cleanup skipped (no ID returned from upsert)")
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
