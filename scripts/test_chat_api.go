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

const (
	baseURL   = "http://localhost:3000"
	projectID = "smoke-test"
	sourceID  = "smoke-handbook"
)

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

	client := &http.Client{} // No timeout: generation can be slow on cold models
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataOf(body []byte) map[string]interface{} {
	var envelope map[string]interface{}
	json.Unmarshal(body, &envelope)
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	color.Cyan("🚀 Starting Document QA API Test\n")

	// 1. Health check
	color.Yellow("\n1. Health Check")
	resp, body, err := sendRequest("GET", "/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var healthResp map[string]interface{}
	json.Unmarshal(body, &healthResp)
	prettyPrint(healthResp)

	// 2. Ingest a small document to query against
	color.Yellow("\n2. Ingest Sample Document")
	ingestReq := map[string]interface{}{
		"project_id": projectID,
		"source_id":  sourceID,
		"file_name":  "smoke_handbook.txt",
		"text": "Remote work is allowed up to three days per week with manager approval. " +
			"Vacation accrues at two days per month and carries over up to ten days. " +
			"Security training must be completed within the first week of employment.",
	}
	resp, body, err = sendRequest("POST", "/api/ingest/v1/text", ingestReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(dataOf(body))

	// 3. First question opens a fresh session
	color.Yellow("\n3. Ask First Question (new session)")
	queryReq := map[string]interface{}{
		"project_id": projectID,
		"query":      "How many remote days are allowed per week?",
	}
	resp, body, err = sendRequest("POST", "/api/chat/v1/query", queryReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var sessionID string
	if data := dataOf(body); data != nil {
		fmt.Printf("Answer: %s\n", data["answer"])
		if sources, ok := data["sources"].([]interface{}); ok {
			fmt.Printf("Sources: %d\n", len(sources))
		}
		if id, ok := data["session_id"].(string); ok {
			sessionID = id
			fmt.Printf("Session ID: %s\n", sessionID)
		}
	}

	// 4. Follow-up on the same session exercises conversation memory
	color.Yellow("\n4. Ask Follow-Up Question (same session)")
	if sessionID == "" {
		color.Red("Skipping follow-up: no session id returned")
	} else {
		followUpReq := map[string]interface{}{
			"project_id": projectID,
			"query":      "And does that need any approval?",
			"session_id": sessionID,
		}
		resp, body, err = sendRequest("POST", "/api/chat/v1/query", followUpReq)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			if data := dataOf(body); data != nil {
				fmt.Printf("Answer: %s\n", data["answer"])
				if returned, ok := data["session_id"].(string); ok && returned != sessionID {
					color.Red("Session was not continued: got %s", returned)
				}
			}
		}
	}

	// 5. Read the conversation back
	color.Yellow("\n5. Get Conversation History")
	if sessionID != "" {
		resp, body, err = sendRequest("GET", "/api/chat/v1/history/"+sessionID+"?max_messages=10", nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			if data := dataOf(body); data != nil {
				if messages, ok := data["messages"].([]interface{}); ok {
					fmt.Printf("Messages: %d\n", len(messages))
				}
			}
		}
	}

	// 6. Session stats
	color.Yellow("\n6. Get Session Stats")
	resp, body, err = sendRequest("GET", "/api/chat/v1/sessions/stats", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(dataOf(body))
	}

	// 7. Clear the session twice: the second call must still succeed
	color.Yellow("\n7. Clear Conversation (twice, second is a no-op)")
	if sessionID != "" {
		for i := 0; i < 2; i++ {
			resp, body, err = sendRequest("DELETE", "/api/chat/v1/history/"+sessionID, nil)
			if err != nil {
				color.Red("Failed: %v", err)
				break
			}
			color.Green("Status: %s", resp.Status)
			prettyPrint(dataOf(body))
		}
	}

	// 8. Cleanup: drop the smoke test document
	color.Yellow("\n8. Cleanup: Delete Sample Document")
	resp, body, err = sendRequest("DELETE", "/api/ingest/v1/sources/"+sourceID+"?project_id="+projectID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(dataOf(body))
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
