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
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout, finalize waits on the oracle
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	data, _ := parsed["data"].(map[string]interface{})
	return data
}

func main() {
	userToken := os.Getenv("TEST_USER_TOKEN")
	if userToken == "" {
		color.Red("TEST_USER_TOKEN env var is required")
		os.Exit(1)
	}

	color.Cyan("🚀 Starting Field Reporting API Test\n")

	// 1. Start an EMS recording session
	color.Yellow("\n[USER] 1. Start EMS session")
	resp, body, err := sendRequest("POST", "/session/v1/start", userToken, map[string]interface{}{
		"mode": "EMS",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sessionID string
	if data := dataField(body); data != nil {
		if id, ok := data["id"].(string); ok {
			sessionID = id
			fmt.Printf("Session ID: %s (resumed=%v)\n", sessionID, data["resumed"])
		}
	}
	if sessionID == "" {
		color.Red("No session id returned, aborting")
		os.Exit(1)
	}

	// 2. Show session state
	color.Yellow("\n[USER] 2. Show session state")
	resp, body, err = sendRequest("GET", "/session/v1/"+sessionID, userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(dataField(body))
	}

	// 3. Consent speaker 0
	color.Yellow("\n[USER] 3. Toggle consent for speaker 0")
	resp, body, err = sendRequest("POST", "/session/v1/"+sessionID+"/consent", userToken, map[string]interface{}{
		"speakerId": 0,
	})
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(dataField(body))
	}

	// 4. Log a manual timeline event
	color.Yellow("\n[USER] 4. Add manual event")
	resp, body, err = sendRequest("POST", "/session/v1/"+sessionID+"/events", userToken, map[string]interface{}{
		"description": "Administered oxygen",
	})
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(dataField(body))
	}

	// 5. Stop and finalize
	// Without real audio this should come back 422 (no speech detected).
	color.Yellow("\n[USER] 5. Stop session (expects 422 without audio)")
	resp, body, err = sendRequest("POST", "/session/v1/"+sessionID+"/stop", userToken, nil)
	var reportID string
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			if id, ok := data["id"].(string); ok {
				reportID = id
			}
			prettyPrint(data)
		} else {
			var errResp map[string]interface{}
			json.Unmarshal(body, &errResp)
			prettyPrint(errResp)
		}
	}

	// 6. Report history
	color.Yellow("\n[USER] 6. Report history (mode=EMS)")
	resp, body, err = sendRequest("GET", "/report/v1?mode=EMS", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var histResp map[string]interface{}
		json.Unmarshal(body, &histResp)
		if list, ok := histResp["data"].([]interface{}); ok {
			fmt.Printf("Completed reports: %d\n", len(list))
		}
	}

	// 7. Complete an action item on the finalized report (if any)
	if reportID != "" {
		color.Yellow("\n[USER] 7. Show finalized report")
		resp, body, err = sendRequest("GET", "/report/v1/"+reportID, userToken, nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
			prettyPrint(dataField(body))
		}
	} else {
		// Session is still live; discard it so reruns start clean.
		color.Yellow("\n[USER] 7. Discard session")
		resp, body, err = sendRequest("DELETE", "/session/v1/"+sessionID, userToken, nil)
		if err != nil {
			color.Red("Failed: %v", err)
		} else {
			color.Green("Status: %s", resp.Status)
		}
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
