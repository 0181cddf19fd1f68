package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:5000"

// ApiClient handles requests to the HospitalHub API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Hospital   string
	Token      string
}

// NewApiClient creates a client configured from the environment
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("HOSPITALHUB_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &ApiClient{
		httpClient: &http.Client{
			// model calls are bounded server side; leave room for them
			Timeout: time.Second * 45,
		},
		BaseURL:  baseURL,
		Hospital: os.Getenv("HOSPITALHUB_HOSPITAL"),
		Token:    os.Getenv("HOSPITALHUB_TOKEN"),
	}
}

// MedicineRef identifies the medicine a recommendation is about
type MedicineRef struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

// Recommendation is a single suggestion returned by the API
type Recommendation struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Medicine   MedicineRef    `json:"medicine"`
	Action     string         `json:"action"`
	Reasoning  string         `json:"reasoning"`
	Confidence float64        `json:"confidence"`
	Urgency    string         `json:"urgency"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Summary aggregates a recommendation response
type Summary struct {
	TotalRecommendations int    `json:"totalRecommendations"`
	HighPriority         int    `json:"highPriority"`
	EstimatedImpact      string `json:"estimatedImpact"`
}

// RecommendationResponse is the body of POST /api/ai/recommendations
type RecommendationResponse struct {
	Error           string           `json:"error,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
}

// Filters narrows a recommendation request
type Filters struct {
	Category    string `json:"category,omitempty"`
	UrgencyOnly bool   `json:"urgencyOnly,omitempty"`
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}

	return true, nil
}

// GetRecommendations asks the API to analyze the hospital's stored inventory
func (c *ApiClient) GetRecommendations(filters Filters) (*RecommendationResponse, error) {
	payload, err := json.Marshal(map[string]any{"filters": filters})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(http.MethodPost, "/api/ai/recommendations", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result RecommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, result.Error)
		}
		return nil, fmt.Errorf("API error: status code %d", resp.StatusCode)
	}

	return &result, nil
}

// GetStatus returns the hospital's latest recommendation run
func (c *ApiClient) GetStatus() (map[string]any, error) {
	req, err := c.newRequest(http.MethodGet, "/api/ai/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: status code %d, body: %s", resp.StatusCode, string(body))
	}

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return status, nil
}

func (c *ApiClient) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	} else if c.Hospital != "" {
		req.Header.Set("X-Hospital", c.Hospital)
	}
	return req, nil
}
