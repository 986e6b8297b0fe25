package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liamcoop/rulepipeline/catalog"
	"github.com/liamcoop/rulepipeline/command"
)

// productResult mirrors the JSON shape of an ExecutionResult carrying a product
type productResult struct {
	Success bool `json:"success"`
	Errors  []struct {
		ErrorMessage string   `json:"errorMessage"`
		MemberNames  []string `json:"memberNames"`
	} `json:"errors"`
	Value *catalog.Product `json:"value"`
	Code  string           `json:"code"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server, err := NewServer("memory", "")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts
}

// doRequest sends body as JSON and returns the status and raw response body
func doRequest(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make %s request to %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return resp.StatusCode, data
}

func decodeProduct(t *testing.T, data []byte) productResult {
	t.Helper()
	var result productResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to decode response %s: %v", string(data), err)
	}
	return result
}

func createProduct(t *testing.T, baseURL string, req ProductRequest) *catalog.Product {
	t.Helper()
	status, data := doRequest(t, http.MethodPost, baseURL+"/products", req)
	if status != http.StatusCreated {
		t.Fatalf("Create failed with status %d: %s", status, string(data))
	}
	return decodeProduct(t, data).Value
}

func TestServer_UnknownStore(t *testing.T) {
	if _, err := NewServer("redis", ""); err == nil {
		t.Error("Expected error for unknown store")
	}
	if _, err := NewServer("postgres", ""); err == nil {
		t.Error("Expected error when DATABASE_URL is missing")
	}
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	status, data := doRequest(t, http.MethodGet, ts.URL+"/api/v1/health", nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}

	var health HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if health.Status != "healthy" || health.Store != "memory" {
		t.Errorf("Unexpected health %+v", health)
	}
	if _, ok := health.Counters["commandsExecuted"]; !ok {
		t.Error("Expected commandsExecuted counter")
	}
}

// TestServer_ProductLifecycle creates, reads, updates, ships, discontinues and deletes a product
func TestServer_ProductLifecycle(t *testing.T) {
	ts := newTestServer(t)
	baseURL := ts.URL + "/api/v1"

	p := createProduct(t, baseURL, ProductRequest{Name: "Widget", Price: 9.5, Quantity: 10})
	if p.ID == "" || p.Status != catalog.StatusActive {
		t.Fatalf("Unexpected product %+v", p)
	}

	status, data := doRequest(t, http.MethodGet, baseURL+"/products/"+p.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("Get failed with status %d: %s", status, string(data))
	}

	status, data = doRequest(t, http.MethodPut, baseURL+"/products/"+p.ID, ProductRequest{
		Name:     "Widget XL",
		Price:    12,
		Quantity: 10,
		Status:   catalog.StatusActive,
		Version:  p.Version,
	})
	if status != http.StatusOK {
		t.Fatalf("Update failed with status %d: %s", status, string(data))
	}
	if got := decodeProduct(t, data).Value; got.Name != "Widget XL" || got.Version != 2 {
		t.Errorf("Unexpected updated product %+v", got)
	}

	status, data = doRequest(t, http.MethodPost, baseURL+"/products/"+p.ID+"/ship", ShipRequest{Quantity: 4})
	if status != http.StatusOK {
		t.Fatalf("Ship failed with status %d: %s", status, string(data))
	}
	if got := decodeProduct(t, data).Value; got.Quantity != 6 {
		t.Errorf("Expected 6 in stock, got %d", got.Quantity)
	}

	status, data = doRequest(t, http.MethodPost, baseURL+"/products/"+p.ID+"/discontinue", nil)
	if status != http.StatusOK {
		t.Fatalf("Discontinue failed with status %d: %s", status, string(data))
	}

	status, data = doRequest(t, http.MethodGet, baseURL+"/products", nil)
	if status != http.StatusOK {
		t.Fatalf("List failed with status %d: %s", status, string(data))
	}
	var list struct {
		Value []catalog.Product `json:"value"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list.Value) != 1 || list.Value[0].Status != catalog.StatusDiscontinued {
		t.Errorf("Unexpected list %+v", list.Value)
	}

	status, _ = doRequest(t, http.MethodDelete, baseURL+"/products/"+p.ID, nil)
	if status != http.StatusNoContent {
		t.Errorf("Expected 204 on delete, got %d", status)
	}

	status, _ = doRequest(t, http.MethodGet, baseURL+"/products/"+p.ID, nil)
	if status != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
}

func TestServer_StatusMapping(t *testing.T) {
	ts := newTestServer(t)
	baseURL := ts.URL + "/api/v1"
	p := createProduct(t, baseURL, ProductRequest{Name: "Widget", Price: 1, Quantity: 2})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"rule failure", http.MethodPost, "/products", ProductRequest{Price: 1}, http.StatusBadRequest, ""},
		{"not found", http.MethodGet, "/products/missing", nil, http.StatusNotFound, "NOT_FOUND"},
		{"stale version", http.MethodPut, "/products/" + p.ID, ProductRequest{
			Name: "Widget", Price: 1, Quantity: 2, Status: catalog.StatusActive, Version: p.Version + 5,
		}, http.StatusConflict, "CONCURRENCY"},
		{"too much stock", http.MethodPost, "/products/" + p.ID + "/ship", ShipRequest{Quantity: 3}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := doRequest(t, tt.method, baseURL+tt.path, tt.body)
			if status != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, status, string(data))
			}
			result := decodeProduct(t, data)
			if result.Success {
				t.Error("Expected success=false")
			}
			if len(result.Errors) == 0 {
				t.Error("Expected at least one error")
			}
			if result.Code != tt.code {
				t.Errorf("Expected code %q, got %q", tt.code, result.Code)
			}
		})
	}
}

func TestServer_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/products", bytes.NewReader([]byte("{not json")))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

// TestServer_ValidateOnly verifies the validate endpoint reports errors without storing anything
func TestServer_ValidateOnly(t *testing.T) {
	ts := newTestServer(t)
	baseURL := ts.URL + "/api/v1"

	for _, tc := range []struct {
		req   ProductRequest
		valid bool
	}{
		{ProductRequest{Name: "Widget", Price: 3}, true},
		{ProductRequest{Name: "Widget", Price: 0}, false},
	} {
		status, data := doRequest(t, http.MethodPost, baseURL+"/products/validate", tc.req)
		if status != http.StatusOK {
			t.Fatalf("Validate failed with status %d: %s", status, string(data))
		}
		var resp ValidationResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if resp.Valid != tc.valid {
			t.Errorf("%+v: expected valid=%v, got %+v", tc.req, tc.valid, resp)
		}
	}

	status, data := doRequest(t, http.MethodGet, baseURL+"/products", nil)
	if status != http.StatusOK {
		t.Fatalf("List failed with status %d", status)
	}
	var list struct {
		Value []catalog.Product `json:"value"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list.Value) != 0 {
		t.Errorf("Expected no stored products, got %d", len(list.Value))
	}
}

func TestStatusForCode(t *testing.T) {
	tests := map[string]int{
		"":              http.StatusBadRequest,
		"NOT_FOUND":     http.StatusNotFound,
		"CONCURRENCY":   http.StatusConflict,
		"CONFLICT":      http.StatusConflict,
		"BUSINESS_RULE": http.StatusUnprocessableEntity,
	}
	for code, want := range tests {
		t.Run(fmt.Sprintf("code=%q", code), func(t *testing.T) {
			if got := statusForCode(command.FaultCode(code)); got != want {
				t.Errorf("statusForCode(%q) = %d, want %d", code, got, want)
			}
		})
	}
}
