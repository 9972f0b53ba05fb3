package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		category string
		expected string
	}{
		{"simple category", "H-1B", "H-1B_20240102150405.pdf"},
		{"spaces replaced", "B-2 Visa", "B-2-Visa_20240102150405.pdf"},
		{"unicode replaced", "签证 visa", "---visa_20240102150405.pdf"},
		{"empty falls back", "", "checklist_20240102150405.pdf"},
		{"dots and underscores kept", "EB_2.NIW", "EB_2.NIW_20240102150405.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ObjectName(tt.category, at))
		})
	}
}

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "checklists", "service-key", 0)
	err := c.Upload(context.Background(), "a_1.pdf", "application/pdf", []byte("%PDF-data"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/checklists/a_1.pdf", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "application/pdf", gotContentType)
	assert.Equal(t, []byte("%PDF-data"), gotBody)
}

func TestUploadNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "checklists", "service-key", 0)
	err := c.Upload(context.Background(), "a.pdf", "application/pdf", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestSignURLResolvesRelativePath(t *testing.T) {
	var gotPath string
	var gotReq map[string]int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]string{
			"signedURL": "/object/sign/checklists/a.pdf?token=abc123",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "checklists", "service-key", 0)
	url, err := c.SignURL(context.Background(), "a.pdf", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/sign/checklists/a.pdf", gotPath)
	assert.Equal(t, 3600, gotReq["expiresIn"])
	assert.Equal(t, srv.URL+"/storage/v1/object/sign/checklists/a.pdf?token=abc123", url)
}

func TestSignURLPassesThroughAbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"signedURL": "https://cdn.example.com/a.pdf?token=abc",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "checklists", "service-key", 0)
	url, err := c.SignURL(context.Background(), "a.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.pdf?token=abc", url)
}

func TestSignURLEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "checklists", "service-key", 0)
	_, err := c.SignURL(context.Background(), "a.pdf", time.Hour)
	assert.Error(t, err)
}
