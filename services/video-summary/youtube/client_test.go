package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"summary-stack/shared/config"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := youtube.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return NewClientWithService(service)
}

func TestVideoMetadata(t *testing.T) {
	var gotID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{
				"id": "abc123",
				"snippet": {
					"title": "Bass Fishing Basics",
					"channelTitle": "Lake Life",
					"description": "Everything about bass.",
					"publishedAt": "2024-01-02T03:04:05Z"
				},
				"contentDetails": {"duration": "PT1M30S"},
				"statistics": {"viewCount": "42"}
			}]
		}`))
	})

	meta, err := client.VideoMetadata(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("VideoMetadata() error = %v", err)
	}

	if gotID != "abc123" {
		t.Errorf("requested id = %s, want abc123", gotID)
	}
	if meta.Title != "Bass Fishing Basics" || meta.Channel != "Lake Life" {
		t.Errorf("meta = %+v, want title and channel from snippet", meta)
	}
	if meta.Description != "Everything about bass." {
		t.Errorf("Description = %s", meta.Description)
	}
	if meta.DurationSeconds != 90 || meta.Duration != "1:30" {
		t.Errorf("duration = %d (%s), want 90 (1:30)", meta.DurationSeconds, meta.Duration)
	}
	if meta.ViewCount != 42 {
		t.Errorf("ViewCount = %d, want 42", meta.ViewCount)
	}
	if want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC); !meta.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", meta.PublishedAt, want)
	}
}

func TestVideoMetadataNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	})

	_, err := client.VideoMetadata(context.Background(), "missing")
	if !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("VideoMetadata() error = %v, want ErrVideoNotFound", err)
	}
}

func TestVideoMetadataAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "quota exceeded"}}`, http.StatusForbidden)
	})

	_, err := client.VideoMetadata(context.Background(), "abc123")
	if err == nil || errors.Is(err, ErrVideoNotFound) {
		t.Errorf("VideoMetadata() error = %v, want an API error", err)
	}
}

func TestNewClientCredentials(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("NoCredentials", func(t *testing.T) {
		_, err := NewClient(context.Background(), &config.YouTubeConfig{})
		if !errors.Is(err, ErrNoCredentials) {
			t.Errorf("NewClient() error = %v, want ErrNoCredentials", err)
		}
	})

	t.Run("OAuthWithoutTokenFile", func(t *testing.T) {
		_, err := NewClient(context.Background(), &config.YouTubeConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			TokenFile:    filepath.Join(tempDir, "missing.json"),
		})
		if !errors.Is(err, ErrNoCredentials) {
			t.Errorf("NewClient() error = %v, want ErrNoCredentials", err)
		}
	})

	t.Run("OAuthWithStoredToken", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "token.json")
		if err := saveToken(tokenFile, &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(time.Hour),
		}); err != nil {
			t.Fatalf("Failed to save token: %v", err)
		}

		client, err := NewClient(context.Background(), &config.YouTubeConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			TokenFile:    tokenFile,
		})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client == nil {
			t.Fatal("NewClient() returned nil client")
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		client, err := NewClient(context.Background(), &config.YouTubeConfig{APIKey: "key"})
		if err != nil || client == nil {
			t.Errorf("NewClient() = %v, %v, want a client", client, err)
		}
	})
}

func TestAuthorizeRequiresClientCredentials(t *testing.T) {
	if err := Authorize(context.Background(), &config.YouTubeConfig{}); err == nil {
		t.Error("Authorize() should fail without client ID and secret")
	}
}

func TestGetTokenLoadsStoredToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	oauthConfig := &oauth2.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}

	expiredToken := &oauth2.Token{
		AccessToken:  "expired-access-token",
		RefreshToken: "valid-refresh-token",
		Expiry:       time.Now().Add(-time.Hour),
	}
	if err := saveToken(tokenFile, expiredToken); err != nil {
		t.Fatalf("Failed to save token: %v", err)
	}

	token, err := getToken(context.Background(), oauthConfig, tokenFile)
	if err != nil {
		t.Fatalf("Failed to get token: %v", err)
	}
	if token.RefreshToken != expiredToken.RefreshToken {
		t.Errorf("Refresh token mismatch: got %s, want %s", token.RefreshToken, expiredToken.RefreshToken)
	}
}

func TestTokenFromFile(t *testing.T) {
	tempDir := t.TempDir()
	tokenFile := filepath.Join(tempDir, "test_token.json")

	t.Run("ValidTokenFile", func(t *testing.T) {
		testToken := &oauth2.Token{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		}
		data, _ := json.Marshal(testToken)
		if err := os.WriteFile(tokenFile, data, 0600); err != nil {
			t.Fatalf("Failed to write token file: %v", err)
		}

		token, err := tokenFromFile(tokenFile)
		if err != nil {
			t.Fatalf("Failed to read token from file: %v", err)
		}
		if token.AccessToken != testToken.AccessToken {
			t.Errorf("Access token mismatch: got %s, want %s", token.AccessToken, testToken.AccessToken)
		}
	})

	t.Run("NonExistentFile", func(t *testing.T) {
		if _, err := tokenFromFile(filepath.Join(tempDir, "nonexistent.json")); err == nil {
			t.Error("Expected error for non-existent file")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		if err := os.WriteFile(tokenFile, []byte("invalid json"), 0600); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := tokenFromFile(tokenFile); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})
}

func TestSaveToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "nested", "dir", "token.json")

	if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "first-token"}); err != nil {
		t.Fatalf("Failed to save first token: %v", err)
	}
	if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "second-token"}); err != nil {
		t.Fatalf("Failed to save second token: %v", err)
	}

	info, err := os.Stat(tokenFile)
	if err != nil {
		t.Fatalf("Failed to stat token file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Token file has incorrect permissions: %v, want 0600", info.Mode().Perm())
	}

	saved, _ := tokenFromFile(tokenFile)
	if saved.AccessToken != "second-token" {
		t.Errorf("Token was not overwritten: got %s, want second-token", saved.AccessToken)
	}
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		expected int
	}{
		{"Empty", "", 0},
		{"Seconds only", "PT45S", 45},
		{"Minutes only", "PT2M", 120},
		{"Hours only", "PT1H", 3600},
		{"Minutes and seconds", "PT1M30S", 90},
		{"Full format", "PT2H15M30S", 8130},
		{"With days", "P1DT1S", 86401},
		{"Invalid format", "invalid", 0},
		{"No time components", "PT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := parseDurationSeconds(tt.duration); result != tt.expected {
				t.Errorf("parseDurationSeconds(%s) = %d, want %d", tt.duration, result, tt.expected)
			}
		})
	}
}
