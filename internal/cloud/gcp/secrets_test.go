package gcp

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockSecretFetcher implements SecretFetcher for testing
type mockSecretFetcher struct {
	fetchFunc func(ctx context.Context, secretPath string) (string, error)
	calls     int
}

func (m *mockSecretFetcher) FetchSecret(ctx context.Context, secretPath string) (string, error) {
	m.calls++
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, secretPath)
	}
	return "", errors.New("mock fetch not implemented")
}

func (m *mockSecretFetcher) Close() error { return nil }

func TestNormalizeSecretPath(t *testing.T) {
	tests := []struct {
		name       string
		secretPath string
		want       string
	}{
		{
			name:       "full path with version",
			secretPath: "projects/my-project/secrets/yt-key/versions/3",
			want:       "projects/my-project/secrets/yt-key/versions/3",
		},
		{
			name:       "full path without version",
			secretPath: "projects/my-project/secrets/yt-key",
			want:       "projects/my-project/secrets/yt-key/versions/latest",
		},
		{
			name:       "secret name only",
			secretPath: "yt-key",
			want:       "projects/local-project/secrets/yt-key/versions/latest",
		},
		{
			name:       "secret name with path prefix",
			secretPath: "path/to/yt-key",
			want:       "projects/local-project/secrets/yt-key/versions/latest",
		},
	}

	client := &SecretManagerClient{projectID: "local-project"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.normalizeSecretPath(tt.secretPath)
			if got != tt.want {
				t.Errorf("normalizeSecretPath(%q) = %q, want %q", tt.secretPath, got, tt.want)
			}
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		secretPath string
		fetch      func(ctx context.Context, secretPath string) (string, error)
		nilFetcher bool
		want       string
		wantErr    string
		wantCalls  int
	}{
		{
			name:       "inline key wins",
			apiKey:     "inline-key",
			secretPath: "yt-key",
			want:       "inline-key",
			wantCalls:  0,
		},
		{
			name:       "secret is trimmed",
			secretPath: "yt-key",
			fetch: func(ctx context.Context, secretPath string) (string, error) {
				return "from-secret\n", nil
			},
			want:      "from-secret",
			wantCalls: 1,
		},
		{
			name:    "nothing configured",
			wantErr: "no API key configured",
		},
		{
			name:       "fetch error",
			secretPath: "yt-key",
			fetch: func(ctx context.Context, secretPath string) (string, error) {
				return "", errors.New("permission denied")
			},
			wantErr:   "failed to fetch API key secret: permission denied",
			wantCalls: 1,
		},
		{
			name:       "empty secret",
			secretPath: "yt-key",
			fetch: func(ctx context.Context, secretPath string) (string, error) {
				return "  ", nil
			},
			wantErr:   "is empty",
			wantCalls: 1,
		},
		{
			name:       "no fetcher",
			secretPath: "yt-key",
			nilFetcher: true,
			wantErr:    "no secret fetcher available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSecretFetcher{fetchFunc: tt.fetch}
			var fetcher SecretFetcher = mock
			if tt.nilFetcher {
				fetcher = nil
			}

			got, err := ResolveAPIKey(context.Background(), fetcher, tt.apiKey, tt.secretPath)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ResolveAPIKey() error = %v, want containing %q", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ResolveAPIKey() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveAPIKey() = %q, want %q", got, tt.want)
			}
			if mock.calls != tt.wantCalls {
				t.Errorf("FetchSecret called %d times, want %d", mock.calls, tt.wantCalls)
			}
		})
	}
}
