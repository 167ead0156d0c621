package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantCreds  string
		wantStatus int
	}{
		{"explicit origin", []string{"https://app.example"}, "https://app.example", http.MethodPost, "https://app.example", "true", http.StatusTeapot},
		{"wildcard has no credentials", []string{"*"}, "https://other.example", http.MethodGet, "https://other.example", "", http.StatusTeapot},
		{"unknown origin", []string{"https://app.example"}, "https://evil.example", http.MethodGet, "", "", http.StatusTeapot},
		{"preflight", []string{"https://app.example"}, "https://app.example", http.MethodOptions, "https://app.example", "true", http.StatusOK},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, "/api/quote/turn", nil)
		r.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		CORS(tt.allowed)(next).ServeHTTP(w, r)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
			t.Errorf("%s: allow-origin = %q, want %q", tt.name, got, tt.wantOrigin)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
			t.Errorf("%s: allow-credentials = %q, want %q", tt.name, got, tt.wantCreds)
		}
		if w.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.wantStatus)
		}
	}
}
