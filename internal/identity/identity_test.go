package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func runMiddleware(t *testing.T, r *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := Middleware(true)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = SessionKeyFromContext(r.Context())
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return got, w
}

func TestMiddlewareMintsKey(t *testing.T) {
	t.Parallel()

	key, w := runMiddleware(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if !ValidSessionKey(key) {
		t.Fatalf("minted key %q is not valid", key)
	}
	if w.Header().Get(SessionHeaderName) != key {
		t.Fatalf("response header = %q, want %q", w.Header().Get(SessionHeaderName), key)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName || cookies[0].Value != key {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
}

func TestMiddlewareKeySources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		query  string
		cookie string
		want   string
	}{
		{name: "header", header: "tab-1", cookie: "cookie-1", want: "tab-1"},
		{name: "query", query: "q-1", cookie: "cookie-1", want: "q-1"},
		{name: "cookie", cookie: "cookie-1", want: "cookie-1"},
		{name: "invalid header falls back to cookie", header: "bad key!", cookie: "cookie-1", want: "cookie-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			url := "/"
			if tt.query != "" {
				url += "?" + SessionQueryParam + "=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				r.Header.Set(SessionHeaderName, tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if got, _ := runMiddleware(t, r); got != tt.want {
				t.Fatalf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidSessionKey(t *testing.T) {
	t.Parallel()

	valid := []string{"abc", NewSessionKey(), "a.b:c_d-e"}
	invalid := []string{"", "has space", "slash/", string(make([]byte, 129))}
	for _, k := range valid {
		if !ValidSessionKey(k) {
			t.Errorf("ValidSessionKey(%q) = false", k)
		}
	}
	for _, k := range invalid {
		if ValidSessionKey(k) {
			t.Errorf("ValidSessionKey(%q) = true", k)
		}
	}
}
