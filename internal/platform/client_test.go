package platform

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qweylin/studypacer/internal/session"
)

func TestNewClientSendsSessionHeaders(t *testing.T) {
	t.Parallel()

	var gotCookie, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sess, err := session.New(map[string]string{"ASP.NET_SessionId": "abc"})
	if err != nil {
		t.Fatalf("session.New error = %v", err)
	}
	client := NewClient(Config{
		BaseURL:        srv.URL,
		Timeout:        5 * time.Second,
		MaxConnections: 4,
	}, sess)

	if _, err := client.R().Get(CatalogPath); err != nil {
		t.Fatalf("request error = %v", err)
	}
	if gotCookie != "ASP.NET_SessionId=abc" {
		t.Fatalf("Cookie = %q", gotCookie)
	}
	if gotUA != session.UserAgent {
		t.Fatalf("User-Agent = %q", gotUA)
	}
}

func TestNewClientDefaultsConnectionCap(t *testing.T) {
	t.Parallel()

	sess, err := session.New(map[string]string{"a": "1"})
	if err != nil {
		t.Fatalf("session.New error = %v", err)
	}
	client := NewClient(Config{BaseURL: "http://example.test"}, sess)
	transport, ok := client.GetClient().Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport type = %T", client.GetClient().Transport)
	}
	if transport.MaxConnsPerHost != 40 {
		t.Fatalf("MaxConnsPerHost = %d, want 40", transport.MaxConnsPerHost)
	}
}
