package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func TestNewBuildsDeterministicCookieHeader(t *testing.T) {
	t.Parallel()

	ctxA, err := New(map[string]string{"b": "2", "a": "1"})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	ctxB, err := New(map[string]string{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if ctxA.CookieHeader() != "a=1; b=2" {
		t.Fatalf("cookie header = %q", ctxA.CookieHeader())
	}
	if ctxA.CookieHeader() != ctxB.CookieHeader() {
		t.Fatalf("headers differ: %q vs %q", ctxA.CookieHeader(), ctxB.CookieHeader())
	}
}

func TestNewRejectsEmptyCookies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty cookie map")
	}
}

func TestHeadersCarryCookieAndBrowserSet(t *testing.T) {
	t.Parallel()

	sess, err := New(map[string]string{"ASP.NET_SessionId": "xyz"})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	headers := sess.Headers()
	if headers["Cookie"] != "ASP.NET_SessionId=xyz" {
		t.Fatalf("Cookie header = %q", headers["Cookie"])
	}
	if !strings.Contains(headers["User-Agent"], "Chrome") {
		t.Fatalf("User-Agent = %q", headers["User-Agent"])
	}
	if headers["Upgrade-Insecure-Requests"] != "1" {
		t.Fatal("missing Upgrade-Insecure-Requests header")
	}
}

func TestRepairFillsEmptyScreenType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty value filled", "Skin=blue&ScreenType=", "Skin=blue&ScreenType=1280"},
		{"already fixed untouched", "ScreenType=1280", "ScreenType=1280"},
		{"concrete value untouched", "ScreenType=1920", "ScreenType=1920"},
		{"no segment untouched", "Skin=blue", "Skin=blue"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cookies := map[string]string{"ZYLTheme": tc.in}
			Repair(cookies)
			if cookies["ZYLTheme"] != tc.want {
				t.Fatalf("Repair(%q) = %q, want %q", tc.in, cookies["ZYLTheme"], tc.want)
			}
		})
	}
}

func TestStoreMergePreservesExistingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "studypacer.json")
	store := NewStore(path)

	if err := store.SaveCredentials("student", "hunter2"); err != nil {
		t.Fatalf("SaveCredentials error = %v", err)
	}
	if err := store.SaveCookies(map[string]string{"ASP.NET_SessionId": "abc"}); err != nil {
		t.Fatalf("SaveCookies error = %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read back config: %v", err)
	}
	if got := v.GetString("username"); got != "student" {
		t.Fatalf("username = %q", got)
	}
	cookies := ParseCookies(v.GetStringSlice("cookies"))
	if got := cookies["ASP.NET_SessionId"]; got != "abc" {
		t.Fatalf("cookie = %q", got)
	}
}

func TestParseCookiesKeepsEmbeddedEquals(t *testing.T) {
	t.Parallel()

	cookies := ParseCookies([]string{"ZYLTheme=Skin=blue&ScreenType=1280", "bad", "a=1"})
	if cookies["ZYLTheme"] != "Skin=blue&ScreenType=1280" {
		t.Fatalf("ZYLTheme = %q", cookies["ZYLTheme"])
	}
	if len(cookies) != 2 {
		t.Fatalf("cookies = %v", cookies)
	}
}

func TestLoginTriesCandidatesUntilVerified(t *testing.T) {
	t.Parallel()

	var attempts []string
	mux := http.NewServeMux()
	mux.HandleFunc("/Login.aspx", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "seed"})
		fmt.Fprint(w, "<html>login</html>")
	})
	mux.HandleFunc("/HidLogin.aspx", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		attempts = append(attempts, r.PostFormValue("screenType"))
		if r.PostFormValue("screenType") == "1280" {
			http.SetCookie(w, &http.Cookie{Name: "ZYLUser", Value: "student"})
		}
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/Homes/MainPage.aspx", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("ZYLUser"); err == nil {
			fmt.Fprint(w, "<a href='/Study/LibraryStudyList.aspx'>我的课程</a>")
			return
		}
		fmt.Fprint(w, "<html>please login</html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cookies, err := Login(context.Background(), LoginConfig{
		BaseURL:  srv.URL,
		Username: "student",
		Password: "hunter2",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Login error = %v", err)
	}
	if cookies["ZYLUser"] != "student" {
		t.Fatalf("cookies = %v", cookies)
	}
	if len(attempts) != 2 || attempts[0] != "" || attempts[1] != "1280" {
		t.Fatalf("attempts = %v", attempts)
	}
}

func TestLoginFailsWhenNoCandidateVerifies(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/Login.aspx", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "login")
	})
	mux.HandleFunc("/HidLogin.aspx", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/Homes/MainPage.aspx", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "please login")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := Login(ctx, LoginConfig{
		BaseURL:  srv.URL,
		Username: "student",
		Password: "wrong",
	}, zap.NewNop()); err == nil {
		t.Fatal("expected login failure")
	}
}
