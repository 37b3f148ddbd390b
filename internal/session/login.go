package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// screenTypeCandidates are tried in order when logging in. The platform's
// login form records the browser screen width and rejects some values; which
// ones work varies by deployment, so each candidate is attempted until the
// catalog becomes reachable.
var screenTypeCandidates = []string{"", "1280", "default", "1", "1024", "1366", "1920"}

const mainPageMarker = "LibraryStudyList"

// LoginConfig controls the credential exchange.
type LoginConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Login exchanges credentials for a fresh cookie set by driving the
// platform's form login. It returns the cookies of the first attempt that
// can reach the authenticated main page.
func Login(ctx context.Context, cfg LoginConfig, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetCookieJar(jar).
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", acceptHeader).
		SetHeader("Accept-Language", acceptLanguage).
		SetHeader("Origin", cfg.BaseURL).
		SetHeader("Referer", cfg.BaseURL+"/Login.aspx")

	// Seed cookies from the login page before posting the form.
	res, err := client.R().SetContext(ctx).Get("/Login.aspx")
	if err != nil {
		return nil, fmt.Errorf("fetch login page: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch login page: unexpected status %d", res.StatusCode())
	}

	for _, screenType := range screenTypeCandidates {
		form := map[string]string{
			"name":      cfg.Username,
			"pw":        cfg.Password,
			"btnSubmit": "  ",
		}
		if screenType != "" {
			form["screenType"] = screenType
		}

		logger.Debug("attempting login", zap.String("screen_type", screenType))
		res, err := client.R().SetContext(ctx).SetFormData(form).Post("/HidLogin.aspx")
		if err != nil {
			logger.Warn("login post failed", zap.String("screen_type", screenType), zap.Error(err))
			continue
		}
		if res.StatusCode() != http.StatusOK {
			logger.Warn("login post rejected",
				zap.String("screen_type", screenType),
				zap.Int("status", res.StatusCode()))
			continue
		}

		verified, err := verifyMainPage(ctx, client)
		if err != nil {
			logger.Warn("main page verification failed",
				zap.String("screen_type", screenType), zap.Error(err))
			continue
		}
		if verified {
			logger.Info("login succeeded", zap.String("screen_type", screenType))
			return jarCookies(jar, base), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	return nil, fmt.Errorf("login failed: no screen type candidate was accepted")
}

func verifyMainPage(ctx context.Context, client *resty.Client) (bool, error) {
	res, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"menu": "3", "subMenu": "4"}).
		Get("/Homes/MainPage.aspx")
	if err != nil {
		return false, err
	}
	if res.StatusCode() != http.StatusOK {
		return false, nil
	}
	return strings.Contains(res.String(), mainPageMarker), nil
}

func jarCookies(jar http.CookieJar, base *url.URL) map[string]string {
	cookies := make(map[string]string)
	for _, c := range jar.Cookies(base) {
		cookies[c.Name] = c.Value
	}
	return cookies
}
