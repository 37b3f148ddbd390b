// Package platform builds the shared HTTP client and owns the wire-level
// constants of the learning platform's endpoints.
package platform

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/qweylin/studypacer/internal/session"
)

// Endpoint paths. Query and form parameter names used against these paths
// are part of the wire contract and must match the platform exactly.
const (
	CatalogPath  = "/Study/LibraryStudyList.aspx"
	DetailPath   = "/Study/LibraryStudy.aspx"
	UpdatePath   = "/Study/updateTime.ashx"
	MainPagePath = "/Homes/MainPage.aspx"
)

// Config controls the shared client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxConnections int
}

// NewClient builds the resty client every fetch and submit operation shares.
// The transport caps simultaneous connections to the platform host so that
// thirty pacing workers cannot grow the socket count without bound.
func NewClient(cfg Config, sess *session.Context) *resty.Client {
	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 40
	}
	transport := &http.Transport{
		MaxConnsPerHost:     maxConns,
		MaxIdleConns:        maxConns,
		MaxIdleConnsPerHost: maxConns,
		IdleConnTimeout:     90 * time.Second,
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTransport(transport).
		SetHeaders(sess.Headers())
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return client
}
