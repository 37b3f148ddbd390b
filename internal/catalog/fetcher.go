// Package catalog retrieves and paginates the remote item catalog.
package catalog

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/metrics"
	"github.com/qweylin/studypacer/internal/pacing"
	"github.com/qweylin/studypacer/internal/parser"
	"github.com/qweylin/studypacer/internal/platform"
)

// PageParser extracts the structured contents of one catalog page body.
type PageParser interface {
	ParsePage(body []byte) (parser.CatalogPage, error)
}

// Config controls catalog fetching.
type Config struct {
	// Category is the class filter (ddlClass / PlanId) for the run.
	Category string
}

// Fetcher pages through the catalog, deduplicating items by identifier.
type Fetcher struct {
	client  *resty.Client
	parser  PageParser
	limiter *pacing.Limiter
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Fetcher.
func New(client *resty.Client, pageParser PageParser, limiter *pacing.Limiter, cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:  client,
		parser:  pageParser,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// loginFormMarker appears on the platform's login page but never on a
// catalog page; its presence means the session cookies are no longer valid.
var loginFormMarker = []byte(`name="pw"`)

// FetchCatalog returns the ordered, deduplicated set of schedulable items
// across all catalog pages. Pagination failures truncate the result rather
// than failing the run: whatever was accumulated is returned.
func (f *Fetcher) FetchCatalog(ctx context.Context) ([]learner.CatalogItem, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("ddlClass", f.cfg.Category).
		SetHeader("Referer", f.client.BaseURL+platform.MainPagePath).
		Get(platform.CatalogPath)
	if err != nil {
		metrics.ObserveCatalogPage("error")
		f.logger.Error("catalog page request failed", zap.Int("page", 1), zap.Error(err))
		return nil, nil
	}
	if res.StatusCode() != http.StatusOK {
		metrics.ObserveCatalogPage("error")
		f.logger.Error("catalog page request rejected",
			zap.Int("page", 1), zap.Int("status", res.StatusCode()))
		return nil, nil
	}
	if bytes.Contains(res.Body(), loginFormMarker) {
		metrics.ObserveCatalogPage("error")
		return nil, learner.ErrAuthExpired
	}
	metrics.ObserveCatalogPage("ok")

	page, err := f.parser.ParsePage(res.Body())
	if err != nil {
		return nil, err
	}

	var (
		items []learner.CatalogItem
		seen  = make(map[int]struct{})
		token = page.Token
	)
	items = merge(items, seen, page.Items, f.logger)
	f.logger.Info("catalog page parsed",
		zap.Int("page", 1),
		zap.Int("total_pages", page.TotalPages),
		zap.Int("items", len(items)))

	for n := 2; n <= page.TotalPages; n++ {
		if token.Empty() {
			f.logger.Warn("missing page token, truncating pagination", zap.Int("page", n))
			break
		}
		next, ok := f.fetchPage(ctx, n, token)
		if !ok {
			break
		}
		items = merge(items, seen, next.Items, f.logger)
		// Tokens are single-use; carry forward the freshest one.
		token = next.Token
		f.logger.Info("catalog page parsed",
			zap.Int("page", n), zap.Int("items", len(items)))
	}

	return items, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, n int, token learner.PageToken) (parser.CatalogPage, bool) {
	if err := f.limiter.Wait(ctx); err != nil {
		return parser.CatalogPage{}, false
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("Referer", f.client.BaseURL+platform.MainPagePath).
		SetFormData(map[string]string{
			"__VIEWSTATE":          token.ViewState,
			"__VIEWSTATEGENERATOR": token.Generator,
			"__EVENTVALIDATION":    token.Validation,
			"ddlClass":             f.cfg.Category,
			"PageSplit1$ddlPage":   strconv.Itoa(n),
		}).
		Post(platform.CatalogPath)
	if err != nil {
		metrics.ObserveCatalogPage("error")
		f.logger.Error("catalog page request failed", zap.Int("page", n), zap.Error(err))
		return parser.CatalogPage{}, false
	}
	if res.StatusCode() != http.StatusOK {
		metrics.ObserveCatalogPage("error")
		f.logger.Error("catalog page request rejected",
			zap.Int("page", n), zap.Int("status", res.StatusCode()))
		return parser.CatalogPage{}, false
	}
	metrics.ObserveCatalogPage("ok")

	page, err := f.parser.ParsePage(res.Body())
	if err != nil {
		f.logger.Warn("catalog page did not parse", zap.Int("page", n), zap.Error(err))
		return parser.CatalogPage{}, false
	}
	return page, true
}

// merge appends rows not seen before, keeping only schedulable statuses.
// First occurrence wins on duplicate identifiers.
func merge(items []learner.CatalogItem, seen map[int]struct{}, rows []learner.CatalogItem, logger *zap.Logger) []learner.CatalogItem {
	for _, row := range rows {
		if !row.Status.Schedulable() {
			continue
		}
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}
		items = append(items, row)
		logger.Debug("catalog item discovered",
			zap.Int("item_id", row.ID),
			zap.String("name", row.Name),
			zap.String("status", string(row.Status)),
			zap.Int("required_seconds", row.RequiredSeconds()))
	}
	return items
}
