// Package study resolves per-item session parameters and submits progress
// deltas against the platform.
package study

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/learner"
	"github.com/qweylin/studypacer/internal/platform"
)

// FieldExtractor pulls the six submission tokens out of a detail page body.
type FieldExtractor interface {
	ExtractItemParameters(body []byte) (learner.ItemParameters, error)
}

// Resolver fetches an item's detail page and extracts its parameters.
type Resolver struct {
	client    *resty.Client
	extractor FieldExtractor
	category  string
	logger    *zap.Logger
}

// NewResolver constructs a Resolver for the given category.
func NewResolver(client *resty.Client, extractor FieldExtractor, category string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:    client,
		extractor: extractor,
		category:  category,
		logger:    logger,
	}
}

// Resolve fetches the detail page for itemID and extracts its parameters.
// Token absence is a shape problem in the remote response, not a transient
// fault, so no retry happens here; the caller skips the item.
func (r *Resolver) Resolve(ctx context.Context, itemID int) (learner.ItemParameters, error) {
	res, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"Id":     strconv.Itoa(itemID),
			"PlanId": r.category,
		}).
		SetHeader("Referer", r.client.BaseURL+platform.CatalogPath).
		Get(platform.DetailPath)
	if err != nil {
		return learner.ItemParameters{}, &learner.TransportError{Op: "fetch item detail", Err: err}
	}
	if res.StatusCode() != http.StatusOK {
		r.logger.Warn("item detail request rejected",
			zap.Int("item_id", itemID), zap.Int("status", res.StatusCode()))
		return learner.ItemParameters{}, &learner.TransportError{Op: "fetch item detail", StatusCode: res.StatusCode()}
	}

	params, err := r.extractor.ExtractItemParameters(res.Body())
	if err != nil {
		return learner.ItemParameters{}, err
	}
	r.logger.Debug("item parameters resolved", zap.Int("item_id", itemID))
	return params, nil
}
