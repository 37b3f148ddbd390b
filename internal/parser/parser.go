// Package parser extracts structured results from the platform's server
// rendered markup. All regex and selector mechanics are confined here so the
// fetching layers stay free of parsing details.
package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/qweylin/studypacer/internal/learner"
)

// Status labels as rendered by the platform (zh-CN).
const (
	labelInProgress = "学习中"
	labelNotStarted = "未学习"
	labelCompleted  = "已完成"
)

var (
	viewStateRe  = regexp.MustCompile(`id="__VIEWSTATE" value="([^"]+)"`)
	generatorRe  = regexp.MustCompile(`id="__VIEWSTATEGENERATOR" value="([^"]+)"`)
	validationRe = regexp.MustCompile(`id="__EVENTVALIDATION" value="([^"]+)"`)
	pageMarkerRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	startLinkRe  = regexp.MustCompile(`showframe\('.*?',(\d+)\)`)
	numberRe     = regexp.MustCompile(`(\d+)`)
)

// CatalogPage is everything extracted from a single catalog page response.
type CatalogPage struct {
	Token      learner.PageToken
	Items      []learner.CatalogItem
	TotalPages int
}

// Catalog parses catalog list pages.
type Catalog struct{}

// ParsePage extracts the anti-forgery token, item rows, and total page count
// from one catalog page body. Rows that do not parse are skipped
// individually; a page without a recognizable table yields zero items.
func (Catalog) ParsePage(body []byte) (CatalogPage, error) {
	page := CatalogPage{
		Token:      extractPageToken(body),
		TotalPages: extractTotalPages(body),
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return page, &learner.ProtocolShapeError{Field: "catalog document"}
	}

	doc.Find(`table.table[width="850"] tr`).Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		item, ok := parseRow(row)
		if ok {
			page.Items = append(page.Items, item)
		}
	})
	return page, nil
}

func parseRow(row *goquery.Selection) (learner.CatalogItem, bool) {
	name := strings.TrimSpace(row.Find("td.pleft30").First().Text())
	if name == "" {
		return learner.CatalogItem{}, false
	}

	onclick, _ := row.Find("a.btn_4").First().Attr("onclick")
	groups := startLinkRe.FindStringSubmatch(onclick)
	if len(groups) < 2 {
		return learner.CatalogItem{}, false
	}
	id, err := strconv.Atoi(groups[1])
	if err != nil {
		return learner.CatalogItem{}, false
	}

	cells := row.Find("td")
	if cells.Length() < 7 {
		return learner.CatalogItem{}, false
	}

	status := parseStatus(cells.Eq(4))
	if status == learner.StatusUnknown && cells.Eq(4).Find("span").Length() == 0 {
		return learner.CatalogItem{}, false
	}

	return learner.CatalogItem{
		ID:               id,
		Name:             name,
		TotalMinutes:     firstNumber(cells.Eq(2).Text()),
		CompletedMinutes: firstNumber(cells.Eq(3).Text()),
		Status:           status,
	}, true
}

func parseStatus(cell *goquery.Selection) learner.ItemStatus {
	text := strings.TrimSpace(cell.Find("span").First().Text())
	switch {
	case strings.Contains(text, labelInProgress):
		return learner.StatusInProgress
	case strings.Contains(text, labelNotStarted):
		return learner.StatusNotStarted
	case strings.Contains(text, labelCompleted):
		return learner.StatusCompleted
	default:
		return learner.StatusUnknown
	}
}

func firstNumber(s string) int {
	groups := numberRe.FindStringSubmatch(strings.TrimSpace(s))
	if len(groups) < 2 {
		return 0
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0
	}
	return n
}

func extractPageToken(body []byte) learner.PageToken {
	return learner.PageToken{
		ViewState:  firstGroup(viewStateRe, body),
		Generator:  firstGroup(generatorRe, body),
		Validation: firstGroup(validationRe, body),
	}
}

// extractTotalPages prefers the "current/total" pagination marker, falls back
// to counting options in the page selector, and defaults to a single page.
func extractTotalPages(body []byte) int {
	for _, groups := range pageMarkerRe.FindAllSubmatch(body, -1) {
		total, err := strconv.Atoi(string(groups[2]))
		if err == nil && total > 0 {
			return total
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		if options := doc.Find("#PageSplit1_ddlPage option").Length(); options > 0 {
			return options
		}
	}
	return 1
}

func firstGroup(re *regexp.Regexp, body []byte) string {
	groups := re.FindSubmatch(body)
	if len(groups) < 2 {
		return ""
	}
	return string(groups[1])
}
