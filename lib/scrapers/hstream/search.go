package hstream

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"hsource/lib/chrono"
	"hsource/lib/htmlutil"
	"hsource/lib/pager"
	"hsource/lib/scrapeerr"
	"hsource/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type SearchResult struct {
	Id       string
	Title    string
	Url      string
	Cover    string
	Views    int
	Uploaded time.Time
}

func (c *Client) Search(ctx context.Context, query string, page int) (pager.PaginatedResult[SearchResult], error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	if query == "" {
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: empty search query", scrapeerr.ErrInvalidArgument,
		)
	}
	if page < 1 {
		page = 1
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":     query,
			"start": strconv.Itoa(pager.Offset(page, PerPage)),
		}).
		Get("/search")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: %s", scrapeerr.ErrUpstreamRequest, err,
		)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search page returned an error status")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: search page returned %d", scrapeerr.ErrUpstreamRequest, res.StatusCode(),
		)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse search html")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: %s", scrapeerr.ErrParse, err,
		)
	}

	var items []SearchResult
	doc.Find("div.video-card").Each(func(_ int, card *goquery.Selection) {
		title := card.Find("a.title")
		href := title.AttrOr("href", "")
		id := idFromHref(href)
		if id == "" {
			// cards without a link are ad slots
			return
		}

		item := SearchResult{
			Id:    id,
			Title: htmlutil.CleanText(title.Text()),
			Url:   htmlutil.ResolveHref(c.BaseUrl, href),
			Cover: htmlutil.ResolveHref(c.BaseUrl, card.Find("img.cover").AttrOr("src", "")),
		}
		if views, ok := textutil.ExtractNumber(card.Find("span.views").Text()); ok {
			item.Views = int(views)
		}
		if uploaded, ok := chrono.ParseUploadDate(
			htmlutil.CleanText(card.Find("span.uploaded").Text()),
		); ok {
			item.Uploaded = uploaded
		}
		items = append(items, item)
	})

	lastHref := doc.Find("ul.pagination li.last a").AttrOr("href", "")
	return pager.Build(items, lastHref, page, PerPage), nil
}
