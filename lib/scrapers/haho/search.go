package haho

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"hsource/lib/htmlutil"
	"hsource/lib/pager"
	"hsource/lib/scrapeerr"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type SearchResult struct {
	Slug   string
	Title  string
	Url    string
	Poster string
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
			"q":     query,
			"s":     "vdy-d",
			"start": strconv.Itoa(pager.Offset(page, PerPage)),
		}).
		Get("/anime")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing page")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: %s", scrapeerr.ErrUpstreamRequest, err,
		)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "listing page returned an error status")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: listing page returned %d", scrapeerr.ErrUpstreamRequest, res.StatusCode(),
		)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse listing html")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: %s", scrapeerr.ErrParse, err,
		)
	}

	var items []SearchResult
	doc.Find("ul.anime-loop li").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a")
		href := link.AttrOr("href", "")
		slug := slugFromHref(href)
		if slug == "" {
			return
		}
		items = append(items, SearchResult{
			Slug:   slug,
			Title:  htmlutil.CleanText(card.Find("div.name").Text()),
			Url:    htmlutil.ResolveHref(c.BaseUrl, href),
			Poster: htmlutil.ResolveHref(c.BaseUrl, card.Find("img").AttrOr("src", "")),
		})
	})

	lastHref := doc.Find("ul.pagination li.last a").AttrOr("href", "")
	return pager.Build(items, lastHref, page, PerPage), nil
}
