package hstream

import (
	"bytes"
	"context"
	"fmt"

	"hsource/lib/htmlutil"
	"hsource/lib/scrapeerr"
	"hsource/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type EpisodeRef struct {
	Id     string
	Title  string
	Number float64
	Url    string
}

type Info struct {
	Id          string
	Title       string
	Description string
	Poster      string
	Views       int
	Tags        []string
	Episodes    []EpisodeRef
}

func (c *Client) fetchVideoDoc(ctx context.Context, id string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get("/hentai/" + id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrUpstreamRequest, err)
	}
	if res.StatusCode() == 404 {
		return nil, fmt.Errorf("%w: no video named %q", scrapeerr.ErrNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf(
			"%w: video page returned %d", scrapeerr.ErrUpstreamRequest, res.StatusCode(),
		)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrParse, err)
	}
	return doc, nil
}

func (c *Client) GetInfo(ctx context.Context, id string) (*Info, error) {
	ctx, span := tracer.Start(ctx, "client:GetInfo")
	defer span.End()

	if id == "" {
		return nil, fmt.Errorf("%w: empty video id", scrapeerr.ErrInvalidArgument)
	}

	doc, err := c.fetchVideoDoc(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch video page")
		return nil, err
	}

	title := htmlutil.CleanText(doc.Find("h1.title").Text())
	if title == "" {
		span.SetStatus(codes.Error, "video page is missing its title node")
		return nil, fmt.Errorf("%w: video page is missing its title", scrapeerr.ErrParse)
	}

	info := &Info{
		Id:          id,
		Title:       title,
		Description: htmlutil.CleanText(doc.Find("div.description p").Text()),
		Poster:      htmlutil.ResolveHref(c.BaseUrl, doc.Find("img.poster").AttrOr("src", "")),
	}
	if views, ok := textutil.ExtractNumber(doc.Find("span.views").Text()); ok {
		info.Views = int(views)
	}
	doc.Find("ul.tags li a").Each(func(_ int, tag *goquery.Selection) {
		info.Tags = append(info.Tags, htmlutil.CleanText(tag.Text()))
	})

	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("div.episodes a")) {
		ref := EpisodeRef{
			Id:    idFromHref(anchor.Href),
			Title: anchor.Name,
			Url:   htmlutil.ResolveHref(c.BaseUrl, anchor.Href),
		}
		if number, ok := textutil.ExtractNumber(anchor.Name); ok {
			ref.Number = number
		}
		info.Episodes = append(info.Episodes, ref)
	}

	return info, nil
}
