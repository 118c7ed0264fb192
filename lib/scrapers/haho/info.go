package haho

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"hsource/lib/chrono"
	"hsource/lib/htmlutil"
	"hsource/lib/scrapeerr"
	"hsource/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type Episode struct {
	Slug     string
	Number   float64
	Title    string
	Duration string
	Aired    time.Time
	Url      string
}

type Info struct {
	Slug     string
	Title    string
	Synopsis string
	Poster   string
	Tags     []string
	Episodes []Episode
}

func (c *Client) fetchDoc(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrUpstreamRequest, err)
	}
	if res.StatusCode() == 404 {
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrNotFound, path)
	}
	if res.IsError() {
		return nil, fmt.Errorf(
			"%w: %s returned %d", scrapeerr.ErrUpstreamRequest, path, res.StatusCode(),
		)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrParse, err)
	}
	return doc, nil
}

// GetInfo scrapes the series page and then fans out one request per
// episode, the per-episode air dates and durations only exist on the
// episode detail pages. Episodes come back sorted ascending by number
// no matter which fetch finished first, ties keep their discovery
// order.
func (c *Client) GetInfo(ctx context.Context, slug string) (*Info, error) {
	ctx, span := tracer.Start(ctx, "client:GetInfo")
	defer span.End()

	if slug == "" {
		return nil, fmt.Errorf("%w: empty series slug", scrapeerr.ErrInvalidArgument)
	}

	doc, err := c.fetchDoc(ctx, "/anime/"+slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch series page")
		return nil, err
	}

	title := htmlutil.CleanText(doc.Find("h1.title").Text())
	if title == "" {
		span.SetStatus(codes.Error, "series page is missing its title node")
		return nil, fmt.Errorf("%w: series page is missing its title", scrapeerr.ErrParse)
	}

	info := &Info{
		Slug:     slug,
		Title:    title,
		Synopsis: htmlutil.CleanText(doc.Find("div.synopsis").Text()),
		Poster:   htmlutil.ResolveHref(c.BaseUrl, doc.Find("img.cover").AttrOr("src", "")),
	}
	doc.Find("li.genre a").Each(func(_ int, tag *goquery.Selection) {
		info.Tags = append(info.Tags, htmlutil.CleanText(tag.Text()))
	})

	anchors := htmlutil.GetAnchors(ctx, doc.Find("ul.episode-loop li a"))

	episodes := make([]Episode, len(anchors))
	var errList []error
	errLock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for i, anchor := range anchors {
		i, anchor := i, anchor
		wg.Add(1)
		go func() {
			defer wg.Done()

			episode, err := c.fetchEpisodeDetail(ctx, anchor)
			if err != nil {
				errLock.Lock()
				defer errLock.Unlock()
				errList = append(errList, err)
				return
			}
			// indexed writes keep discovery order before the sort
			episodes[i] = episode
		}()
	}

	wg.Wait()

	if len(errList) > 0 {
		err := errors.Join(errList...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to gather episode details")
		return nil, err
	}

	slices.SortStableFunc(episodes, func(a, b Episode) int {
		if a.Number < b.Number {
			return -1
		}
		if a.Number > b.Number {
			return 1
		}
		return 0
	})

	info.Episodes = episodes
	return info, nil
}

func (c *Client) fetchEpisodeDetail(ctx context.Context, anchor htmlutil.Anchor) (Episode, error) {
	slug := slugFromHref(anchor.Href)
	doc, err := c.fetchDoc(ctx, "/anime/"+slug)
	if err != nil {
		return Episode{}, err
	}

	episode := Episode{
		Slug:  slug,
		Title: htmlutil.CleanText(doc.Find("h2.episode-title").Text()),
		Url:   htmlutil.ResolveHref(c.BaseUrl, anchor.Href),
	}
	if episode.Title == "" {
		episode.Title = anchor.Name
	}
	if number, ok := textutil.ExtractNumber(anchor.Name); ok {
		episode.Number = number
	}
	episode.Duration = htmlutil.CleanText(doc.Find("span.duration").Text())
	if aired, ok := chrono.ParseUploadDate(
		htmlutil.CleanText(doc.Find("span.release-date").Text()),
	); ok {
		episode.Aired = aired
	}

	return episode, nil
}
