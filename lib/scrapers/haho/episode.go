package haho

import (
	"context"
	"fmt"

	"hsource/lib/htmlutil"
	"hsource/lib/scrapeerr"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type Stream struct {
	Resolution string
	Url        string
}

// GetEpisode returns the direct stream variants of one episode, slug
// is the combined "series/episode" form the episode anchors carry.
func (c *Client) GetEpisode(ctx context.Context, slug string) ([]Stream, error) {
	ctx, span := tracer.Start(ctx, "client:GetEpisode")
	defer span.End()

	if slug == "" {
		return nil, fmt.Errorf("%w: empty episode slug", scrapeerr.ErrInvalidArgument)
	}

	doc, err := c.fetchDoc(ctx, "/anime/"+slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch episode page")
		return nil, err
	}

	var streams []Stream
	doc.Find("video#player source").Each(func(_ int, source *goquery.Selection) {
		src := source.AttrOr("src", "")
		if src == "" {
			return
		}
		streams = append(streams, Stream{
			Resolution: source.AttrOr("title", ""),
			Url:        htmlutil.ResolveHref(c.BaseUrl, src),
		})
	})
	if len(streams) == 0 {
		span.SetStatus(codes.Error, "no player sources in episode page")
		return nil, fmt.Errorf("%w: no streams for %q", scrapeerr.ErrNotFound, slug)
	}

	return streams, nil
}
