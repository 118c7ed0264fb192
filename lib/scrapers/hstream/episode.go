package hstream

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"hsource/lib/htmlutil"
	"hsource/lib/scrapeerr"
	"hsource/lib/securetoken"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Stream struct {
	Resolution string
	Url        string
	Legacy     bool
}

var tokenRegex = regexp.MustCompile(`window\.mresh *= *"([^"]+)"`)

type sourcesRequest struct {
	EpisodeId    string `json:"episode_id"`
	EncryptedKey string `json:"en_key"`
	IV           string `json:"iv"`
}

type sourcesResponse struct {
	Streams []struct {
		Height string `json:"height"`
		Url    string `json:"url"`
		Legacy int    `json:"legacy"`
	} `json:"streams"`
}

// GetEpisode recovers the stream list for one episode. The player page
// carries an obfuscated token whose decoded payload holds both the api
// endpoint to call and the key material that request must echo back.
func (c *Client) GetEpisode(ctx context.Context, id string) ([]Stream, error) {
	ctx, span := tracer.Start(ctx, "client:GetEpisode")
	defer span.End()

	if id == "" {
		return nil, fmt.Errorf("%w: empty episode id", scrapeerr.ErrInvalidArgument)
	}

	doc, err := c.fetchVideoDoc(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch episode page")
		return nil, err
	}

	var token string
	for _, script := range doc.Find("script").Nodes {
		text := htmlutil.GetText(script)
		if !strings.Contains(text, "window.mresh") {
			continue
		}
		groups := tokenRegex.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		token = groups[1]
		break
	}
	if token == "" {
		span.SetStatus(codes.Error, "no player token in episode page")
		return nil, fmt.Errorf("%w: no player token in episode page", scrapeerr.ErrParse)
	}

	payload, err := securetoken.Unscramble(token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unscramble player token")
		return nil, err
	}
	span.AddEvent("token unscrambled", trace.WithAttributes(
		attribute.String("api_uri", payload.ApiUri),
	))

	var parsed sourcesResponse
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("x-requested-with", "XMLHttpRequest").
		SetBody(sourcesRequest{
			EpisodeId:    id,
			EncryptedKey: payload.EncryptedKey,
			IV:           payload.IV,
		}).
		SetResult(&parsed).
		Post(payload.ApiUri)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query sources api")
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrUpstreamRequest, err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "sources api returned an error status")
		return nil, fmt.Errorf(
			"%w: sources api returned %d", scrapeerr.ErrUpstreamRequest, res.StatusCode(),
		)
	}

	streams := make([]Stream, len(parsed.Streams))
	for i, s := range parsed.Streams {
		streams[i] = Stream{
			Resolution: s.Height + "p",
			Url:        s.Url,
			Legacy:     s.Legacy == 1,
		}
	}
	if len(streams) == 0 {
		span.SetStatus(codes.Error, "sources api returned no streams")
		return nil, fmt.Errorf("%w: no streams for %q", scrapeerr.ErrNotFound, id)
	}

	return streams, nil
}
