package hanime

import (
	"context"
	"fmt"

	"hsource/lib/scrapeerr"

	"go.opentelemetry.io/otel/codes"
)

type Stream struct {
	Server     string
	Resolution string
	SizeMbs    float64
	Url        string
}

// GetEpisode returns the watchable stream variants of one episode.
// Premium-only streams come through the manifest with an empty url and
// are skipped.
func (c *Client) GetEpisode(ctx context.Context, slug string) ([]Stream, error) {
	ctx, span := tracer.Start(ctx, "client:GetEpisode")
	defer span.End()

	if slug == "" {
		return nil, fmt.Errorf("%w: empty slug", scrapeerr.ErrInvalidArgument)
	}

	payload, err := c.fetchVideoPage(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch video page")
		return nil, err
	}

	video := payload.State.Data.Video
	if video.HentaiVideo.Id == 0 {
		span.SetStatus(codes.Error, "nuxt payload holds no video")
		return nil, fmt.Errorf("%w: no video named %q", scrapeerr.ErrNotFound, slug)
	}

	var streams []Stream
	for _, server := range video.VideosManifest.Servers {
		for _, s := range server.Streams {
			if s.Url == "" || !s.IsGuestAllowed {
				continue
			}
			streams = append(streams, Stream{
				Server:     server.Name,
				Resolution: s.Height + "p",
				SizeMbs:    s.SizeMbs,
				Url:        s.Url,
			})
		}
	}
	if len(streams) == 0 {
		span.SetStatus(codes.Error, "no guest streams in manifest")
		return nil, fmt.Errorf("%w: no watchable streams for %q", scrapeerr.ErrNotFound, slug)
	}

	return streams, nil
}
