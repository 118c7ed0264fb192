package hanime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hsource/lib/htmlutil"
	"hsource/lib/scrapeerr"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

type EpisodeRef struct {
	Id    int64
	Slug  string
	Title string
	Cover string
}

type Info struct {
	Id          int64
	Slug        string
	Title       string
	Description string
	Poster      string
	Cover       string
	Views       int
	Likes       int
	Released    time.Time
	Tags        []string
	Episodes    []EpisodeRef
}

type nuxtVideo struct {
	Id             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	PosterUrl      string `json:"poster_url"`
	CoverUrl       string `json:"cover_url"`
	Views          int    `json:"views"`
	Likes          int    `json:"likes"`
	ReleasedAtUnix int64  `json:"released_at_unix"`
}

type nuxtStream struct {
	Id             int64   `json:"id"`
	Height         string  `json:"height"`
	SizeMbs        float64 `json:"filesize_mbs"`
	Url            string  `json:"url"`
	IsGuestAllowed bool    `json:"is_guest_allowed"`
}

type nuxtPayload struct {
	State struct {
		Data struct {
			Video struct {
				HentaiVideo nuxtVideo `json:"hentai_video"`
				HentaiTags  []struct {
					Text string `json:"text"`
				} `json:"hentai_tags"`
				HentaiFranchiseHentaiVideos []nuxtVideo `json:"hentai_franchise_hentai_videos"`
				VideosManifest              struct {
					Servers []struct {
						Name    string       `json:"name"`
						Streams []nuxtStream `json:"streams"`
					} `json:"servers"`
				} `json:"videos_manifest"`
			} `json:"video"`
		} `json:"data"`
	} `json:"state"`
}

var nuxtRegex = regexp.MustCompile(`(?s)window\.__NUXT__ *= *(.+);`)

// the video page inlines its entire state as a json island inside a
// script tag, there is no stable markup to select against
func getNuxt(ctx context.Context, doc *goquery.Document) (*nuxtPayload, error) {
	ctx, span := tracer.Start(ctx, "getNuxt")
	defer span.End()

	for _, script := range doc.Find("script").Nodes {
		text := htmlutil.GetText(script)
		if !strings.Contains(text, "window.__NUXT__") {
			continue
		}
		groups := nuxtRegex.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}

		var payload nuxtPayload
		err := json.Unmarshal([]byte(groups[1]), &payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to unmarshal nuxt payload")
			return nil, fmt.Errorf("%w: nuxt payload: %s", scrapeerr.ErrParse, err)
		}
		return &payload, nil
	}

	return nil, fmt.Errorf("%w: no nuxt payload in page", scrapeerr.ErrParse)
}

func (c *Client) fetchVideoPage(ctx context.Context, slug string) (*nuxtPayload, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get("/videos/hentai/" + slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scrapeerr.ErrUpstreamRequest, err)
	}
	if res.StatusCode() == 404 {
		return nil, fmt.Errorf("%w: no video named %q", scrapeerr.ErrNotFound, slug)
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
	return getNuxt(ctx, doc)
}

func (c *Client) GetInfo(ctx context.Context, slug string) (*Info, error) {
	ctx, span := tracer.Start(ctx, "client:GetInfo")
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

	tags := make([]string, len(video.HentaiTags))
	for i, tag := range video.HentaiTags {
		tags[i] = tag.Text
	}

	var episodes []EpisodeRef
	for _, ep := range video.HentaiFranchiseHentaiVideos {
		episodes = append(episodes, EpisodeRef{
			Id:    ep.Id,
			Slug:  ep.Slug,
			Title: ep.Name,
			Cover: ep.CoverUrl,
		})
	}

	return &Info{
		Id:          video.HentaiVideo.Id,
		Slug:        video.HentaiVideo.Slug,
		Title:       video.HentaiVideo.Name,
		Description: video.HentaiVideo.Description,
		Poster:      video.HentaiVideo.PosterUrl,
		Cover:       video.HentaiVideo.CoverUrl,
		Views:       video.HentaiVideo.Views,
		Likes:       video.HentaiVideo.Likes,
		Released:    time.Unix(video.HentaiVideo.ReleasedAtUnix, 0).UTC(),
		Tags:        tags,
		Episodes:    episodes,
	}, nil
}
