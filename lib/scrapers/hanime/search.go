package hanime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hsource/lib/pager"
	"hsource/lib/scrapeerr"
	"hsource/lib/textutil"

	"go.opentelemetry.io/otel/codes"
)

type SearchResult struct {
	Id       int64
	Slug     string
	Title    string
	Url      string
	Cover    string
	Views    int
	Likes    int
	Released time.Time
}

type searchRequest struct {
	SearchText string   `json:"search_text"`
	Tags       []string `json:"tags"`
	TagsMode   string   `json:"tags_mode"`
	Brands     []string `json:"brands"`
	Blacklist  []string `json:"blacklist"`
	OrderBy    string   `json:"order_by"`
	Ordering   string   `json:"ordering"`
	Page       int      `json:"page"`
}

// the api quirk here is that `hits` is not an array but a
// json-encoded string holding one
type searchResponse struct {
	Page        int    `json:"page"`
	NbPages     int    `json:"nbPages"`
	NbHits      int    `json:"nbHits"`
	HitsPerPage int    `json:"hitsPerPage"`
	Hits        string `json:"hits"`
}

type searchHit struct {
	Id             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	CoverUrl       string `json:"cover_url"`
	Views          int    `json:"views"`
	Likes          int    `json:"likes"`
	ReleasedAtUnix int64  `json:"released_at_unix"`
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

	body := searchRequest{
		SearchText: query,
		Tags:       []string{},
		TagsMode:   "AND",
		Brands:     []string{},
		Blacklist:  []string{},
		OrderBy:    "likes",
		Ordering:   "desc",
		// the search api counts pages from zero
		Page: page - 1,
	}
	var parsed searchResponse
	res, err := c.SearchHttp.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query search api")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: %s", scrapeerr.ErrUpstreamRequest, err,
		)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search api returned an error status")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: search api returned %d", scrapeerr.ErrUpstreamRequest, res.StatusCode(),
		)
	}

	var hits []searchHit
	err = json.Unmarshal([]byte(parsed.Hits), &hits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse hits payload")
		return pager.PaginatedResult[SearchResult]{}, fmt.Errorf(
			"%w: hits payload: %s", scrapeerr.ErrParse, err,
		)
	}

	results := make([]SearchResult, len(hits))
	names := make([]string, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Id:       hit.Id,
			Slug:     hit.Slug,
			Title:    hit.Name,
			Url:      fmt.Sprintf("%s/videos/hentai/%s", c.BaseUrl, hit.Slug),
			Cover:    hit.CoverUrl,
			Views:    hit.Views,
			Likes:    hit.Likes,
			Released: time.Unix(hit.ReleasedAtUnix, 0).UTC(),
		}
		names[i] = hit.Name
	}

	// the api orders by popularity, closest title matches first is more
	// useful to callers resolving a specific show
	ranked := make([]SearchResult, len(results))
	for i, idx := range textutil.RankBySimilarity(query, names) {
		ranked[i] = results[idx]
	}

	perPage := parsed.HitsPerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	pages := parsed.NbPages
	if pages < 1 {
		pages = 1
	}
	if page > pages {
		page = pages
	}

	next := -1
	if page < pages {
		next = pager.Offset(page+1, perPage)
	}
	previous := -1
	if page > 1 {
		previous = pager.Offset(page-1, perPage)
	}

	return pager.PaginatedResult[SearchResult]{
		Results:     ranked,
		Total:       parsed.NbHits,
		Page:        page,
		Pages:       pages,
		Next:        next,
		Previous:    previous,
		HasNextPage: page < pages,
	}, nil
}
