package hanime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hsource/lib/scrapeerr"
	"hsource/lib/telemetry"

	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/video.html
var videoFixture string

func setupSite(t *testing.T) (*Client, *http.ServeMux) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/hanime")
	t.Cleanup(cleanup)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:   server.URL,
		SearchUrl: server.URL + "/search",
		Timeout:   time.Second * 5,
	})
	require.NoError(t, err)
	return client, mux
}

func TestSearch(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body searchRequest
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		require.Equal(t, "overflow", body.SearchText)
		// the api counts pages from zero
		require.Equal(t, 0, body.Page)

		hits, err := json.Marshal([]searchHit{
			{
				Id:             999,
				Name:           "Completely Unrelated",
				Slug:           "completely-unrelated",
				Views:          900000,
				Likes:          100,
				ReleasedAtUnix: 1500000000,
			},
			{
				Id:             1234,
				Name:           "Overflow",
				Slug:           "overflow-1",
				CoverUrl:       "https://cdn.example.org/overflow-cover.webp",
				Views:          240981,
				Likes:          9120,
				ReleasedAtUnix: 1577836800,
			},
		})
		require.NoError(t, err)

		w.Header().Set("content-type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Page:        0,
			NbPages:     4,
			NbHits:      77,
			HitsPerPage: 24,
			Hits:        string(hits),
		})
	})

	result, err := client.Search(context.Background(), "overflow", 1)
	require.NoError(t, err)

	require.Equal(t, 77, result.Total)
	require.Equal(t, 4, result.Pages)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 24, result.Next)
	require.Equal(t, -1, result.Previous)
	require.True(t, result.HasNextPage)

	// popularity order from the api gets re-ranked by title similarity
	require.Len(t, result.Results, 2)
	require.Equal(t, "overflow-1", result.Results[0].Slug)
	require.Equal(
		t,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		result.Results[0].Released,
	)
	require.Equal(t, "completely-unrelated", result.Results[1].Slug)
}

func TestSearchEmptyQuery(t *testing.T) {
	client, _ := setupSite(t)
	_, err := client.Search(context.Background(), "", 1)
	require.ErrorIs(t, err, scrapeerr.ErrInvalidArgument)
}

func TestGetInfo(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/videos/hentai/overflow-1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, videoFixture)
	})
	mux.HandleFunc("/videos/hentai/no-island", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>not a video page</p></body></html>")
	})

	info, err := client.GetInfo(context.Background(), "overflow-1")
	require.NoError(t, err)
	require.Equal(t, int64(1234), info.Id)
	require.Equal(t, "Overflow", info.Title)
	require.Equal(t, 240981, info.Views)
	require.Equal(t, []string{"romance", "harem"}, info.Tags)
	require.Equal(
		t,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		info.Released,
	)
	require.Len(t, info.Episodes, 2)
	require.Equal(t, "overflow-2", info.Episodes[1].Slug)

	_, err = client.GetInfo(context.Background(), "no-island")
	require.ErrorIs(t, err, scrapeerr.ErrParse)

	_, err = client.GetInfo(context.Background(), "missing")
	require.ErrorIs(t, err, scrapeerr.ErrNotFound)
}

func TestGetEpisode(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/videos/hentai/overflow-1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, videoFixture)
	})

	streams, err := client.GetEpisode(context.Background(), "overflow-1")
	require.NoError(t, err)

	// the 1080p variant is premium-only and filtered out
	require.Len(t, streams, 2)
	require.Equal(t, "720p", streams[0].Resolution)
	require.Equal(t, "ds1", streams[0].Server)
	require.Equal(t, 201.7, streams[0].SizeMbs)
	require.Equal(t, "480p", streams[1].Resolution)
}
