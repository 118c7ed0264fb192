package hstream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hsource/lib/scrapeerr"
	"hsource/lib/securetoken"
	"hsource/lib/telemetry"
	"hsource/lib/textutil"

	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/search.html
var searchFixture string

//go:embed testdata/info.html
var infoFixture string

//go:embed testdata/episode.html
var episodeFixture string

// forward pipeline of the site's player script: base64 encode then
// rot13, three times, prefix prepended
func scramble(t *testing.T, payload securetoken.Payload) string {
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	text := string(raw)
	for i := 0; i < 3; i++ {
		text = textutil.Rot13(base64.StdEncoding.EncodeToString([]byte(text)))
	}
	return securetoken.TokenPrefix + text
}

func setupSite(t *testing.T) (*Client, *http.ServeMux) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/hstream")
	t.Cleanup(cleanup)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	})
	require.NoError(t, err)
	return client, mux
}

func TestSearch(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "netori", r.URL.Query().Get("s"))
		io.WriteString(w, searchFixture)
	})

	result, err := client.Search(context.Background(), "netori", 1)
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	require.Equal(t, 3, result.Pages)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 20, result.Next)
	require.Equal(t, -1, result.Previous)
	require.True(t, result.HasNextPage)

	first := result.Results[0]
	require.Equal(t, "tsuma-netori-1", first.Id)
	require.Equal(t, "Tsuma Netori 1", first.Title)
	require.Equal(t, 12345, first.Views)
	require.False(t, first.Uploaded.IsZero())
	require.True(t, strings.HasSuffix(first.Cover, "/images/tsuma-netori-1.webp"))

	second := result.Results[1]
	require.Equal(t, "overflow-1", second.Id)
	require.Equal(t, "https://cdn.hstream.moe/images/overflow-1.webp", second.Cover)
	require.Equal(
		t,
		time.Date(2022, 8, 10, 0, 0, 0, 0, time.UTC),
		second.Uploaded,
	)
}

func TestSearchClampsPage(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, searchFixture)
	})

	result, err := client.Search(context.Background(), "netori", 99)
	require.NoError(t, err)
	require.Equal(t, 3, result.Page)
	require.False(t, result.HasNextPage)
	require.Equal(t, -1, result.Next)
	require.Equal(t, 20, result.Previous)
}

func TestSearchEmptyQuery(t *testing.T) {
	client, _ := setupSite(t)
	_, err := client.Search(context.Background(), "", 1)
	require.ErrorIs(t, err, scrapeerr.ErrInvalidArgument)
}

func TestGetInfo(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/hentai/tsuma-netori", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, infoFixture)
	})
	mux.HandleFunc("/hentai/bare-page", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>nothing here</p></body></html>")
	})

	info, err := client.GetInfo(context.Background(), "tsuma-netori")
	require.NoError(t, err)
	require.Equal(t, "Tsuma Netori", info.Title)
	require.Equal(t, 54321, info.Views)
	require.Equal(t, []string{"Netorare", "Drama"}, info.Tags)
	require.Len(t, info.Episodes, 2)
	require.Equal(t, "tsuma-netori-2", info.Episodes[0].Id)
	require.Equal(t, float64(2), info.Episodes[0].Number)

	_, err = client.GetInfo(context.Background(), "bare-page")
	require.ErrorIs(t, err, scrapeerr.ErrParse)

	_, err = client.GetInfo(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, scrapeerr.ErrNotFound)
}

func TestGetEpisode(t *testing.T) {
	client, mux := setupSite(t)

	var server string
	mux.HandleFunc("/hentai/tsuma-netori-2", func(w http.ResponseWriter, r *http.Request) {
		token := scramble(t, securetoken.Payload{
			EncryptedKey: "4d6f72697961206b697373",
			IV:           "7375594b755955767479356b",
			ApiUri:       server + "/api/v1/sources",
		})
		io.WriteString(w, strings.ReplaceAll(episodeFixture, "{{TOKEN}}", token))
	})
	mux.HandleFunc("/api/v1/sources", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body sourcesRequest
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		require.Equal(t, "tsuma-netori-2", body.EpisodeId)
		require.Equal(t, "4d6f72697961206b697373", body.EncryptedKey)
		require.Equal(t, "7375594b755955767479356b", body.IV)

		w.Header().Set("content-type", "application/json")
		io.WriteString(w, `{
			"streams": [
				{"height": "1080", "url": "https://str.hstream.moe/1080/manifest.m3u8", "legacy": 0},
				{"height": "720", "url": "https://str.hstream.moe/720/manifest.m3u8", "legacy": 1}
			]
		}`)
	})
	server = client.BaseUrl.String()

	streams, err := client.GetEpisode(context.Background(), "tsuma-netori-2")
	require.NoError(t, err)
	require.Len(t, streams, 2)
	require.Equal(t, "1080p", streams[0].Resolution)
	require.False(t, streams[0].Legacy)
	require.Equal(t, "720p", streams[1].Resolution)
	require.True(t, streams[1].Legacy)
}

func TestGetEpisodeCorruptToken(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/hentai/corrupt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.ReplaceAll(episodeFixture, "{{TOKEN}}", "mresh=nUIfoT8="))
	})

	_, err := client.GetEpisode(context.Background(), "corrupt")
	require.ErrorIs(t, err, scrapeerr.ErrUnscrambling)
}

func TestGetEpisodeMissingToken(t *testing.T) {
	client, mux := setupSite(t)
	mux.HandleFunc("/hentai/plain", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><h1 class=\"title\">x</h1></body></html>")
	})

	_, err := client.GetEpisode(context.Background(), "plain")
	require.ErrorIs(t, err, scrapeerr.ErrParse)
}
