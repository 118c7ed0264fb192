package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<ul class="episodes">
			<li><a href="/video/overflow-1">Overflow
				Episode   1</a></li>
			<li><a href="/video/overflow-2">Overflow Episode 2</a></li>
			<li><a>no href</a></li>
		</ul>
	`))
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("ul.episodes a"))
	diff := cmp.Diff([]Anchor{
		{Name: "Overflow Episode 1", Href: "/video/overflow-1"},
		{Name: "Overflow Episode 2", Href: "/video/overflow-2"},
		{Name: "no href", Href: ""},
	}, anchors)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveHref(t *testing.T) {
	base, err := url.Parse("https://hstream.moe/search")
	require.NoError(t, err)

	require.Equal(
		t,
		"https://hstream.moe/hentai/overflow",
		ResolveHref(base, "/hentai/overflow"),
	)
	require.Equal(
		t,
		"https://cdn.example.org/cover.webp",
		ResolveHref(base, "https://cdn.example.org/cover.webp"),
	)
	require.Equal(t, "", ResolveHref(base, ""))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("  a\n\tb    c "))
}
