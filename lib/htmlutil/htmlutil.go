package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("hsource.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText flattens the whitespace soup scraped out of markup into a
// single-line display string.
func CleanText(s string) string {
	s = innerWhitespace.ReplaceAllString(s, " ")
	s = removeNonPrintable(s)
	return strings.Trim(s, " ")
}

// ResolveHref turns a possibly relative href into an absolute url
// against the site's base. Unparseable hrefs come back empty.
func ResolveHref(base *url.URL, href string) string {
	if base == nil || href == "" {
		return href
	}
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(link).String()
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors collects the (cleaned text, href) pairs of every node in
// the selection, skipping anchors whose href does not parse.
func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := CleanText(GetText(n))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
