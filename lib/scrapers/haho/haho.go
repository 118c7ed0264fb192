package haho

import (
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"hsource/lib/restyutil"
	"hsource/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://haho.moe"

const PerPage = 24

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	// hardening: a hung upstream fails the call instead of blocking it
	// forever, zero means 30s
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", restyutil.RandomUserAgent())
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/haho/http")
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// slugFromHref recovers "jashin-shoukan" out of /anime/jashin-shoukan
// and "jashin-shoukan/2" out of /anime/jashin-shoukan/2.
func slugFromHref(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	path := strings.Trim(parsed.Path, "/")
	return strings.TrimPrefix(path, "anime/")
}
