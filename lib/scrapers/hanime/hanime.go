package hanime

import (
	"net/http/cookiejar"
	"net/url"
	"time"

	"hsource/lib/restyutil"
	"hsource/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://hanime.tv"
const DefaultSearchUrl = "https://search.htv-services.com"

// the search api reports hitsPerPage, this is only the fallback when it
// doesn't
const defaultPerPage = 24

type Client struct {
	BaseUrl    *url.URL
	Http       *resty.Client
	SearchHttp *resty.Client
}

type ClientOptions struct {
	// base url overrides, zero values fall back to the public endpoints
	BaseUrl   string
	SearchUrl string
	// hardening: a hung upstream fails the call instead of blocking it
	// forever, zero means 30s
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.SearchUrl == "" {
		opts.SearchUrl = DefaultSearchUrl
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
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/hanime/http")
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	search := resty.New()
	search.SetBaseURL(opts.SearchUrl)
	search.SetHeader("user-agent", restyutil.RandomUserAgent())
	search.SetHeader("content-type", "application/json")
	search.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(search, "scrapers/hanime/search-http")
	restyutil.InstrumentClient(search, tracer, restyInstrumentOutput)

	return &Client{
		BaseUrl:    baseUrl,
		Http:       client,
		SearchHttp: search,
	}, nil
}
