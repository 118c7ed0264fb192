package scrapeerr

import "errors"

// Every failure a site client can surface wraps one of these sentinels
// so callers can branch with errors.Is without depending on message text.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnscrambling    = errors.New("token unscrambling failed")
	ErrUpstreamRequest = errors.New("upstream request failed")
	ErrParse           = errors.New("parse failed")
)
