package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies extraction failures.
type Kind string

const (
	KindBlocked     Kind = "blocked"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindHTTPStatus  Kind = "http_status"
	KindTimeout     Kind = "timeout"
	KindNetwork     Kind = "network"
	KindFetch       Kind = "fetch"
	KindParse       Kind = "parse"
)

// Error is returned for every fatal extraction failure. Message is written for founders
// and is stored on the failed analysis as is.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func statusError(code int) *Error {
	e := &Error{StatusCode: code}
	switch code {
	case http.StatusForbidden:
		e.Kind = KindBlocked
		e.Message = "The website blocked our request (HTTP 403). It is likely protected by anti-bot protection " +
			"such as Cloudflare. Try another public page of the site, or describe your product instead."
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = "Page not found (HTTP 404). Check that the URL is correct and publicly accessible."
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.Message = "The website is rate limiting our requests (HTTP 429). Wait a few minutes and try again."
	default:
		e.Kind = KindHTTPStatus
		e.Message = fmt.Sprintf("Failed to fetch website: the server responded with HTTP %d %s.", code, http.StatusText(code))
	}
	return e
}

func fetchError(err error) *Error {
	var netErr net.Error
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Err: err,
			Message: "The website took too long to respond. Check that the site is online and try again."}
	case errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return &Error{Kind: KindNetwork, Err: err,
			Message: "Could not connect to the website. Check that the URL is correct and the site is online."}
	default:
		return &Error{Kind: KindFetch, Err: err,
			Message: "Failed to fetch website: " + err.Error()}
	}
}
