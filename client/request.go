package client

import (
	"errors"
	"net/http"
)

// DoOption is a functional option for [Client.Do].
type DoOption func(*doOpts) error

type doOpts struct {
	responseBody any
	useJSONNum   bool
}

// WithDestination decodes the JSON response body into dest.
func WithDestination[T any](dest *T) DoOption {
	return func(o *doOpts) error {
		if dest == nil {
			return errors.New("destination must not be nil")
		}
		o.responseBody = dest
		return nil
	}
}

// WithJSONNumb decodes numbers as [encoding/json.Number] rather than float64.
func WithJSONNumb() DoOption {
	return func(o *doOpts) error {
		o.useJSONNum = true
		return nil
	}
}

// RequestOption is a functional option for [Request].
type RequestOption func(*requestOpts) error

type requestOpts struct {
	body        any
	contentType string
	cookies     []*http.Cookie
	headers     map[string][]string
}

// WithPayload sets the value JSON-encoded as the request body.
func WithPayload(body any) RequestOption {
	return func(o *requestOpts) error {
		o.body = body
		return nil
	}
}

// WithContentType overrides the default "application/json" Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(o *requestOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}
		o.contentType = contentType
		return nil
	}
}

// WithHeaders adds headers to the request. Values are appended to any the
// request already carries.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(o *requestOpts) error {
		o.headers = headers
		return nil
	}
}

// WithCookies attaches cookies to the request.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(o *requestOpts) error {
		o.cookies = append(o.cookies, cookies...)
		return nil
	}
}

// URLOption is a functional option for [URL].
type URLOption func(*urlOpts)

type urlOpts struct {
	queryStrings map[string]string
	port         *int
}

// WithQueryStrings sets query parameters on the URL.
func WithQueryStrings(queryKV map[string]string) URLOption {
	return func(o *urlOpts) {
		o.queryStrings = queryKV
	}
}

// WithPort appends port to the URL's host.
func WithPort(port int) URLOption {
	return func(o *urlOpts) {
		o.port = &port
	}
}
