// Package query parses the query string of the page hosting the widget.
package query

import (
	"net/url"
	"strings"
)

// Params holds the page's query parameters, one value per key.
type Params map[string]string

// Parse reads a location search string such as "?hostname=a&target=b".
// Segments are split on '&' and then on the first '='. Keys and values are
// percent-decoded; '+' is kept literally. A segment that fails to decode is
// kept as written. When a key repeats, the last value wins.
func Parse(search string) Params {
	search = strings.TrimPrefix(search, "?")
	params := Params{}
	if search == "" {
		return params
	}

	for _, seg := range strings.Split(search, "&") {
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		params[decode(key)] = decode(value)
	}
	return params
}

// FromURL parses the query of a page URL.
func FromURL(u *url.URL) Params {
	if u == nil {
		return Params{}
	}
	return Parse(u.RawQuery)
}

// Hostname returns the embedding site the comments are namespaced by.
func (p Params) Hostname() string { return p["hostname"] }

// Target returns the thread identifier on the embedding page.
func (p Params) Target() string { return p["target"] }

// Encode formats the parameters as a query string without a leading '?',
// sorted by key. Spaces are written as %20 so Parse reads them back.
func (p Params) Encode() string {
	v := url.Values{}
	for k, val := range p {
		v.Set(k, val)
	}
	return strings.ReplaceAll(v.Encode(), "+", "%20")
}

func decode(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
