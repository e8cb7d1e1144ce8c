// Package crawler retrieves and parses the remote benchmark result listing.
//
// # Architecture
//
// Three types cooperate:
//
//   - Fetcher downloads listing pages over HTTPS with timeouts, retries and a
//     request rate limit.
//   - Extractor turns a page of HTML markup into score pairs and reads the
//     pagination control.
//   - Prober combines the two to decide whether an identifier has any results
//     and how many pages they span.
//
// Design decision: HTTP is done with go-resty rather than a bare http.Client
// because retry conditions, per-request timeouts and request hooks (used for
// the rate limiter) are all first-class there. HTML is parsed with
// golang.org/x/net/html and queried through goquery so that the CSS selectors
// of the remote markup can be kept as plain strings and overridden from the
// configuration file when the site changes.
//
// # Usage
//
//	fetcher, err := crawler.NewFetcher(baseURL, crawler.WithTimeout(30*time.Second))
//	extractor, err := crawler.NewExtractor()
//	prober := crawler.NewProber(fetcher, extractor)
//	result, err := prober.Probe(ctx, "Intel i7 3770")
//
// # Politeness
//
// Requests are paced by a token bucket shared by every goroutine using the
// same Fetcher, and the number of pages in flight is bounded.
package crawler
