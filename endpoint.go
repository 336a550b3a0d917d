package cwn

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

type Endpoint struct {
	Url        string
	Method     string
	Headers    []Header
	HttpClient *http.Client
	Timeout    int
}

type Header struct {
	Name  string
	Value string
}

// NewFeedEndpoint builds the GET endpoint for the vaccine feed
func NewFeedEndpoint(config *Config) *Endpoint {
	return &Endpoint{
		Url:    config.FeedUrl,
		Method: "GET",
		Headers: []Header{
			Header{
				Name:  "User-Agent",
				Value: config.UserAgent,
			},
			Header{
				Name:  "Accept",
				Value: "application/json",
			},
		},
		Timeout: config.FeedTimeout,
	}
}

// Fetch performs a single request with no retry. Any non-2xx status is
// returned as a *FetchError along with whatever body was read.
func (endpoint *Endpoint) Fetch(name string) ([]byte, error) {
	if endpoint.Method != "GET" && endpoint.Method != "POST" {
		return nil, &FetchError{Url: endpoint.Url, Err: fmt.Errorf("Unknown method: %s", endpoint.Method)}
	}

	client := endpoint.HttpClient
	if client == nil {
		client = &http.Client{
			Timeout: time.Duration(endpoint.Timeout) * time.Second,
		}
	}

	req, err := http.NewRequest(endpoint.Method, endpoint.Url, nil)
	if err != nil {
		return nil, &FetchError{Url: endpoint.Url, Err: err}
	}

	for _, header := range endpoint.Headers {
		req.Header.Add(header.Name, header.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		Log.Debugf("WARNING: Error during fetch: %v", err)
		return nil, &FetchError{Url: endpoint.Url, Err: err}
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Url: endpoint.Url, Err: err}
	}

	// transport only decompresses transparently when it asked for gzip itself
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") && !resp.Uncompressed {
		Log.Debug("Decompressing gzipped content...")

		gzReader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, &FetchError{Url: endpoint.Url, Err: err}
		}

		body, err = ioutil.ReadAll(gzReader)
		if err != nil {
			return nil, &FetchError{Url: endpoint.Url, Err: err}
		}
	}

	Log.Debugf("%s: fetched %d bytes with status code %d from %s", name, len(body), resp.StatusCode, endpoint.Url)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > 128 {
			snippet = snippet[:128]
		}
		Log.Warnf("%s: Status code: %d, %s", name, resp.StatusCode, string(snippet))
		return body, &FetchError{Url: endpoint.Url, StatusCode: resp.StatusCode}
	}

	return body, nil
}
