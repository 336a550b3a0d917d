package cwn

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
)

// FeatureCollection keeps each feature undecoded so that one bad entry only
// costs that entry
type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type RawFeature struct {
	Type       string          `json:"type"`
	Geometry   RawGeometry     `json:"geometry"`
	Properties RawFeatureProps `json:"properties"`
}

type RawGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

type RawFeatureProps struct {
	Url                   string `json:"url"`
	Name                  string `json:"name"`
	Address               string `json:"address"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	PostalCode            string `json:"postal_code"`
	AppointmentsAvailable *bool  `json:"appointments_available"`
}

// FeedSource knows where the feed lives upstream and where the last fetched
// copy is kept for offline runs
type FeedSource struct {
	Endpoint  *Endpoint
	CachePath string
	S3Bucket  string
	S3Key     string
}

func NewFeedSource(config *Config) *FeedSource {
	return &FeedSource{
		Endpoint:  NewFeedEndpoint(config),
		CachePath: config.CachePath,
		S3Bucket:  config.CacheS3Bucket,
		S3Key:     config.CacheS3Key,
	}
}

// Fetch downloads the feed, persists the body verbatim and returns the
// parsed collection
func (f *FeedSource) Fetch() (*FeatureCollection, error) {
	Log.Infof("Fetching JSON from %s", f.Endpoint.Url)

	body, err := f.Endpoint.Fetch("feed")
	if err != nil {
		return nil, err
	}

	collection, err := ParseFeed(body)
	if err != nil {
		return nil, &FetchError{Url: f.Endpoint.Url, Err: err}
	}

	if err := f.persist(body); err != nil {
		// the fetched data is still good, only offline replay suffers
		Log.Warnf("Could not persist feed: %v", err)
	}

	Log.Infof("Fetched %d features", len(collection.Features))

	return collection, nil
}

func (f *FeedSource) persist(body []byte) error {
	if len(f.CachePath) > 0 {
		if err := ioutil.WriteFile(f.CachePath, body, 0644); err != nil {
			return err
		}
		Log.Debugf("Wrote %d bytes to file: %s", len(body), f.CachePath)
	}

	if len(f.S3Bucket) > 0 {
		if !HasAWSCredentials() {
			return fmt.Errorf("Feed cache configured to mirror to S3 but no AWS credentials were found")
		}

		url, err := PutS3Object(f.S3Bucket, f.S3Key, body)
		if err != nil {
			return err
		}
		Log.Debugf("Sent %d bytes to S3: %s", len(body), url)
	}

	return nil
}

// LoadCached reads back the most recently persisted feed, falling back to the
// S3 mirror when the local copy is missing
func (f *FeedSource) LoadCached() (*FeatureCollection, error) {
	body, err := f.readCached()
	if err != nil {
		return nil, err
	}

	collection, err := ParseFeed(body)
	if err != nil {
		return nil, &FetchError{Url: f.CachePath, Err: err}
	}

	Log.Infof("Loaded %d cached features", len(collection.Features))

	return collection, nil
}

func (f *FeedSource) readCached() ([]byte, error) {
	body, err := ioutil.ReadFile(f.CachePath)
	if err == nil {
		Log.Debugf("Read %d bytes from file: %s", len(body), f.CachePath)
		return body, nil
	}

	if !os.IsNotExist(err) || len(f.S3Bucket) == 0 {
		return nil, &FetchError{Url: f.CachePath, Err: fmt.Errorf("no cached feed available: %v", err)}
	}

	Log.Debugf("%s not found, trying s3://%s/%s", f.CachePath, f.S3Bucket, f.S3Key)

	body, err = GetS3Object(f.S3Bucket, f.S3Key)
	if err != nil {
		return nil, &FetchError{Url: fmt.Sprintf("s3://%s/%s", f.S3Bucket, f.S3Key), Err: err}
	}

	return body, nil
}

func ParseFeed(body []byte) (*FeatureCollection, error) {
	collection := new(FeatureCollection)
	if err := json.Unmarshal(body, collection); err != nil {
		return nil, err
	}

	return collection, nil
}
