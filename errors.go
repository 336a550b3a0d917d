package cwn

import (
	"errors"
	"fmt"
)

const (
	ExitOK        = 0
	ExitNoResults = 1
	ExitConfig    = 2
	ExitFetch     = 3
	ExitDataLoad  = 4
	ExitNotify    = 5
)

// ConfigError: missing or unreadable credentials/config, or bad arguments
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FetchError: feed unreachable, non-success status, or no cached copy
type FetchError struct {
	Url        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Could not fetch %s: status code %d", e.Url, e.StatusCode)
	}
	return fmt.Sprintf("Could not fetch %s: %v", e.Url, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DataLoadError: gazetteer file missing or corrupt
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("Could not load zip code data from %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// MalformedFeatureError: a single feed entry that could not be decoded or has no usable geometry
type MalformedFeatureError struct {
	Index  int
	Name   string
	Reason string
}

func (e *MalformedFeatureError) Error() string {
	return fmt.Sprintf("Malformed feature #%d (%s): %s", e.Index, e.Name, e.Reason)
}

// NoResultsError: nothing survived the filters
type NoResultsError struct {
	SourceZip   string
	MaxDistance int
}

func (e *NoResultsError) Error() string {
	return "No nearby locations with appointments found."
}

// NotifyError: the email provider refused or could not be reached
type NotifyError struct {
	Provider string
	Err      error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("Could not send email via %s: %v", e.Provider, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// ExitStatus maps an error returned by the pipeline to the message shown to
// the user and the process exit code.
func ExitStatus(err error) (string, int) {
	if err == nil {
		return "", ExitOK
	}

	var configErr *ConfigError
	var fetchErr *FetchError
	var dataLoadErr *DataLoadError
	var noResultsErr *NoResultsError
	var notifyErr *NotifyError

	switch {
	case errors.As(err, &noResultsErr):
		return noResultsErr.Error(), ExitNoResults
	case errors.As(err, &configErr):
		return fmt.Sprintf("Error! %s. See README for details.", configErr.Error()), ExitConfig
	case errors.As(err, &fetchErr):
		return fetchErr.Error(), ExitFetch
	case errors.As(err, &dataLoadErr):
		return dataLoadErr.Error(), ExitDataLoad
	case errors.As(err, &notifyErr):
		return notifyErr.Error(), ExitNotify
	default:
		return fmt.Sprintf("Error! %v", err), ExitConfig
	}
}
