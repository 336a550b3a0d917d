package cwn

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{nil, ExitOK, ""},
		{&NoResultsError{SourceZip: "80202", MaxDistance: 5}, ExitNoResults, "No nearby locations with appointments found."},
		{&ConfigError{Msg: "credentials.txt not found"}, ExitConfig, "credentials.txt not found"},
		{&FetchError{Url: "http://feed", StatusCode: 500}, ExitFetch, "status code 500"},
		{&DataLoadError{Path: "zip_codes.txt", Err: errors.New("boom")}, ExitDataLoad, "zip_codes.txt"},
		{&NotifyError{Provider: "sendgrid", Err: errors.New("timeout")}, ExitNotify, "sendgrid"},
		{fmt.Errorf("wrapped: %w", &FetchError{Url: "http://feed", Err: errors.New("refused")}), ExitFetch, "refused"},
	}

	for _, c := range cases {
		msg, code := ExitStatus(c.err)
		if code != c.code {
			t.Errorf("%v: expected exit code %d, got %d", c.err, c.code, code)
			return
		}
		if !strings.Contains(msg, c.msg) {
			t.Errorf("%v: expected message containing %q, got %q", c.err, c.msg, msg)
			return
		}
	}
}
