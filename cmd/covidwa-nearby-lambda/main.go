package main

import (
	"context"
	"fmt"
	"github.com/aws/aws-lambda-go/lambda"
	"os"
	"time"

	cwn "github.com/CovidWA/covidwa-nearby/golang"
)

// AWS Lambda wrapper

const GazetteerCacheTTL = 6 * time.Hour

type CheckEvent struct {
	SourceZip   string `json:"source_zip_code"`
	MaxDistance int    `json:"max_distance"`
	Debug       bool   `json:"debug"`
}

func HandleRequest(ctx context.Context, evt CheckEvent) (string, error) {
	if len(evt.SourceZip) == 0 || evt.MaxDistance < 0 {
		return "", fmt.Errorf("source_zip_code and a non-negative max_distance are required")
	}

	config, err := cwn.NewConfigDefaultPath()
	if err != nil {
		return failed(evt, err)
	}

	creds, err := cwn.LoadCredentials(config.CredentialsPath, config.ApiKeySSMParam)
	if err != nil {
		return failed(evt, err)
	}

	gazetteer, err := cwn.LoadGazetteerCached(config.GazetteerPath, GazetteerCacheTTL)
	if err != nil {
		return failed(evt, err)
	}

	checker := &cwn.Checker{
		Config:    config,
		Gazetteer: gazetteer,
		Feed:      cwn.NewFeedSource(config),
	}
	if !evt.Debug {
		checker.Notifier = cwn.NewNotifier(config, creds)
	}

	result, err := checker.Check(cwn.CheckOptions{
		SourceZip:   evt.SourceZip,
		MaxDistance: evt.MaxDistance,
		Debug:       evt.Debug,
	})
	if err != nil {
		return failed(evt, err)
	}

	fmt.Println(result.Table)

	return fmt.Sprintf("Execution finished: %s within %d miles, %d location(s), email sent: %v", evt.SourceZip, evt.MaxDistance, len(result.Locations), result.EmailSent), nil
}

// an empty result is a normal outcome, everything else fails the invocation
func failed(evt CheckEvent, err error) (string, error) {
	msg, code := cwn.ExitStatus(err)
	if code == cwn.ExitNoResults {
		return fmt.Sprintf("Execution finished: %s: %s", evt.SourceZip, msg), nil
	}
	cwn.Log.Errorf("%s: %v", evt.SourceZip, err)
	return fmt.Sprintf("Execution finished with error: %s!", evt.SourceZip), fmt.Errorf("%s", msg)
}

func main() {
	if len(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) == 0 {
		cwn.Log.Warnf("AWS_LAMBDA_FUNCTION_NAME not set, this binary is meant to run on lambda")
	}
	lambda.Start(HandleRequest)
}
