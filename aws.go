package cwn

// S3 mirror for the feed cache and SSM lookup for the API key

import (
	"bytes"
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"io/ioutil"
	"sync"
)

// HasAWSCredentials reports whether a region and credentials could be resolved
func HasAWSCredentials() bool {
	awsConfig, err := LoadAWSConfig()
	return err == nil && awsConfig.Credentials != nil && len(awsConfig.Region) > 0
}

var awsConfigMutex *sync.Mutex = &sync.Mutex{}
var loadedAWSConfig *aws.Config

func LoadAWSConfig() (*aws.Config, error) {
	awsConfigMutex.Lock()
	defer awsConfigMutex.Unlock()

	if loadedAWSConfig == nil {
		load, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			loadedAWSConfig = nil
			return nil, err
		}

		loadedAWSConfig = &load
	}

	return loadedAWSConfig, nil
}

func GetAWSEncryptedParameter(name string) (string, error) {
	return GetAWSParameter(name, true)
}

// the SendGrid key is stored as a SecureString, see api_key_ssm_param
func GetAWSParameter(name string, encrypted bool) (string, error) {
	cfg, err := LoadAWSConfig()
	if err != nil {
		return "", err
	}

	client := ssm.NewFromConfig(*cfg)

	output, err := client.GetParameter(context.TODO(), &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: encrypted})

	if err != nil {
		return "", err
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return "", fmt.Errorf("AWS parameter '%s' has no value", name)
	}

	return *output.Parameter.Value, nil
}

var s3mutex *sync.Mutex = &sync.Mutex{}
var s3client *s3.Client

func getS3Client() (*s3.Client, error) {
	s3mutex.Lock()
	defer s3mutex.Unlock()

	if s3client == nil {
		cfg, err := LoadAWSConfig()
		if err != nil {
			return nil, err
		}

		s3client = s3.NewFromConfig(*cfg)
	}

	return s3client, nil
}

// PutS3Object returns the object url, used only for logging
func PutS3Object(bucketName string, key string, body []byte) (string, error) {
	client, err := getS3Client()
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: &bucketName,
		Key:    &key,
		Body:   bytes.NewReader(body)})

	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://%s.s3-%s.amazonaws.com/%s", bucketName, loadedAWSConfig.Region, key)

	return url, nil
}

func GetS3Object(bucketName string, key string) ([]byte, error) {
	client, err := getS3Client()
	if err != nil {
		return nil, err
	}

	output, err := client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key})

	if err != nil {
		return nil, err
	}
	defer output.Body.Close()

	return ioutil.ReadAll(output.Body)
}
