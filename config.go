package cwn

import (
	"fmt"
	"gopkg.in/yaml.v2"
	"os"
	"strings"
)

const DefaultConfigPath = "./covidwa-nearby.yaml"

const DefaultState = "CO"
const DefaultFeedUrlPattern = "https://www.vaccinespotter.org/api/v0/states/%s.json"
const DefaultUserAgent = "Mozilla 1.0"
const DefaultCachePath = "result.json"
const DefaultGazetteerPath = "zip_codes.txt"
const DefaultCredentialsPath = "credentials.txt"
const DefaultEmailSubject = "Vaccine Appointments Available"
const DefaultSmtpPort = 587

const NotifierSendGrid = "sendgrid"
const NotifierSMTP = "smtp"

type Config struct {
	Debug           bool           `yaml:"debug"`
	State           string         `yaml:"state"`
	FeedUrl         string         `yaml:"feed_url"`
	UserAgent       string         `yaml:"user_agent"`
	FeedTimeout     int            `yaml:"feed_timeout"`
	CachePath       string         `yaml:"cache_path"`
	CacheS3Bucket   string         `yaml:"cache_s3_bucket"`
	CacheS3Key      string         `yaml:"cache_s3_key"`
	GazetteerPath   string         `yaml:"gazetteer_path"`
	CredentialsPath string         `yaml:"credentials_path"`
	ApiKeySSMParam  string         `yaml:"api_key_ssm_param"`
	DistancePolicy  DistancePolicy `yaml:"distance_policy"`
	Notifier        string         `yaml:"notifier"`
	EmailSubject    string         `yaml:"email_subject"`
	SendGridHost    string         `yaml:"sendgrid_host"`
	SmtpHost        string         `yaml:"smtp_host"`
	SmtpPort        int            `yaml:"smtp_port"`
	SmtpUsername    string         `yaml:"smtp_user"`
	SmtpPassword    string         `yaml:"smtp_pass"`
}

// NewConfigDefaultPath reads ./covidwa-nearby.yaml if it exists, otherwise
// returns the built-in defaults.
func NewConfigDefaultPath() (*Config, error) {
	if _, err := os.Stat(DefaultConfigPath); os.IsNotExist(err) {
		config := &Config{}
		if err := config.applyDefaults(); err != nil {
			return nil, err
		}
		return config, nil
	}

	return NewConfig(DefaultConfigPath)
}

func NewConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("Can't read config %s", configPath), Err: err}
	}
	defer file.Close()

	d := yaml.NewDecoder(file)

	if err := d.Decode(&config); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("Can't parse config %s", configPath), Err: err}
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	Log.Debugf("Feed URL: %s", config.FeedUrl)
	Log.Debugf("Feed cache: %s", config.CachePath)

	return config, nil
}

func (c *Config) applyDefaults() error {
	if c.Debug {
		Log.SetLevel("debug")
	}

	if len(c.State) == 0 {
		c.State = DefaultState
	}
	c.State = strings.ToUpper(c.State)

	if len(c.FeedUrl) == 0 {
		c.FeedUrl = fmt.Sprintf(DefaultFeedUrlPattern, c.State)
	}

	if len(c.UserAgent) == 0 {
		c.UserAgent = DefaultUserAgent
	}

	if c.FeedTimeout < 0 {
		return &ConfigError{Msg: fmt.Sprintf("feed_timeout cannot be negative, configured: %d", c.FeedTimeout)}
	}

	if len(c.CachePath) == 0 {
		c.CachePath = DefaultCachePath
	}

	if len(c.CacheS3Bucket) > 0 && len(c.CacheS3Key) == 0 {
		c.CacheS3Key = fmt.Sprintf("vaccinespotter-%s.json", strings.ToLower(c.State))
	}

	if len(c.GazetteerPath) == 0 {
		c.GazetteerPath = DefaultGazetteerPath
	}

	if len(c.CredentialsPath) == 0 {
		c.CredentialsPath = DefaultCredentialsPath
	}

	if len(c.DistancePolicy) == 0 {
		c.DistancePolicy = DistancePolicyStrict
	}
	if !c.DistancePolicy.Valid() {
		return &ConfigError{Msg: fmt.Sprintf("Unknown distance_policy: %s", c.DistancePolicy)}
	}

	if len(c.Notifier) == 0 {
		c.Notifier = NotifierSendGrid
	}
	c.Notifier = strings.ToLower(c.Notifier)
	if c.Notifier != NotifierSendGrid && c.Notifier != NotifierSMTP {
		return &ConfigError{Msg: fmt.Sprintf("Unknown notifier: %s", c.Notifier)}
	}

	if c.Notifier == NotifierSMTP && len(c.SmtpHost) == 0 {
		return &ConfigError{Msg: "notifier is smtp but smtp_host is not configured"}
	}

	if len(c.EmailSubject) == 0 {
		c.EmailSubject = DefaultEmailSubject
	}

	if c.SmtpPort == 0 {
		c.SmtpPort = DefaultSmtpPort
	}

	return nil
}
