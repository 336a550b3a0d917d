package cwn

import (
	"fmt"
	"gopkg.in/ini.v1"
	"os"
)

const CredentialsSection = "sendgrid"
const CredentialsKeyApiKey = "API_KEY"
const CredentialsKeyToAddr = "TO_ADDR"
const CredentialsKeyFromAddr = "FROM_ADDR"

const ApiKeyEnvName = "SENDGRID_API_KEY"

type Credentials struct {
	ApiKey   string
	ToAddr   string
	FromAddr string
}

// String never prints the api key
func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{ApiKey: <snip>, ToAddr: %s, FromAddr: %s}", c.ToAddr, c.FromAddr)
}

// LoadCredentials reads the sendgrid section of an INI credentials file.
// A blank API_KEY may be supplied by $SENDGRID_API_KEY, then by the
// encrypted SSM parameter ssmParam when one is named. TO_ADDR and FROM_ADDR
// must come from the file.
func LoadCredentials(path string, ssmParam string) (*Credentials, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("%s not found", path), Err: err}
	}

	// configparser semantics: section and key names are case insensitive
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("Error reading %s", path), Err: err}
	}

	section, err := file.GetSection(CredentialsSection)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("Error reading %s: missing [%s] section", path, CredentialsSection)}
	}

	creds := new(Credentials)
	for _, field := range []struct {
		key  string
		dest *string
	}{
		{CredentialsKeyApiKey, &creds.ApiKey},
		{CredentialsKeyToAddr, &creds.ToAddr},
		{CredentialsKeyFromAddr, &creds.FromAddr},
	} {
		if !section.HasKey(field.key) {
			return nil, &ConfigError{Msg: fmt.Sprintf("Error reading %s: missing %s", path, field.key)}
		}
		*field.dest = section.Key(field.key).String()
	}

	if len(creds.ApiKey) == 0 {
		creds.ApiKey = os.Getenv(ApiKeyEnvName)
		notFound := ""
		if len(creds.ApiKey) == 0 {
			notFound = "NOT "
		}
		Log.Debugf("API key %sfound in environment variable %s", notFound, ApiKeyEnvName)
	}

	if len(creds.ApiKey) == 0 && len(ssmParam) > 0 {
		creds.ApiKey, err = GetAWSEncryptedParameter(ssmParam)
		if err != nil {
			Log.Errorf("Could not get api key from AWS: %v", err)
		}
	}

	if len(creds.ApiKey) == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("Could not load SendGrid %s", CredentialsKeyApiKey)}
	}

	if len(creds.ToAddr) == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("Could not load %s email address", CredentialsKeyToAddr)}
	}

	if len(creds.FromAddr) == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("Could not load %s email address", CredentialsKeyFromAddr)}
	}

	return creds, nil
}
