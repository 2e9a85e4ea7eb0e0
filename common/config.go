package common

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config is representation of the configuration data
type Config struct {
	Account  Account
	LogLevel string
	NewRelic NewRelic
	Slack    Slack
}

// Account is the AWS account configuration used for building sessions
type Account struct {
	Region  string
	Akid    string
	Secret  string
	Profile string
}

// NewRelic is the configuration for recording deployments in New Relic
type NewRelic struct {
	APIKey string
	AppID  string
}

// Slack is the configuration for notifying a slack webhook about deployments
type Slack struct {
	WebhookURL string
	// ServiceMatch is a regular expression limiting which services notify
	ServiceMatch string
}

// ReadConfig decodes the configuration from an io Reader
func ReadConfig(r io.Reader) (Config, error) {
	var c Config
	log.Infoln("Reading configuration")
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return c, errors.Wrap(err, "unable to decode JSON message")
	}
	return c, nil
}
