// Package newrelic records deployments in the New Relic deployments API so
// releases show up as markers on application charts.
package newrelic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/YaleSpinup/ecs-deploy/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultEndpoint = "https://api.newrelic.com/v2"

// Client records deployments for one New Relic application
type Client struct {
	APIKey     string
	AppID      string
	User       string
	Endpoint   string
	HTTPClient *http.Client

	retryAttempts int
	retryBackoff  time.Duration
}

type deployment struct {
	Revision    string `json:"revision"`
	Changelog   string `json:"changelog,omitempty"`
	Description string `json:"description,omitempty"`
	User        string `json:"user,omitempty"`
}

type deploymentPayload struct {
	Deployment deployment `json:"deployment"`
}

// New creates a deployment recording client from the configuration
func New(config common.NewRelic, user string) *Client {
	return &Client{
		APIKey:     config.APIKey,
		AppID:      config.AppID,
		User:       user,
		Endpoint:   defaultEndpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},

		retryAttempts: 3,
		retryBackoff:  1 * time.Second,
	}
}

// Deploy records a deployment of the given revision.  The request is retried
// with backoff since a missed marker is worth a couple of attempts, but the
// caller decides whether a failure is fatal.
func (c *Client) Deploy(revision, changelog, description string) error {
	payload := deploymentPayload{
		Deployment: deployment{
			Revision:    revision,
			Changelog:   changelog,
			Description: description,
			User:        c.User,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal deployment payload")
	}

	url := fmt.Sprintf("%s/applications/%s/deployments.json", c.Endpoint, c.AppID)
	log.Infof("recording deployment of revision %s in new relic", revision)

	return common.Retry(c.retryAttempts, c.retryBackoff, func() error {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return errors.Wrap(err, "unable to create deployment request")
		}
		req.Header.Set("X-Api-Key", c.APIKey)
		req.Header.Set("Content-Type", "application/json")

		res, err := c.HTTPClient.Do(req)
		if err != nil {
			return errors.Wrap(err, "unable to post deployment")
		}
		defer res.Body.Close()

		if res.StatusCode > 299 {
			return errors.Errorf("recording deployment failed, status: %d", res.StatusCode)
		}

		log.Debugf("recorded deployment, got status %s", res.Status)
		return nil
	})
}
