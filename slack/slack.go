// Package slack posts deployment notifications to a slack incoming webhook.
// Notifications are best effort and never fail a deployment.
package slack

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/YaleSpinup/ecs-deploy/common"
	"github.com/YaleSpinup/ecs-deploy/orchestration"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Notifier posts deployment lifecycle notifications for services whose name
// matches the configured pattern
type Notifier struct {
	URL          string
	ServiceMatch *regexp.Regexp
	HTTPClient   *http.Client

	startedAt time.Time
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type attachment struct {
	Pretext string  `json:"pretext"`
	Color   string  `json:"color,omitempty"`
	Fields  []field `json:"fields"`
}

type payload struct {
	Username    string       `json:"username"`
	Attachments []attachment `json:"attachments"`
}

// New creates a notifier from the configuration.  An invalid service match
// pattern is an error; an empty one matches everything.
func New(config common.Slack) (*Notifier, error) {
	re, err := regexp.Compile(config.ServiceMatch)
	if err != nil {
		return nil, errors.Wrap(err, "invalid service match pattern")
	}

	return &Notifier{
		URL:          config.WebhookURL,
		ServiceMatch: re,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// NotifyStart announces a starting deployment with its pending changes.
// Environment values are masked since they routinely carry secrets.
func (n *Notifier) NotifyStart(cluster, service, tag, user, comment string, td *orchestration.TaskDefinition) {
	if n.skip(service) {
		return
	}

	n.startedAt = time.Now().UTC()

	fields := []field{
		{Title: "Cluster", Value: cluster, Short: true},
		{Title: "Service", Value: service, Short: true},
	}
	if tag != "" {
		fields = append(fields, field{Title: "Tag", Value: tag, Short: true})
	}
	if user != "" {
		fields = append(fields, field{Title: "User", Value: user, Short: true})
	}
	if comment != "" {
		fields = append(fields, field{Title: "Comment", Value: comment, Short: true})
	}

	for _, d := range td.Diffs() {
		if d.Field == "image" {
			if image, ok := d.Value.(string); ok && tag != "" && strings.HasSuffix(image, ":"+tag) {
				// tag-only image updates are already covered by the Tag field
				continue
			}
		}
		if d.Field == "environment" {
			fields = append(fields, field{Title: "Environment", Value: "_sensitive (therefore hidden)_", Short: true})
			continue
		}
		fields = append(fields, field{Title: d.Field, Value: d.String(), Short: false})
	}

	n.post("Deployment has started", "", fields)
}

// NotifySuccess announces a finished deployment with the new revision and
// its duration
func (n *Notifier) NotifySuccess(cluster, service, revision string) {
	if n.skip(service) {
		return
	}

	fields := []field{
		{Title: "Cluster", Value: cluster, Short: true},
		{Title: "Service", Value: service, Short: true},
		{Title: "Revision", Value: revision, Short: true},
		{Title: "Duration", Value: n.duration(), Short: true},
	}

	n.post("Deployment finished successfully", "good", fields)
}

// NotifyFailure announces a failed deployment with the error
func (n *Notifier) NotifyFailure(cluster, service, reason string) {
	if n.skip(service) {
		return
	}

	fields := []field{
		{Title: "Cluster", Value: cluster, Short: true},
		{Title: "Service", Value: service, Short: true},
		{Title: "Duration", Value: n.duration(), Short: true},
		{Title: "Error", Value: reason, Short: false},
	}

	n.post("Deployment failed", "danger", fields)
}

func (n *Notifier) skip(service string) bool {
	return n.URL == "" || !n.ServiceMatch.MatchString(service)
}

func (n *Notifier) duration() string {
	if n.startedAt.IsZero() {
		return ""
	}
	return time.Since(n.startedAt).Round(time.Second).String()
}

func (n *Notifier) post(title, color string, fields []field) {
	body, err := json.Marshal(payload{
		Username: "ECS Deploy",
		Attachments: []attachment{
			{Pretext: title, Color: color, Fields: fields},
		},
	})
	if err != nil {
		log.Warnf("failed to marshal slack payload: %s", err)
		return
	}

	res, err := n.HTTPClient.Post(n.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Warnf("failed to notify slack: %s", err)
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Warnf("failed to notify slack, status: %d", res.StatusCode)
	}
}
