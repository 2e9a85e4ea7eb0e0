package common

import (
	"bytes"
	"reflect"
	"testing"
)

var testConfig = []byte(
	`{
		"account": {
			"region": "us-east-1",
			"akid": "key1",
			"secret": "secret1"
		},
		"logLevel": "debug",
		"newRelic": {
			"apiKey": "nrkey",
			"appID": "12345"
		},
		"slack": {
			"webhookURL": "https://hooks.slack.example/x",
			"serviceMatch": "^prod-"
		}
	}`)

var brokenConfig = []byte(`{ "account": { }`)

func TestReadConfig(t *testing.T) {
	expected := Config{
		Account: Account{
			Region: "us-east-1",
			Akid:   "key1",
			Secret: "secret1",
		},
		LogLevel: "debug",
		NewRelic: NewRelic{
			APIKey: "nrkey",
			AppID:  "12345",
		},
		Slack: Slack{
			WebhookURL:   "https://hooks.slack.example/x",
			ServiceMatch: "^prod-",
		},
	}

	actual, err := ReadConfig(bytes.NewReader(testConfig))
	if err != nil {
		t.Error("Failed to read config", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected config to be %+v\n got %+v", expected, actual)
	}

	if _, err := ReadConfig(bytes.NewReader(brokenConfig)); err == nil {
		t.Error("expected error from broken config, got nil")
	}
}
