package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/YaleSpinup/ecs-deploy/orchestration"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

// parsePairs parses repeatable <container>=<value> flags into a mapping.
// The value may itself contain '=' characters.
func parsePairs(pairs []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, p := range pairs {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, errors.Errorf("invalid option '%s', expected <container>=<value>", p)
		}
		parsed[kv[0]] = kv[1]
	}
	return parsed, nil
}

// parseEnvVars parses repeatable <container>=<name>=<value> flags
func parseEnvVars(vars []string) ([]orchestration.EnvVar, error) {
	parsed := make([]orchestration.EnvVar, 0, len(vars))
	for _, v := range vars {
		kv := strings.SplitN(v, "=", 3)
		if len(kv) != 3 || kv[0] == "" || kv[1] == "" {
			return nil, errors.Errorf("invalid option '%s', expected <container>=<name>=<value>", v)
		}
		parsed = append(parsed, orchestration.EnvVar{Container: kv[0], Name: kv[1], Value: kv[2]})
	}
	return parsed, nil
}

// printDiffs renders the pending task definition changes before anything is
// submitted
func printDiffs(td *orchestration.TaskDefinition) {
	diffs := td.Diffs()
	if len(diffs) == 0 {
		return
	}

	fmt.Println("Updating task definition")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Container", "Field", "Old", "New"})
	table.SetAutoWrapText(false)
	for _, d := range diffs {
		container := d.Container
		if container == "" {
			container = "-"
		}
		table.Append([]string{container, d.Field, formatValue(d.OldValue), formatValue(d.Value)})
	}
	table.Render()
	fmt.Println()
}

func formatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case string:
		return value
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(b)
	}
}

// printServiceErrors reports the deployment errors from the last fetched
// service snapshot, current ones first, historical ones after
func printServiceErrors(result *orchestration.WaitResult) {
	if result.TimedOut {
		fmt.Fprintln(os.Stderr, "\nDeployment failed (timeout)")
	} else {
		fmt.Fprintln(os.Stderr, "\nDeployment failed")
	}

	if result.Service == nil {
		return
	}

	printErrorEvents(result.Service.Errors())

	if older := result.Service.OlderErrors(); len(older) > 0 {
		fmt.Fprintln(os.Stderr, "Older errors")
		printErrorEvents(older)
	}
}

func printErrorEvents(events map[time.Time]string) {
	timestamps := make([]time.Time, 0, len(events))
	for ts := range events {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	for _, ts := range timestamps {
		fmt.Fprintf(os.Stderr, "%s\n%s\n\n", ts, events[ts])
	}
}
