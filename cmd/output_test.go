package cmd

import (
	"reflect"
	"testing"

	"github.com/YaleSpinup/ecs-deploy/orchestration"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "empty",
			input: []string{},
			want:  map[string]string{},
		},
		{
			name:  "single pair",
			input: []string{"web=nginx:1.25"},
			want:  map[string]string{"web": "nginx:1.25"},
		},
		{
			name:  "value keeps extra separators",
			input: []string{"worker=run.sh --mode=batch"},
			want:  map[string]string{"worker": "run.sh --mode=batch"},
		},
		{
			name:  "last value wins",
			input: []string{"web=nginx:1.24", "web=nginx:1.25"},
			want:  map[string]string{"web": "nginx:1.25"},
		},
		{
			name:    "missing separator",
			input:   []string{"web"},
			wantErr: true,
		},
		{
			name:    "empty container name",
			input:   []string{"=nginx:1.25"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePairs(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected nil error, got %s", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePairs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEnvVars(t *testing.T) {
	got, err := parseEnvVars([]string{"web=SOME_VARIABLE=some value", "web=OTHER=a=b=c"})
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}

	want := []orchestration.EnvVar{
		{Container: "web", Name: "SOME_VARIABLE", Value: "some value"},
		{Container: "web", Name: "OTHER", Value: "a=b=c"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseEnvVars() = %v, want %v", got, want)
	}

	for _, invalid := range []string{"web", "web=NAME", "=NAME=value", "web==value"} {
		if _, err := parseEnvVars([]string{invalid}); err == nil {
			t.Errorf("expected error for input %q, got nil", invalid)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{
			name:  "nil",
			input: nil,
			want:  "-",
		},
		{
			name:  "string",
			input: "nginx:1.25",
			want:  "nginx:1.25",
		},
		{
			name:  "slice",
			input: []string{"run.sh", "--once"},
			want:  `["run.sh","--once"]`,
		},
		{
			name:  "map",
			input: map[string]string{"A": "1"},
			want:  `{"A":"1"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.input); got != tt.want {
				t.Errorf("formatValue() = %s, want %s", got, tt.want)
			}
		})
	}
}
