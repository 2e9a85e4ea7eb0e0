package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewVerifier(t *testing.T) {
	tests := []struct {
		image string
		host  string
		path  string
		tag   string
	}{
		{
			image: "nginx",
			host:  "registry-1.docker.io",
			path:  "library/nginx",
			tag:   "latest",
		},
		{
			image: "nginx:1.25",
			host:  "registry-1.docker.io",
			path:  "library/nginx",
			tag:   "1.25",
		},
		{
			image: "yale/webapp:v1.2.3",
			host:  "registry-1.docker.io",
			path:  "yale/webapp",
			tag:   "v1.2.3",
		},
		{
			image: "registry.example.org/team/webapp:canary",
			host:  "registry.example.org",
			path:  "team/webapp",
			tag:   "canary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.image, func(t *testing.T) {
			v, err := NewVerifier(tt.image)
			if err != nil {
				t.Fatalf("expected nil error, got %s", err)
			}
			if v.Host != tt.host {
				t.Errorf("expected host %s, got %s", tt.host, v.Host)
			}
			if v.Path != tt.path {
				t.Errorf("expected path %s, got %s", tt.path, v.Path)
			}
			if v.Tag != tt.tag {
				t.Errorf("expected tag %s, got %s", tt.tag, v.Tag)
			}
		})
	}

	if _, err := NewVerifier("UPPERCASE_IS_INVALID!!"); err == nil {
		t.Error("expected error for an unparseable reference, got nil")
	}
}

func testRegistry(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Verifier) {
	srv := httptest.NewTLSServer(handler)

	v, err := NewVerifier("registry.example.org/team/webapp:canary")
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	v.Host = strings.TrimPrefix(srv.URL, "https://")
	v.Client = srv.Client()

	return srv, v
}

func TestVerifier_Verify(t *testing.T) {
	srv, v := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/team/webapp/manifests/canary" {
			t.Errorf("unexpected manifest path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	ok, err := v.Verify(context.TODO())
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if !ok {
		t.Error("expected the image to verify")
	}
}

func TestVerifier_VerifyMissing(t *testing.T) {
	srv, v := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	ok, err := v.Verify(context.TODO())
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if ok {
		t.Error("expected a missing manifest not to verify")
	}
}

func TestVerifier_VerifyServerError(t *testing.T) {
	srv, v := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	if _, err := v.Verify(context.TODO()); err == nil {
		t.Error("expected a server error to be an error, got nil")
	}
}

func TestVerifier_VerifyWithToken(t *testing.T) {
	var srv *httptest.Server

	srv, v := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			if r.URL.Query().Get("scope") != "repository:team/webapp:pull" {
				t.Errorf("unexpected token scope %s", r.URL.Query().Get("scope"))
			}
			json.NewEncoder(w).Encode(struct {
				Token string `json:"token"`
			}{Token: "tok123"})
		case "/v2/team/webapp/manifests/canary":
			if r.Header.Get("Authorization") != "Bearer tok123" {
				w.Header().Set("Www-Authenticate", `Bearer realm="`+srv.URL+`/token",service="registry.example.org",scope="repository:team/webapp:pull"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
	})
	defer srv.Close()

	ok, err := v.Verify(context.TODO())
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if !ok {
		t.Error("expected the image to verify after token auth")
	}
}
