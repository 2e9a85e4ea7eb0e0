// Package registry verifies that container image references resolve to a
// manifest in their registry before a deployment is allowed to use them.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/docker/distribution/reference"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Verifier is an image verification client for one image reference
type Verifier struct {
	Client *http.Client
	Name   string
	Host   string
	Path   string
	Tag    string
}

// NewVerifier parses an image reference into a verifier.  An unparseable
// reference is an error.
func NewVerifier(image string) (*Verifier, error) {
	ref, err := reference.ParseAnyReference(image)
	if err != nil {
		return nil, errors.Wrap(err, "invalid image reference "+image)
	}

	v := Verifier{
		Client: http.DefaultClient,
		Tag:    "latest",
	}

	if named, ok := ref.(reference.Named); ok {
		v.Name = named.Name()
		v.Path = reference.Path(named)
		v.Host = reference.Domain(named)
	}

	// the docker hub is served from a different host than its reference domain
	if v.Host == "docker.io" {
		v.Host = "registry-1.docker.io"
	}

	if tagged, ok := ref.(reference.NamedTagged); ok {
		if t := tagged.Tag(); t != "" {
			v.Tag = t
		}
	}

	return &v, nil
}

// Verify requests the manifest for the reference's tag from the registry.
// It returns false without an error when the registry answers but the
// manifest is missing or inaccessible.
func (v *Verifier) Verify(ctx context.Context) (bool, error) {
	url := "https://" + v.Host + "/v2/" + v.Path + "/manifests/" + v.Tag
	log.Debugf("verifying image %s with URL %s", v.Name, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errors.Wrap(err, "unable to create request for "+url)
	}
	req.Header.Set("Accept", "application/vnd.docker.distribution.manifest.v2+json")

	res, err := v.Client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "unable to request manifest")
	}
	defer res.Body.Close()

	code := res.StatusCode

	// retry once with a bearer token when the registry wants auth
	if code == http.StatusUnauthorized {
		token, err := v.bearerToken(ctx, res.Header.Get("Www-Authenticate"))
		if err != nil {
			return false, errors.Wrap(err, "failed to get bearer token")
		}

		req.Header.Set("Authorization", "Bearer "+token)
		authres, err := v.Client.Do(req)
		if err != nil {
			return false, errors.Wrap(err, "unable to make authenticated request")
		}
		defer authres.Body.Close()

		code = authres.StatusCode
	}

	if code >= 500 {
		return false, errors.Errorf("verify failed, status: %d", code)
	}

	if code >= 300 {
		log.Debugf("image %s not found in registry, got status %d", v.Name, code)
		return false, nil
	}

	log.Debugf("image %s exists, got status %d", v.Name, code)
	return true, nil
}

// bearerToken requests the token referenced in a Www-Authenticate header
func (v *Verifier) bearerToken(ctx context.Context, header string) (string, error) {
	if header == "" {
		return "", errors.New("empty authenticate header")
	}

	var realm, scope, service string
	for _, p := range strings.Split(strings.TrimPrefix(header, "Bearer "), ",") {
		p = strings.ReplaceAll(p, "\"", "")
		pv := strings.SplitN(p, "=", 2)
		if len(pv) != 2 {
			continue
		}
		switch pv[0] {
		case "realm":
			realm = pv[1]
		case "scope":
			scope = pv[1]
		case "service":
			service = pv[1]
		}
	}

	url := fmt.Sprintf("%s?scope=%s&service=%s", realm, scope, service)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "unable to create request for "+url)
	}

	res, err := v.Client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "unable to request token")
	}
	defer res.Body.Close()

	if res.StatusCode > 299 {
		return "", errors.New("bad response when requesting token: " + res.Status)
	}

	response := struct {
		Token string `json:"token"`
	}{}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return "", errors.Wrap(err, "failed to decode token")
	}

	return response.Token, nil
}
