package orchestration

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// WaitResult is the terminal state of a convergence wait
type WaitResult struct {
	// Deployed is true when the service converged with no deployment errors
	Deployed bool
	// TimedOut is true when the deadline passed before convergence
	TimedOut bool
	// Service is the last fetched snapshot, for error reporting
	Service *Service
}

// WaitForDeployment polls the service at a fixed interval until it converges
// on its task definition, reports a deployment error, or passes the
// deadline.  A placement error observed inside the active deployment window
// fails the wait immediately; plain non-convergence is only a failure once
// the timeout elapses, since transient non-convergence is expected during a
// normal rollout.  Remote errors and context cancellation abort the wait.
func (a *Action) WaitForDeployment(ctx context.Context, timeout time.Duration) (*WaitResult, error) {
	deadline := time.Now().Add(timeout)

	log.Debugf("waiting up to %s for %s/%s to converge", timeout, a.cluster, a.service)

	svc := a.svc
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}

		var err error
		if svc, err = a.GetService(ctx); err != nil {
			return nil, err
		}

		deployed, err := a.IsDeployed(ctx, svc)
		if err != nil {
			return nil, err
		}

		if len(svc.Errors()) > 0 {
			return &WaitResult{Service: svc}, nil
		}

		if deployed {
			return &WaitResult{Deployed: true, Service: svc}, nil
		}
	}

	return &WaitResult{TimedOut: true, Service: svc}, nil
}
