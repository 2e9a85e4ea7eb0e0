package orchestration

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
)

// statusPrimary marks the deployment record for the revision the service is
// converging on
const statusPrimary = "PRIMARY"

// errorMarker is the substring ECS uses in lifecycle events reporting task
// placement failures ("unable to place a task ...")
const errorMarker = "unable"

// Service is the running deployment state of an ECS service.  It is fetched
// fresh on every poll iteration and never cached beyond one.
type Service struct {
	Cluster        string
	Name           string
	DesiredCount   int64
	TaskDefinition string
	Deployments    []*Deployment
	Events         []*Event
}

// Deployment is one rollout transition record of a service
type Deployment struct {
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is one lifecycle event of a service
type Event struct {
	CreatedAt time.Time
	Message   string
}

func newService(cluster string, svc *ecs.Service) *Service {
	deployments := make([]*Deployment, 0, len(svc.Deployments))
	for _, d := range svc.Deployments {
		deployments = append(deployments, &Deployment{
			Status:    aws.StringValue(d.Status),
			CreatedAt: aws.TimeValue(d.CreatedAt),
			UpdatedAt: aws.TimeValue(d.UpdatedAt),
		})
	}

	events := make([]*Event, 0, len(svc.Events))
	for _, e := range svc.Events {
		events = append(events, &Event{
			CreatedAt: aws.TimeValue(e.CreatedAt),
			Message:   aws.StringValue(e.Message),
		})
	}

	return &Service{
		Cluster:        cluster,
		Name:           aws.StringValue(svc.ServiceName),
		DesiredCount:   aws.Int64Value(svc.DesiredCount),
		TaskDefinition: aws.StringValue(svc.TaskDefinition),
		Deployments:    deployments,
		Events:         events,
	}
}

// SetDesiredCount changes the in-memory desired count; the change is only
// submitted through an action's UpdateService
func (s *Service) SetDesiredCount(count int64) {
	s.DesiredCount = count
}

// SetTaskDefinition points the in-memory service at a task definition
func (s *Service) SetTaskDefinition(td *TaskDefinition) {
	s.TaskDefinition = td.Arn
}

// DeploymentCreatedAt is the creation time of the PRIMARY deployment.  The
// fallback to the current instant covers the degenerate case of a service
// without one.
func (s *Service) DeploymentCreatedAt() time.Time {
	for _, d := range s.Deployments {
		if d.Status == statusPrimary {
			return d.CreatedAt
		}
	}
	return time.Now()
}

// DeploymentUpdatedAt is the last update time of the PRIMARY deployment
func (s *Service) DeploymentUpdatedAt() time.Time {
	for _, d := range s.Deployments {
		if d.Status == statusPrimary {
			return d.UpdatedAt
		}
	}
	return time.Now()
}

// Errors returns placement failure events caused by the deployment in
// flight, keyed by timestamp
func (s *Service) Errors() map[time.Time]string {
	return s.warnings(s.DeploymentUpdatedAt(), time.Now())
}

// OlderErrors returns placement failure events that predate the current
// deployment window and are historical rather than caused by it
func (s *Service) OlderErrors() map[time.Time]string {
	return s.warnings(s.DeploymentCreatedAt(), s.DeploymentUpdatedAt())
}

func (s *Service) warnings(since, until time.Time) map[time.Time]string {
	warnings := map[time.Time]string{}
	for _, e := range s.Events {
		if strings.Contains(e.Message, errorMarker) && e.CreatedAt.After(since) && e.CreatedAt.Before(until) {
			warnings[e.CreatedAt] = e.Message
		}
	}
	return warnings
}
