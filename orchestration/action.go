// Package orchestration implements the deployment workflows on top of the
// ecs wrapper: modeling task definitions and services, mutating definitions
// with an audit diff, and rolling services onto new revisions.
package orchestration

import (
	"context"
	"time"

	"github.com/YaleSpinup/ecs-deploy/ecs"
	"github.com/aws/aws-sdk-go/aws"
	awsecs "github.com/aws/aws-sdk-go/service/ecs"
	log "github.com/sirupsen/logrus"
)

// taskStatusRunning is the last status of a placed and running ECS task
const taskStatusRunning = "RUNNING"

// Action is the base workflow bound to one service in one cluster.
// Construction synchronously fetches the current service state and fails
// fast with a ConnectionError when it can't.
type Action struct {
	ecs     ecs.ECS
	cluster string
	service string
	svc     *Service

	pollInterval time.Duration
}

func newAction(ctx context.Context, e ecs.ECS, cluster, service string) (*Action, error) {
	a := &Action{
		ecs:          e,
		cluster:      cluster,
		service:      service,
		pollInterval: 1 * time.Second,
	}

	svc, err := a.GetService(ctx)
	if err != nil {
		return nil, ConnectionError{Cluster: cluster, Service: service, Err: err}
	}
	a.svc = svc

	return a, nil
}

// Service returns the most recently fetched service state
func (a *Action) Service() *Service {
	return a.svc
}

// GetService fetches a fresh snapshot of the service
func (a *Action) GetService(ctx context.Context) (*Service, error) {
	svc, err := a.ecs.GetService(ctx, a.cluster, a.service)
	if err != nil {
		return nil, err
	}
	return newService(a.cluster, svc), nil
}

// GetTaskDefinition models a task definition by arn or family:revision
func (a *Action) GetTaskDefinition(ctx context.Context, taskDefinition string) (*TaskDefinition, error) {
	return getTaskDefinition(ctx, a.ecs, taskDefinition)
}

func getTaskDefinition(ctx context.Context, e ecs.ECS, taskDefinition string) (*TaskDefinition, error) {
	td, err := e.GetTaskDefinition(ctx, taskDefinition)
	if err != nil {
		return nil, UnknownTaskDefinitionError{TaskDefinition: taskDefinition, Err: err}
	}
	return NewTaskDefinition(td), nil
}

// CurrentTaskDefinition fetches the task definition the service currently
// points at
func (a *Action) CurrentTaskDefinition(ctx context.Context) (*TaskDefinition, error) {
	return a.GetTaskDefinition(ctx, a.svc.TaskDefinition)
}

// UpdateTaskDefinition registers the mutated definition as a new revision
// and deregisters the one it replaced.  The two calls are not atomic: when
// deregistration fails, the new revision already exists and the old one is
// left registered.
func (a *Action) UpdateTaskDefinition(ctx context.Context, td *TaskDefinition) (*TaskDefinition, error) {
	out, err := a.ecs.RegisterTaskDefinition(ctx, td.RegisterInput())
	if err != nil {
		return nil, err
	}
	registered := NewTaskDefinition(out)

	log.Infof("registered task definition revision %s", registered.FamilyRevision())

	if err := a.ecs.DeregisterTaskDefinition(ctx, td.Arn); err != nil {
		return nil, err
	}

	return registered, nil
}

// UpdateService submits the in-memory desired count and task definition of
// the given service and returns the updated remote state
func (a *Action) UpdateService(ctx context.Context, svc *Service) (*Service, error) {
	out, err := a.ecs.UpdateService(ctx, &awsecs.UpdateServiceInput{
		Cluster:        aws.String(svc.Cluster),
		Service:        aws.String(svc.Name),
		DesiredCount:   aws.Int64(svc.DesiredCount),
		TaskDefinition: aws.String(svc.TaskDefinition),
	})
	if err != nil {
		return nil, err
	}
	return newService(a.cluster, out), nil
}

// IsDeployed decides whether the service has converged.  More than one
// deployment record means a rollout is still transitioning and is never
// converged.  A desired count of zero converges once the task list is empty,
// without describing tasks.
func (a *Action) IsDeployed(ctx context.Context, svc *Service) (bool, error) {
	if len(svc.Deployments) != 1 {
		return false, nil
	}

	tasks, err := a.ecs.ListTasks(ctx, svc.Cluster, svc.Name)
	if err != nil {
		return false, err
	}
	if len(tasks) == 0 {
		return svc.DesiredCount == 0, nil
	}

	running, err := a.runningTasksCount(ctx, svc, tasks)
	if err != nil {
		return false, err
	}

	return running == svc.DesiredCount, nil
}

// runningTasksCount counts RUNNING tasks placed from the service's current
// task definition
func (a *Action) runningTasksCount(ctx context.Context, svc *Service, tasks []*string) (int64, error) {
	details, err := a.ecs.GetTasks(ctx, a.cluster, tasks)
	if err != nil {
		return 0, err
	}

	var running int64
	for _, t := range details {
		if aws.StringValue(t.TaskDefinitionArn) == svc.TaskDefinition && aws.StringValue(t.LastStatus) == taskStatusRunning {
			running++
		}
	}

	return running, nil
}

// DeployAction rolls a service onto a new task definition revision
type DeployAction struct {
	*Action
}

func NewDeployAction(ctx context.Context, e ecs.ECS, cluster, service string) (*DeployAction, error) {
	a, err := newAction(ctx, e, cluster, service)
	if err != nil {
		return nil, err
	}
	return &DeployAction{a}, nil
}

// Deploy points the service at the given task definition and submits the
// service update
func (a *DeployAction) Deploy(ctx context.Context, td *TaskDefinition) (*Service, error) {
	a.svc.SetTaskDefinition(td)

	svc, err := a.UpdateService(ctx, a.svc)
	if err != nil {
		return nil, err
	}
	a.svc = svc

	return svc, nil
}

// ScaleAction changes the desired task count of a service
type ScaleAction struct {
	*Action
}

func NewScaleAction(ctx context.Context, e ecs.ECS, cluster, service string) (*ScaleAction, error) {
	a, err := newAction(ctx, e, cluster, service)
	if err != nil {
		return nil, err
	}
	return &ScaleAction{a}, nil
}

// Scale sets the desired count and submits the service update
func (a *ScaleAction) Scale(ctx context.Context, desiredCount int64) (*Service, error) {
	a.svc.SetDesiredCount(desiredCount)

	svc, err := a.UpdateService(ctx, a.svc)
	if err != nil {
		return nil, err
	}
	a.svc = svc

	return svc, nil
}

// RunAction launches one off tasks.  It is bound to a cluster but not to a
// service, so construction performs no fetch.
type RunAction struct {
	ecs     ecs.ECS
	cluster string

	// StartedTasks holds the arns of tasks placed by the last Run
	StartedTasks []string
	// Failures holds the per task placement failures from the last Run
	Failures []*awsecs.Failure
}

func NewRunAction(e ecs.ECS, cluster string) *RunAction {
	return &RunAction{ecs: e, cluster: cluster}
}

// GetTaskDefinition models a task definition by arn or family:revision
func (a *RunAction) GetTaskDefinition(ctx context.Context, taskDefinition string) (*TaskDefinition, error) {
	return getTaskDefinition(ctx, a.ecs, taskDefinition)
}

// Run launches count copies of the task definition revision with the
// container overrides accumulated on it.  A partial placement is a valid
// outcome reported through the returned bool, not an error.
func (a *RunAction) Run(ctx context.Context, td *TaskDefinition, count int64, startedBy string) (bool, error) {
	out, err := a.ecs.RunTask(ctx, &awsecs.RunTaskInput{
		Cluster:        aws.String(a.cluster),
		TaskDefinition: aws.String(td.FamilyRevision()),
		Count:          aws.Int64(count),
		StartedBy:      aws.String(startedBy),
		Overrides: &awsecs.TaskOverride{
			ContainerOverrides: td.Overrides(),
		},
	})
	if err != nil {
		return false, err
	}

	started := make([]string, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		started = append(started, aws.StringValue(t.TaskArn))
	}
	a.StartedTasks = started
	a.Failures = out.Failures

	return len(out.Failures) == 0, nil
}
