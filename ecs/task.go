package ecs

import (
	"context"
	"strings"

	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	log "github.com/sirupsen/logrus"
)

// ListTasks collects all of the task arns for a service in a cluster
func (e *ECS) ListTasks(ctx context.Context, cluster, service string) ([]*string, error) {
	if cluster == "" || service == "" {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Debugf("listing tasks in %s/%s", cluster, service)

	input := ecs.ListTasksInput{
		Cluster:     aws.String(cluster),
		ServiceName: aws.String(service),
	}

	output := []*string{}
	for {
		out, err := e.Service.ListTasksWithContext(ctx, &input)
		if err != nil {
			return output, ErrCode("failed to list tasks", err)
		}

		output = append(output, out.TaskArns...)

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	log.Debugf("got list of tasks for service '%s/%s': %+v", cluster, service, output)

	return output, nil
}

// GetTasks describes the given tasks in the given cluster
func (e *ECS) GetTasks(ctx context.Context, cluster string, tasks []*string) ([]*ecs.Task, error) {
	if cluster == "" || len(tasks) == 0 {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Debugf("getting cluster %s tasks %s", cluster, strings.Join(aws.StringValueSlice(tasks), ","))

	output, err := e.Service.DescribeTasksWithContext(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(cluster),
		Tasks:   tasks,
	})
	if err != nil {
		return nil, ErrCode("failed to describe tasks", err)
	}

	return output.Tasks, nil
}

// RunTask starts a one off task from a task definition
func (e *ECS) RunTask(ctx context.Context, input *ecs.RunTaskInput) (*ecs.RunTaskOutput, error) {
	if input == nil {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Infof("running task %s in cluster %s", aws.StringValue(input.TaskDefinition), aws.StringValue(input.Cluster))

	output, err := e.Service.RunTaskWithContext(ctx, input)
	if err != nil {
		return nil, ErrCode("failed to run task", err)
	}

	log.Debugf("output from run task: %+v", output)

	return output, nil
}
