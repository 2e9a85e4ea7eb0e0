package ecs

import (
	"context"

	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	log "github.com/sirupsen/logrus"
)

// GetTaskDefinition gets a task definition by arn or family:revision
func (e *ECS) GetTaskDefinition(ctx context.Context, taskdefinition string) (*ecs.TaskDefinition, error) {
	if taskdefinition == "" {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Debugf("getting details about task definition '%s'", taskdefinition)

	output, err := e.Service.DescribeTaskDefinitionWithContext(ctx, &ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(taskdefinition),
	})
	if err != nil {
		return nil, ErrCode("failed to get task definition", err)
	}

	return output.TaskDefinition, nil
}

// RegisterTaskDefinition registers a new task definition revision
func (e *ECS) RegisterTaskDefinition(ctx context.Context, input *ecs.RegisterTaskDefinitionInput) (*ecs.TaskDefinition, error) {
	if input == nil {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Infof("registering task definition in family %s", aws.StringValue(input.Family))

	output, err := e.Service.RegisterTaskDefinitionWithContext(ctx, input)
	if err != nil {
		return nil, ErrCode("failed to register task definition", err)
	}

	log.Debugf("registered task definition: %+v", output.TaskDefinition)

	return output.TaskDefinition, nil
}

// DeregisterTaskDefinition deregisters a task definition revision
func (e *ECS) DeregisterTaskDefinition(ctx context.Context, taskdefinition string) error {
	if taskdefinition == "" {
		return apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Debugf("deregistering task definition '%s'", taskdefinition)

	if _, err := e.Service.DeregisterTaskDefinitionWithContext(ctx, &ecs.DeregisterTaskDefinitionInput{
		TaskDefinition: aws.String(taskdefinition),
	}); err != nil {
		return ErrCode("failed to deregister task definition", err)
	}

	return nil
}
