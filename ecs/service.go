package ecs

import (
	"context"

	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	log "github.com/sirupsen/logrus"
)

// GetService describes an ECS service in a cluster by the service name
func (e *ECS) GetService(ctx context.Context, cluster, service string) (*ecs.Service, error) {
	if cluster == "" || service == "" {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Debugf("getting details about service %s/%s", cluster, service)

	output, err := e.Service.DescribeServicesWithContext(ctx, &ecs.DescribeServicesInput{
		Cluster: aws.String(cluster),
		Services: []*string{
			aws.String(service),
		},
	})
	if err != nil {
		return nil, ErrCode("failed to get service", err)
	}

	log.Debugf("got service from DescribeServices: %+v", output)

	if len(output.Services) != 1 {
		return nil, apierror.New(apierror.ErrNotFound, "service not found", nil)
	}

	return output.Services[0], nil
}

// UpdateService submits the desired count and task definition for a service
func (e *ECS) UpdateService(ctx context.Context, input *ecs.UpdateServiceInput) (*ecs.Service, error) {
	if input == nil {
		return nil, apierror.New(apierror.ErrBadRequest, "invalid input", nil)
	}

	log.Infof("updating service %s/%s", aws.StringValue(input.Cluster), aws.StringValue(input.Service))

	output, err := e.Service.UpdateServiceWithContext(ctx, input)
	if err != nil {
		return nil, ErrCode("failed to update service", err)
	}

	return output.Service, nil
}
