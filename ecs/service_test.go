package ecs

import (
	"context"
	"testing"

	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/pkg/errors"
)

func TestGetService(t *testing.T) {
	client := newmockECSClient(t, nil)
	client.service = &ecs.Service{
		ServiceName:  aws.String("svc0"),
		DesiredCount: aws.Int64(2),
	}
	e := ECS{Service: client}

	service, err := e.GetService(context.TODO(), "clu0", "svc0")
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if aws.StringValue(service.ServiceName) != "svc0" {
		t.Errorf("expected service svc0, got %s", aws.StringValue(service.ServiceName))
	}

	// empty cluster and service are invalid input
	for _, in := range [][]string{{"", "svc0"}, {"clu0", ""}, {"", ""}} {
		if _, err := e.GetService(context.TODO(), in[0], in[1]); err == nil {
			t.Errorf("expected error for input %v, got nil", in)
		}
	}
}

func TestGetService_NotFound(t *testing.T) {
	e := ECS{Service: newmockECSClient(t, nil)}

	_, err := e.GetService(context.TODO(), "clu0", "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if aerr, ok := errors.Cause(err).(apierror.Error); !ok || aerr.Code != apierror.ErrNotFound {
		t.Errorf("expected apierror.ErrNotFound, got %s", err)
	}
}

func TestGetService_AWSError(t *testing.T) {
	e := ECS{Service: newmockECSClient(t, awserr.New(ecs.ErrCodeServerException, "boom", nil))}

	_, err := e.GetService(context.TODO(), "clu0", "svc0")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if aerr, ok := errors.Cause(err).(apierror.Error); !ok || aerr.Code != apierror.ErrInternalError {
		t.Errorf("expected apierror.ErrInternalError, got %s", err)
	}
}

func TestUpdateService(t *testing.T) {
	client := newmockECSClient(t, nil)
	client.service = &ecs.Service{
		ServiceName:  aws.String("svc0"),
		DesiredCount: aws.Int64(5),
	}
	e := ECS{Service: client}

	service, err := e.UpdateService(context.TODO(), &ecs.UpdateServiceInput{
		Cluster:      aws.String("clu0"),
		Service:      aws.String("svc0"),
		DesiredCount: aws.Int64(5),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if aws.Int64Value(service.DesiredCount) != 5 {
		t.Errorf("expected desired count 5, got %d", aws.Int64Value(service.DesiredCount))
	}
	if aws.Int64Value(client.updateInput.DesiredCount) != 5 {
		t.Errorf("expected submitted desired count 5, got %d", aws.Int64Value(client.updateInput.DesiredCount))
	}

	if _, err := e.UpdateService(context.TODO(), nil); err == nil {
		t.Error("expected error for nil input, got nil")
	}
}
