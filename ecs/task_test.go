package ecs

import (
	"context"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
)

func TestListTasks(t *testing.T) {
	client := newmockECSClient(t, nil)
	client.taskPages = [][]*string{
		aws.StringSlice([]string{"task1", "task2"}),
	}
	e := ECS{Service: client}

	tasks, err := e.ListTasks(context.TODO(), "clu0", "svc0")
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if !reflect.DeepEqual(aws.StringValueSlice(tasks), []string{"task1", "task2"}) {
		t.Errorf("expected [task1 task2], got %v", aws.StringValueSlice(tasks))
	}

	for _, in := range [][]string{{"", "svc0"}, {"clu0", ""}} {
		if _, err := e.ListTasks(context.TODO(), in[0], in[1]); err == nil {
			t.Errorf("expected error for input %v, got nil", in)
		}
	}
}

func TestListTasks_Paged(t *testing.T) {
	client := newmockECSClient(t, nil)
	client.taskPages = [][]*string{
		aws.StringSlice([]string{"task1", "task2"}),
		aws.StringSlice([]string{"task3"}),
		aws.StringSlice([]string{"task4"}),
	}
	e := ECS{Service: client}

	tasks, err := e.ListTasks(context.TODO(), "clu0", "svc0")
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if !reflect.DeepEqual(aws.StringValueSlice(tasks), []string{"task1", "task2", "task3", "task4"}) {
		t.Errorf("expected all pages collected, got %v", aws.StringValueSlice(tasks))
	}
}

func TestGetTasks(t *testing.T) {
	client := newmockECSClient(t, nil)
	client.tasks = []*ecs.Task{
		{TaskArn: aws.String("task1"), LastStatus: aws.String("RUNNING")},
		{TaskArn: aws.String("task2"), LastStatus: aws.String("PENDING")},
	}
	e := ECS{Service: client}

	tasks, err := e.GetTasks(context.TODO(), "clu0", aws.StringSlice([]string{"task1", "task2"}))
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(tasks))
	}

	if _, err := e.GetTasks(context.TODO(), "", aws.StringSlice([]string{"task1"})); err == nil {
		t.Error("expected error for empty cluster, got nil")
	}
	if _, err := e.GetTasks(context.TODO(), "clu0", nil); err == nil {
		t.Error("expected error for empty task list, got nil")
	}
}

func TestRunTask(t *testing.T) {
	client := newmockECSClient(t, nil)
	client.runOut = &ecs.RunTaskOutput{
		Tasks: []*ecs.Task{
			{TaskArn: aws.String("arn:aws:ecs:us-east-1:1234567890:task/task1")},
		},
	}
	e := ECS{Service: client}

	out, err := e.RunTask(context.TODO(), &ecs.RunTaskInput{
		Cluster:        aws.String("clu0"),
		TaskDefinition: aws.String("webapp:42"),
		Count:          aws.Int64(1),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %s", err)
	}
	if len(out.Tasks) != 1 {
		t.Errorf("expected 1 started task, got %d", len(out.Tasks))
	}

	if _, err := e.RunTask(context.TODO(), nil); err == nil {
		t.Error("expected error for nil input, got nil")
	}
}
