package orchestration

import "fmt"

// ConnectionError indicates the service could not be reached or located while
// constructing an action.  An action whose construction failed is unusable.
type ConnectionError struct {
	Cluster string
	Service string
	Err     error
}

func (e ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to connect to service %s/%s: %s", e.Cluster, e.Service, e.Err)
	}
	return fmt.Sprintf("unable to connect to service %s/%s", e.Cluster, e.Service)
}

func (e ConnectionError) Unwrap() error { return e.Err }

// UnknownContainerError is returned when a mutation names a container that is
// not part of the task definition.  It is raised before any mutation from
// that call is applied.
type UnknownContainerError struct {
	Container string
}

func (e UnknownContainerError) Error() string {
	return fmt.Sprintf("unknown container: %s", e.Container)
}

// UnknownTaskDefinitionError is returned when the service does not recognize
// a task definition arn or family:revision.
type UnknownTaskDefinitionError struct {
	TaskDefinition string
	Err            error
}

func (e UnknownTaskDefinitionError) Error() string {
	return fmt.Sprintf("unknown task definition: %s", e.TaskDefinition)
}

func (e UnknownTaskDefinitionError) Unwrap() error { return e.Err }
