package orchestration

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
)

// TaskDefinition is the in-memory representation of an ECS task definition.
// It is built from a remote snapshot, mutated in place and registered as a
// new revision.  Every mutation is recorded as a diff so pending changes can
// be rendered for the operator and converted into container overrides for
// one off tasks.  The diff list accumulates for the lifetime of the instance
// and is only reset by fetching a fresh one.
type TaskDefinition struct {
	Arn        string
	Family     string
	Revision   int64
	RoleArn    string
	Containers []*Container

	volumes []*ecs.Volume
	diffs   []*Diff
}

// Container is a single container spec within a task definition
type Container struct {
	Name        string
	Image       string
	Command     []string
	Environment map[string]string

	// def retains the raw container definition so that fields outside the
	// model (cpu, memory, ports, mounts, ...) survive re-registration
	def *ecs.ContainerDefinition
}

// EnvVar is one environment variable assignment for a named container
type EnvVar struct {
	Container string
	Name      string
	Value     string
}

// NewTaskDefinition models a task definition from a remote snapshot
func NewTaskDefinition(td *ecs.TaskDefinition) *TaskDefinition {
	containers := make([]*Container, 0, len(td.ContainerDefinitions))
	for _, def := range td.ContainerDefinitions {
		env := map[string]string{}
		for _, kv := range def.Environment {
			env[aws.StringValue(kv.Name)] = aws.StringValue(kv.Value)
		}

		containers = append(containers, &Container{
			Name:        aws.StringValue(def.Name),
			Image:       aws.StringValue(def.Image),
			Command:     aws.StringValueSlice(def.Command),
			Environment: env,
			def:         def,
		})
	}

	return &TaskDefinition{
		Arn:        aws.StringValue(td.TaskDefinitionArn),
		Family:     aws.StringValue(td.Family),
		Revision:   aws.Int64Value(td.Revision),
		RoleArn:    aws.StringValue(td.TaskRoleArn),
		Containers: containers,
		volumes:    td.Volumes,
	}
}

// FamilyRevision identifies this revision as family:revision
func (t *TaskDefinition) FamilyRevision() string {
	return fmt.Sprintf("%s:%d", t.Family, t.Revision)
}

// Diffs returns the accumulated record of mutations in application order
func (t *TaskDefinition) Diffs() []*Diff {
	return t.diffs
}

// SetImages updates container images.  An explicit override replaces the
// image of the named container wholesale; containers without an override get
// the global tag substituted onto their current repository when one is given,
// and are left untouched otherwise.  All override names are validated before
// anything is mutated.
func (t *TaskDefinition) SetImages(tag string, images map[string]string) error {
	if err := t.validateContainers(mapKeys(images)...); err != nil {
		return err
	}

	for _, c := range t.Containers {
		if image, ok := images[c.Name]; ok {
			t.record(&Diff{Container: c.Name, Field: "image", Value: image, OldValue: c.Image})
			c.Image = image
		} else if tag != "" {
			repository := c.Image
			if i := strings.LastIndex(repository, ":"); i >= 0 {
				repository = repository[:i]
			}
			image := repository + ":" + strings.TrimSpace(tag)
			t.record(&Diff{Container: c.Name, Field: "image", Value: image, OldValue: c.Image})
			c.Image = image
		}
	}

	return nil
}

// SetCommands replaces the command of each named container.  The override is
// one opaque command string, wrapped in a single element list rather than
// tokenized.
func (t *TaskDefinition) SetCommands(commands map[string]string) error {
	if err := t.validateContainers(mapKeys(commands)...); err != nil {
		return err
	}

	for _, c := range t.Containers {
		if command, ok := commands[c.Name]; ok {
			t.record(&Diff{Container: c.Name, Field: "command", Value: command, OldValue: c.Command})
			c.Command = []string{command}
		}
	}

	return nil
}

// SetEnvironment merges environment variables into their containers.  New
// values win on collision, every other existing variable is preserved, and
// the container ends up with the full merged mapping.  One diff per affected
// container captures the merged result against the old mapping.
func (t *TaskDefinition) SetEnvironment(vars []EnvVar) error {
	grouped := map[string]map[string]string{}
	for _, v := range vars {
		if grouped[v.Container] == nil {
			grouped[v.Container] = map[string]string{}
		}
		grouped[v.Container][v.Name] = v.Value
	}

	targets := make([]string, 0, len(grouped))
	for name := range grouped {
		targets = append(targets, name)
	}
	if err := t.validateContainers(targets...); err != nil {
		return err
	}

	for _, c := range t.Containers {
		env, ok := grouped[c.Name]
		if !ok {
			continue
		}

		old := map[string]string{}
		merged := map[string]string{}
		for name, value := range c.Environment {
			old[name] = value
			merged[name] = value
		}
		for name, value := range env {
			merged[name] = value
		}

		t.record(&Diff{Container: c.Name, Field: "environment", Value: merged, OldValue: old})
		c.Environment = merged
	}

	return nil
}

// SetRoleArn replaces the task role arn, recording a definition level diff.
// An empty value is a no-op.
func (t *TaskDefinition) SetRoleArn(roleArn string) {
	if roleArn == "" {
		return
	}

	t.record(&Diff{Field: "role_arn", Value: roleArn, OldValue: t.RoleArn})
	t.RoleArn = roleArn
}

// Overrides derives the container override payload for one off tasks from
// the accumulated diffs.  Consecutive diffs for the same container fold into
// one override record; a command diff becomes a space tokenized argument
// list and an environment diff becomes name/value pairs.
func (t *TaskDefinition) Overrides() []*ecs.ContainerOverride {
	overrides := []*ecs.ContainerOverride{}

	var current *ecs.ContainerOverride
	for _, d := range t.diffs {
		if d.Container == "" {
			// definition level fields have no container override equivalent
			continue
		}

		if current == nil || aws.StringValue(current.Name) != d.Container {
			current = &ecs.ContainerOverride{Name: aws.String(d.Container)}
			overrides = append(overrides, current)
		}

		switch d.Field {
		case "command":
			if command, ok := d.Value.(string); ok {
				current.Command = aws.StringSlice(strings.Split(command, " "))
			}
		case "environment":
			if env, ok := d.Value.(map[string]string); ok {
				current.Environment = keyValuePairs(env)
			}
		}
	}

	return overrides
}

// RegisterInput builds the registration payload for a new revision, writing
// the modeled fields back onto the retained container definitions
func (t *TaskDefinition) RegisterInput() *ecs.RegisterTaskDefinitionInput {
	defs := make([]*ecs.ContainerDefinition, 0, len(t.Containers))
	for _, c := range t.Containers {
		defs = append(defs, c.definition())
	}

	input := &ecs.RegisterTaskDefinitionInput{
		Family:               aws.String(t.Family),
		ContainerDefinitions: defs,
		Volumes:              t.volumes,
	}
	if t.RoleArn != "" {
		input.TaskRoleArn = aws.String(t.RoleArn)
	}

	return input
}

func (c *Container) definition() *ecs.ContainerDefinition {
	def := c.def
	if def == nil {
		def = &ecs.ContainerDefinition{}
	}

	def.Name = aws.String(c.Name)
	def.Image = aws.String(c.Image)
	if len(c.Command) > 0 {
		def.Command = aws.StringSlice(c.Command)
	}
	if len(c.Environment) > 0 {
		def.Environment = keyValuePairs(c.Environment)
	}

	return def
}

// validateContainers rejects any name that is not a container of this
// definition, before any mutation is applied
func (t *TaskDefinition) validateContainers(names ...string) error {
	known := map[string]struct{}{}
	for _, c := range t.Containers {
		known[c.Name] = struct{}{}
	}

	for _, name := range names {
		if _, ok := known[name]; !ok {
			return UnknownContainerError{Container: name}
		}
	}

	return nil
}

func (t *TaskDefinition) record(d *Diff) {
	t.diffs = append(t.diffs, d)
}

func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// keyValuePairs converts an environment mapping into sorted name/value pairs
func keyValuePairs(env map[string]string) []*ecs.KeyValuePair {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]*ecs.KeyValuePair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, &ecs.KeyValuePair{Name: aws.String(name), Value: aws.String(env[name])})
	}

	return pairs
}

// Diff records a single mutation to a task definition.  An empty container
// name marks a definition level field such as the task role arn.
type Diff struct {
	Container string
	Field     string
	Value     interface{}
	OldValue  interface{}
}

func (d *Diff) String() string {
	if d.Container != "" {
		return fmt.Sprintf("Changed %s of container '%s' to: %s (was: %s)", d.Field, d.Container, jsonValue(d.Value), jsonValue(d.OldValue))
	}
	return fmt.Sprintf("Changed %s to: %s (was: %s)", d.Field, jsonValue(d.Value), jsonValue(d.OldValue))
}

func jsonValue(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
