package cmd

import (
	"fmt"

	"github.com/YaleSpinup/ecs-deploy/orchestration"
	"github.com/aws/aws-sdk-go/aws"
	uuid "github.com/satori/go.uuid"
	"github.com/spf13/cobra"
)

var (
	runCount     int64
	runCommands  []string
	runEnvs      []string
	runStartedBy string
)

var runCmd = &cobra.Command{
	Use:   "run CLUSTER TASK_DEFINITION",
	Short: "Run a one-off task",
	Long: `Run a one-off task outside of any service.

CLUSTER is the name of your cluster (e.g. 'my-cluster') within ECS.
TASK_DEFINITION is the task definition to launch, as arn or family:revision.`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int64Var(&runCount, "count", 1, "Number of tasks to start")
	runCmd.Flags().StringArrayVarP(&runCommands, "command", "c", nil, "Overwrites the command in a container: <container>=<command>")
	runCmd.Flags().StringArrayVarP(&runEnvs, "env", "e", nil, "Adds or changes an environment variable: <container>=<name>=<value>")
	runCmd.Flags().StringVar(&runStartedBy, "started-by", "", "Tag recorded as the task starter (defaults to a generated token)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cluster, taskDefinition := args[0], args[1]
	ctx := cmd.Context()

	commands, err := parsePairs(runCommands)
	if err != nil {
		return err
	}
	envs, err := parseEnvVars(runEnvs)
	if err != nil {
		return err
	}

	action := orchestration.NewRunAction(newECSClient(), cluster)

	td, err := action.GetTaskDefinition(ctx, taskDefinition)
	if err != nil {
		return err
	}

	if err := td.SetCommands(commands); err != nil {
		return err
	}
	if err := td.SetEnvironment(envs); err != nil {
		return err
	}

	printDiffs(td)

	startedBy := runStartedBy
	if startedBy == "" {
		startedBy = fmt.Sprintf("ecs-deploy-%s", uuid.NewV4())
	}

	ok, err := action.Run(ctx, td, runCount, startedBy)
	if err != nil {
		return err
	}

	for _, arn := range action.StartedTasks {
		fmt.Printf("Successfully started task: %s\n", arn)
	}

	if !ok {
		fmt.Println()
		for _, f := range action.Failures {
			fmt.Printf("Failed to start task: %s (%s)\n", aws.StringValue(f.Arn), aws.StringValue(f.Reason))
		}
		return fmt.Errorf("started %d of %d tasks", len(action.StartedTasks), runCount)
	}

	return nil
}
