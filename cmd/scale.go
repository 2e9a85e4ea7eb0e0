package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/YaleSpinup/ecs-deploy/orchestration"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var scaleTimeout time.Duration

var scaleCmd = &cobra.Command{
	Use:   "scale CLUSTER SERVICE DESIRED_COUNT",
	Short: "Scale a service up or down",
	Long: `Scale a service up or down.

CLUSTER is the name of your cluster (e.g. 'my-cluster') within ECS.
SERVICE is the name of your service (e.g. 'my-app') within ECS.
DESIRED_COUNT is the number of tasks your service should run.`,
	Args: cobra.ExactArgs(3),
	RunE: runScale,
}

func init() {
	rootCmd.AddCommand(scaleCmd)

	scaleCmd.Flags().DurationVar(&scaleTimeout, "timeout", 300*time.Second, "Maximum time to wait for the service to converge")
}

func runScale(cmd *cobra.Command, args []string) error {
	cluster, service := args[0], args[1]
	ctx := cmd.Context()

	desiredCount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil || desiredCount < 0 {
		return errors.Errorf("invalid desired count '%s'", args[2])
	}

	scaling, err := orchestration.NewScaleAction(ctx, newECSClient(), cluster, service)
	if err != nil {
		return err
	}

	fmt.Println("Updating service")
	if _, err := scaling.Scale(ctx, desiredCount); err != nil {
		return err
	}
	fmt.Printf("Successfully changed desired count to: %d\n\n", desiredCount)

	fmt.Println("Scaling service")
	result, err := scaling.WaitForDeployment(ctx, scaleTimeout)
	if err != nil {
		return err
	}

	if !result.Deployed {
		printServiceErrors(result)
		if result.TimedOut {
			return errors.New("scaling failed (timeout)")
		}
		return errors.New("scaling failed")
	}

	fmt.Println("Scaling successful")

	return nil
}
