package cmd

import (
	"fmt"
	"os/user"
	"strconv"
	"time"

	"github.com/YaleSpinup/ecs-deploy/newrelic"
	"github.com/YaleSpinup/ecs-deploy/orchestration"
	"github.com/YaleSpinup/ecs-deploy/registry"
	"github.com/YaleSpinup/ecs-deploy/slack"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	deployTag          string
	deployImages       []string
	deployCommands     []string
	deployEnvs         []string
	deployRole         string
	deployTimeout      time.Duration
	deployVerifyImages bool
	deployComment      string
	deployUser         string
)

var deployCmd = &cobra.Command{
	Use:   "deploy CLUSTER SERVICE",
	Short: "Redeploy or modify a service",
	Long: `Redeploy or modify a service.

CLUSTER is the name of your cluster (e.g. 'my-cluster') within ECS.
SERVICE is the name of your service (e.g. 'my-app') within ECS.

When not giving any other options, the task definition will not be changed.
It will just be duplicated, so that all container images will be pulled and
redeployed.`,
	Args: cobra.ExactArgs(2),
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVarP(&deployTag, "tag", "t", "", "Changes the tag for ALL container images")
	deployCmd.Flags().StringArrayVarP(&deployImages, "image", "i", nil, "Overwrites the image for a container: <container>=<image>")
	deployCmd.Flags().StringArrayVarP(&deployCommands, "command", "c", nil, "Overwrites the command in a container: <container>=<command>")
	deployCmd.Flags().StringArrayVarP(&deployEnvs, "env", "e", nil, "Adds or changes an environment variable: <container>=<name>=<value>")
	deployCmd.Flags().StringVar(&deployRole, "role", "", "Sets the task role ARN for the new revision")
	deployCmd.Flags().DurationVar(&deployTimeout, "timeout", 300*time.Second, "Maximum time to wait for the deployment to converge")
	deployCmd.Flags().BoolVar(&deployVerifyImages, "verify-images", false, "Verify that image overrides exist in their registry before deploying")
	deployCmd.Flags().StringVar(&deployComment, "comment", "", "Description/comment for recording the deployment")
	deployCmd.Flags().StringVar(&deployUser, "user", "", "User who executes the deployment (used for recording)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cluster, service := args[0], args[1]
	ctx := cmd.Context()

	images, err := parsePairs(deployImages)
	if err != nil {
		return err
	}
	commands, err := parsePairs(deployCommands)
	if err != nil {
		return err
	}
	envs, err := parseEnvVars(deployEnvs)
	if err != nil {
		return err
	}

	if deployVerifyImages {
		for _, image := range images {
			verifier, err := registry.NewVerifier(image)
			if err != nil {
				return err
			}

			ok, err := verifier.Verify(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("image %s not found in its registry", image)
			}
		}
	}

	notifier, err := slack.New(appConfig.Slack)
	if err != nil {
		return err
	}

	deployment, err := orchestration.NewDeployAction(ctx, newECSClient(), cluster, service)
	if err != nil {
		return err
	}

	td, err := deployment.CurrentTaskDefinition(ctx)
	if err != nil {
		return err
	}

	if err := td.SetImages(deployTag, images); err != nil {
		return err
	}
	if err := td.SetCommands(commands); err != nil {
		return err
	}
	if err := td.SetEnvironment(envs); err != nil {
		return err
	}
	td.SetRoleArn(deployRole)

	printDiffs(td)

	notifier.NotifyStart(cluster, service, deployTag, deployUser, deployComment, td)

	fmt.Println("Creating new task definition revision")
	registered, err := deployment.UpdateTaskDefinition(ctx, td)
	if err != nil {
		notifier.NotifyFailure(cluster, service, err.Error())
		return err
	}
	fmt.Printf("Successfully created revision: %d\n", registered.Revision)
	fmt.Printf("Successfully deregistered revision: %d\n\n", td.Revision)

	recordDeployment(deployTag, deployComment, deployUser)

	fmt.Println("Updating service")
	if _, err := deployment.Deploy(ctx, registered); err != nil {
		notifier.NotifyFailure(cluster, service, err.Error())
		return err
	}
	fmt.Printf("Successfully changed task definition to: %s\n\n", registered.FamilyRevision())

	fmt.Println("Deploying task definition")
	result, err := deployment.WaitForDeployment(ctx, deployTimeout)
	if err != nil {
		notifier.NotifyFailure(cluster, service, err.Error())
		return err
	}

	if !result.Deployed {
		printServiceErrors(result)
		reason := "deployment failed"
		if result.TimedOut {
			reason = "deployment failed (timeout)"
		}
		notifier.NotifyFailure(cluster, service, reason)
		return errors.New(reason)
	}

	notifier.NotifySuccess(cluster, service, strconv.FormatInt(registered.Revision, 10))
	fmt.Println("Deployment successful")

	return nil
}

// recordDeployment records the deployment in New Relic when an api key, app
// id and revision tag are all present.  A recording failure is surfaced as a
// warning, it never fails the deployment itself.
func recordDeployment(tag, comment, deployUser string) {
	if tag == "" || appConfig.NewRelic.APIKey == "" || appConfig.NewRelic.AppID == "" {
		return
	}

	who := deployUser
	if who == "" {
		if u, err := user.Current(); err == nil {
			who = u.Username
		}
	}

	fmt.Println("Recording deployment in New Relic")

	client := newrelic.New(appConfig.NewRelic, who)
	if err := client.Deploy(tag, "", comment); err != nil {
		log.Warnf("failed to record deployment in new relic: %s", err)
	}
}
