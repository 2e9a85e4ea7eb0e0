package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/YaleSpinup/ecs-deploy/common"
	"github.com/YaleSpinup/ecs-deploy/ecs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// appConfig is the merged configuration: config file values overridden
	// by flags and ECS_DEPLOY_* environment variables
	appConfig common.Config
)

var rootCmd = &cobra.Command{
	Use:   "ecs-deploy",
	Short: "Deploy, scale and run one off tasks on AWS ECS",
	Long: `ecs-deploy mutates a service's task definition (container images,
commands, environment variables), triggers a redeploy or scale operation and
polls until the change converges or times out.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file (JSON)")
	rootCmd.PersistentFlags().String("region", "", "AWS region")
	rootCmd.PersistentFlags().String("access-key-id", "", "AWS access key id")
	rootCmd.PersistentFlags().String("secret-access-key", "", "AWS secret access key")
	rootCmd.PersistentFlags().String("profile", "", "AWS configuration profile")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (error, warn, info, debug)")

	viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	viper.BindPFlag("access-key-id", rootCmd.PersistentFlags().Lookup("access-key-id"))
	viper.BindPFlag("secret-access-key", rootCmd.PersistentFlags().Lookup("secret-access-key"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads the optional JSON config file and overlays flag and
// environment values on top of it
func initConfig() {
	if cfgFile != "" {
		configFile, err := os.Open(cfgFile)
		if err != nil {
			log.Fatalln("Unable to open config file", err)
		}
		defer configFile.Close()

		config, err := common.ReadConfig(bufio.NewReader(configFile))
		if err != nil {
			log.Fatalf("Unable to read configuration from %s.  %+v", cfgFile, err)
		}
		appConfig = config
	}

	viper.SetEnvPrefix("ECS_DEPLOY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if v := viper.GetString("region"); v != "" {
		appConfig.Account.Region = v
	}
	if v := viper.GetString("access-key-id"); v != "" {
		appConfig.Account.Akid = v
	}
	if v := viper.GetString("secret-access-key"); v != "" {
		appConfig.Account.Secret = v
	}
	if v := viper.GetString("profile"); v != "" {
		appConfig.Account.Profile = v
	}
	if v := viper.GetString("log-level"); v != "" {
		appConfig.LogLevel = v
	}

	// info if it's unset
	switch appConfig.LogLevel {
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func newECSClient() ecs.ECS {
	return ecs.NewSession(appConfig.Account)
}
