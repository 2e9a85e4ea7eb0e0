package main

import (
	"os"

	"github.com/YaleSpinup/ecs-deploy/cmd"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}
