// Package ecs is a thin wrapper around the aws ECS service.  It exposes the
// narrow set of calls the deployment workflows need and maps AWS errors into
// apierrors.
package ecs

import (
	"github.com/YaleSpinup/ecs-deploy/common"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/ecs/ecsiface"
	log "github.com/sirupsen/logrus"
)

// ECS is a wrapper around the aws ECS service
type ECS struct {
	Service ecsiface.ECSAPI
}

// NewSession creates a new ECS session.  Static credentials take precedence
// over a shared configuration profile, and with neither the default AWS
// credential provider chain applies.
func NewSession(account common.Account) ECS {
	config := aws.Config{}

	if account.Region != "" {
		config.Region = aws.String(account.Region)
	}

	if account.Akid != "" && account.Secret != "" {
		log.Infof("creating new session with key id %s in region %s", account.Akid, account.Region)
		config.Credentials = credentials.NewStaticCredentials(account.Akid, account.Secret, "")
	} else if account.Profile != "" {
		log.Infof("creating new session with profile %s in region %s", account.Profile, account.Region)
	}

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            config,
		Profile:           account.Profile,
		SharedConfigState: session.SharedConfigEnable,
	}))

	return ECS{Service: ecs.New(sess)}
}
