package ecs

import (
	"github.com/YaleSpinup/apierror"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/pkg/errors"
)

func ErrCode(msg string, err error) error {
	if aerr, ok := errors.Cause(err).(awserr.Error); ok {
		switch aerr.Code() {
		case
			"AccessDenied",

			ecs.ErrCodeAccessDeniedException,
			ecs.ErrCodeBlockedException:

			return apierror.New(apierror.ErrForbidden, msg, aerr)
		case
			ecs.ErrCodeServerException:

			return apierror.New(apierror.ErrInternalError, msg, aerr)
		case
			ecs.ErrCodeUpdateInProgressException,
			ecs.ErrCodeResourceInUseException:

			return apierror.New(apierror.ErrConflict, msg, aerr)
		case
			ecs.ErrCodeClientException,
			ecs.ErrCodeInvalidParameterException,
			ecs.ErrCodeMissingVersionException,
			ecs.ErrCodePlatformTaskDefinitionIncompatibilityException,
			ecs.ErrCodePlatformUnknownException,
			ecs.ErrCodeServiceNotActiveException,
			ecs.ErrCodeUnsupportedFeatureException:

			return apierror.New(apierror.ErrBadRequest, msg, aerr)
		case
			ecs.ErrCodeClusterNotFoundException,
			ecs.ErrCodeResourceNotFoundException,
			ecs.ErrCodeServiceNotFoundException,
			ecs.ErrCodeTaskSetNotFoundException:

			return apierror.New(apierror.ErrNotFound, msg, aerr)
		case
			ecs.ErrCodeLimitExceededException:

			return apierror.New(apierror.ErrLimitExceeded, msg, aerr)
		default:
			m := msg + ": " + aerr.Message()
			return apierror.New(apierror.ErrBadRequest, m, aerr)
		}
	}

	return apierror.New(apierror.ErrInternalError, msg, err)
}
