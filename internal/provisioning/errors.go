package provisioning

import "errors"

// Failure taxonomy for the request lifecycle. Handlers map these onto HTTP
// status classes; anything else is an internal error.
var (
	ErrRequestNotFound         = errors.New("organization request not found")
	ErrRequestAlreadyProcessed = errors.New("organization request already processed")
	ErrReasonTooShort          = errors.New("rejection reason must be at least 10 characters")
	ErrSlugTaken               = errors.New("slug already in use")

	// Provisioning step failures. Identity and owner-user failures imply
	// that compensation ran before the error surfaced.
	ErrOrganizationCreateFailed = errors.New("organization creation failed")
	ErrAuthIdentityCreateFailed = errors.New("auth identity creation failed")
	ErrOwnerUserCreateFailed    = errors.New("owner user creation failed")
)
