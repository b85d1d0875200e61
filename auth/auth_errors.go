package auth

import "errors"

var (
	InvalidCredentialsErr = errors.New("invalid credentials")
	ProfileFetchFailedErr = errors.New("current user fetch failed")
)
