// Package common contains shared constants and sentinel errors used across
// taskkeeper components.
package common

// Cookie names carrying the session tokens between the browser and the API.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// Todo statuses.
const (
	TodoStatusPending = "pending"
	TodoStatusDone    = "done"
)
