// Package common contains shared constants and sentinel errors used across
// daylight client components.
package common

// AuthHeaderName is the HTTP header used to carry the bearer session token
// on outbound requests.
const AuthHeaderName = "Authorization"

// BearerPrefix prefixes the session token in AuthHeaderName.
const BearerPrefix = "Bearer "
