// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AccessTokenHeaderName is the HTTP header that carries the bearer token on
// sign-out and on protected requests.
const AccessTokenHeaderName = "x-access-token"
