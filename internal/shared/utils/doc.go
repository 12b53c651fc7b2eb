// Package utils holds input validation, sanitizing and content hashing
// helpers used by the HTTP layer and the relays.
package utils
