// Package model contains the data models shared between the vcs backends
// and the release logic.
package model
