// Package directory discovers the models offered by each configured
// provider so a user can pick one before sending.
package directory
