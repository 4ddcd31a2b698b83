// Package commands implements the caretalk CLI.
//
// Each command file maps onto one session or chat operation; root.go
// builds the dependency graph once per invocation.
package commands
