// Package app wires application dependencies for the CLI.
//
// It loads Config from the environment and builds the concrete stores,
// directory, token issuer, notifier and services, exposing them via the
// Wire struct for commands to use. There are no singletons; everything is
// constructed here and passed down.
package app
