// Package config loads koda's configuration: provider credentials and the
// Iteration Controller's AgentConfig knobs (max iterations, acceptance
// threshold, branching policy), merged global -> project -> environment.
//
// See config.go for the merge order and config_test.go for the cases it is
// expected to handle.
package config
