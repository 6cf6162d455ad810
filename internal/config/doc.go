// Package config provides configuration loading, merging, and validation
// for the sync client and the reference autoupdate server.
//
// Configuration is assembled from multiple sources. For every field the
// first source that sets a non-zero value wins:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The entry points are [GetClientConfig] and [GetServerConfig]; both project
// the merged [StructuredConfig] onto the settings their binary needs.
package config
