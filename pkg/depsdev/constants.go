package depsdev

import "time"

// BaseURL is the root of the deps.dev REST API.
const BaseURL = "https://api.deps.dev/v3alpha"

// Default client configuration. All values can be overridden with options.
const (
	// DefaultTimeout bounds a single HTTP attempt, not the whole fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 3

	// DefaultBaseBackoff is the unjittered delay before the first retry.
	DefaultBaseBackoff = time.Second

	// DefaultMaxBackoff caps the computed retry delay.
	DefaultMaxBackoff = 32 * time.Second
)

// MaxBatchRequests is the upstream limit on entries per batch request.
const MaxBatchRequests = 5000

// Systems lists the package management systems known to the API.
// System identifiers are matched case-insensitively by [ValidateSystem].
var Systems = []string{"GO", "NPM", "CARGO", "MAVEN", "PYPI", "NUGET", "RUBYGEMS"}

// Per-operation system subsets. Some endpoints are only implemented
// upstream for a subset of package systems.
var (
	SystemsRequirements = []string{"NPM", "NUGET", "MAVEN", "RUBYGEMS"}
	SystemsDependencies = []string{"GO", "NPM", "CARGO", "MAVEN", "PYPI", "NUGET"}
	SystemsDependents   = []string{"GO", "NPM", "CARGO", "MAVEN", "PYPI", "NUGET", "RUBYGEMS"}
	SystemsCapabilities = []string{"GO"}
	SystemsQuery        = []string{"GO", "NPM", "CARGO", "MAVEN", "PYPI", "NUGET", "RUBYGEMS"}
)

// Hashes lists the hash algorithms accepted by [Client.QueryPackageVersions].
var Hashes = []string{"MD5", "SHA1", "SHA256", "SHA512"}
