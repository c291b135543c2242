package depsdev

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetPackage fetches basic information about a package, including its
// known versions.
func (c *Client) GetPackage(ctx context.Context, system, name string) (json.RawMessage, error) {
	if err := ValidateSystem(system); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/systems/%s/packages/%s", c.baseURL, system, EncodeURLParam(name))
	return c.FetchData(ctx, u, nil)
}

// GetVersion fetches detailed information about a single package version.
func (c *Client) GetVersion(ctx context.Context, system, name, version string) (json.RawMessage, error) {
	if err := ValidateSystem(system); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/systems/%s/packages/%s/versions/%s",
		c.baseURL, system, EncodeURLParam(name), EncodeURLParam(version))
	return c.FetchData(ctx, u, nil)
}

// GetRequirements fetches the declared requirements of a package version.
// Only available for the systems in [SystemsRequirements].
func (c *Client) GetRequirements(ctx context.Context, system, name, version string) (json.RawMessage, error) {
	return c.versionSuffix(ctx, system, name, version, ":requirements", SystemsRequirements)
}

// GetDependencies fetches the resolved dependency graph of a package
// version. Only available for the systems in [SystemsDependencies].
func (c *Client) GetDependencies(ctx context.Context, system, name, version string) (json.RawMessage, error) {
	return c.versionSuffix(ctx, system, name, version, ":dependencies", SystemsDependencies)
}

// GetDependents fetches dependent counts for a package version.
// Only available for the systems in [SystemsDependents].
func (c *Client) GetDependents(ctx context.Context, system, name, version string) (json.RawMessage, error) {
	return c.versionSuffix(ctx, system, name, version, ":dependents", SystemsDependents)
}

// GetCapabilities fetches capslock capability information for a package
// version. Only available for the systems in [SystemsCapabilities].
func (c *Client) GetCapabilities(ctx context.Context, system, name, version string) (json.RawMessage, error) {
	return c.versionSuffix(ctx, system, name, version, ":capabilities", SystemsCapabilities)
}

func (c *Client) versionSuffix(ctx context.Context, system, name, version, suffix string, allowed []string) (json.RawMessage, error) {
	if err := ValidateSystem(system, allowed...); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/systems/%s/packages/%s/versions/%s%s",
		c.baseURL, system, EncodeURLParam(name), EncodeURLParam(version), suffix)
	return c.FetchData(ctx, u, nil)
}

// GetSimilarlyNamedPackages fetches packages whose names are confusingly
// similar to the given one (typosquatting candidates).
func (c *Client) GetSimilarlyNamedPackages(ctx context.Context, system, name string) (json.RawMessage, error) {
	if err := ValidateSystem(system); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/systems/%s/packages/%s:similarlyNamedPackages",
		c.baseURL, system, EncodeURLParam(name))
	return c.FetchData(ctx, u, nil)
}

// GetProject fetches metadata about a source repository project
// (GitHub, GitLab or Bitbucket), e.g. "github.com/pallets/flask".
func (c *Client) GetProject(ctx context.Context, projectID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/projects/%s", c.baseURL, EncodeURLParam(projectID))
	return c.FetchData(ctx, u, nil)
}

// GetProjectPackageVersions fetches the package versions that were derived
// from a source project.
func (c *Client) GetProjectPackageVersions(ctx context.Context, projectID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/projects/%s:packageversions", c.baseURL, EncodeURLParam(projectID))
	return c.FetchData(ctx, u, nil)
}

// GetAdvisory fetches a security advisory by its OSV identifier.
func (c *Client) GetAdvisory(ctx context.Context, advisoryID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/advisories/%s", c.baseURL, EncodeURLParam(advisoryID))
	return c.FetchData(ctx, u, nil)
}

// GetPurlLookup resolves a package URL (purl) to its package or version
// record.
func (c *Client) GetPurlLookup(ctx context.Context, purl string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/purl/%s", c.baseURL, EncodeURLParam(purl))
	return c.FetchData(ctx, u, nil)
}

// QueryContainerImages looks up container image repositories matching a
// layer chain ID.
func (c *Client) QueryContainerImages(ctx context.Context, chainID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/querycontainerimages/%s", c.baseURL, EncodeURLParam(chainID))
	return c.FetchData(ctx, u, nil)
}

// VersionQuery selects package versions by content hash and/or version key
// fields. Hash lookups require both HashType and HashValue.
type VersionQuery struct {
	HashType  string
	HashValue string

	System  string
	Name    string
	Version string
}

// QueryPackageVersions queries package versions by content hash or version
// key. At least one selector should be set; an empty query is passed
// through and rejected upstream.
func (c *Client) QueryPackageVersions(ctx context.Context, q VersionQuery) (json.RawMessage, error) {
	if q.HashType != "" {
		if err := ValidateHash(q.HashType); err != nil {
			return nil, err
		}
	}
	if q.System != "" {
		if err := ValidateSystem(q.System, SystemsQuery...); err != nil {
			return nil, err
		}
	}

	params := make(map[string]string)
	if q.HashType != "" && q.HashValue != "" {
		params["hash.type"] = q.HashType
		params["hash.value"] = q.HashValue
	}
	if q.System != "" {
		params["versionKey.system"] = q.System
	}
	if q.Name != "" {
		params["versionKey.name"] = q.Name
	}
	if q.Version != "" {
		params["versionKey.version"] = q.Version
	}

	return c.FetchData(ctx, c.baseURL+"/query", params)
}
