package devopness

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListProjects returns the projects the user can access.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if _, err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// ListProjectEnvironments returns the environments of a project.
func (c *Client) ListProjectEnvironments(ctx context.Context, projectID int) ([]Environment, error) {
	var out []Environment
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/environments", projectID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list environments of project %d: %w", projectID, err)
	}
	return out, nil
}

// ListEnvironmentServers returns the servers of an environment.
func (c *Client) ListEnvironmentServers(ctx context.Context, environmentID int) ([]Server, error) {
	var out []Server
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/environments/%d/servers", environmentID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list servers of environment %d: %w", environmentID, err)
	}
	return out, nil
}

// AddEnvironmentServer provisions a new server in an environment.
func (c *Client) AddEnvironmentServer(ctx context.Context, environmentID int, in ServerCreate) (*Server, error) {
	var out Server
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/environments/%d/servers", environmentID), nil, in, &out); err != nil {
		return nil, fmt.Errorf("add server to environment %d: %w", environmentID, err)
	}
	return &out, nil
}

// StopServer stops a running server. The returned action ID is 0 when the API
// does not report one.
func (c *Client) StopServer(ctx context.Context, serverID int) (int, error) {
	h, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/stop", serverID), nil, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("stop server %d: %w", serverID, err)
	}
	return actionID(h), nil
}

// DeleteServer starts the deletion of a server and returns the ID of the
// deletion action.
func (c *Client) DeleteServer(ctx context.Context, serverID int, destroyDisks bool) (int, error) {
	q := url.Values{"destroy_server_disks": {strconv.FormatBool(destroyDisks)}}
	h, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d", serverID), q, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("delete server %d: %w", serverID, err)
	}
	return actionID(h), nil
}

// ListEnvironmentApplications returns the applications of an environment.
func (c *Client) ListEnvironmentApplications(ctx context.Context, environmentID int) ([]Application, error) {
	var out []Application
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/environments/%d/applications", environmentID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list applications of environment %d: %w", environmentID, err)
	}
	return out, nil
}

// AddEnvironmentApplication creates an application in an environment.
func (c *Client) AddEnvironmentApplication(ctx context.Context, environmentID int, in ApplicationCreate) (*Application, error) {
	var out Application
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/environments/%d/applications", environmentID), nil, in, &out); err != nil {
		return nil, fmt.Errorf("add application to environment %d: %w", environmentID, err)
	}
	return &out, nil
}

// AddPipelineAction runs a pipeline (for example a deployment).
func (c *Client) AddPipelineAction(ctx context.Context, pipelineID int, in PipelineActionCreate) (*Action, error) {
	var out Action
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/pipelines/%d/actions", pipelineID), nil, in, &out); err != nil {
		return nil, fmt.Errorf("run pipeline %d: %w", pipelineID, err)
	}
	return &out, nil
}

// ListPipelinesByResourceType returns the pipelines of a server or application.
func (c *Client) ListPipelinesByResourceType(ctx context.Context, resourceID int, resourceType EnvironmentResourceType) ([]Pipeline, error) {
	var out []Pipeline
	path := fmt.Sprintf("/pipelines/%s/%d", url.PathEscape(string(resourceType)), resourceID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list pipelines of %s %d: %w", resourceType, resourceID, err)
	}
	return out, nil
}

// ListEnvironmentCredentials returns the credentials linked to an environment.
func (c *Client) ListEnvironmentCredentials(ctx context.Context, environmentID int) ([]Credential, error) {
	var out []Credential
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/environments/%d/credentials", environmentID), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list credentials of environment %d: %w", environmentID, err)
	}
	return out, nil
}

// GetCloudProviderService returns a cloud provider service and its regions.
func (c *Client) GetCloudProviderService(ctx context.Context, code CloudProviderServiceCode) (*CloudProviderService, error) {
	var out CloudProviderService
	path := "/static/cloud-provider-services/" + url.PathEscape(string(code))
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get cloud provider service %s: %w", code, err)
	}
	return &out, nil
}

// ListCloudInstances returns the instance types of a provider service region.
func (c *Client) ListCloudInstances(ctx context.Context, code CloudProviderServiceCode, region string) ([]CloudInstance, error) {
	var out []CloudInstance
	path := fmt.Sprintf("/static/cloud-provider-services/%s/regions/%s/cloud-instances",
		url.PathEscape(string(code)), url.PathEscape(region))
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list instance types of %s in %s: %w", code, region, err)
	}
	return out, nil
}
