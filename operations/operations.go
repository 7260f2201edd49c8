// Package operations declares the Devopness operations an agent can call: one
// schema and one handler per operation, registered in an opsy.Registry.
package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/devopness"
)

// ToolName is the name of the single entry point exposed to agents.
const ToolName = "devopness_perform_any_operation"

// API is the part of the Devopness client the handlers call.
type API interface {
	EnsureReady(ctx context.Context) error
	ActionURL(actionID int) string

	ListProjects(ctx context.Context) ([]devopness.Project, error)
	ListProjectEnvironments(ctx context.Context, projectID int) ([]devopness.Environment, error)
	ListEnvironmentServers(ctx context.Context, environmentID int) ([]devopness.Server, error)
	AddEnvironmentServer(ctx context.Context, environmentID int, in devopness.ServerCreate) (*devopness.Server, error)
	StopServer(ctx context.Context, serverID int) (int, error)
	DeleteServer(ctx context.Context, serverID int, destroyDisks bool) (int, error)
	ListEnvironmentApplications(ctx context.Context, environmentID int) ([]devopness.Application, error)
	AddEnvironmentApplication(ctx context.Context, environmentID int, in devopness.ApplicationCreate) (*devopness.Application, error)
	AddPipelineAction(ctx context.Context, pipelineID int, in devopness.PipelineActionCreate) (*devopness.Action, error)
	ListPipelinesByResourceType(ctx context.Context, resourceID int, resourceType devopness.EnvironmentResourceType) ([]devopness.Pipeline, error)
	ListEnvironmentCredentials(ctx context.Context, environmentID int) ([]devopness.Credential, error)
	GetCloudProviderService(ctx context.Context, code devopness.CloudProviderServiceCode) (*devopness.CloudProviderService, error)
	ListCloudInstances(ctx context.Context, code devopness.CloudProviderServiceCode, region string) ([]devopness.CloudInstance, error)
}

var _ API = (*devopness.Client)(nil)

// ListResult is the shape every list operation returns.
type ListResult[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func listOf[T any](items []T) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{Data: items, Count: len(items)}
}

// project maps API items to their agent-facing summaries.
func project[S, T any](items []S, fn func(S) T) ListResult[T] {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return listOf(out)
}

// All builds every operation.
func All() ([]*opsy.Operation[API], error) {
	builders := []func() (*opsy.Operation[API], error){
		listProjects,
		listEnvironments,
		listServers,
		createServer,
		stopServer,
		deleteServer,
		listApplications,
		deployApplication,
		createApplication,
		listPipelines,
		listCredentials,
		listSupportedProviders,
		listSupportedOsVersions,
		listRegionsOfProviderService,
		listInstanceTypesOfProviderServiceRegion,
	}
	ops := make([]*opsy.Operation[API], 0, len(builders))
	for _, build := range builders {
		op, err := build()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Register adds every operation to reg.
func Register(reg *opsy.Registry[API]) error {
	ops, err := All()
	if err != nil {
		return err
	}
	return reg.Register(ops...)
}

// New returns a registry holding every operation.
func New(opts ...opsy.RegistryOption) (*opsy.Registry[API], error) {
	reg := opsy.NewRegistry[API](opts...)
	if err := Register(reg); err != nil {
		return nil, fmt.Errorf("register operations: %w", err)
	}
	return reg, nil
}

// ToolDescription is the description of the entry point: the describe-then-execute
// rule and the available operation names.
func ToolDescription(names []string) string {
	var b strings.Builder
	b.WriteString("Perform any operation using Devopness API.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Before performing any operation, you must execute the `%s` operation,\n", opsy.HelpOperation)
	fmt.Fprintf(&b, "   with args {'%s': <operation_name>}, to get the list of arguments for that operation.\n", opsy.HelpTargetKey)
	fmt.Fprintf(&b, "   - Example: %s('%s', {'%s': 'deploy_application'})\n", ToolName, opsy.HelpOperation, opsy.HelpTargetKey)
	b.WriteString("2. Operations marked as destructive change or remove infrastructure; confirm with the user first.\n\n")
	b.WriteString("Available operations: ")
	b.WriteString(strings.Join(names, ", "))
	return b.String()
}
