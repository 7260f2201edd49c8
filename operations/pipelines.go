package operations

import (
	"context"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/devopness"
)

var (
	listPipelinesSchema = opsy.MustSchema("list_pipelines",
		opsy.Required("resource_id", opsy.Int).Describe("ID of the server or application"),
		opsy.Required("resource_type", devopness.EnvironmentResourceTypes.Type()),
	)

	listCredentialsSchema = opsy.MustSchema("list_credentials",
		opsy.Required("environment_id", opsy.Int).Describe("ID of the environment"),
	)
)

type pipelineSummary struct {
	ID                 int            `json:"id"`
	Name               string         `json:"name"`
	Operation          string         `json:"operation"`
	MaxParallelActions int            `json:"max_parallel_actions"`
	Resource           pipelineTarget `json:"resource"`
}

type pipelineTarget struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

type listPipelinesArgs struct {
	ResourceID   int
	ResourceType devopness.EnvironmentResourceType
}

func listPipelines() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listPipelinesSchema, "List the pipelines of a server or application.",
		func(v opsy.Values) listPipelinesArgs {
			return listPipelinesArgs{
				ResourceID:   v.Int("resource_id"),
				ResourceType: opsy.EnumValue[devopness.EnvironmentResourceType](v, "resource_type"),
			}
		},
		func(ctx context.Context, api API, args listPipelinesArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			pipelines, err := api.ListPipelinesByResourceType(ctx, args.ResourceID, args.ResourceType)
			if err != nil {
				return nil, err
			}
			return project(pipelines, func(p devopness.Pipeline) pipelineSummary {
				return pipelineSummary{
					ID:                 p.ID,
					Name:               p.Name,
					Operation:          p.OperationHumanReadable,
					MaxParallelActions: p.MaxParallelActions,
					Resource:           pipelineTarget{ID: p.ResourceID, Type: p.ResourceTypeHumanReadable},
				}
			}), nil
		}, opsy.WithTags("pipelines", "read"))
}

type listCredentialsArgs struct {
	EnvironmentID int
}

func listCredentials() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listCredentialsSchema, "List the credentials linked to an environment.",
		func(v opsy.Values) listCredentialsArgs {
			return listCredentialsArgs{EnvironmentID: v.Int("environment_id")}
		},
		func(ctx context.Context, api API, args listCredentialsArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			creds, err := api.ListEnvironmentCredentials(ctx, args.EnvironmentID)
			if err != nil {
				return nil, err
			}
			return listOf(creds), nil
		}, opsy.WithTags("credentials", "read"))
}
