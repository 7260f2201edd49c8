package operations

import (
	"context"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/devopness"
)

var (
	listProjectsSchema = opsy.MustSchema("list_projects")

	listEnvironmentsSchema = opsy.MustSchema("list_environments",
		opsy.Required("project_id", opsy.Int).Describe("ID of the project"),
	)
)

type projectSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type environmentSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func listProjects() (*opsy.Operation[API], error) {
	return opsy.NewDynamicOperation(listProjectsSchema, "List the projects the user can access.",
		func(ctx context.Context, api API, _ opsy.Values) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			projects, err := api.ListProjects(ctx)
			if err != nil {
				return nil, err
			}
			return project(projects, func(p devopness.Project) projectSummary {
				return projectSummary{ID: p.ID, Name: p.Name}
			}), nil
		}, opsy.WithTags("projects", "read"))
}

type listEnvironmentsArgs struct {
	ProjectID int
}

func listEnvironments() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listEnvironmentsSchema, "List the environments of a project.",
		func(v opsy.Values) listEnvironmentsArgs {
			return listEnvironmentsArgs{ProjectID: v.Int("project_id")}
		},
		func(ctx context.Context, api API, args listEnvironmentsArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			envs, err := api.ListProjectEnvironments(ctx, args.ProjectID)
			if err != nil {
				return nil, err
			}
			return project(envs, func(e devopness.Environment) environmentSummary {
				return environmentSummary{ID: e.ID, Name: e.Name, Type: e.Type, Description: e.Description}
			}), nil
		}, opsy.WithTags("environments", "read"))
}
