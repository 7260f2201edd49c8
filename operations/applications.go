package operations

import (
	"context"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/devopness"
)

var (
	listApplicationsSchema = opsy.MustSchema("list_applications",
		opsy.Required("environment_id", opsy.Int).Describe("ID of the environment"),
	)

	deployApplicationSchema = opsy.MustSchema("deploy_application",
		opsy.Required("deploy_pipeline_id", opsy.Int).Describe("Deploy pipeline of the application"),
		opsy.Required("deploy_source_type", devopness.SourceTypes.Type()),
		opsy.Required("deploy_source_value", opsy.String).Describe("Branch name, tag or commit hash"),
		opsy.Optional("server_ids_to_deploy", opsy.ListOf(opsy.Int)).Describe("Deploy only to these servers"),
	)

	createApplicationSchema = opsy.MustSchema("create_application",
		opsy.Required("environment_id", opsy.Int),
		opsy.Required("application_name", opsy.String),
		opsy.Required("repository_credential_id", opsy.Int).Describe("Source provider credential"),
		opsy.Required("repository_owner_and_name", opsy.String).Describe("For example devopness/devopness"),
		opsy.Required("repository_default_branch", opsy.String),
		opsy.Required("programming_language", opsy.String),
		opsy.Required("programming_language_version", opsy.String),
		opsy.WithDefault("programming_language_framework", opsy.String, "none"),
		opsy.Optional("repository_working_directory", opsy.String),
	)
)

type applicationSummary struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	RepositoryURL string             `json:"repository_url"`
	Stack         applicationStack   `json:"stack"`
	Credential    *credentialProfile `json:"credential"`
}

type applicationStack struct {
	Language  string `json:"language"`
	Version   string `json:"version"`
	Framework string `json:"framework"`
}

type credentialProfile struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

func summarizeApplication(a devopness.Application) applicationSummary {
	out := applicationSummary{
		ID:            a.ID,
		Name:          a.Name,
		RepositoryURL: a.Repository,
		Stack: applicationStack{
			Language:  a.ProgrammingLanguageHumanReadable,
			Version:   a.EngineVersion,
			Framework: a.FrameworkHumanReadable,
		},
	}
	if c := a.Credential; c != nil {
		out.Credential = &credentialProfile{ID: c.ID, Name: c.Name, Provider: c.Provider.CodeHumanReadable}
	}
	return out
}

type listApplicationsArgs struct {
	EnvironmentID int
}

func listApplications() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listApplicationsSchema, "List the applications of an environment.",
		func(v opsy.Values) listApplicationsArgs {
			return listApplicationsArgs{EnvironmentID: v.Int("environment_id")}
		},
		func(ctx context.Context, api API, args listApplicationsArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			apps, err := api.ListEnvironmentApplications(ctx, args.EnvironmentID)
			if err != nil {
				return nil, err
			}
			return project(apps, summarizeApplication), nil
		}, opsy.WithTags("applications", "read"))
}

type deployApplicationArgs struct {
	PipelineID  int
	SourceType  devopness.SourceType
	SourceValue string
	ServerIDs   []int
}

func deployApplication() (*opsy.Operation[API], error) {
	return opsy.NewOperation(deployApplicationSchema, "Deploy an application by running its deploy pipeline.",
		func(v opsy.Values) deployApplicationArgs {
			return deployApplicationArgs{
				PipelineID:  v.Int("deploy_pipeline_id"),
				SourceType:  opsy.EnumValue[devopness.SourceType](v, "deploy_source_type"),
				SourceValue: v.String("deploy_source_value"),
				ServerIDs:   v.Ints("server_ids_to_deploy"),
			}
		},
		func(ctx context.Context, api API, args deployApplicationArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			action, err := api.AddPipelineAction(ctx, args.PipelineID, devopness.PipelineActionCreate{
				SourceType: args.SourceType,
				SourceRef:  args.SourceValue,
				Servers:    args.ServerIDs,
			})
			if err != nil {
				return nil, err
			}
			return action, nil
		}, opsy.WithTags("applications", "write"))
}

type createApplicationArgs struct {
	EnvironmentID    int
	Name             string
	CredentialID     int
	Repository       string
	DefaultBranch    string
	Language         string
	LanguageVersion  string
	Framework        string
	WorkingDirectory *string
}

func createApplication() (*opsy.Operation[API], error) {
	return opsy.NewOperation(createApplicationSchema, "Create an application from a source repository.",
		func(v opsy.Values) createApplicationArgs {
			return createApplicationArgs{
				EnvironmentID:    v.Int("environment_id"),
				Name:             v.String("application_name"),
				CredentialID:     v.Int("repository_credential_id"),
				Repository:       v.String("repository_owner_and_name"),
				DefaultBranch:    v.String("repository_default_branch"),
				Language:         v.String("programming_language"),
				LanguageVersion:  v.String("programming_language_version"),
				Framework:        v.String("programming_language_framework"),
				WorkingDirectory: v.OptionalString("repository_working_directory"),
			}
		},
		func(ctx context.Context, api API, args createApplicationArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			app, err := api.AddEnvironmentApplication(ctx, args.EnvironmentID, devopness.ApplicationCreate{
				Name:                args.Name,
				Repository:          args.Repository,
				ProgrammingLanguage: args.Language,
				EngineVersion:       args.LanguageVersion,
				Framework:           args.Framework,
				RootDirectory:       args.WorkingDirectory,
				DefaultBranch:       args.DefaultBranch,
				CredentialID:        args.CredentialID,
			})
			if err != nil {
				return nil, err
			}
			return app, nil
		}, opsy.WithTags("applications", "write"))
}
