package operations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/devopness"
)

var (
	listServersSchema = opsy.MustSchema("list_servers",
		opsy.Required("environment_id", opsy.Int).Describe("ID of the environment"),
	)

	createServerSchema = opsy.MustSchema("create_server",
		opsy.Required("environment_id", opsy.Int),
		opsy.Required("credential_id", opsy.Int).Describe("Cloud provider credential linked to the environment"),
		opsy.Required("cloud_service_code", devopness.ServerCloudServiceCodes.Type()),
		opsy.Required("cloud_service_region", opsy.String),
		opsy.Required("cloud_service_instance_type", opsy.String),
		opsy.Required("os_hostname", opsy.String),
		opsy.Required("os_disk_size", opsy.Int).Describe("Disk size in GB"),
		opsy.WithDefault("os_version_code", devopness.CloudOsVersionCodes.Type(), devopness.Ubuntu2404),
	)

	stopServerSchema = opsy.MustSchema("stop_server",
		opsy.Required("server_id", opsy.Int),
	)

	deleteServerSchema = opsy.MustSchema("delete_server",
		opsy.Required("server_id", opsy.Int),
		opsy.WithDefault("destroy_server_disks", opsy.Bool, true),
	)
)

type serverSummary struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	IPAddress  string            `json:"ip_address"`
	SSHPort    int               `json:"ssh_port"`
	LastAction *actionSummary    `json:"last_action"`
	Provider   *providerLocation `json:"provider"`
}

type actionSummary struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

type providerLocation struct {
	Name       string         `json:"name"`
	Region     string         `json:"region"`
	Credential credentialName `json:"credential"`
}

type credentialName struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func summarizeServer(s devopness.Server) serverSummary {
	out := serverSummary{
		ID:        s.ID,
		Name:      s.Hostname,
		Status:    s.Status,
		IPAddress: s.IPAddress,
		SSHPort:   s.SSHPort,
	}
	if a := s.LastAction; a != nil {
		out.LastAction = &actionSummary{
			ID:     a.ID,
			Type:   a.TypeHumanReadable,
			Status: a.StatusHumanReadable,
			URL:    a.URLWebPermalink,
		}
	}
	if c := s.Credential; c != nil {
		region := s.Region
		if region == "" {
			region = "Unknown"
		}
		out.Provider = &providerLocation{
			Name:       c.Provider.CodeHumanReadable,
			Region:     region,
			Credential: credentialName{ID: c.ID, Name: c.Name},
		}
	}
	return out
}

type listServersArgs struct {
	EnvironmentID int
}

func listServers() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listServersSchema, "List the servers of an environment.",
		func(v opsy.Values) listServersArgs {
			return listServersArgs{EnvironmentID: v.Int("environment_id")}
		},
		func(ctx context.Context, api API, args listServersArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			servers, err := api.ListEnvironmentServers(ctx, args.EnvironmentID)
			if err != nil {
				return nil, err
			}
			return project(servers, summarizeServer), nil
		}, opsy.WithTags("servers", "read"))
}

type createServerArgs struct {
	EnvironmentID            int
	CredentialID             int
	CloudServiceCode         devopness.ServerCloudServiceCode
	CloudServiceRegion       string
	CloudServiceInstanceType string
	OsHostname               string
	OsDiskSize               int
	OsVersionCode            devopness.CloudOsVersionCode
}

func bindCreateServer(v opsy.Values) createServerArgs {
	return createServerArgs{
		EnvironmentID:            v.Int("environment_id"),
		CredentialID:             v.Int("credential_id"),
		CloudServiceCode:         opsy.EnumValue[devopness.ServerCloudServiceCode](v, "cloud_service_code"),
		CloudServiceRegion:       v.String("cloud_service_region"),
		CloudServiceInstanceType: v.String("cloud_service_instance_type"),
		OsHostname:               v.String("os_hostname"),
		OsDiskSize:               v.Int("os_disk_size"),
		OsVersionCode:            opsy.EnumValue[devopness.CloudOsVersionCode](v, "os_version_code"),
	}
}

const createServerDescription = `Create a server in an environment.

Rules:
- DO NOT execute this operation without first confirming with the user which environment ID to use.
- DO NOT execute this operation without first confirming with the user all parameters.
- BEFORE executing this operation, show to the user all values that will be used to create the server.`

func createServer() (*opsy.Operation[API], error) {
	return opsy.NewOperation(createServerSchema, createServerDescription, bindCreateServer,
		func(ctx context.Context, api API, args createServerArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			server, err := api.AddEnvironmentServer(ctx, args.EnvironmentID, devopness.ServerCreate{
				Hostname:     args.OsHostname,
				CredentialID: strconv.Itoa(args.CredentialID),
				ProvisionInput: devopness.ServerProvisionInput{
					CloudServiceCode: args.CloudServiceCode,
					Settings: devopness.ServerProvisionSettings{
						Region:        args.CloudServiceRegion,
						InstanceType:  args.CloudServiceInstanceType,
						OsVersionCode: args.OsVersionCode,
						StorageSize:   args.OsDiskSize,
					},
				},
			})
			if err != nil {
				return nil, err
			}
			return server, nil
		}, opsy.WithTags("servers", "write"), opsy.WithDangerous())
}

type serverIDArgs struct {
	ServerID int
}

func bindServerID(v opsy.Values) serverIDArgs {
	return serverIDArgs{ServerID: v.Int("server_id")}
}

const stopServerDescription = `Stop a running server.

Rules:
- DO NOT execute this operation without first confirming with the user which server ID to use.
- DO NOT execute this operation without first asking the user if they want to stop the server.`

func stopServer() (*opsy.Operation[API], error) {
	return opsy.NewOperation(stopServerSchema, stopServerDescription, bindServerID,
		func(ctx context.Context, api API, args serverIDArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			id, err := api.StopServer(ctx, args.ServerID)
			if err != nil {
				return nil, err
			}
			return progressMessage("Server stop initiated.", api, id), nil
		}, opsy.WithTags("servers", "write"), opsy.WithDangerous())
}

type deleteServerArgs struct {
	ServerID           int
	DestroyServerDisks bool
}

const deleteServerDescription = `Delete a server.

Rules:
- DO NOT execute this operation without first confirming with the user which server ID to use.
- DO NOT execute this operation without first asking the user if they want to delete the server.`

func deleteServer() (*opsy.Operation[API], error) {
	return opsy.NewOperation(deleteServerSchema, deleteServerDescription,
		func(v opsy.Values) deleteServerArgs {
			return deleteServerArgs{
				ServerID:           v.Int("server_id"),
				DestroyServerDisks: v.Bool("destroy_server_disks"),
			}
		},
		func(ctx context.Context, api API, args deleteServerArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			id, err := api.DeleteServer(ctx, args.ServerID, args.DestroyServerDisks)
			if err != nil {
				return nil, err
			}
			return progressMessage("Server deletion initiated.", api, id), nil
		}, opsy.WithTags("servers", "write"), opsy.WithDangerous())
}

// progressMessage points the agent at the action page when the API reported one.
func progressMessage(head string, api API, actionID int) string {
	if actionID <= 0 {
		return head
	}
	return fmt.Sprintf("%s\nGo to %s page to see the progress.", head, api.ActionURL(actionID))
}
