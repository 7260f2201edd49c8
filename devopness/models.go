package devopness

import "encoding/json"

// Project is a top-level container of environments.
type Project struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Environment groups the servers, applications and credentials of one stage.
type Environment struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Provider is the credential provider of a resource.
type Provider struct {
	Code              ProviderCode `json:"code"`
	CodeHumanReadable string       `json:"code_human_readable"`
}

// CredentialRelation is the credential summary embedded in other resources.
type CredentialRelation struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Provider Provider `json:"provider"`
}

// Credential is a stored provider credential.
type Credential struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	ProviderType string   `json:"provider_type"`
	Active       bool     `json:"active"`
	Provider     Provider `json:"provider"`
}

// ActionRelation is the summary of the last action run on a resource.
type ActionRelation struct {
	ID                  int    `json:"id"`
	Status              string `json:"status"`
	StatusHumanReadable string `json:"status_human_readable"`
	Type                string `json:"type"`
	TypeHumanReadable   string `json:"type_human_readable"`
	URLWebPermalink     string `json:"url_web_permalink"`
}

// Action is an asynchronous job started by the API (deploy, stop, delete).
type Action struct {
	ID                  int    `json:"id"`
	Status              string `json:"status"`
	StatusHumanReadable string `json:"status_human_readable"`
	Type                string `json:"type"`
	TypeHumanReadable   string `json:"type_human_readable"`
	URLWebPermalink     string `json:"url_web_permalink"`
	CreatedAt           string `json:"created_at"`
}

// Server is a machine managed in an environment.
type Server struct {
	ID         int                 `json:"id"`
	Name       string              `json:"name"`
	Hostname   string              `json:"hostname"`
	Status     string              `json:"status"`
	IPAddress  string              `json:"ip_address"`
	SSHPort    int                 `json:"ssh_port"`
	Region     string              `json:"region"`
	LastAction *ActionRelation     `json:"last_action"`
	Credential *CredentialRelation `json:"credential"`
}

// Application is a deployable code repository bound to an environment.
type Application struct {
	ID                               int                 `json:"id"`
	Name                             string              `json:"name"`
	Repository                       string              `json:"repository"`
	ProgrammingLanguage              string              `json:"programming_language"`
	ProgrammingLanguageHumanReadable string              `json:"programming_language_human_readable"`
	EngineVersion                    string              `json:"engine_version"`
	Framework                        string              `json:"framework"`
	FrameworkHumanReadable           string              `json:"framework_human_readable"`
	RootDirectory                    string              `json:"root_directory"`
	DefaultBranch                    string              `json:"default_branch"`
	Credential                       *CredentialRelation `json:"credential"`
}

// Pipeline is an ordered list of steps run as one action on a resource.
type Pipeline struct {
	ID                        int    `json:"id"`
	Name                      string `json:"name"`
	Operation                 string `json:"operation"`
	OperationHumanReadable    string `json:"operation_human_readable"`
	MaxParallelActions        int    `json:"max_parallel_actions"`
	ResourceID                int    `json:"resource_id"`
	ResourceType              string `json:"resource_type"`
	ResourceTypeHumanReadable string `json:"resource_type_human_readable"`
}

// Region is a location offered by a cloud provider service.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CloudProviderService describes a cloud compute service and its regions.
type CloudProviderService struct {
	Code    CloudProviderServiceCode `json:"code"`
	Name    string                   `json:"name"`
	Regions []Region                 `json:"regions"`
}

// CloudInstance is an instance type of a provider service region. The shape varies
// by provider, so it is kept as raw JSON.
type CloudInstance = json.RawMessage

// ServerProvisionSettings are the cloud settings of a new server.
type ServerProvisionSettings struct {
	Region        string             `json:"region"`
	InstanceType  string             `json:"instance_type"`
	OsVersionCode CloudOsVersionCode `json:"os_version_code"`
	StorageSize   int                `json:"storage_size"`
}

// ServerProvisionInput selects the service a new server is provisioned on.
type ServerProvisionInput struct {
	CloudServiceCode ServerCloudServiceCode  `json:"cloud_service_code"`
	Settings         ServerProvisionSettings `json:"settings"`
}

// ServerCreate is the request body of AddEnvironmentServer. The API expects the
// credential ID as a string.
type ServerCreate struct {
	Hostname       string               `json:"hostname"`
	CredentialID   string               `json:"credential_id"`
	ProvisionInput ServerProvisionInput `json:"provision_input"`
}

// ApplicationCreate is the request body of AddEnvironmentApplication.
type ApplicationCreate struct {
	Name                string  `json:"name"`
	Repository          string  `json:"repository"`
	ProgrammingLanguage string  `json:"programming_language"`
	EngineVersion       string  `json:"engine_version"`
	Framework           string  `json:"framework"`
	RootDirectory       *string `json:"root_directory"`
	DefaultBranch       string  `json:"default_branch"`
	CredentialID        int     `json:"credential_id"`
}

// PipelineActionCreate is the request body of AddPipelineAction.
type PipelineActionCreate struct {
	SourceType SourceType `json:"source_type"`
	SourceRef  string     `json:"source_ref"`
	Servers    []int      `json:"servers,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the response of a successful login.
type Token struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
