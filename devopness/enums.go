package devopness

import "github.com/skosovsky/opsy"

// EnvironmentResourceType is the kind of environment resource a pipeline belongs to.
type EnvironmentResourceType string

const (
	ResourceServer      EnvironmentResourceType = "server"
	ResourceApplication EnvironmentResourceType = "application"
)

// SourceType selects what a deployment's source value refers to.
type SourceType string

const (
	SourceBranch SourceType = "branch"
	SourceTag    SourceType = "tag"
	SourceCommit SourceType = "commit"
)

// ProviderCode identifies a credential provider.
type ProviderCode string

const (
	ProviderAWS          ProviderCode = "aws"
	ProviderAzure        ProviderCode = "azure"
	ProviderBitbucket    ProviderCode = "bitbucket"
	ProviderDigitalOcean ProviderCode = "digitalocean"
	ProviderGCP          ProviderCode = "gcp"
	ProviderGitHub       ProviderCode = "github"
	ProviderGitLab       ProviderCode = "gitlab"
	ProviderHetzner      ProviderCode = "hetzner"
)

// CloudProviderServiceCode identifies a cloud compute service.
type CloudProviderServiceCode string

const (
	ServiceAWSEC2              CloudProviderServiceCode = "aws-ec2"
	ServiceAzureVM             CloudProviderServiceCode = "azure-vm"
	ServiceDigitalOceanDroplet CloudProviderServiceCode = "digitalocean-droplet"
	ServiceGCPCE               CloudProviderServiceCode = "gcp-ce"
	ServiceHetznerCloud        CloudProviderServiceCode = "hetzner-cloud"
)

// ServerCloudServiceCode is where a new server is provisioned: a cloud service or
// a self-hosted machine.
type ServerCloudServiceCode string

const (
	ServerAWSEC2              ServerCloudServiceCode = "aws-ec2"
	ServerAzureVM             ServerCloudServiceCode = "azure-vm"
	ServerDigitalOceanDroplet ServerCloudServiceCode = "digitalocean-droplet"
	ServerGCPCE               ServerCloudServiceCode = "gcp-ce"
	ServerHetznerCloud        ServerCloudServiceCode = "hetzner-cloud"
	ServerSelfHostedCustom    ServerCloudServiceCode = "self-hosted-custom"
)

// CloudOsVersionCode is the operating system image of a new server.
type CloudOsVersionCode string

const (
	Ubuntu2004 CloudOsVersionCode = "ubuntu-20.04"
	Ubuntu2204 CloudOsVersionCode = "ubuntu-22.04"
	Ubuntu2404 CloudOsVersionCode = "ubuntu-24.04"
)

// Enumerations used by operation schemas. Member order is the order shown to agents.
var (
	EnvironmentResourceTypes = opsy.NewEnum("EnvironmentResourceType",
		ResourceServer, ResourceApplication)
	SourceTypes = opsy.NewEnum("SourceType",
		SourceBranch, SourceTag, SourceCommit)
	ProviderCodes = opsy.NewEnum("ProviderCode",
		ProviderAWS, ProviderAzure, ProviderBitbucket, ProviderDigitalOcean,
		ProviderGCP, ProviderGitHub, ProviderGitLab, ProviderHetzner)
	CloudProviderServiceCodes = opsy.NewEnum("CloudProviderServiceCode",
		ServiceAWSEC2, ServiceAzureVM, ServiceDigitalOceanDroplet, ServiceGCPCE, ServiceHetznerCloud)
	ServerCloudServiceCodes = opsy.NewEnum("ServerCloudServiceCode",
		ServerAWSEC2, ServerAzureVM, ServerDigitalOceanDroplet, ServerGCPCE, ServerHetznerCloud,
		ServerSelfHostedCustom)
	CloudOsVersionCodes = opsy.NewEnum("CloudOsVersionCode",
		Ubuntu2004, Ubuntu2204, Ubuntu2404)
)
