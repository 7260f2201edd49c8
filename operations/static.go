package operations

import (
	"context"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/devopness"
)

var (
	listSupportedProvidersSchema  = opsy.MustSchema("list_supported_providers")
	listSupportedOsVersionsSchema = opsy.MustSchema("list_supported_os_versions")

	listRegionsSchema = opsy.MustSchema("list_regions_of_provider_service",
		opsy.Required("provider_service", devopness.CloudProviderServiceCodes.Type()),
	)

	listInstanceTypesSchema = opsy.MustSchema("list_instance_types_of_provider_service_region",
		opsy.Required("provider_service", devopness.CloudProviderServiceCodes.Type()),
		opsy.Required("region", opsy.String).Describe("Region code from list_regions_of_provider_service"),
	)
)

type supportedProviders struct {
	Providers        []devopness.ProviderCode             `json:"providers"`
	ProviderServices []devopness.CloudProviderServiceCode `json:"provider_services"`
}

func listSupportedProviders() (*opsy.Operation[API], error) {
	return opsy.NewDynamicOperation(listSupportedProvidersSchema, "List the supported providers and cloud provider services.",
		func(context.Context, API, opsy.Values) (any, error) {
			return supportedProviders{
				Providers:        devopness.ProviderCodes.Values(),
				ProviderServices: devopness.CloudProviderServiceCodes.Values(),
			}, nil
		}, opsy.WithTags("static", "read"))
}

func listSupportedOsVersions() (*opsy.Operation[API], error) {
	return opsy.NewDynamicOperation(listSupportedOsVersionsSchema, "List the operating systems a new server can run.",
		func(context.Context, API, opsy.Values) (any, error) {
			return listOf(devopness.CloudOsVersionCodes.Values()), nil
		}, opsy.WithTags("static", "read"))
}

type providerServiceArgs struct {
	Service devopness.CloudProviderServiceCode
	Region  string
}

func bindProviderService(v opsy.Values) providerServiceArgs {
	return providerServiceArgs{
		Service: opsy.EnumValue[devopness.CloudProviderServiceCode](v, "provider_service"),
		Region:  v.String("region"),
	}
}

func listRegionsOfProviderService() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listRegionsSchema, "List the regions of a cloud provider service.", bindProviderService,
		func(ctx context.Context, api API, args providerServiceArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			svc, err := api.GetCloudProviderService(ctx, args.Service)
			if err != nil {
				return nil, err
			}
			return listOf(svc.Regions), nil
		}, opsy.WithTags("static", "read"))
}

func listInstanceTypesOfProviderServiceRegion() (*opsy.Operation[API], error) {
	return opsy.NewOperation(listInstanceTypesSchema, "List the instance types of a cloud provider service region.",
		bindProviderService,
		func(ctx context.Context, api API, args providerServiceArgs) (any, error) {
			if err := api.EnsureReady(ctx); err != nil {
				return nil, err
			}
			instances, err := api.ListCloudInstances(ctx, args.Service, args.Region)
			if err != nil {
				return nil, err
			}
			return listOf(instances), nil
		}, opsy.WithTags("static", "read"))
}
