package opsy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelp_CreateServer(t *testing.T) {
	t.Parallel()
	want := "To perform the 'create_server' operation, you must specify the following arguments:\n" +
		"- environment_id: int\n" +
		"- credential_id: int\n" +
		"- cloud_service_code: ServerCloudServiceCode\n" +
		"- cloud_service_region: str\n" +
		"- cloud_service_instance_type: str\n" +
		"- os_hostname: str\n" +
		"- os_disk_size: int\n" +
		"- os_version_code: CloudOsVersionCode (optional)"
	assert.Equal(t, want, FormatHelp(createServerSchema()))
}

func TestFormatHelp_OptionalAndLists(t *testing.T) {
	t.Parallel()
	s := MustSchema("deploy_application",
		Required("deploy_pipeline_id", Int),
		Optional("server_ids_to_deploy", ListOf(Int)),
		Required("maybe", AnyOf(String, Null)),
	)
	want := "To perform the 'deploy_application' operation, you must specify the following arguments:\n" +
		"- deploy_pipeline_id: int\n" +
		"- server_ids_to_deploy: list[int] (optional)\n" +
		"- maybe: str (optional)"
	assert.Equal(t, want, FormatHelp(s))
}

func TestFormatHelp_NoArguments(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "To perform the 'list_projects' operation, you must specify the following arguments:", FormatHelp(MustSchema("list_projects")))
}

func TestFormatHelp_Deterministic(t *testing.T) {
	t.Parallel()
	first := FormatHelp(createServerSchema())
	for range 50 {
		assert.Equal(t, first, FormatHelp(createServerSchema()))
	}
}

func TestUnknownOperationMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Unknown operation: nonexistent_op", UnknownOperationMessage("nonexistent_op"))
}

func TestFormatIndex(t *testing.T) {
	t.Parallel()
	want := "Please specify an operation in args {'operation': <operation_name>}.\n" +
		"Available operations:\n" +
		"- list_projects\n" +
		"- list_servers"
	assert.Equal(t, want, formatIndex([]string{"list_projects", "list_servers"}))
}
