package opsy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema_CreateServer(t *testing.T) {
	t.Parallel()
	js := JSONSchema(createServerSchema())
	assert.Equal(t, "object", js.Type)
	assert.Equal(t, "create_server", js.Title)
	assert.Equal(t, []string{
		"environment_id", "credential_id", "cloud_service_code", "cloud_service_region",
		"cloud_service_instance_type", "os_hostname", "os_disk_size",
	}, js.Required)

	assert.Equal(t, "integer", js.Properties["environment_id"].Type)
	code := js.Properties["cloud_service_code"]
	assert.Equal(t, "string", code.Type)
	assert.Equal(t, "ServerCloudServiceCode", code.Title)
	assert.Len(t, code.Enum, 6)

	os := js.Properties["os_version_code"]
	assert.JSONEq(t, `"ubuntu-24.04"`, string(os.Default))
}

func TestJSONSchemaMap(t *testing.T) {
	t.Parallel()
	s := MustSchema("deploy_application",
		Required("deploy_pipeline_id", Int).Describe("Pipeline to run"),
		Optional("server_ids_to_deploy", ListOf(Int)),
		WithDefault("force", Bool, false),
	)
	m, err := JSONSchemaMap(s)
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"title": "deploy_application",
		"required": ["deploy_pipeline_id"],
		"properties": {
			"deploy_pipeline_id": {"type": "integer", "description": "Pipeline to run"},
			"server_ids_to_deploy": {"type": "array", "items": {"type": "integer"}},
			"force": {"type": "boolean", "default": false}
		}
	}`, string(data))
}

func TestJSONSchema_NoFields(t *testing.T) {
	t.Parallel()
	js := JSONSchema(MustSchema("list_projects"))
	assert.Empty(t, js.Required)
	assert.Empty(t, js.Properties)
}
