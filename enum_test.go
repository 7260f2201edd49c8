package opsy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnum_ParseRoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range osVersions.Strings() {
		v, err := osVersions.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(v))
		assert.True(t, osVersions.Contains(v))
	}

	_, err := osVersions.Parse("ubuntu-18.04")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
	assert.False(t, osVersions.Contains("ubuntu-18.04"))
}

func TestEnum_ValuesInDeclarationOrder(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ServerCloudServiceCode", cloudServices.Name())
	assert.Equal(t, []cloudService{
		"aws-ec2", "azure-vm", "digitalocean-droplet", "gcp-ce", "hetzner-cloud", "self-hosted-custom",
	}, cloudServices.Values())

	values := cloudServices.Values()
	values[0] = "mutated"
	assert.Equal(t, cloudService("aws-ec2"), cloudServices.Values()[0])
}

func TestNewEnum_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewEnum[osVersion]("") })
	assert.Panics(t, func() { NewEnum[osVersion]("Empty") })
	assert.Panics(t, func() { NewEnum[osVersion]("Dup", "a", "a") })
}
