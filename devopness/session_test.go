package devopness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_JWTExpiry(t *testing.T) {
	now := time.Now()
	exp := now.Add(2 * time.Hour).Truncate(time.Second)
	var s Session
	assert.False(t, s.Valid(now))

	s.Set(Token{AccessToken: signedToken(t, exp), ExpiresIn: 60}, now)
	assert.True(t, s.ExpiresAt().Equal(exp), "exp claim wins over expires_in")
	assert.True(t, s.Valid(now))
	assert.False(t, s.Valid(exp.Add(-30*time.Second)))
	assert.False(t, s.Valid(exp.Add(time.Second)))
}

func TestSession_OpaqueToken(t *testing.T) {
	now := time.Now()
	var s Session

	s.Set(Token{AccessToken: "opaque", ExpiresIn: 600}, now)
	assert.Equal(t, now.Add(10*time.Minute), s.ExpiresAt())
	assert.True(t, s.Valid(now))

	s.Set(Token{AccessToken: "opaque"}, now)
	assert.True(t, s.ExpiresAt().IsZero())
	assert.True(t, s.Valid(now.Add(24*time.Hour)))

	s.Clear()
	assert.Empty(t, s.Token())
	assert.False(t, s.Valid(now))
}

func TestEnums_MatchConstants(t *testing.T) {
	assert.Equal(t, []string{"server", "application"}, EnvironmentResourceTypes.Strings())
	assert.Equal(t, []string{"branch", "tag", "commit"}, SourceTypes.Strings())
	assert.Len(t, ProviderCodes.Values(), 8)
	assert.Len(t, CloudProviderServiceCodes.Values(), 5)
	assert.True(t, ServerCloudServiceCodes.Contains(ServerSelfHostedCustom))
	assert.Equal(t, Ubuntu2404, CloudOsVersionCodes.Values()[2])
}
