package authenticator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wanderquest-labs/backend/config"
)

type tokenObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestTokenEngine_GenerateAndVerify(t *testing.T) {
	engine := NewTokenEngine[tokenObject](config.AuthConfigs{
		TokenSecret: "secret",
		AccessToken: config.TokenConfigs{Expiration: time.Minute},
	})

	token, err := engine.Generate("user1", tokenObject{ID: "user1", Name: "alice"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user1", obj.ID)
	require.Equal(t, "alice", obj.Name)
}

func TestTokenEngine_RejectsWrongSecret(t *testing.T) {
	engine := NewTokenEngine[tokenObject](config.AuthConfigs{
		TokenSecret: "secret",
		AccessToken: config.TokenConfigs{Expiration: time.Minute},
	})

	other := NewTokenEngine[tokenObject](config.AuthConfigs{
		TokenSecret: "another-secret",
		AccessToken: config.TokenConfigs{Expiration: time.Minute},
	})

	token, err := engine.Generate("user1", tokenObject{ID: "user1"})
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestTokenEngine_RejectsExpired(t *testing.T) {
	engine := NewTokenEngine[tokenObject](config.AuthConfigs{
		TokenSecret: "secret",
		AccessToken: config.TokenConfigs{Expiration: -time.Minute},
	})

	token, err := engine.Generate("user1", tokenObject{ID: "user1"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}
