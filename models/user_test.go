package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONHidesPasswordHash(t *testing.T) {
	u := User{ID: uuid.New(), Email: "dona@studiobela.com", PasswordHash: "$2a$12$hash", Name: "Dona", Role: RoleAdmin}

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "password_hash")
	assert.Contains(t, string(out), `"email":"dona@studiobela.com"`)

	var decoded User
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.com","password_hash":"$2a$12$hash"}`), &decoded))
	assert.Equal(t, "$2a$12$hash", decoded.PasswordHash)
	assert.Equal(t, "$2a$12$hash", u.Values()["password_hash"])
}
