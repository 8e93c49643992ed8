package jwt_test

import (
	"testing"

	"github.com/jhoicas/POS-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "admin", "Centro", "pos-api", 5)
	require.NoError(t, err)

	userID, role, branch, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "admin", role)
	assert.Equal(t, "Centro", branch)
}

func TestParse_Rejections(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "vendedor", "", "pos-api", 5)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse("otro", token)
	assert.Error(t, err, "firma con otro secreto")

	expired, err := jwt.Generate("secreto", "u1", "vendedor", "", "pos-api", -1)
	require.NoError(t, err)
	_, _, _, err = jwt.Parse("secreto", expired)
	assert.Error(t, err, "token expirado")

	_, _, _, err = jwt.Parse("", token)
	assert.Error(t, err)
	_, err = jwt.Generate("", "u1", "admin", "", "", 5)
	assert.Error(t, err)
}
