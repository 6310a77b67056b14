package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolesRoundTrip(t *testing.T) {
	assert.Equal(t, "ROLE_USER,ROLE_ADMIN", JoinRoles([]string{"ROLE_USER", "ROLE_ADMIN"}))
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, SplitRoles(" ROLE_USER, ROLE_ADMIN ,,ROLE_USER"))
	assert.Nil(t, SplitRoles(""))
}

func TestPrincipal_HasRole(t *testing.T) {
	p := &Principal{Subject: "a@b.c", Roles: []string{"ROLE_USER"}}
	assert.True(t, p.HasRole("ROLE_USER"))
	assert.False(t, p.HasRole("ROLE_ADMIN"))

	var anon *Principal
	assert.False(t, anon.HasRole("ROLE_USER"))
}
