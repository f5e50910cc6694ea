package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.False(t, IsValidEmail("user@example"))
	assert.False(t, IsValidEmail("user example@x.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("scrap_dealer.42"))
	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername("has space"))
	assert.False(t, IsValidUsername("way_too_long_for_a_username_way_too_long"))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("passw0rd!"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("nodigits!"))
	assert.False(t, IsValidPassword("nospecial1"))
}

func TestIsValidPincode(t *testing.T) {
	assert.True(t, IsValidPincode("411001"))
	assert.True(t, IsValidPincode("")) // optional
	assert.False(t, IsValidPincode("041100"))
	assert.False(t, IsValidPincode("4110"))
}
