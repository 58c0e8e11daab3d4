package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("User.Name+tag@sub.example.sa"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("user@"))
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("заголовок", "Ремонт крана", MinJobTitleLength, MaxJobTitleLength))
	assert.Error(t, ValidateLength("заголовок", "ab", MinJobTitleLength, MaxJobTitleLength))

	// Длина считается в рунах, не байтах.
	assert.NoError(t, ValidateLength("имя", "Али", 3, 10))
}

func TestValidateRating(t *testing.T) {
	for rating := MinRating; rating <= MaxRating; rating++ {
		assert.NoError(t, ValidateRating(rating))
	}
	assert.Error(t, ValidateRating(0))
	assert.Error(t, ValidateRating(6))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Passw0rd123"))
	assert.Error(t, ValidatePassword("short1A"))
	assert.Error(t, ValidatePassword("nouppercase1"))
	assert.Error(t, ValidatePassword("NOLOWERCASE1"))
	assert.Error(t, ValidatePassword("NoDigitsHere"))
}
