package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordComplexity(t *testing.T) {
	checker := NewDefaultPasswordPolicyChecker(nil)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "P@ssw0rd1", false},
		{"ValidWithoutSpecial", "Passw0rd", false},
		{"TooShort", "P@ss1", true},
		{"NoUppercase", "p@ssw0rd1", true},
		{"NoLowercase", "P@SSW0RD1", true},
		{"NoDigit", "P@ssword", true},
		{"TooManyRepeats", "Passssw0rd", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.CheckPasswordComplexity(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCustomPolicy(t *testing.T) {
	checker := NewDefaultPasswordPolicyChecker(&PasswordPolicy{
		MinLength:          12,
		RequireSpecialChar: true,
	})

	assert.Error(t, checker.CheckPasswordComplexity("Passw0rd"))
	assert.Error(t, checker.CheckPasswordComplexity("LongEnoughPassword1"))
	assert.NoError(t, checker.CheckPasswordComplexity("LongEnough!1"))
	assert.Equal(t, 12, checker.GetPolicy().MinLength)
}
