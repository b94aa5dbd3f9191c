package config

import "github.com/verdant-labs/authcore/pkg/login"

// PasswordPolicyConfig holds password complexity configuration
type PasswordPolicyConfig struct {
	MinLength          int  `env:"PASSWORD_COMPLEXITY_REQUIRED_LENGTH" env-default:"8"`
	RequireUppercase   bool `env:"PASSWORD_COMPLEXITY_REQUIRE_UPPERCASE" env-default:"true"`
	RequireLowercase   bool `env:"PASSWORD_COMPLEXITY_REQUIRE_LOWERCASE" env-default:"true"`
	RequireDigit       bool `env:"PASSWORD_COMPLEXITY_REQUIRE_DIGIT" env-default:"true"`
	RequireSpecialChar bool `env:"PASSWORD_COMPLEXITY_REQUIRE_NON_ALPHANUMERIC" env-default:"false"`
	MaxRepeatedChars   int  `env:"PASSWORD_COMPLEXITY_MAX_REPEATED_CHARS" env-default:"3"`
}

// ToPolicy converts the config to a login.PasswordPolicy
func (p PasswordPolicyConfig) ToPolicy() *login.PasswordPolicy {
	return &login.PasswordPolicy{
		MinLength:          p.MinLength,
		RequireUppercase:   p.RequireUppercase,
		RequireLowercase:   p.RequireLowercase,
		RequireDigit:       p.RequireDigit,
		RequireSpecialChar: p.RequireSpecialChar,
		MaxRepeatedChars:   p.MaxRepeatedChars,
	}
}
