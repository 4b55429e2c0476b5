package auth

import (
	"unicode"
	"unicode/utf8"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPasswordMinLength = 8
	// bcrypt ignores everything after 72 bytes.
	bcryptMaxPasswordBytes = 72
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	hasher := &bcryptHasher{
		cost:   bcrypt.DefaultCost,
		policy: config.PasswordStrengthConfig{MinLength: defaultPasswordMinLength, MaxLength: bcryptMaxPasswordBytes},
	}
	if cfg == nil {
		return hasher
	}

	if cfg.Auth != nil && cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
		hasher.cost = cfg.Auth.BcryptCost
	}
	if cfg.PasswordStrength != nil {
		hasher.policy = *cfg.PasswordStrength
		if hasher.policy.MinLength <= 0 {
			hasher.policy.MinLength = defaultPasswordMinLength
		}
		if hasher.policy.MaxLength <= 0 || hasher.policy.MaxLength > bcryptMaxPasswordBytes {
			hasher.policy.MaxLength = bcryptMaxPasswordBytes
		}
	}

	return hasher
}

// Hash generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	length := utf8.RuneCountInString(password)
	if length < h.policy.MinLength {
		return errors.Errorf("password must be at least %d characters", h.policy.MinLength)
	}
	if length > h.policy.MaxLength || len(password) > bcryptMaxPasswordBytes {
		return errors.Errorf("password must be at most %d characters", h.policy.MaxLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	switch {
	case h.policy.RequireUppercase && !hasUpper:
		return errors.New("password must contain an uppercase letter")
	case h.policy.RequireLowercase && !hasLower:
		return errors.New("password must contain a lowercase letter")
	case h.policy.RequireNumbers && !hasNumber:
		return errors.New("password must contain a number")
	}

	return nil
}
