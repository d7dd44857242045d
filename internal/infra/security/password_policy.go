package security

import (
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
)

// PasswordRule checks one aspect of password acceptability. UserInputs are
// account attributes (email, name) the strength estimator should penalize.
type PasswordRule interface {
	Validate(password string, userInputs []string) error
}

// PasswordRuleFunc adapts a function to the PasswordRule interface.
type PasswordRuleFunc func(password string, userInputs []string) error

func (f PasswordRuleFunc) Validate(password string, userInputs []string) error {
	return f(password, userInputs)
}

// PasswordValidator runs all configured rules and reports the first failure.
type PasswordValidator struct {
	rules []PasswordRule
}

func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: rules}
}

// DefaultPasswordValidator applies the standard policy for new and changed
// passwords.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequirePasswordStrengthRule(2),
	)
}

func (v *PasswordValidator) Validate(password string, userInputs []string) error {
	for _, rule := range v.rules {
		if err := rule.Validate(password, userInputs); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule rejects passwords shorter than min bytes.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string, _ []string) error {
		if len(password) < min {
			return fmt.Errorf("password must be at least %d characters long", min)
		}
		return nil
	})
}

// RequirePasswordStrengthRule rejects passwords whose zxcvbn score is below
// minScore (0 weakest, 4 strongest).
func RequirePasswordStrengthRule(minScore int) PasswordRule {
	return PasswordRuleFunc(func(password string, userInputs []string) error {
		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score < minScore {
			return fmt.Errorf("password is too weak, add more variety")
		}
		return nil
	})
}
