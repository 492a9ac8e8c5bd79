package security

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordStrength scores a password from 0 (guessable) to 4 (strong) using
// zxcvbn. The score is advisory only: registration never rejects on it, the
// value feeds server-side diagnostics so weak-credential trends show up in
// the logs.
func PasswordStrength(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, userInputs).Score
}
