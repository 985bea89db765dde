package factory

import (
	fab "github.com/Goldziher/fabricator"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext behind the PasswordHash that NewUser
// fills in when the caller does not override it.
const DefaultPassword = "12345678"

func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		hasPasswordHash := false

		for _, data := range customData {
			if _, exists := data["PasswordHash"]; exists {
				hasPasswordHash = true
				break
			}
		}

		if !hasPasswordHash {
			passwordHash, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)

			customData = append(customData, map[string]any{
				"PasswordHash": string(passwordHash),
			})
		}
	}

	return instance.Build(customData...)
}
