package auth

import "golang.org/x/crypto/bcrypt"

// HashAPIKey hashes a plaintext gateway API key with the configured cost.
// Used by provisioning tooling; the engine only stores the hash.
func HashAPIKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareAPIKey verifies a presented key against its stored hash.
func CompareAPIKey(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
