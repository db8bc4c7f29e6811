package auth

import "golang.org/x/crypto/bcrypt"

// HashAPIKey hashes a plaintext API key for use in AUTH_API_KEY_HASHES.
func HashAPIKey(key string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// MatchAPIKey reports whether key matches any of the stored hashes.
func MatchAPIKey(hashes []string, key string) bool {
	if key == "" {
		return false
	}
	for _, hashed := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(key)) == nil {
			return true
		}
	}
	return false
}
