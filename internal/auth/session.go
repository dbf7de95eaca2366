// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotInitialized = errors.New("auth: signing keys not initialized")
	ErrMissingSubject = errors.New("missing sub in jwt")
)

// keys holds whichever verification scheme was configured last.
type keys struct {
	method     jwt.SigningMethod
	signKey    interface{}
	verifyKey  interface{}
	expireTime time.Duration // 0 => tokens never expire
}

var (
	mu      sync.RWMutex
	current *keys
)

// parseTokenExpireTime reads TOKEN_EXPIRE_TIME ("72h", "never", "0" or empty).
func parseTokenExpireTime() (time.Duration, error) {
	duration := os.Getenv("TOKEN_EXPIRE_TIME")
	if duration == "never" || duration == "0" || duration == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(duration)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time: %w", err)
	}
	return d, nil
}

// Init generates a fresh ed25519 key pair at runtime. Tokens issued before a restart stop verifying.
func Init() error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	exp, err := parseTokenExpireTime()
	if err != nil {
		return err
	}
	set(&keys{method: jwt.SigningMethodEdDSA, signKey: priv, verifyKey: pub, expireTime: exp})
	return nil
}

// InitWithSecret configures HS256 with a shared secret, the scheme used by hosted auth
// providers that sign access tokens with a project JWT secret.
func InitWithSecret(secret string) error {
	if secret == "" {
		return errors.New("auth: empty jwt secret")
	}
	exp, err := parseTokenExpireTime()
	if err != nil {
		return err
	}
	key := []byte(secret)
	set(&keys{method: jwt.SigningMethodHS256, signKey: key, verifyKey: key, expireTime: exp})
	return nil
}

func set(k *keys) {
	mu.Lock()
	defer mu.Unlock()
	current = k
}

func get() (*keys, error) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// CreateJWT creates a signed token with "sub" = playerID and, unless TOKEN_EXPIRE_TIME is
// "never", an exp claim.
func CreateJWT(playerID string) (string, error) {
	k, err := get()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sub": playerID,
		"iat": time.Now().Unix(),
	}
	if k.expireTime > 0 {
		claims["exp"] = time.Now().Add(k.expireTime).Unix()
	}

	token := jwt.NewWithClaims(k.method, claims)
	return token.SignedString(k.signKey)
}

// AuthenticateJWT verifies a JWT string and returns its "sub" claim.
func AuthenticateJWT(tokenString string) (string, error) {
	k, err := get()
	if err != nil {
		return "", err
	}

	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != k.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return k.verifyKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}
