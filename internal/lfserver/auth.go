package lfserver

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// errBadCredentials is returned when a login attempt's password does not
// match the configured hash.
var errBadCredentials = fmt.Errorf("incorrect username or password")

// Credentials holds the single operator account this server authenticates
// against - a lexicon compiler service has no notion of end users, only of
// whoever is allowed to push and run lexicons.
type Credentials struct {
	Username     string
	PasswordHash []byte // bcrypt hash, e.g. from HashPassword
}

// HashPassword bcrypt-hashes password for storage in a Credentials.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("lfserver: hash password: %w", err)
	}
	return hash, nil
}

func (c Credentials) checkPassword(password string) error {
	err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return errBadCredentials
		}
		return fmt.Errorf("lfserver: check password: %w", err)
	}
	return nil
}

// generateJWT issues a one-hour HS512 token for the operator account,
// signed with secret mixed with the account's password hash so a password
// change invalidates every previously issued token.
func generateJWT(secret []byte, c Credentials) (string, error) {
	claims := &jwt.MapClaims{
		"iss": "lexforge",
		"sub": c.Username,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	signKey := append(append([]byte(nil), secret...), c.PasswordHash...)
	return tok.SignedString(signKey)
}

func validateJWT(tokStr string, secret []byte, c Credentials) error {
	_, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}
		if subj != c.Username {
			return nil, fmt.Errorf("unknown subject %q", subj)
		}
		signKey := append(append([]byte(nil), secret...), c.PasswordHash...)
		return signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("lexforge"), jwt.WithLeeway(time.Minute))

	return err
}
