package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"drifty/config"
	pkgerrors "drifty/pkg/errors"
)

const (
	IdentityKey = "uid"
	PhoneKey    = "phone"
)

// GenerateIdentityToken mints the signed identity token handed to the
// session layer after a successful code confirmation.
func GenerateIdentityToken(uid, phoneNumber string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute)

	claims := jwtv5.MapClaims{
		IdentityKey: uid,
		PhoneKey:    phoneNumber,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	tokenObj := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tokenObj.SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate identity token: %w", err)
	}

	return signed, nil
}

// ValidateIdentityToken parses a token and returns the uid and phone
// number it carries.
func ValidateIdentityToken(tokenString string) (uid, phoneNumber string, err error) {
	token, err := jwtv5.ParseWithClaims(tokenString, jwtv5.MapClaims{}, func(token *jwtv5.Token) (interface{}, error) {
		if token.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", pkgerrors.ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(config.Cfg.JWTSecret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", "", pkgerrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", "", pkgerrors.ErrInvalidTokenClaims
	}

	uid, ok = claims[IdentityKey].(string)
	if !ok {
		return "", "", pkgerrors.ErrInvalidTokenClaims
	}

	phoneNumber, _ = claims[PhoneKey].(string)

	return uid, phoneNumber, nil
}
