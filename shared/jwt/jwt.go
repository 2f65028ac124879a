package jwt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	internal_errors "github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Purposes of single-use tokens sent by email.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposeResetPassword = "reset_password"
)

type JwtService interface {
	NewToken(session domain.Session) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
	NewPurposeToken(subject, purpose string, ttl time.Duration) (string, error)
	DecodePurposeToken(jwtStr, purpose string) (string, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(session domain.Session) (string, error) {
	claims := jwt.MapClaims{}
	claims["uid"] = session.IdentityId
	claims["email"] = session.Email
	claims["name"] = session.DisplayName
	claims["email_verified"] = session.EmailVerified
	claims["admin"] = session.Admin
	claims["exp"] = time.Now().Add(j.ttl).Unix()
	return j.sign(claims)
}

func (j *Jwt) NewPurposeToken(subject, purpose string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     subject,
		"purpose": purpose,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return j.sign(claims)
}

func (j *Jwt) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("can't sign token", "error", err)
		return "", fmt.Errorf("Can't create token")
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		// Verify signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}

// DecodePurposeToken returns the subject of a token minted for purpose.
func (j *Jwt) DecodePurposeToken(jwtStr, purpose string) (string, error) {
	invalid := internal_errors.New(internal_errors.ValidationError, "The link is invalid or has expired.")
	token, err := j.DecodeToken(jwtStr)
	if err != nil {
		return "", invalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != purpose {
		return "", invalid
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", invalid
	}
	return sub, nil
}

// SessionFromToken rebuilds the session carried by an access token.
func SessionFromToken(token *jwt.Token) (*domain.Session, bool) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, false
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, false
	}
	admin, ok := claims["admin"].(bool)
	if !ok {
		return nil, false
	}
	name, _ := claims["name"].(string)
	verified, _ := claims["email_verified"].(bool)
	return &domain.Session{
		IdentityId:    uid,
		Email:         email,
		DisplayName:   name,
		EmailVerified: verified,
		Admin:         admin,
	}, true
}
