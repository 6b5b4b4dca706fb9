package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Service verifies bearer tokens whose subject is the player id. Tokens are
// issued by the account service; IssueToken exists for local play and tests.
type Service struct {
	jwtSecret []byte
	jwtTTL    time.Duration
	now       func() time.Time
}

func NewService(jwtSecret string, jwtTTL time.Duration) *Service {
	return &Service{jwtSecret: []byte(jwtSecret), jwtTTL: jwtTTL, now: time.Now}
}

func (s *Service) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return uid, nil
}

func (s *Service) IssueToken(playerID uuid.UUID) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub": playerID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.jwtTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
