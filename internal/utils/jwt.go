package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrInvalidSession 表示 session token 無法解析、簽章錯誤或已過期
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims 把參與者的 token 包裝成有期限的簽章憑證
type SessionClaims struct {
	RoomID        string `json:"room_id"`
	ParticipantID string `json:"participant_id"`
	Token         string `json:"token"`
	jwt.StandardClaims
}

// SessionSigner 負責簽發與驗證 session token
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionSigner(secret string, ttl time.Duration) (*SessionSigner, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = 240 * time.Hour
	}
	return &SessionSigner{secret: []byte(secret), ttl: ttl}, nil
}

// Issue 生成一個新的 session token
func (s *SessionSigner) Issue(roomID, participantID, token string) (string, error) {
	nowTime := time.Now()
	expireTime := nowTime.Add(s.ttl)

	claims := SessionClaims{
		RoomID:        roomID,
		ParticipantID: participantID,
		Token:         token,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
			Subject:   participantID,
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tokenClaims.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse 解析和驗證 session token
func (s *SessionSigner) Parse(session string) (*SessionClaims, error) {
	tokenClaims, err := jwt.ParseWithClaims(session, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || tokenClaims == nil {
		return nil, ErrInvalidSession
	}

	claims, ok := tokenClaims.Claims.(*SessionClaims)
	if !ok || !tokenClaims.Valid || claims.Token == "" || claims.RoomID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
