package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"settlement/internal/domain"
)

const sessionCookieName = "settlement_session"

type sessionClaims struct {
	jwtlib.RegisteredClaims
	Username string `json:"username"`
}

// SessionManager binds a user identity to the browser session through a
// signed token carried in an HTTP-only cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

func (m *SessionManager) Issue(user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(m.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "settlement",
		},
		Username: user.Username,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *SessionManager) Parse(tokenStr string) (int64, error) {
	claims := &sessionClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired session")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errors.New("invalid session subject")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.New("invalid session subject")
	}
	return userID, nil
}

func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
