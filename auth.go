package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime  = 7 * 24 * time.Hour
	bcryptCost     = 12
	minPasswordLen = 4
	// Usernames double as the in-game display name, so they share the
	// name length cap (maxNameLen)
	minUsernameLen = 2

	loginRateWindow  = time.Minute
	maxLoginAttempts = 10
)

var (
	errBadCredentials = errors.New("invalid username or password")
	errRateLimited    = errors.New("too many login attempts, try again later")
)

// Auth issues and validates account tokens backed by the players table
type Auth struct {
	db      *DB
	secret  []byte
	limiter loginLimiter
}

// NewAuth creates an Auth handler with the persisted signing secret
func NewAuth(db *DB) *Auth {
	return &Auth{
		db:      db,
		secret:  loadOrCreateSecret(db),
		limiter: loginLimiter{attempts: make(map[string]*attemptWindow)},
	}
}

// tokenClaims is the JWT payload for a signed-in account
type tokenClaims struct {
	PlayerID int64  `json:"pid"`
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Register creates an account and signs the caller in
func (a *Auth) Register(username, password string) (int64, string, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return 0, "", err
	}
	if len(password) < minPasswordLen {
		return 0, "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	taken, err := a.db.UsernameExists(username)
	if err != nil {
		return 0, "", errors.New("database error")
	}
	if taken {
		return 0, "", errors.New("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, "", errors.New("internal error")
	}
	id, err := a.db.CreatePlayer(username, string(hash))
	if err != nil {
		return 0, "", errors.New("failed to create account")
	}
	return a.issue(id, username)
}

// Login checks credentials and signs the caller in. Attempts are rate
// limited per IP; failures never reveal which half was wrong.
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if !a.limiter.allow(ip) {
		return 0, "", errRateLimited
	}

	row, err := a.db.GetPlayerByUsername(strings.TrimSpace(username))
	if err != nil {
		return 0, "", errors.New("database error")
	}
	if row == nil || row.PassHash == "" {
		return 0, "", errBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PassHash), []byte(password)) != nil {
		return 0, "", errBadCredentials
	}
	return a.issue(row.ID, row.Username)
}

// ValidateToken resolves a token back to (playerID, username)
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, "", err
	}
	if !token.Valid || claims.PlayerID == 0 {
		return 0, "", errors.New("invalid token")
	}
	return claims.PlayerID, claims.Username, nil
}

func (a *Auth) issue(playerID int64, username string) (int64, string, error) {
	token, err := a.generateToken(playerID, username)
	if err != nil {
		return 0, "", errors.New("internal error")
	}
	return playerID, token, nil
}

func (a *Auth) generateToken(playerID int64, username string) (string, error) {
	claims := tokenClaims{
		PlayerID: playerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxNameLen {
		return "", fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxNameLen)
	}
	return username, nil
}

// loadOrCreateSecret returns the persisted signing secret, minting and
// storing a fresh one on first run. Without a database the secret is
// ephemeral and tokens die with the process.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if stored := db.GetSetting("jwt_secret"); stored != "" {
			if b, err := hex.DecodeString(stored); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("jwt secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("auth: persist jwt secret: %v", err)
		}
	}
	return secret
}

// loginLimiter caps login attempts per IP within a fixed window
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptWindow
}

type attemptWindow struct {
	count   int
	resetAt time.Time
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.attempts[ip]
	if !ok || now.After(w.resetAt) {
		l.attempts[ip] = &attemptWindow{count: 1, resetAt: now.Add(loginRateWindow)}
		return true
	}
	w.count++
	return w.count <= maxLoginAttempts
}
