package domain

import (
	"crypto/md5"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- ERREURS DU DOMAINE ---
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already taken")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidUsername = errors.New("username must be 3 to 64 characters")
	ErrAboutMeTooLong  = errors.New("about me must be at most 140 characters")
)

const (
	MaxUsernameLen = 64
	MaxEmailLen    = 120
	MaxAboutMeLen  = 140
)

// --- ENTITÉ ---

type User struct {
	ID           string
	Username     string
	Email        string
	AboutMe      string
	LastSeen     time.Time
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser crée une nouvelle instance valide.
// C'est le SEUL moyen de créer un user proprement (avec ID et validation).
func NewUser(username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(), // L'identité est générée ICI, pas en DB
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		LastSeen:     now,
		CreatedAt:    now,
	}, nil
}

// SetAboutMe applique la contrainte de longueur du profil.
func (u *User) SetAboutMe(aboutMe string) error {
	if len([]rune(aboutMe)) > MaxAboutMeLen {
		return ErrAboutMeTooLong
	}
	u.AboutMe = aboutMe
	return nil
}

// AvatarURL renvoie l'avatar Gravatar dérivé de l'email (MD5 hex).
func (u *User) AvatarURL(size int) string {
	sum := md5.Sum([]byte(strings.ToLower(u.Email)))
	return fmt.Sprintf("http://www.gravatar.com/avatar/%x?d=mm&s=%d", sum, size)
}

// --- VALIDATEURS ---

func ValidateUsername(username string) error {
	n := len(strings.TrimSpace(username))
	if n < 3 || n > MaxUsernameLen {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > MaxEmailLen {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
