package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ohduran/MycroBlog/internal/core/domain"
	"github.com/ohduran/MycroBlog/internal/core/ports"
)

type identityService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	publisher ports.EventPublisher
}

// NewIdentityService est le constructeur avec injection de dépendances.
func NewIdentityService(repo ports.UserRepository, hasher ports.PasswordHasher, publisher ports.EventPublisher) ports.IdentityService {
	return &identityService{repo: repo, hasher: hasher, publisher: publisher}
}

func (s *identityService) Register(ctx context.Context, cmd ports.RegisterCmd) (*domain.User, error) {
	// 1. Résolution des collisions de username (déterministe, sans réservation).
	// L'index UNIQUE de la DB reste la sécurité ultime en cas de course.
	username, err := s.AllocateUsername(ctx, strings.TrimSpace(cmd.Username))
	if err != nil {
		return nil, err
	}

	// 2. Hachage du mot de passe : on ne persiste jamais le clair.
	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Création de l'agrégat User (validation des invariants dans NewUser)
	user, err := domain.NewUser(username, cmd.Email, hash)
	if err != nil {
		return nil, err
	}
	if err := user.SetAboutMe(cmd.AboutMe); err != nil {
		return nil, err
	}

	// 4. Persistance. Un perdant de course prend ErrUsernameTaken / ErrEmailTaken
	// et c'est à l'appelant de réessayer.
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	// 5. Publication asynchrone (best effort) : on ne bloque pas l'inscription
	// si le broker est lent ou down.
	_ = s.publisher.PublishUserRegistered(ctx, user)

	return user, nil
}

// AllocateUsername sonde desired, puis desired2, desired3...
// Suffixe purement numérique, sans séparateur : "bob" en collision donne "bob2".
// Termine car le store est fini à tout instant et l'espace de suffixes ne l'est pas.
func (s *identityService) AllocateUsername(ctx context.Context, desired string) (string, error) {
	if err := domain.ValidateUsername(desired); err != nil {
		return "", err
	}

	taken, err := s.repo.ExistsUsername(ctx, desired)
	if err != nil {
		return "", err
	}
	if !taken {
		return desired, nil
	}

	for version := 2; ; version++ {
		candidate := desired + strconv.Itoa(version)
		taken, err := s.repo.ExistsUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *identityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *identityService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *identityService) UpdateProfile(ctx context.Context, cmd ports.UpdateProfileCmd) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	updated := false

	if cmd.Username != nil && *cmd.Username != user.Username {
		username := strings.TrimSpace(*cmd.Username)
		if err := domain.ValidateUsername(username); err != nil {
			return nil, err
		}
		// Pas d'allocation ici : changer son nom vers un nom pris est un
		// conflit à montrer à l'utilisateur, pas à résoudre en silence.
		user.Username = username
		updated = true
	}

	if cmd.AboutMe != nil && *cmd.AboutMe != user.AboutMe {
		if err := user.SetAboutMe(*cmd.AboutMe); err != nil {
			return nil, err
		}
		updated = true
	}

	if updated {
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *identityService) TouchLastSeen(ctx context.Context, userID string) error {
	if err := s.repo.UpdateLastSeen(ctx, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}
