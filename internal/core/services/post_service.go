package services

import (
	"context"

	"github.com/ohduran/MycroBlog/internal/core/domain"
	"github.com/ohduran/MycroBlog/internal/core/ports"
)

type postService struct {
	repo      ports.PostRepository
	publisher ports.EventPublisher
}

func NewPostService(repo ports.PostRepository, publisher ports.EventPublisher) ports.PostService {
	return &postService{repo: repo, publisher: publisher}
}

func (s *postService) CreatePost(ctx context.Context, authorID, body string) (*domain.Post, error) {
	post, err := domain.NewPost(authorID, body)
	if err != nil {
		return nil, err
	}

	// 1. Sauvegarde DB (source of truth)
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}

	// 2. Publication de l'événement (déclenche le fan-out côté worker).
	// Best effort : la donnée est sauvée, on ne fait pas échouer la requête.
	_ = s.publisher.PublishPostCreated(ctx, post)

	return post, nil
}

func (s *postService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	return s.repo.GetByID(ctx, postID)
}

func (s *postService) ListByAuthor(ctx context.Context, authorID string, page, pageSize int) (*domain.Page, error) {
	if err := domain.ValidatePaging(page, pageSize); err != nil {
		return nil, err
	}

	posts, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	// Le repo promet un ordre stable quelconque : on re-trie ici.
	domain.SortPostsDesc(posts)
	return domain.NewPage(posts, page, pageSize), nil
}
