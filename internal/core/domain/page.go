package domain

import (
	"errors"
	"sort"
)

var ErrInvalidPage = errors.New("page and pageSize must be positive")

// Page est une fenêtre bornée de résultats, plus un drapeau HasNext.
// Demander une page au-delà de la fin renvoie une liste vide, jamais une erreur.
type Page struct {
	Items    []*Post
	HasNext  bool
	Page     int
	PageSize int
}

// ValidatePaging rejette les paramètres hors contrat (pas de clamp silencieux).
func ValidatePaging(page, pageSize int) error {
	if page < 1 || pageSize < 1 {
		return ErrInvalidPage
	}
	return nil
}

// SortPostsDesc trie par timestamp décroissant.
// Égalité : ID décroissant, pour une pagination déterministe entre deux appels.
func SortPostsDesc(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.After(posts[j].Timestamp)
		}
		return posts[i].ID > posts[j].ID
	})
}

// NewPage découpe la fenêtre [(page-1)*pageSize, page*pageSize) d'une liste déjà triée.
func NewPage(sorted []*Post, page, pageSize int) *Page {
	p := &Page{Items: []*Post{}, Page: page, PageSize: pageSize}

	start := (page - 1) * pageSize
	if start >= len(sorted) {
		return p
	}

	end := start + pageSize
	if end < len(sorted) {
		p.HasNext = true
	} else {
		end = len(sorted)
	}

	p.Items = sorted[start:end]
	return p
}
