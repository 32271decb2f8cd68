package newsletter

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/lumina-backend/internal/repo"
	"github.com/angelmondragon/lumina-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SQLRepository stores subscribers in the newsletter_subscribers table.
type SQLRepository struct {
	repo.Base
}

func NewSQLRepository(conn *gorm.DB) *SQLRepository {
	return &SQLRepository{Base: repo.NewBase(conn)}
}

func (r *SQLRepository) Add(ctx context.Context, sub Subscriber) error {
	record := models.NewsletterSubscriber{
		ID:           uuid.New(),
		Email:        strings.ToLower(sub.Email),
		Source:       sub.Source,
		SubscribedAt: sub.SubscribedAt,
	}
	if err := r.Insert(ctx, &record); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	return r.Base.Count(ctx, &models.NewsletterSubscriber{})
}
