package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscriber is one mailing-list entry. Email is stored lower-cased.
type NewsletterSubscriber struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:newsletter_subscribers_email_key"`
	Source       string    `gorm:"column:source;not null;default:'website'"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
