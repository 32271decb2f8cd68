package newsletter

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when the email is already subscribed.
var ErrDuplicate = errors.New("email already subscribed")

// Subscriber is one mailing-list entry. Email is lower-cased.
type Subscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
	Source       string    `json:"source,omitempty"`
}

// Repository stores subscribers. Add must report ErrDuplicate for an email
// already present, compared case-insensitively.
type Repository interface {
	Add(ctx context.Context, sub Subscriber) error
	Count(ctx context.Context) (int64, error)
}
