package newsletter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/angelmondragon/lumina-backend/pkg/metrics"
)

const DefaultSource = "website"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type SubscribeInput struct {
	Email  string
	Source string
}

// Service manages mailing-list sign-ups.
type Service interface {
	Subscribe(ctx context.Context, input SubscribeInput) (*Subscriber, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.Storefront
	now     func() time.Time
}

func NewService(repo Repository, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("newsletter repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, metrics: m, now: time.Now}, nil
}

func (s *service) Subscribe(ctx context.Context, input SubscribeInput) (*Subscriber, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email format").
			WithDetails(map[string]any{"email": input.Email})
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = DefaultSource
	}

	sub := Subscriber{Email: email, SubscribedAt: s.now().UTC(), Source: source}
	if err := s.repo.Add(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.metrics.IncNewsletter("duplicate")
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already subscribed")
		}
		s.metrics.IncNewsletter(metrics.OutcomeFailure)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store subscriber")
	}

	s.metrics.IncNewsletter(metrics.OutcomeSuccess)
	s.logg.Info(s.logg.WithField(ctx, "source", source), "newsletter subscription recorded")
	return &sub, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subscribers")
	}
	return count, nil
}
