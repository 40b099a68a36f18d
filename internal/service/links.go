package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"linkstate/linkstate/internal/model"
	"linkstate/linkstate/internal/repo"
	"linkstate/linkstate/internal/util"
)

var ErrTokenSpace = errors.New("could not allocate unique token")

const DefaultMaxAttempts = 5

type Links interface {
	Create(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error)
	Redirect(ctx context.Context, token string) (string, error)
	Update(ctx context.Context, token, originalURL string) (model.Link, error)
	Delete(ctx context.Context, token string) error
	Info(ctx context.Context, baseURL, token string) (model.Link, error)
}

type Option func(*links)

// WithTokenLength sets the length of generated tokens.
func WithTokenLength(n int) Option { return func(l *links) { l.tokenLength = n } }

// WithMaxAttempts bounds how many tokens Create tries before giving up.
func WithMaxAttempts(n int) Option {
	return func(l *links) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithTokenFunc replaces the token generator.
func WithTokenFunc(fn func(length int) string) Option { return func(l *links) { l.newToken = fn } }

// WithLogger sets the logger for store faults. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(l *links) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option { return func(l *links) { l.now = now } }

type links struct {
	r           repo.LinkRepo
	tokenLength int
	maxAttempts int
	newToken    func(int) string
	now         func() time.Time
	log         *slog.Logger
}

func NewLinks(r repo.LinkRepo, opts ...Option) Links {
	l := &links{
		r:           r,
		tokenLength: util.DefaultTokenLength,
		maxAttempts: DefaultMaxAttempts,
		newToken:    util.GenerateToken,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (s *links) Create(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error) {
	originalURL = strings.TrimSpace(originalURL)
	if err := util.ValidateURL(originalURL); err != nil {
		return model.Link{}, err
	}

	link := model.Link{
		ID:          uuid.New().String(),
		OriginalURL: originalURL,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		OwnerTag:    strings.TrimSpace(ownerTag),
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		link.Token = s.newToken(s.tokenLength)

		rec, err := s.r.Insert(ctx, link)
		if err == nil {
			rec.ShortURL = ShortURL(baseURL, rec.Token)
			return rec, nil
		}
		if errors.Is(err, repo.ErrDuplicateKey) {
			s.log.Debug("token collision, regenerating", "token", link.Token, "attempt", attempt+1)
			continue
		}

		s.log.Error("error while inserting link", "err", err, "token", link.Token)
		return model.Link{}, err
	}

	s.log.Error("token attempts exhausted", "attempts", s.maxAttempts)
	return model.Link{}, ErrTokenSpace
}

func (s *links) Redirect(ctx context.Context, token string) (string, error) {
	rec, err := s.r.IncrementClickCount(ctx, token)
	if err != nil {
		return "", s.logFault(err, "error while counting click", token)
	}

	return rec.OriginalURL, nil
}

func (s *links) Update(ctx context.Context, token, originalURL string) (model.Link, error) {
	rec, err := s.r.GetByToken(ctx, token)
	if err != nil {
		return model.Link{}, s.logFault(err, "error while fetching link", token)
	}

	originalURL = strings.TrimSpace(originalURL)
	if err := util.ValidateURL(originalURL); err != nil {
		return model.Link{}, err
	}

	if err := s.r.UpdateOriginalURL(ctx, token, originalURL); err != nil {
		return model.Link{}, s.logFault(err, "error while updating link", token)
	}

	rec.OriginalURL = originalURL
	return rec, nil
}

func (s *links) Delete(ctx context.Context, token string) error {
	return s.logFault(s.r.DeleteByToken(ctx, token), "error while deleting link", token)
}

func (s *links) Info(ctx context.Context, baseURL, token string) (model.Link, error) {
	rec, err := s.r.GetByToken(ctx, token)
	if err != nil {
		return model.Link{}, s.logFault(err, "error while fetching link", token)
	}

	rec.ShortURL = ShortURL(baseURL, rec.Token)
	return rec, nil
}

// logFault logs store faults; missing records are an expected outcome.
func (s *links) logFault(err error, msg, token string) error {
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		s.log.Error(msg, "err", err, "token", token)
	}
	return err
}

// ShortURL joins a base URL and a token.
func ShortURL(baseURL, token string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + token
}
