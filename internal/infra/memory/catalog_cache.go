package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"history-quiz-service/internal/domain"
)

// CatalogLoader fetches a quiz's questions from a backing store.
type CatalogLoader interface {
	LoadQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// CatalogCache caches a quiz's questions with TTL to avoid repeated DB hits.
// It implements app.QuestionCatalog.
type CatalogCache struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCatalogCache(loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (c *CatalogCache) Question(ctx context.Context, quizID, questionID string) (domain.Question, error) {
	questions, err := c.questions(ctx, quizID)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (c *CatalogCache) QuestionsByTier(ctx context.Context, quizID string, tier domain.Difficulty) ([]domain.Question, error) {
	questions, err := c.questions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.Difficulty == tier {
			out = append(out, q)
		}
	}
	return out, nil
}

func (c *CatalogCache) questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.LoadQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuestions{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a simple loader backed by an in-memory map
// (useful for tests/demos).
type StaticCatalogLoader struct {
	questions map[string][]domain.Question
}

func NewStaticCatalogLoader(questions []domain.Question) *StaticCatalogLoader {
	byQuiz := make(map[string][]domain.Question)
	for _, q := range questions {
		byQuiz[q.QuizID] = append(byQuiz[q.QuizID], q)
	}
	return &StaticCatalogLoader{questions: byQuiz}
}

func (l *StaticCatalogLoader) LoadQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	if questions, ok := l.questions[quizID]; ok {
		return questions, nil
	}
	return nil, domain.ErrQuizNotFound
}
