package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"history-quiz-service/internal/domain"
)

// CatalogLoader fetches a quiz's questions from a backing store.
type CatalogLoader interface {
	LoadQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// CatalogCache caches questions in Redis (hash per quiz) and falls back to a
// loader on cache miss. Questions are stored as:
//
//	HSET quiz:{quizID}:questions {questionID} {question JSON}
//
// It implements app.QuestionCatalog.
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogCache(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) Question(ctx context.Context, quizID, questionID string) (domain.Question, error) {
	raw, err := c.client.HGet(ctx, c.key(quizID), questionID).Result()
	if err == nil {
		var q domain.Question
		if jsonErr := json.Unmarshal([]byte(raw), &q); jsonErr == nil {
			return q, nil
		}
	}

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
	key := c.key(quizID)

	cached, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return decodeQuestions(cached), nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return decodeQuestions(cached), nil
		}

		questions, err := c.loader.LoadQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for _, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				continue
			}
			pipe.HSet(ctx, key, q.ID, raw)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CatalogCache) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func decodeQuestions(cached map[string]string) []domain.Question {
	questions := make([]domain.Question, 0, len(cached))
	for _, raw := range cached {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
