package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"quizroom/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	bankCacheKey = "quizbank:pool"
	bankCacheTTL = 24 * time.Hour
)

// QuestionBank holds the normalized question pool, fetched once from a
// tabular source at process start. A failed fetch leaves the pool empty;
// starting a game then fails with a descriptive error instead of crashing.
type QuestionBank struct {
	mu     sync.RWMutex
	pool   []models.Question
	source string

	db     *gorm.DB
	redis  *redis.Client
	httpc  *http.Client
	csvURL string
}

func NewQuestionBank(db *gorm.DB, redisClient *redis.Client, source, csvURL string) *QuestionBank {
	return &QuestionBank{
		db:     db,
		redis:  redisClient,
		source: source,
		csvURL: csvURL,
		httpc:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Load populates the pool from the redis cache when warm, otherwise from
// the configured source, caching the result. Errors are returned for
// logging but leave the bank usable (empty).
func (b *QuestionBank) Load(ctx context.Context) error {
	if cached := b.loadFromCache(ctx); len(cached) > 0 {
		b.setPool(cached)
		log.Printf("Question bank: %d questions from cache", len(cached))
		return nil
	}

	var (
		questions []models.Question
		err       error
	)
	switch b.source {
	case "postgres":
		questions, err = b.loadFromPostgres()
	case "csv":
		questions, err = b.loadFromCSV(ctx)
	default:
		err = fmt.Errorf("unknown question source %q", b.source)
	}
	if err != nil {
		return fmt.Errorf("question bank load failed: %w", err)
	}

	b.setPool(questions)
	b.storeCache(ctx, questions)
	log.Printf("Question bank: %d questions from %s", len(questions), b.source)
	return nil
}

func (b *QuestionBank) setPool(questions []models.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pool = questions
}

// Size returns the number of questions currently in the pool.
func (b *QuestionBank) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pool)
}

// Source names the configured tabular source.
func (b *QuestionBank) Source() string {
	return b.source
}

// Draw returns up to n questions as a uniform random subset with no
// duplicates: a Fisher-Yates shuffle of a copy of the full pool, then a
// prefix slice. Asking for more than the pool holds yields the whole pool.
func (b *QuestionBank) Draw(n int) ([]models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.pool) == 0 {
		return nil, ErrPoolExhausted
	}
	if n > len(b.pool) {
		n = len(b.pool)
	}

	shuffled := make([]models.Question, len(b.pool))
	copy(shuffled, b.pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n], nil
}

func (b *QuestionBank) loadFromPostgres() ([]models.Question, error) {
	if b.db == nil {
		return nil, fmt.Errorf("postgres source selected but no database connection")
	}

	var records []models.QuestionRecord
	if err := b.db.Find(&records).Error; err != nil {
		return nil, err
	}

	return normalizeRecords(records), nil
}

// loadFromCSV fetches a published CSV and normalizes each row. Expected
// columns: id, question, option a-d, correct marker, explanation.
func (b *QuestionBank) loadFromCSV(ctx context.Context) ([]models.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.csvURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question source returned %s", resp.Status)
	}

	return ParseQuestionCSV(csv.NewReader(resp.Body))
}

// ParseQuestionCSV reads rows of {id, question, a, b, c, d, correct,
// explanation}, skipping a header row and any row that fails to normalize.
func ParseQuestionCSV(r *csv.Reader) ([]models.Question, error) {
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var questions []models.Question
	for i, row := range rows {
		if len(row) < 7 {
			log.Printf("Question bank: skipping row %d: %d columns", i+1, len(row))
			continue
		}

		id, err := strconv.ParseUint(row[0], 10, 32)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			log.Printf("Question bank: skipping row %d: bad id %q", i+1, row[0])
			continue
		}

		record := models.QuestionRecord{
			ID:      uint(id),
			Text:    row[1],
			OptionA: row[2],
			OptionB: row[3],
			OptionC: row[4],
			OptionD: row[5],
			Correct: row[6],
		}
		if len(row) > 7 {
			record.Explanation = row[7]
		}

		q, err := record.Normalize()
		if err != nil {
			log.Printf("Question bank: skipping row %d: %v", i+1, err)
			continue
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func normalizeRecords(records []models.QuestionRecord) []models.Question {
	questions := make([]models.Question, 0, len(records))
	for _, record := range records {
		q, err := record.Normalize()
		if err != nil {
			log.Printf("Question bank: skipping record: %v", err)
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func (b *QuestionBank) loadFromCache(ctx context.Context) []models.Question {
	if b.redis == nil {
		return nil
	}

	data, err := b.redis.Get(ctx, bankCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Question bank: redis read failed: %v", err)
		}
		return nil
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(data), &questions); err != nil {
		log.Printf("Question bank: bad cache payload: %v", err)
		return nil
	}
	return questions
}

func (b *QuestionBank) storeCache(ctx context.Context, questions []models.Question) {
	if b.redis == nil || len(questions) == 0 {
		return
	}

	data, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := b.redis.Set(ctx, bankCacheKey, data, bankCacheTTL).Err(); err != nil {
		log.Printf("Question bank: redis write failed: %v", err)
	}
}
