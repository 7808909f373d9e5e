package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumina-lms/lumina-backend/internal/config"
	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatsBatchSize    = 100
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// QuestionStatsWorker consumes per-question answer deltas from Redis and
// folds them into the question_stats aggregates. Keeping this off the
// submission path means a slow stats write never delays a student's result.
type QuestionStatsWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewQuestionStatsWorker creates a new QuestionStatsWorker.
func NewQuestionStatsWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *QuestionStatsWorker {
	return &QuestionStatsWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "question_stats_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *QuestionStatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("QuestionStatsWorker started")

	batch := make([]*model.QuestionStatDelta, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("QuestionStatsWorker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.QuestionStatsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var delta model.QuestionStatDelta
			if err := json.Unmarshal([]byte(item[1]), &delta); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &delta)
		}
	}
}

// flushSafe writes the batch in one statement, falling back to per-item
// upserts (with requeue on failure) if the bulk path errors.
func (w *QuestionStatsWorker) flushSafe(ctx context.Context, batch []*model.QuestionStatDelta) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("Bulk stats upsert failed, using fallback")

		for _, delta := range batch {
			if err := w.persistSingle(ctx, delta); err != nil {
				w.log.Error().Err(err).Str("question_id", delta.QuestionID.String()).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(delta)
				w.rdb.RPush(ctx, config.WorkerKey.QuestionStatsQueue, raw)
			}
		}
	}
}

// bulkUpsert folds the whole batch into question_stats with UNNEST. Deltas
// for the same question are pre-summed so the single ON CONFLICT update row
// per key is well defined.
func (w *QuestionStatsWorker) bulkUpsert(ctx context.Context, batch []*model.QuestionStatDelta) error {
	type totals struct {
		answered int64
		correct  int64
		seconds  int64
	}
	byQuestion := make(map[uuid.UUID]*totals, len(batch))
	order := make([]uuid.UUID, 0, len(batch))

	for _, delta := range batch {
		t, ok := byQuestion[delta.QuestionID]
		if !ok {
			t = &totals{}
			byQuestion[delta.QuestionID] = t
			order = append(order, delta.QuestionID)
		}
		t.answered++
		if delta.Correct {
			t.correct++
		}
		t.seconds += int64(delta.TimeSeconds)
	}

	n := len(order)
	questionIDs := make([]uuid.UUID, 0, n)
	answered := make([]int64, 0, n)
	correct := make([]int64, 0, n)
	seconds := make([]int64, 0, n)
	for _, id := range order {
		t := byQuestion[id]
		questionIDs = append(questionIDs, id)
		answered = append(answered, t.answered)
		correct = append(correct, t.correct)
		seconds = append(seconds, t.seconds)
	}

	query := `
		INSERT INTO question_stats (question_id, times_answered, times_correct, total_time_seconds)
		SELECT u.question_id, u.answered, u.correct, u.seconds
		FROM UNNEST(
			$1::uuid[],
			$2::bigint[],
			$3::bigint[],
			$4::bigint[]
		) AS u (question_id, answered, correct, seconds)
		ON CONFLICT (question_id) DO UPDATE
		SET times_answered = question_stats.times_answered + EXCLUDED.times_answered,
		    times_correct = question_stats.times_correct + EXCLUDED.times_correct,
		    total_time_seconds = question_stats.total_time_seconds + EXCLUDED.total_time_seconds
	`

	_, err := w.pool.Exec(ctx, query, questionIDs, answered, correct, seconds)
	return err
}

// persistSingle is the fallback per-delta upsert.
func (w *QuestionStatsWorker) persistSingle(ctx context.Context, delta *model.QuestionStatDelta) error {
	correct := 0
	if delta.Correct {
		correct = 1
	}
	_, err := w.pool.Exec(ctx,
		`INSERT INTO question_stats (question_id, times_answered, times_correct, total_time_seconds)
		 VALUES ($1, 1, $2, $3)
		 ON CONFLICT (question_id) DO UPDATE
		 SET times_answered = question_stats.times_answered + 1,
		     times_correct = question_stats.times_correct + EXCLUDED.times_correct,
		     total_time_seconds = question_stats.total_time_seconds + EXCLUDED.total_time_seconds`,
		delta.QuestionID, correct, delta.TimeSeconds,
	)
	return err
}

// drain processes whatever is still queued before shutdown.
func (w *QuestionStatsWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.QuestionStatsQueue).Result()
		if err != nil {
			break
		}

		var delta model.QuestionStatDelta
		if err := json.Unmarshal([]byte(result), &delta); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistSingle(ctx, &delta); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.QuestionStatsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
