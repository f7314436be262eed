package worker

// Receipt jobs that exhaust their attempt budget land on a dead-letter list,
// one per source queue, keyed "dead:<queue>". Entries stay until someone
// replays or drops them by hand; nothing in the service reads them back.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const deadLetterPrefix = "dead:"

// DeadLetter is the parked form of a failed job: the original envelope plus
// enough context to decide whether it is safe to replay.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

func dlqKey(queue string) string { return deadLetterPrefix + queue }

// SendToDLQ parks a failed job on its queue's dead-letter list. Best effort:
// a Redis error here only logs, the job is already lost either way.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DeadLetter{
		Queue:    queue,
		Type:     jobType,
		Payload:  payload,
		Reason:   reason,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter entry not serializable")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("key", dlqKey(queue)).Msg("dead-letter push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("job parked on dead-letter list")
}

// DLQLength reports how many jobs are parked for a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}
