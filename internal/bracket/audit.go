package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const ActionGenerateBracket = "GENERATE_BRACKET"

// AuditPayload is stored as a JSON document.
type AuditPayload struct {
	Format   Format  `json:"format"`
	Seed     string  `json:"seed"`
	Pairings []int64 `json:"pairings"`
}

func (p *AuditPayload) Scan(src any) error {
	return scanJSON(src, p)
}

func (p AuditPayload) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type AuditLogEntry struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	TournamentID  uuid.UUID     `db:"tournament_id" json:"tournamentId"`
	UserID        *uuid.UUID    `db:"user_id" json:"userId,omitempty"`
	Action        string        `db:"action" json:"action"`
	PayloadBefore *AuditPayload `db:"payload_before" json:"payloadBefore"`
	PayloadAfter  *AuditPayload `db:"payload_after" json:"payloadAfter"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

// scanJSON decodes a TEXT column; the sqlite driver may hand back either
// string or []byte.
func scanJSON(src any, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("scanJSON: unsupported type %T", src)
	}
}
