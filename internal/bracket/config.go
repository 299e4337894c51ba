package bracket

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ManualParticipant is an organiser-curated entry in the tournament config.
type ManualParticipant struct {
	ID   int64  `json:"id" validate:"required,min=1,max=2147483647"`
	Seed *int   `json:"seed,omitempty" validate:"omitempty,min=1"`
	Name string `json:"name,omitempty" validate:"max=120"`
}

// TournamentConfig is the typed form of the tournament's free-form config blob.
type TournamentConfig struct {
	ManualParticipants []ManualParticipant `json:"manualParticipants,omitempty" validate:"dive"`
	BracketSize        *int                `json:"bracketSize,omitempty" validate:"omitempty,min=1"`
}

// ParseTournamentConfig decodes raw JSON strictly. Unknown fields and
// out-of-range values are rejected instead of coerced.
func ParseTournamentConfig(raw []byte) (TournamentConfig, error) {
	var cfg TournamentConfig
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, NewError(CodeInvalidConfig, "malformed tournament config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c TournamentConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return NewError(CodeInvalidConfig, "%s", validationMessage(err))
	}

	seen := make(map[int64]struct{}, len(c.ManualParticipants))
	for _, p := range c.ManualParticipants {
		if _, dup := seen[p.ID]; dup {
			return NewError(CodeInvalidConfig, "manual participant %d listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Entrants returns the manual participants in their listed order.
func (c TournamentConfig) Entrants() []Entrant {
	entrants := make([]Entrant, 0, len(c.ManualParticipants))
	for _, p := range c.ManualParticipants {
		entrants = append(entrants, Entrant{ID: p.ID, Seed: p.Seed})
	}
	return entrants
}

func (c *TournamentConfig) Scan(src any) error {
	*c = TournamentConfig{}
	return scanJSON(src, c)
}

func (c TournamentConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ValidateStruct runs the shared validator over any request struct.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s' (param '%s', got '%v')", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return strings.Join(msgs, "; ")
}
