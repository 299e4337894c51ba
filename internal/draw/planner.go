package draw

import (
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
)

const (
	groupStageName      = "Fase de Grupos"
	singleGroupName     = "Grupo Único"
	playoffStageName    = "Playoff"
	mainDrawName        = "Quadro Principal"
	consolationName     = "Consolação"
	secondDrawName      = "Quadro B"
	finalsStageName     = "Finais por posições"
	classificationName  = "Classificação"
	manualStageName     = "Manual"
	classificationLabel = "Classificação R%d"
)

// MatchRef points at a planned match in an earlier stage. Round and Index
// are zero-based positions inside that stage's rounds.
type MatchRef struct {
	Stage   int                 `yaml:"stage"`
	Round   int                 `yaml:"round"`
	Index   int                 `yaml:"index"`
	Outcome bracket.SlotOutcome `yaml:"outcome"`
}

type PlannedMatch struct {
	A       *int64    `yaml:"a"`
	B       *int64    `yaml:"b"`
	Round   int       `yaml:"round"`
	Order   int       `yaml:"order"`
	Label   string    `yaml:"label,omitempty"`
	SourceA *MatchRef `yaml:"sourceA,omitempty"`
	SourceB *MatchRef `yaml:"sourceB,omitempty"`
}

type PlannedGroup struct {
	Name   string           `yaml:"name"`
	Order  int              `yaml:"order"`
	Rounds [][]PlannedMatch `yaml:"rounds"`
}

type PlannedStage struct {
	Name   string            `yaml:"name"`
	Type   bracket.StageType `yaml:"type"`
	Order  int               `yaml:"order"`
	Groups []PlannedGroup    `yaml:"groups,omitempty"`
	// Rounds holds matches that belong to the stage directly.
	Rounds [][]PlannedMatch `yaml:"rounds,omitempty"`
	// Linked stages form an elimination tree and get next-match pointers.
	Linked bool `yaml:"linked"`
}

type Plan struct {
	Format   bracket.Format    `yaml:"format"`
	Seed     string            `yaml:"seed"`
	Entrants []bracket.Entrant `yaml:"entrants"`
	Stages   []PlannedStage    `yaml:"stages"`
}

type PlanInput struct {
	Format        bracket.Format
	Entrants      []bracket.Entrant
	Seed          string
	TargetSize    int
	PreserveOrder bool
}

// MatchCount is the number of match rows the plan will create.
func (p *Plan) MatchCount() int {
	total := 0
	for _, stage := range p.Stages {
		total += countMatches(stage.Rounds)
		for _, group := range stage.Groups {
			total += countMatches(group.Rounds)
		}
	}
	return total
}

func countMatches(rounds [][]PlannedMatch) int {
	total := 0
	for _, round := range rounds {
		total += len(round)
	}
	return total
}

// BuildPlan maps the tournament format onto the generators. Each generator
// gets its own RNG built from the same seed.
func BuildPlan(in PlanInput) (*Plan, error) {
	if !in.Format.Valid() {
		return nil, bracket.NewError(bracket.CodeUnknownFormat, "format %q is not supported", in.Format)
	}
	if len(in.Entrants) == 0 {
		return nil, bracket.NewError(bracket.CodeNoParticipants, "no entrants to draw")
	}

	p := &planner{in: in, plan: &Plan{Format: in.Format, Seed: in.Seed, Entrants: in.Entrants}}

	switch in.Format {
	case bracket.FormatManual:
		p.add(PlannedStage{Name: manualStageName, Type: bracket.StagePlayoff})

	case bracket.FormatChampionshipRoundRobin, bracket.FormatNonstopRoundRobin:
		p.addRoundRobin()

	case bracket.FormatGroupsPlusPlayoff:
		p.addRoundRobin()
		if len(in.Entrants) > 2 {
			playoff, err := p.addElimination(playoffStageName)
			if err != nil {
				return nil, err
			}
			p.addConsolation(consolationName, playoff)
		}

	case bracket.FormatDrawAB:
		mainDraw, err := p.addElimination(mainDrawName)
		if err != nil {
			return nil, err
		}
		p.addConsolation(secondDrawName, mainDraw)

	case bracket.FormatGroupsPlusFinalsAllPlaces:
		p.addRoundRobin()
		finals, err := p.addElimination(finalsStageName)
		if err != nil {
			return nil, err
		}
		p.addClassification(finals)
	}

	return p.plan, nil
}

type planner struct {
	in   PlanInput
	plan *Plan
}

// add appends the stage with the next order and returns its index.
func (p *planner) add(stage PlannedStage) int {
	stage.Order = len(p.plan.Stages) + 1
	p.plan.Stages = append(p.plan.Stages, stage)
	return len(p.plan.Stages) - 1
}

func (p *planner) addRoundRobin() {
	schedule := RoundRobin(bracket.EntrantIDs(p.in.Entrants), NewRng(p.in.Seed))

	rounds := make([][]PlannedMatch, 0, len(schedule))
	for r, matches := range schedule {
		planned := make([]PlannedMatch, 0, len(matches))
		for i, m := range matches {
			a, b := m.A, m.B
			planned = append(planned, PlannedMatch{A: &a, B: &b, Round: r + 1, Order: i + 1})
		}
		rounds = append(rounds, planned)
	}

	p.add(PlannedStage{
		Name:   groupStageName,
		Type:   bracket.StageGroups,
		Groups: []PlannedGroup{{Name: singleGroupName, Order: 1, Rounds: rounds}},
	})
}

func (p *planner) addElimination(name string) (int, error) {
	drawn, err := SingleElimination(p.in.Entrants, NewRng(p.in.Seed), EliminationOptions{
		TargetSize:    p.in.TargetSize,
		PreserveOrder: p.in.PreserveOrder,
	})
	if err != nil {
		return 0, err
	}

	rounds := make([][]PlannedMatch, 0, len(drawn.Rounds))
	for r, matches := range drawn.Rounds {
		planned := make([]PlannedMatch, 0, len(matches))
		for i, m := range matches {
			planned = append(planned, PlannedMatch{A: m.A, B: m.B, Round: r + 1, Order: i + 1})
		}
		rounds = append(rounds, planned)
	}

	return p.add(PlannedStage{Name: name, Type: bracket.StagePlayoff, Rounds: rounds, Linked: true}), nil
}

// addConsolation pairs the round-1 matches of source two by two. Each pair
// yields one match between their losers; until results exist the slot holds
// whichever entrant the source match has and a loser reference to it.
func (p *planner) addConsolation(name string, source int) {
	var first []PlannedMatch
	if src := p.plan.Stages[source].Rounds; len(src) > 0 {
		first = src[0]
	}

	var rounds [][]PlannedMatch
	opening := make([]PlannedMatch, 0, len(first)/2)
	for i := 0; i+1 < len(first); i += 2 {
		m1, m2 := first[i], first[i+1]
		opening = append(opening, PlannedMatch{
			A:       firstPresent(m1.A, m1.B),
			B:       firstPresent(m2.A, m2.B),
			Round:   1,
			Order:   len(opening) + 1,
			SourceA: &MatchRef{Stage: source, Round: 0, Index: i, Outcome: bracket.OutcomeLoser},
			SourceB: &MatchRef{Stage: source, Round: 0, Index: i + 1, Outcome: bracket.OutcomeLoser},
		})
	}
	if len(opening) > 0 {
		rounds = append(rounds, opening)
		for count, r := len(opening)/2, 2; count >= 1; count, r = count/2, r+1 {
			rounds = append(rounds, placeholders(count, r, ""))
		}
	}

	p.add(PlannedStage{Name: name, Type: bracket.StageConsolation, Rounds: rounds, Linked: true})
}

// addClassification creates one placeholder per pair of adjacent matches in
// every finals round that has at least two matches.
func (p *planner) addClassification(source int) {
	var rounds [][]PlannedMatch
	for r, matches := range p.plan.Stages[source].Rounds {
		if len(matches) < 2 {
			continue
		}
		round := placeholders(len(matches)/2, r+1, fmt.Sprintf(classificationLabel, r+1))
		for i := range round {
			round[i].SourceA = &MatchRef{Stage: source, Round: r, Index: 2 * i, Outcome: bracket.OutcomeLoser}
			round[i].SourceB = &MatchRef{Stage: source, Round: r, Index: 2*i + 1, Outcome: bracket.OutcomeLoser}
		}
		rounds = append(rounds, round)
	}

	p.add(PlannedStage{Name: classificationName, Type: bracket.StageConsolation, Rounds: rounds})
}

func placeholders(count, round int, label string) []PlannedMatch {
	matches := make([]PlannedMatch, count)
	for i := range matches {
		matches[i] = PlannedMatch{Round: round, Order: i + 1, Label: label}
	}
	return matches
}

func firstPresent(a, b *int64) *int64 {
	if a != nil {
		return a
	}
	return b
}
