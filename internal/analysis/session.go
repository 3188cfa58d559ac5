package analysis

import (
	"context"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/record"
	"github.com/KaramelBytes/healthloom-cli/internal/variable"
)

// Snapshot is an immutable copy of everything one analysis run needs.
type Snapshot struct {
	Records   []record.Record
	Variables []variable.Variable
	Cutoff    time.Time
	Options   Options
}

// Run analyzes the snapshot synchronously.
func (s Snapshot) Run() []Result {
	out, _ := AnalyzeContext(context.Background(), s.Records, s.Variables, s.Cutoff, s.Options)
	return out
}

// Session holds the caller-owned inputs of an analysis: the imported records,
// the variable registry and the cutoff date. Every mutation is a trigger that
// recomputes the results from scratch. A Session is not safe for concurrent use.
type Session struct {
	records  []record.Record
	registry *variable.Registry
	cutoff   time.Time
	opt      Options
	results  []Result
}

// NewSession starts a session with no records. A nil registry is treated as empty.
func NewSession(reg *variable.Registry, cutoff time.Time, opt Options) *Session {
	if reg == nil {
		reg = &variable.Registry{}
	}
	return &Session{registry: reg, cutoff: civil(cutoff), opt: opt}
}

// Import replaces the records with the parsed raw text. On a format error the
// previous records and results are kept.
func (s *Session) Import(raw string) ([]Result, error) {
	recs, err := record.Parse(raw)
	if err != nil {
		return nil, err
	}
	s.records = recs
	return s.Recompute(), nil
}

// SetRecords replaces the records wholesale with already parsed ones.
func (s *Session) SetRecords(recs []record.Record) []Result {
	s.records = recs
	return s.Recompute()
}

func (s *Session) AddVariable(v variable.Variable) ([]Result, error) {
	if err := s.registry.Add(v); err != nil {
		return nil, err
	}
	return s.Recompute(), nil
}

func (s *Session) SetActive(name string, active bool) ([]Result, error) {
	if err := s.registry.SetActive(name, active); err != nil {
		return nil, err
	}
	return s.Recompute(), nil
}

func (s *Session) SetCutoff(cutoff time.Time) []Result {
	s.cutoff = civil(cutoff)
	return s.Recompute()
}

// Recompute runs the analysis over the current inputs and stores the results.
func (s *Session) Recompute() []Result {
	s.results = s.Snapshot().Run()
	return s.results
}

// Snapshot copies the current inputs so they can be analyzed elsewhere.
func (s *Session) Snapshot() Snapshot {
	recs := make([]record.Record, len(s.records))
	copy(recs, s.records)
	return Snapshot{
		Records:   recs,
		Variables: s.registry.Variables(),
		Cutoff:    s.cutoff,
		Options:   s.opt,
	}
}

func (s *Session) Records() []record.Record     { return s.records }
func (s *Session) Registry() *variable.Registry { return s.registry }
func (s *Session) Cutoff() time.Time            { return s.cutoff }
func (s *Session) Results() []Result            { return s.results }
