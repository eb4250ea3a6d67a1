// internal/models/entity.go
package models

import "time"

// EntityKind names one of the six data sources a message can draw from.
type EntityKind string

const (
	KindCandidate   EntityKind = "candidate"
	KindJob         EntityKind = "job"
	KindCompany     EntityKind = "company"
	KindSender      EntityKind = "sender"
	KindInterview   EntityKind = "interview"
	KindApplication EntityKind = "application"
)

// EntityKinds returns the kinds in catalog order.
func EntityKinds() []EntityKind {
	return []EntityKind{KindCandidate, KindJob, KindCompany, KindSender, KindInterview, KindApplication}
}

func (k EntityKind) Valid() bool {
	switch k {
	case KindCandidate, KindJob, KindCompany, KindSender, KindInterview, KindApplication:
		return true
	}
	return false
}

// Entity is a read-only snapshot of one domain object. Only the six
// types in this file implement it.
type Entity interface {
	Kind() EntityKind
	EntityID() string
	isEntity()
}

type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Position   string `json:"position"`
	Company    string `json:"company"`
	Experience int    `json:"experience"`
}

type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
}

type Company struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Industry   string `json:"industry"`
	Website    string `json:"website"`
	Location   string `json:"location"`
	ClientName string `json:"clientName"`
}

// Sender is a recruiter profile that can sign outgoing messages.
type Sender struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Title string `json:"title"`
}

type Interview struct {
	ID          string    `json:"id"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Duration    int       `json:"duration"` // minutes
	Link        string    `json:"link"`
	Interviewer string    `json:"interviewer"`
}

type Application struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`
	Source    string    `json:"source"`
	Stage     string    `json:"stage"`
}

func (c Candidate) Kind() EntityKind   { return KindCandidate }
func (j Job) Kind() EntityKind         { return KindJob }
func (c Company) Kind() EntityKind     { return KindCompany }
func (s Sender) Kind() EntityKind      { return KindSender }
func (i Interview) Kind() EntityKind   { return KindInterview }
func (a Application) Kind() EntityKind { return KindApplication }

func (c Candidate) EntityID() string   { return c.ID }
func (j Job) EntityID() string         { return j.ID }
func (c Company) EntityID() string     { return c.ID }
func (s Sender) EntityID() string      { return s.ID }
func (i Interview) EntityID() string   { return i.ID }
func (a Application) EntityID() string { return a.ID }

func (Candidate) isEntity()   {}
func (Job) isEntity()         {}
func (Company) isEntity()     {}
func (Sender) isEntity()      {}
func (Interview) isEntity()   {}
func (Application) isEntity() {}

// EntitySet indexes snapshots loaded for one render pass. It is built once
// and only read afterwards.
type EntitySet struct {
	byKind map[EntityKind]map[string]Entity
}

func NewEntitySet(entities ...Entity) *EntitySet {
	s := &EntitySet{byKind: make(map[EntityKind]map[string]Entity)}
	for _, e := range entities {
		s.Add(e)
	}
	return s
}

// Add indexes e; a later entity with the same kind and id replaces the earlier one.
func (s *EntitySet) Add(e Entity) {
	if e == nil {
		return
	}
	m, ok := s.byKind[e.Kind()]
	if !ok {
		m = make(map[string]Entity)
		s.byKind[e.Kind()] = m
	}
	m[e.EntityID()] = e
}

// Get returns the snapshot for kind and id. A nil set or blank id finds nothing.
func (s *EntitySet) Get(kind EntityKind, id string) (Entity, bool) {
	if s == nil || id == "" {
		return nil, false
	}
	e, ok := s.byKind[kind][id]
	return e, ok
}

// List returns every snapshot of kind in no particular order.
func (s *EntitySet) List(kind EntityKind) []Entity {
	if s == nil {
		return nil
	}
	out := make([]Entity, 0, len(s.byKind[kind]))
	for _, e := range s.byKind[kind] {
		out = append(out, e)
	}
	return out
}

// Len counts all snapshots.
func (s *EntitySet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, m := range s.byKind {
		n += len(m)
	}
	return n
}
