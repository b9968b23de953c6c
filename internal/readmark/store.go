// Package readmark keeps per-conversation read markers in memory and on disk.
package readmark

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/five82/rally/internal/kvstore"
)

// Partition selects the conversation family a marker belongs to.
type Partition int

const (
	// Match markers are keyed by match id.
	Match Partition = iota
	// Private markers are keyed by contact id.
	Private
)

func (p Partition) String() string {
	switch p {
	case Match:
		return "match"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("partition(%d)", int(p))
	}
}

func (p Partition) key() (string, error) {
	switch p {
	case Match:
		return kvstore.KeyMessagesLastRead, nil
	case Private:
		return kvstore.KeyPrivateMessagesLastRead, nil
	default:
		return "", fmt.Errorf("unknown read marker %s", p)
	}
}

// Marker records the last message the user has seen in a topic.
type Marker struct {
	Topic     string
	MessageID string
}

// record is the persisted shape; match markers use "match", private ones "inbox".
type record struct {
	Match   string `json:"match,omitempty"`
	Inbox   string `json:"inbox,omitempty"`
	Message string `json:"message"`
}

// Store is a two-tier marker repository. Memory is consulted first; the
// persisted list is read once per partition, on first use.
type Store struct {
	mu     sync.Mutex
	kv     kvstore.Store
	mem    map[Partition][]Marker
	loaded map[Partition]bool
}

// New returns a Store backed by kv.
func New(kv kvstore.Store) *Store {
	return &Store{
		kv:     kv,
		mem:    map[Partition][]Marker{},
		loaded: map[Partition]bool{},
	}
}

// Get returns the marker for topic. A topic missing from memory falls back
// to the persisted list only until that partition has been loaded once;
// after that memory is authoritative, which holds while this Store is the
// only writer of the persisted keys.
func (s *Store) Get(p Partition, topic string) (Marker, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.mem[p], topic); i >= 0 {
		return s.mem[p][i], true, nil
	}
	if err := s.load(p); err != nil {
		return Marker{}, false, err
	}
	if i := indexOf(s.mem[p], topic); i >= 0 {
		return s.mem[p][i], true, nil
	}
	return Marker{}, false, nil
}

// Set replaces the marker for m.Topic, in memory and on disk.
func (s *Store) Set(p Partition, m Marker) error {
	if m.Topic == "" {
		return fmt.Errorf("read marker topic required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(p); err != nil {
		return err
	}
	next := upsert(s.mem[p], m)
	if err := s.persist(p, next); err != nil {
		return err
	}
	s.mem[p] = next
	return nil
}

// All returns a copy of every marker of the partition.
func (s *Store) All(p Partition) ([]Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(p); err != nil {
		return nil, err
	}
	out := make([]Marker, len(s.mem[p]))
	copy(out, s.mem[p])
	return out, nil
}

// load merges the persisted list under the in-memory one. Memory wins.
func (s *Store) load(p Partition) error {
	if s.loaded[p] {
		return nil
	}
	key, err := p.key()
	if err != nil {
		return err
	}
	if s.kv == nil {
		s.loaded[p] = true
		return nil
	}
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	s.loaded[p] = true
	if !ok || raw == "" {
		return nil
	}

	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// A corrupt list is dropped; it is rewritten on the next Set.
		return nil
	}
	merged := make([]Marker, 0, len(records)+len(s.mem[p]))
	for _, r := range records {
		topic := r.Match
		if p == Private {
			topic = r.Inbox
		}
		if topic == "" {
			continue
		}
		merged = upsert(merged, Marker{Topic: topic, MessageID: r.Message})
	}
	for _, m := range s.mem[p] {
		merged = upsert(merged, m)
	}
	s.mem[p] = merged
	return nil
}

func (s *Store) persist(p Partition, markers []Marker) error {
	if s.kv == nil {
		return nil
	}
	key, err := p.key()
	if err != nil {
		return err
	}
	records := make([]record, 0, len(markers))
	for _, m := range markers {
		r := record{Message: m.MessageID}
		if p == Private {
			r.Inbox = m.Topic
		} else {
			r.Match = m.Topic
		}
		records = append(records, r)
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// upsert returns a new slice with m replacing any marker for the same topic.
func upsert(markers []Marker, m Marker) []Marker {
	out := make([]Marker, len(markers), len(markers)+1)
	copy(out, markers)
	if i := indexOf(out, m.Topic); i >= 0 {
		out[i] = m
		return out
	}
	return append(out, m)
}

func indexOf(markers []Marker, topic string) int {
	for i, m := range markers {
		if m.Topic == topic {
			return i
		}
	}
	return -1
}
