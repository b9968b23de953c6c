package core

import (
	"context"
	"log"
	"slices"

	"github.com/five82/rally/internal/state"
)

type topicKind int

const (
	userTopic topicKind = iota
	matchTopic
)

type topic struct {
	id   string
	kind topicKind
}

// wantedTopics lists the topics the client should be joined to: the user's
// own topic and the current match, and nothing while offline.
func wantedTopics(s state.Snapshot) []topic {
	if !s.Online || s.User == nil {
		return nil
	}
	out := []topic{{id: s.User.ID, kind: userTopic}}
	if id := s.CurrentMatchID(); id != "" {
		out = append(out, topic{id: id, kind: matchTopic})
	}
	return out
}

// reconcile joins wanted topics that are not yet joined and leaves joined
// topics that are no longer wanted. A fresh user topic reloads the private
// messages; a fresh match topic reloads the match chat. History loads run
// after reconcileMu is released.
func (c *Core) reconcile(ctx context.Context) {
	joins := c.syncTopics()
	for _, t := range joins {
		var err error
		switch t.kind {
		case userTopic:
			err = c.LoadPrivateMessages(ctx)
		case matchTopic:
			err = c.LoadMessages(ctx)
		}
		if err != nil {
			log.Printf("load %s: %v", t.id, err)
		}
	}
}

// syncTopics brings the subscriptions in line with the current snapshot and
// returns the topics it joined. Reading the snapshot under reconcileMu keeps
// a slower caller from re-joining a topic that a newer snapshot dropped.
func (c *Core) syncTopics() []topic {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()

	want := wantedTopics(c.store.Snapshot())

	c.mu.Lock()
	keep := make(map[string]bool, len(want))
	var joins []topic
	for _, t := range want {
		keep[t.id] = true
		if _, ok := c.joined[t.id]; !ok {
			c.joined[t.id] = t.kind
			joins = append(joins, t)
		}
	}
	var leaves []string
	for id := range c.joined {
		if !keep[id] {
			delete(c.joined, id)
			leaves = append(leaves, id)
		}
	}
	c.mu.Unlock()

	for _, id := range leaves {
		if err := c.channel.Leave(id); err != nil {
			log.Printf("leave %s: %v", id, err)
		}
	}
	joined := joins[:0]
	for _, t := range joins {
		if err := c.channel.Join(t.id); err != nil {
			log.Printf("join %s: %v", t.id, err)
			c.mu.Lock()
			delete(c.joined, t.id)
			c.mu.Unlock()
			continue
		}
		joined = append(joined, t)
	}
	return joined
}

// leave drops topic from the joined set and unsubscribes from it.
func (c *Core) leave(topic string) {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()

	c.mu.Lock()
	_, ok := c.joined[topic]
	delete(c.joined, topic)
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.channel.Leave(topic); err != nil {
		log.Printf("leave %s: %v", topic, err)
	}
}

func (c *Core) forgetTopics() {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()

	c.mu.Lock()
	c.joined = map[string]topicKind{}
	c.mu.Unlock()
}

// JoinedTopics returns the topics the client currently holds, sorted.
func (c *Core) JoinedTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.joined))
	for id := range c.joined {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
