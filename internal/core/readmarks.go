package core

import (
	"context"
	"fmt"
	"log"

	"github.com/five82/rally/internal/readmark"
	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
)

// MarkMatchRead records the last message of the current match chat as read.
// Calling it again without new messages writes nothing.
func (c *Core) MarkMatchRead(ctx context.Context) error {
	snap := c.store.Snapshot()
	return c.markRead(ctx, readmark.Match, snap.CurrentMatchID(), snap.Messages)
}

// MarkInboxRead records the last message exchanged with contactID as read.
func (c *Core) MarkInboxRead(ctx context.Context, contactID string) error {
	snap := c.store.Snapshot()
	return c.markRead(ctx, readmark.Private, contactID, state.InboxMessages(snap, contactID))
}

func (c *Core) markRead(ctx context.Context, p readmark.Partition, topic string, messages []remote.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" || len(messages) == 0 {
		return nil
	}
	last := messages[len(messages)-1]

	current, ok, err := c.marks.Get(p, topic)
	if err != nil {
		return fmt.Errorf("read %s marker: %w", p, err)
	}
	if !ok || current.MessageID != last.ID {
		if err := c.marks.Set(p, readmark.Marker{Topic: topic, MessageID: last.ID}); err != nil {
			return fmt.Errorf("write %s marker: %w", p, err)
		}
	}
	c.mirrorMarkers(p)
	return nil
}

// mirrorMarkers copies the marker store into the snapshot.
func (c *Core) mirrorMarkers(p readmark.Partition) {
	markers, err := c.marks.All(p)
	if err != nil {
		log.Printf("%s read markers: %v", p, err)
		return
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		if p == readmark.Private {
			s.PrivateMessagesLastRead = markers
		} else {
			s.MessagesLastRead = markers
		}
		return s
	})
}
