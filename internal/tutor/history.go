package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/store"
)

const (
	historyKey       = "tutor:history"
	sessionKeyPrefix = "tutor:session:"

	// HistoryCapacity bounds the recent conversations list.
	HistoryCapacity = 10
)

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// History returns the recent conversations, most recently touched first,
// with relative timestamps computed against the current time.
func (e *Engine) History(ctx context.Context) ([]Summary, error) {
	items, err := e.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	now := e.now()
	for i := range items {
		if !items[i].UpdatedAt.IsZero() {
			items[i].Timestamp = RelativeTime(items[i].UpdatedAt, now)
		}
	}
	return items, nil
}

// loadHistory reads the summary list. A corrupt list is logged and
// treated as empty.
func (e *Engine) loadHistory(ctx context.Context) ([]Summary, error) {
	items, err := store.GetList[Summary](ctx, e.store, historyKey)
	if errors.Is(err, store.ErrCorrupt) {
		e.log.Warn("discarding corrupt tutor history", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return items, nil
}

// upsertSummary moves sum to the front of the history list and evicts the
// least recently touched entries beyond capacity. Evicted transcripts are
// deleted, so every stored transcript has a history entry.
func (e *Engine) upsertSummary(ctx context.Context, sum Summary) error {
	items, err := e.loadHistory(ctx)
	if err != nil {
		return err
	}

	var maxSeq int64
	kept := make([]Summary, 0, len(items)+1)
	for _, it := range items {
		maxSeq = max(maxSeq, it.Seq)
		if it.ID != sum.ID {
			kept = append(kept, it)
		}
	}
	sum.Seq = maxSeq + 1

	kept = append([]Summary{sum}, kept...)
	var evicted []Summary
	if len(kept) > HistoryCapacity {
		kept, evicted = kept[:HistoryCapacity], kept[HistoryCapacity:]
	}

	if err := store.SetList(ctx, e.store, historyKey, kept); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	for _, it := range evicted {
		if err := e.store.Delete(ctx, sessionKey(it.ID)); err != nil {
			e.log.Warn("failed to delete evicted transcript", zap.String("session", it.ID), zap.Error(err))
		}
	}
	return nil
}

// findSummary returns the history entry for id, if any.
func (e *Engine) findSummary(ctx context.Context, id string) (Summary, bool) {
	items, err := e.loadHistory(ctx)
	if err != nil {
		e.log.Warn("failed to read tutor history", zap.Error(err))
		return Summary{}, false
	}
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Summary{}, false
}

// persist saves the transcript and upserts its summary. Failures are
// logged; the conversation carries on in memory.
func (e *Engine) persist(ctx context.Context, s Session, lastMessage string, at time.Time) {
	if err := store.SetList(ctx, e.store, sessionKey(s.ID), s.Messages); err != nil {
		e.log.Warn("failed to save transcript", zap.String("session", s.ID), zap.Error(err))
	}

	sum := Summary{
		ID:           s.ID,
		Subject:      s.Subject,
		LastMessage:  lastMessage,
		Timestamp:    RelativeTime(at, at),
		MessageCount: len(s.Messages),
		UpdatedAt:    at.UTC(),
	}
	if err := e.upsertSummary(ctx, sum); err != nil {
		e.log.Warn("failed to update tutor history", zap.String("session", s.ID), zap.Error(err))
	}
}

// ClearHistory deletes every saved transcript and the history list. The
// active session, if any, keeps running in memory.
func (e *Engine) ClearHistory(ctx context.Context) error {
	items, err := e.loadHistory(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := e.store.Delete(ctx, sessionKey(it.ID)); err != nil {
			return fmt.Errorf("delete transcript %s: %w", it.ID, err)
		}
	}
	if err := e.store.Delete(ctx, historyKey); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}
