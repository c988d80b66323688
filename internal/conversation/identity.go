// Package conversation provides per-conversation primitives: identity
// keys, the history buffer, and the cross-worker turn lock.
package conversation

import "github.com/convodesk/support-engine/internal/cache"

// Identity identifies one conversation for a request.
type Identity struct {
	AssistantID string `json:"assistantId"`
	UserID      string `json:"userId"`
	PageID      string `json:"pageId"`
	SessionID   string `json:"sessionId"`
}

// LockKey derives the deterministic conversation lock key. Used only as
// a concurrency token.
func (id Identity) LockKey() string {
	return cache.ConversationKey("lock", id.AssistantID, id.UserID, id.PageID, id.SessionID)
}

// HistoryKey derives the conversation history buffer key.
func (id Identity) HistoryKey() string {
	return cache.ConversationKey("history", id.AssistantID, id.UserID, id.PageID, id.SessionID)
}
