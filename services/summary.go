package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
)

// SummaryService derives unread counts and latest-message digests from the
// message store. The REST contact listing and the relay's delivery path both
// go through ComputeSummary so the two can never disagree on what "unread"
// means.
type SummaryService struct {
	store contract.IMessageStore
}

func NewSummaryService(store contract.IMessageStore) SummaryService {
	return SummaryService{store: store}
}

// ComputeSummary returns the conversation digest as seen by user.
//
// unreadCount counts messages that user neither authored nor acknowledged:
// self-authored messages never appear in the denominator. The latest-message
// fields describe the newest message regardless of sender or read state and
// stay nil for an empty conversation.
func (s SummaryService) ComputeSummary(conv domain.Conversation, user domain.UserID) (domain.Summary, error) {
	messages, err := s.store.FindMessages(conv, nil)
	if err != nil {
		return domain.Summary{}, err
	}

	var summary domain.Summary
	for _, msg := range messages {
		if msg.UnreadFor(user) {
			summary.UnreadCount++
		}
	}
	if len(messages) > 0 {
		// FindMessages returns creation order; ties keep insertion order.
		latest := messages[len(messages)-1]
		summary.LatestMessage = &latest.Body
		summary.LatestMessageSender = &latest.Sender
		summary.LatestMessageUpdatedAt = &latest.CreatedAt
	}
	return summary, nil
}
