package utils

import (
	"sync"

	"gorm.io/gorm"

	"projecthub/models"
)

// Notifier persists notifications and pushes them to live subscribers.
// Dispatch is fire-and-forget relative to the triggering mutation: every
// failure is caught and logged here and never reaches the caller, so a
// mutation succeeds even when its notifications fail.
type Notifier struct {
	db *gorm.DB

	mu   sync.Mutex
	subs map[uint][]chan models.Notification
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db:   db,
		subs: make(map[uint][]chan models.Notification),
	}
}

// Notify creates one notification row for the user and pushes it to any live
// stream subscriptions.
func (n *Notifier) Notify(userID uint, notificationType string, entityID uint, message string) {
	notification := models.Notification{
		UserID:   userID,
		Type:     notificationType,
		EntityID: entityID,
		Message:  message,
	}

	if err := n.db.Create(&notification).Error; err != nil {
		LogError("notification_create_failed", err, map[string]interface{}{
			"user_id":   userID,
			"type":      notificationType,
			"entity_id": entityID,
		})
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[userID] {
		// Drop instead of blocking when a subscriber is slow
		select {
		case ch <- notification:
		default:
		}
	}
}

// NotifyAll fans one event out to every stakeholder in the set.
func (n *Notifier) NotifyAll(userIDs []uint, notificationType string, entityID uint, message string) {
	for _, id := range userIDs {
		n.Notify(id, notificationType, entityID, message)
	}
}

// Subscribe registers a live stream for the user and returns its channel.
func (n *Notifier) Subscribe(userID uint) chan models.Notification {
	ch := make(chan models.Notification, 16)
	n.mu.Lock()
	n.subs[userID] = append(n.subs[userID], ch)
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a live stream previously returned by Subscribe.
func (n *Notifier) Unsubscribe(userID uint, ch chan models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	subs := n.subs[userID]
	for i, sub := range subs {
		if sub == ch {
			n.subs[userID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(n.subs[userID]) == 0 {
		delete(n.subs, userID)
	}
}
