package studio

import "context"

const schedulerActor = "system:scheduler"

// ProcessScheduledQueue publishes every queued auto item whose scheduled
// time has passed and returns the number published. There is no background
// timer; read-heavy operations call this opportunistically.
func (s *Service) ProcessScheduledQueue(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processScheduledLocked(ctx)
}

func (s *Service) processScheduledLocked(ctx context.Context) int {
	now := nowUTC()

	var due []string
	for _, item := range s.state.Queue {
		if item.Status != StatusQueued || item.PublishMode != PublishModeAuto {
			continue
		}
		if item.ScheduledAt == nil || item.ScheduledAt.After(now) {
			continue
		}
		due = append(due, item.ItemID)
	}

	published := 0
	for _, itemID := range due {
		result, err := s.publishLocked(ctx, itemID, true, schedulerActor)
		if err != nil {
			s.logger.Warn().Err(err).Str("item_id", itemID).Msg("scheduled publish rejected")
			continue
		}
		if result.Success {
			published++
		} else {
			s.logger.Warn().Str("item_id", itemID).Str("message", result.Message).Msg("scheduled publish failed")
		}
	}
	return published
}
