package domain

import "time"

// UnlockedAchievement records when an achievement was earned. Unlocks are
// permanent; deleting the history that earned one does not revoke it.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
