package entities

import "time"

// Um usuário na lista de oradores de um item da pauta.
// BeginTime/EndTime ficam nulos até a fala começar/terminar.
type Speaker struct {
	ID        int64      `json:"id"`
	ItemID    int64      `json:"item_id"`
	UserID    int64      `json:"user_id"`
	BeginTime *time.Time `json:"begin_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Weight    *int       `json:"weight,omitempty"`
}

// IsWaiting reports whether the speaker has not started speaking yet.
func (s Speaker) IsWaiting() bool {
	return s.BeginTime == nil
}
