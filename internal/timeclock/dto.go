package timeclock

import (
	"strconv"
	"time"
)

// Hours marshals as a JSON number with exactly two decimals.
type Hours float64

// MarshalJSON implements json.Marshaler.
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(h), 'f', 2, 64)), nil
}

// OwnerResponse is the owner identity attached to manager views.
type OwnerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// EntryResponse is the wire form of a time entry.
type EntryResponse struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	ClockInTime      time.Time      `json:"clockInTime"`
	BreakStartTime   *time.Time     `json:"breakStartTime"`
	BreakEndTime     *time.Time     `json:"breakEndTime"`
	ClockOutTime     *time.Time     `json:"clockOutTime"`
	Status           Status         `json:"status"`
	TotalHoursWorked *Hours         `json:"totalHoursWorked"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	User             *OwnerResponse `json:"user,omitempty"`
}

type transitionResponse struct {
	Message   string        `json:"message"`
	TimeEntry EntryResponse `json:"timeEntry"`
}

type entriesResponse struct {
	TimeEntries []EntryResponse `json:"timeEntries"`
}

type rosterResponse struct {
	ActiveEmployees []EntryResponse `json:"activeEmployees"`
}

// listQuery is the raw query string of the all-entries view.
type listQuery struct {
	From   string `validate:"omitempty,datetime=2006-01-02"`
	To     string `validate:"omitempty,datetime=2006-01-02"`
	Status string `validate:"omitempty,oneof=clocked_in on_break clocked_out"`
	UserID string `validate:"omitempty,uuid"`
}

func toEntryResponse(e TimeEntry) EntryResponse {
	resp := EntryResponse{
		ID:             e.ID.String(),
		UserID:         e.UserID.String(),
		ClockInTime:    e.ClockInTime,
		BreakStartTime: e.BreakStartTime,
		BreakEndTime:   e.BreakEndTime,
		ClockOutTime:   e.ClockOutTime,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.TotalHoursWorked != nil {
		h := Hours(*e.TotalHoursWorked)
		resp.TotalHoursWorked = &h
	}
	return resp
}

func toOwnedResponses(items []EntryWithOwner) []EntryResponse {
	out := make([]EntryResponse, 0, len(items))
	for _, item := range items {
		resp := toEntryResponse(item.TimeEntry)
		resp.User = &OwnerResponse{
			ID:        item.Owner.ID.String(),
			FirstName: item.Owner.FirstName,
			LastName:  item.Owner.LastName,
			Email:     item.Owner.Email,
		}
		out = append(out, resp)
	}
	return out
}
