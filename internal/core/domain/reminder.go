package domain

import "time"

// ReminderSchedule is the next fire instant of each daily timer.
type ReminderSchedule struct {
	NextMorningFire  time.Time `json:"next_morning_fire"`
	NextMidnightFire time.Time `json:"next_midnight_fire"`
}

// Reminder is a schedule request handed to the notification collaborator.
// Hour and Minute are a local time of day; Repeats asks for a daily trigger.
type Reminder struct {
	ID      string
	Title   string
	Body    string
	Hour    int
	Minute  int
	Repeats bool
}
