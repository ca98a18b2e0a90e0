package service

import (
	"fmt"
	"time"
)

// NextAnchor returns the first whole local hour strictly after now whose hour is baseHour modulo intervalHours
func NextAnchor(now time.Time, baseHour, intervalHours int) time.Time {
	if intervalHours <= 0 {
		intervalHours = 1
	}
	h := now.Hour()
	mod := ((h-baseHour)%intervalHours + intervalHours) % intervalHours

	t := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
	if mod != 0 || now.After(t) {
		t = time.Date(now.Year(), now.Month(), now.Day(), h+intervalHours-mod, 0, 0, 0, now.Location())
	}
	if !t.After(now) {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+intervalHours, 0, 0, 0, t.Location())
	}
	return t
}

// Anchors lists the hours of day a schedule fires at, formatted HH:00
func Anchors(baseHour, intervalHours int) []string {
	if intervalHours <= 0 {
		intervalHours = 1
	}
	start := ((baseHour % intervalHours) + intervalHours) % intervalHours
	var out []string
	for h := start; h < 24; h += intervalHours {
		out = append(out, fmt.Sprintf("%02d:00", h))
	}
	return out
}
