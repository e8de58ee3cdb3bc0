package services

import "strconv"

// Preference keys.
const (
	KeyAddress             = "address"
	KeyCallName            = "call_name"
	KeyTodayScore          = "today_score"
	KeyYesterdayScore      = "yesterday_score"
	KeyLastCalculationDate = "last_calculation_date"
	KeyLastWallpaperDate   = "last_wallpaper_date"
)

// Artifact names.
const (
	ArtifactWallpaper = "wallpaper"
	ArtifactIcon      = "icon"
)

// ReminderMorning is the ID of the daily forecast notification.
const ReminderMorning = "morning_score"

// DefaultCallName is used when the user has not named their cat.
const DefaultCallName = "ねこ"

func sliderKey(i int) string {
	return "slider_" + strconv.Itoa(i)
}
