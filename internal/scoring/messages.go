package scoring

import (
	"fmt"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// Encouragement returns the cat's comment for a score band.
func Encouragement(score domain.WellbeingScore) string {
	switch {
	case score < 40:
		return "今日は休んで病院行くにゃ！！"
	case score < 60:
		return "無理せず、少しずつがんばろうにゃ？"
	case score < 80:
		return "いい調子だにゃ！これをキープにゃ"
	default:
		return "絶好調にゃ！猫缶買ってくるにゃ"
	}
}

// ForecastTitle is the title of the morning notification.
const ForecastTitle = "今日のスコア予測"

// ForecastBody is the text of the morning notification.
func ForecastBody(callName string, score domain.WellbeingScore) string {
	return fmt.Sprintf("%sの今日の気分は多分%d点位だにゃ\nまた明日の朝に連絡するにゃ", callName, score)
}
