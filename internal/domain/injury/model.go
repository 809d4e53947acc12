package injury

import "github.com/riskibarqy/nba-advisor/internal/domain/player"

const (
	StatusOut          = "Out"
	StatusDayToDay     = "Day-To-Day"
	StatusQuestionable = "Questionable"
	StatusDoubtful     = "Doubtful"
	StatusProbable     = "Probable"
)

// Injury is a current injury report row. Volatile: it changes daily.
type Injury struct {
	Player      player.Player
	Status      string
	ReturnDate  string
	Description string
}
