package balldontlie

import (
	"strconv"
	"strings"
)

type teamRecord struct {
	ID           int64  `json:"id"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

type playerRecord struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Position  string      `json:"position"`
	TeamID    int64       `json:"team_id"`
	Team      *teamRecord `json:"team"`
}

type injuryRecord struct {
	Player      playerRecord `json:"player"`
	Status      string       `json:"status"`
	ReturnDate  string       `json:"return_date"`
	Description string       `json:"description"`
}

type seasonAverageRecord struct {
	Player     playerRecord   `json:"player"`
	Season     int            `json:"season"`
	SeasonType string         `json:"season_type"`
	Stats      map[string]any `json:"stats"`
}

type teamSeasonAverageRecord struct {
	Team       teamRecord     `json:"team"`
	Season     int            `json:"season"`
	SeasonType string         `json:"season_type"`
	Stats      map[string]any `json:"stats"`
}

type gameRecord struct {
	ID               int64      `json:"id"`
	Date             string     `json:"date"`
	Season           int        `json:"season"`
	Status           string     `json:"status"`
	Period           int        `json:"period"`
	Time             string     `json:"time"`
	Postseason       bool       `json:"postseason"`
	HomeTeam         teamRecord `json:"home_team"`
	VisitorTeam      teamRecord `json:"visitor_team"`
	HomeTeamID       int64      `json:"home_team_id"`
	VisitorTeamID    int64      `json:"visitor_team_id"`
	HomeTeamScore    int        `json:"home_team_score"`
	VisitorTeamScore int        `json:"visitor_team_score"`
}

type lineupRecord struct {
	ID       int64        `json:"id"`
	GameID   int64        `json:"game_id"`
	Starter  bool         `json:"starter"`
	Position string       `json:"position"`
	Player   playerRecord `json:"player"`
	Team     teamRecord   `json:"team"`
}

type oddsRecord struct {
	ID                int64        `json:"id"`
	GameID            int64        `json:"game_id"`
	Vendor            string       `json:"vendor"`
	SpreadHomeValue   numberString `json:"spread_home_value"`
	SpreadHomeOdds    int          `json:"spread_home_odds"`
	SpreadAwayValue   numberString `json:"spread_away_value"`
	SpreadAwayOdds    int          `json:"spread_away_odds"`
	MoneylineHomeOdds int          `json:"moneyline_home_odds"`
	MoneylineAwayOdds int          `json:"moneyline_away_odds"`
	TotalValue        numberString `json:"total_value"`
	TotalOverOdds     int          `json:"total_over_odds"`
	TotalUnderOdds    int          `json:"total_under_odds"`
	UpdatedAt         string       `json:"updated_at"`
}

type propMarketRecord struct {
	Type      string `json:"type"`
	OverOdds  int    `json:"over_odds"`
	UnderOdds int    `json:"under_odds"`
	Odds      int    `json:"odds"`
}

type playerPropRecord struct {
	ID        int64            `json:"id"`
	GameID    int64            `json:"game_id"`
	PlayerID  int64            `json:"player_id"`
	Vendor    string           `json:"vendor"`
	PropType  string           `json:"prop_type"`
	LineValue numberString     `json:"line_value"`
	Market    propMarketRecord `json:"market"`
	UpdatedAt string           `json:"updated_at"`
}

// numberString accepts a line value sent either as a JSON string ("-5.5") or a number.
type numberString float64

func (n *numberString) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*n = 0
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*n = numberString(value)
	return nil
}
