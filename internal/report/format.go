package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/nba-advisor/internal/domain/analysis"
	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
	"github.com/valyala/bytebufferpool"
)

// NotAvailable replaces any optional section whose fetch failed.
const NotAvailable = "Not available"

const noUpcomingGames = "No upcoming games found."

// FormatGameAnalysis renders the analysis as plain text. Output depends only on the
// analysis value: rows are sorted and map iteration never reaches the output.
func FormatGameAnalysis(a analysis.GameAnalysis) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeGameAnalysis(buf, a)
	return buf.String()
}

// FormatSlate renders every analysis in order, separated by a blank line.
func FormatSlate(analyses []analysis.GameAnalysis) string {
	if len(analyses) == 0 {
		return noUpcomingGames
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "##### SLATE: %d game(s) #####\n\n", len(analyses))
	for i, a := range analyses {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		writeGameAnalysis(buf, a)
	}
	return buf.String()
}

func writeGameAnalysis(buf *bytebufferpool.ByteBuffer, a analysis.GameAnalysis) {
	g := a.Game
	status := strings.TrimSpace(g.Status)
	if status == "" {
		status = "Scheduled"
	}

	fmt.Fprintf(buf, "=== GAME: %s vs %s ===\n", teamName(a.Home.Team), teamName(a.Visitor.Team))
	fmt.Fprintf(buf, "Date: %s | Season: %d (%s) | Game ID: %d\n", g.Date, a.Season, a.SeasonType, g.ID)
	fmt.Fprintf(buf, "Status: %s\n", status)

	buf.WriteString("\n")
	writeTeamBlock(buf, "HOME", a.Home, a.SeasonType)
	buf.WriteString("\n")
	writeTeamBlock(buf, "VISITOR", a.Visitor, a.SeasonType)
	buf.WriteString("\n")
	writeOdds(buf, a)
	buf.WriteString("\n")
	writeProps(buf, a)
}

func writeTeamBlock(buf *bytebufferpool.ByteBuffer, side string, ta analysis.TeamAnalysis, seasonType string) {
	fmt.Fprintf(buf, "--- %s (%s) [%s] ---\n", teamName(ta.Team), ta.Team.Abbreviation, side)

	writeInjuries(buf, ta.Injuries)
	writeLineup(buf, ta.Lineup)

	switch {
	case !ta.TeamAverage.Available || ta.TeamAverage.Value == nil:
		fmt.Fprintf(buf, "TEAM STATS: %s\n", NotAvailable)
	default:
		avg := ta.TeamAverage.Value
		avgType := avg.SeasonType
		if avgType == "" {
			avgType = seasonType
		}
		fmt.Fprintf(buf, "TEAM STATS (season %d, %s):\n", avg.Season, avgType)
		fmt.Fprintf(buf, "  %s\n", statLine(avg.Stats, stats.TeamKeys))
	}

	writePlayerAverages(buf, ta.PlayerAverages)
	writeRecentForm(buf, ta.Team, ta.RecentForm)
}

func writeInjuries(buf *bytebufferpool.ByteBuffer, section analysis.Section[[]injury.Injury]) {
	if !section.Available {
		fmt.Fprintf(buf, "INJURY REPORT: %s\n", NotAvailable)
		return
	}
	if len(section.Value) == 0 {
		buf.WriteString("INJURY REPORT: None reported\n")
		return
	}

	rows := append([]injury.Injury(nil), section.Value...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Player.LastName != rows[j].Player.LastName {
			return rows[i].Player.LastName < rows[j].Player.LastName
		}
		return rows[i].Player.ID < rows[j].Player.ID
	})

	fmt.Fprintf(buf, "INJURY REPORT (%d):\n", len(rows))
	for _, inj := range rows {
		returnDate := inj.ReturnDate
		if returnDate == "" {
			returnDate = "unknown"
		}
		fmt.Fprintf(buf, "  %s (%s) - %s | Return: %s", inj.Player.FullName(), orDash(inj.Player.Position), inj.Status, returnDate)
		if desc := strings.TrimSpace(inj.Description); desc != "" {
			fmt.Fprintf(buf, " | %s", desc)
		}
		buf.WriteString("\n")
	}
}

func writeLineup(buf *bytebufferpool.ByteBuffer, section analysis.Section[[]lineup.Entry]) {
	if !section.Available {
		fmt.Fprintf(buf, "STARTING LINEUP: %s\n", NotAvailable)
		return
	}
	starters := sortedEntries(lineup.Starters(section.Value))
	if len(starters) == 0 {
		buf.WriteString("STARTING LINEUP: Not yet available\n")
		return
	}
	buf.WriteString("STARTING LINEUP:\n")
	for _, e := range starters {
		fmt.Fprintf(buf, "  %s (%s)\n", e.Player.FullName(), orDash(e.Position))
	}
}

func writePlayerAverages(buf *bytebufferpool.ByteBuffer, section analysis.Section[[]stats.SeasonAverage]) {
	if !section.Available || len(section.Value) == 0 {
		fmt.Fprintf(buf, "PLAYER AVERAGES: %s\n", NotAvailable)
		return
	}

	rows := append([]stats.SeasonAverage(nil), section.Value...)
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := points(rows[i].Stats), points(rows[j].Stats)
		if pi != pj {
			return pi > pj
		}
		return rows[i].Player.ID < rows[j].Player.ID
	})

	fmt.Fprintf(buf, "PLAYER AVERAGES (%d players):\n", len(rows))
	for _, avg := range rows {
		fmt.Fprintf(buf, "  %s: %s\n", avg.Player.FullName(), statLine(avg.Stats, stats.PlayerKeys))
	}
}

func writeRecentForm(buf *bytebufferpool.ByteBuffer, t team.Team, section analysis.Section[[]analysis.RecentGame]) {
	if !section.Available {
		fmt.Fprintf(buf, "RECENT FORM: %s\n", NotAvailable)
		return
	}
	if len(section.Value) == 0 {
		buf.WriteString("RECENT FORM: No finished games\n")
		return
	}

	fmt.Fprintf(buf, "RECENT FORM (last %d):\n", len(section.Value))
	for _, rg := range section.Value {
		fmt.Fprintf(buf, "  %s\n", recentGameLine(t, rg))
	}
}

func recentGameLine(t team.Team, rg analysis.RecentGame) string {
	g := rg.Game
	own, opp, venue, opponent := g.HomeScore, g.VisitorScore, "vs", g.VisitorTeam
	if g.VisitorTeam.ID == t.ID {
		own, opp, venue, opponent = g.VisitorScore, g.HomeScore, "@", g.HomeTeam
	}
	result := "L"
	if own > opp {
		result = "W"
	}

	line := fmt.Sprintf("%s %s %d-%d %s %s", g.Date, result, own, opp, venue, orDash(opponent.Abbreviation))
	starters := sortedEntries(rg.Starters)
	if len(starters) == 0 {
		return line
	}
	names := make([]string, 0, len(starters))
	for _, e := range starters {
		names = append(names, e.Player.FullName())
	}
	return line + " | Starters: " + strings.Join(names, ", ")
}

func writeOdds(buf *bytebufferpool.ByteBuffer, a analysis.GameAnalysis) {
	if !a.Odds.Available {
		fmt.Fprintf(buf, "BETTING ODDS: %s\n", NotAvailable)
		return
	}
	if len(a.Odds.Value) == 0 {
		buf.WriteString("BETTING ODDS: None posted\n")
		return
	}

	quotes := append([]odds.GameOdds(nil), a.Odds.Value...)
	sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].Vendor < quotes[j].Vendor })

	home, visitor := orDash(a.Game.HomeTeam.Abbreviation), orDash(a.Game.VisitorTeam.Abbreviation)
	buf.WriteString("BETTING ODDS (American, implied probability):\n")
	for _, q := range quotes {
		fmt.Fprintf(buf, "  [%s]", q.Vendor)
		if q.SpreadHomeOdds != 0 || q.SpreadAwayOdds != 0 {
			fmt.Fprintf(buf, " spread %s %s %s / %s %s %s |",
				home, signedLine(q.SpreadHomeValue), price(q.SpreadHomeOdds),
				visitor, signedLine(q.SpreadAwayValue), price(q.SpreadAwayOdds))
		}
		if q.MoneylineHome != 0 || q.MoneylineAway != 0 {
			fmt.Fprintf(buf, " moneyline %s %s / %s %s |", home, price(q.MoneylineHome), visitor, price(q.MoneylineAway))
		}
		if q.TotalValue != 0 {
			fmt.Fprintf(buf, " total %s over %s under %s |", formatFloat(q.TotalValue), price(q.TotalOverOdds), price(q.TotalUnderOdds))
		}
		if !q.UpdatedAt.IsZero() {
			fmt.Fprintf(buf, " updated %s", q.UpdatedAt.UTC().Format("2006-01-02 15:04Z"))
		}
		buf.WriteString("\n")
	}
}

func writeProps(buf *bytebufferpool.ByteBuffer, a analysis.GameAnalysis) {
	if !a.Props.Available {
		fmt.Fprintf(buf, "PLAYER PROPS: %s\n", NotAvailable)
		return
	}
	if len(a.Props.Value) == 0 {
		buf.WriteString("PLAYER PROPS: None posted\n")
		return
	}

	props := append([]odds.PlayerProp(nil), a.Props.Value...)
	sort.SliceStable(props, func(i, j int) bool {
		if props[i].PlayerID != props[j].PlayerID {
			return props[i].PlayerID < props[j].PlayerID
		}
		if props[i].PropType != props[j].PropType {
			return props[i].PropType < props[j].PropType
		}
		return props[i].Vendor < props[j].Vendor
	})

	fmt.Fprintf(buf, "PLAYER PROPS (%d):\n", len(props))
	for _, p := range props {
		name, ok := a.PlayerName(p.PlayerID)
		if !ok {
			name = "Player #" + strconv.FormatInt(p.PlayerID, 10)
		}
		fmt.Fprintf(buf, "  %s %s %s", name, p.PropType, formatFloat(p.LineValue))
		if p.Market.IsOverUnder() {
			fmt.Fprintf(buf, " over %s under %s", price(p.Market.OverOdds), price(p.Market.UnderOdds))
		} else {
			fmt.Fprintf(buf, " milestone %s", price(p.Market.Odds))
		}
		fmt.Fprintf(buf, " [%s]\n", p.Vendor)
	}
}

// statLine renders keys in the given order, skipping keys the line does not carry.
func statLine(line stats.Line, keys []stats.Key) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		v, ok := line.Get(key)
		if !ok {
			continue
		}
		parts = append(parts, string(key)+": "+v.String())
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, " | ")
}

func points(line stats.Line) float64 {
	v, ok := line.Get(stats.Points)
	if !ok || v.IsText {
		return 0
	}
	return v.Num
}

func sortedEntries(entries []lineup.Entry) []lineup.Entry {
	out := append([]lineup.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GameID != out[j].GameID {
			return out[i].GameID < out[j].GameID
		}
		return out[i].Player.ID < out[j].Player.ID
	})
	return out
}

// price renders American odds with the implied probability, e.g. "-110 (0.5238)".
func price(american int) string {
	if american == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%+d (%.4f)", american, odds.ImpliedProbability(float64(american)))
}

func signedLine(v float64) string {
	if v > 0 {
		return "+" + formatFloat(v)
	}
	return formatFloat(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func teamName(t team.Team) string {
	name := strings.TrimSpace(t.City + " " + t.Name)
	if name == "" {
		return t.FullName
	}
	return name
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// gameLabel is "Home Team vs Visitor Team".
func gameLabel(g game.Game) string {
	return teamName(g.HomeTeam) + " vs " + teamName(g.VisitorTeam)
}
