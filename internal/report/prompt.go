package report

import (
	"fmt"

	"github.com/riskibarqy/nba-advisor/internal/domain/analysis"
	"github.com/valyala/bytebufferpool"
)

const promptInstructions = `You are an expert NBA same-game parlay analyst. Identify correlated, high-value legs for a same-game parlay on the matchup below.
Strong legs are positively correlated: a pace-up game lifts both a moneyline and the over, a defensive game favors the under and a short spread.
Never combine incompatible legs such as a moneyline and a spread on the same team.
Only use lines that appear in the betting odds and player props sections. Sections marked "` + NotAvailable + `" could not be fetched; do not guess their contents.`

const promptOutputFormat = `Respond with ONLY a JSON object, no markdown:
{
  "game": "full matchup label",
  "date": "YYYY-MM-DD",
  "confidence": "Low | Medium | High",
  "summary": "one sentence thesis",
  "key_factors": ["injury, lineup or matchup factors"],
  "legs": [
    {
      "type": "moneyline | spread | total | player_prop",
      "bet": "human readable bet using a posted line",
      "implied_probability": "decimal taken from the odds above",
      "rationale": "why this leg correlates with the others"
    }
  ]
}`

// BuildPrompt wraps a formatted analysis for the text-generation collaborator.
func BuildPrompt(m analysis.Matchup, formatted string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(promptInstructions)
	buf.WriteString("\n\n===== MATCHUP =====\n")
	fmt.Fprintf(buf, "%s on %s (game %d)\n", gameLabel(m.Game), m.Date, m.Game.ID)
	buf.WriteString("\n===== GAME CONTEXT =====\n")
	buf.WriteString(formatted)
	buf.WriteString("\n\n===== OUTPUT FORMAT =====\n")
	buf.WriteString(promptOutputFormat)
	return buf.String()
}
