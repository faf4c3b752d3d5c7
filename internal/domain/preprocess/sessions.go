package preprocess

import (
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// Sessions normalizes raw session rows.
//
// Dates must all parse; otherwise a *DateParseError listing every offending
// row is returned and nothing else is produced. Numeric cells that do not
// parse become missing. internal_load = minutes * sRPE. The result is
// stable-sorted by (player_id, date); no rows are dropped.
func Sessions(raw []model.RawSession) ([]model.SessionRecord, error) {
	dates := make([]time.Time, len(raw))
	var bad []BadDate
	for i, r := range raw {
		d, err := parseDate(r.Date)
		if err != nil {
			bad = append(bad, BadDate{Line: r.Line, PlayerID: r.PlayerID, Value: r.Date})
			continue
		}
		dates[i] = d
	}
	if len(bad) > 0 {
		return nil, &DateParseError{Table: "sessions", Column: "date", Rows: bad}
	}

	out := make([]model.SessionRecord, len(raw))
	for i, r := range raw {
		rec := model.SessionRecord{
			Line:         r.Line,
			Date:         dates[i],
			PlayerID:     r.PlayerID,
			SessionType:  r.SessionType,
			Minutes:      parseNumber(r.Minutes),
			SRPE:         parseNumber(r.SRPE),
			ExternalLoad: parseNumber(r.ExternalLoad),
			TotalAccels:  parseNumber(r.TotalAccels),
			JumpCount:    parseNumber(r.JumpCount),
			AvgHR:        parseNumber(r.AvgHR),
		}
		rec.InternalLoad = product(rec.Minutes, rec.SRPE)
		out[i] = rec
	}
	return model.SortSessions(out), nil
}
