package search

import "strings"

// Channel identifies which query input is live.
type Channel string

const (
	ChannelNone   Channel = ""
	ChannelColumn Channel = "column"
	ChannelGlobal Channel = "global"
)

// QueryState holds the column and global query channels. Only one channel is
// active at a time; activating one clears the other's active text but keeps
// its last value so highlighting can tell which query produced a match.
type QueryState struct {
	Column         FieldPath `json:"column,omitempty"`
	ColumnText     string    `json:"columnText,omitempty"`
	GlobalText     string    `json:"globalText,omitempty"`
	LastColumnText string    `json:"lastColumnText,omitempty"`
	LastGlobalText string    `json:"lastGlobalText,omitempty"`
}

// WithColumn activates the column channel for field.
func (q QueryState) WithColumn(field FieldPath, text string) QueryState {
	q.Column = field
	q.ColumnText = strings.TrimSpace(text)
	q.LastColumnText = q.ColumnText
	q.GlobalText = ""
	return q
}

// WithGlobal activates the global channel.
func (q QueryState) WithGlobal(text string) QueryState {
	q.GlobalText = strings.TrimSpace(text)
	q.LastGlobalText = q.GlobalText
	q.ColumnText = ""
	return q
}

// Reset clears active text on both channels.
func (q QueryState) Reset() QueryState {
	q.ColumnText = ""
	q.GlobalText = ""
	return q
}

// Active returns the live channel, its text and the fields it searches.
func (q QueryState) Active(globalFields []FieldPath) (Channel, string, []FieldPath) {
	switch {
	case q.ColumnText != "" && q.Column != "":
		return ChannelColumn, q.ColumnText, []FieldPath{q.Column}
	case q.GlobalText != "":
		return ChannelGlobal, q.GlobalText, globalFields
	default:
		return ChannelNone, "", nil
	}
}
