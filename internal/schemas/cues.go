package schemas

import (
	"github.com/JonMunkholm/sheetload/internal/field"
	"github.com/JonMunkholm/sheetload/internal/sheet"
)

func init() {
	sheet.Register(Cues)
}

// CueKinds are the allowed values of the Type column.
var CueKinds = []string{"Music", "Effect", "Dialogue"}

// Cues reads a cue sheet: one cue per row with its start and end timecode.
var Cues = sheet.Schema{
	Key:        "cues",
	Label:      "Cue sheet",
	SheetName:  "Cues",
	HeaderRows: 2,
	Fields: []sheet.NamedField{
		{Name: "cue_id", Field: field.Field{Source: "Cue ID", Kind: field.UUID, Optional: true}},
		{Name: "title", Field: field.Field{Source: "Title", Kind: field.Text}},
		{Name: "type", Field: field.Field{Source: "Type", Kind: field.Enum(CueKinds...)}},
		{Name: "start", Field: field.Field{Source: "Start", Kind: field.Timecode}},
		{Name: "end", Field: field.Field{Source: "End", Kind: field.Timecode}},
		{Name: "recorded", Field: field.Field{Source: "Recorded", Kind: field.DateTime, Optional: true}},
		{Name: "notes", Field: field.Field{Source: "Notes", Optional: true, SkipTypeCheck: true}},
	},
}
