package schemas

import (
	"github.com/JonMunkholm/sheetload/internal/field"
	"github.com/JonMunkholm/sheetload/internal/sheet"
)

func init() {
	sheet.Register(Albums)
}

// Albums reads release lists: a title row, a notes row and the column
// labels, followed by one album per row.
var Albums = sheet.Schema{
	Key:        "albums",
	Label:      "Album releases",
	SheetName:  "Albums",
	HeaderRows: 3,
	LabelRow:   sheet.LabelAt(2),
	Fields: []sheet.NamedField{
		{Name: "artist", Field: field.Field{Source: "Artist", Kind: field.Text}},
		{Name: "album", Field: field.Field{Source: "Album", Kind: field.Text}},
		{Name: "release_date", Field: field.Field{Source: "Release Date", Kind: field.Date}},
		{Name: "average_review", Field: field.Field{Source: "Average Review", Kind: field.Float, Optional: true}},
		{Name: "chart_position", Field: field.Field{Source: "Chart Position", Kind: field.Integer, Optional: true}},
	},
}
