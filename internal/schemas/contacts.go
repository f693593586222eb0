package schemas

import (
	"github.com/JonMunkholm/sheetload/internal/field"
	"github.com/JonMunkholm/sheetload/internal/sheet"
)

func init() {
	sheet.Register(Contacts)
}

// Contacts reads an address list keyed by a unique ID.
var Contacts = sheet.Schema{
	Key:        "contacts",
	Label:      "Contacts",
	SheetName:  "Contacts",
	HeaderRows: 1,
	Fields: []sheet.NamedField{
		{Name: "id", Field: field.Field{Source: "ID", Kind: field.Text, Unique: true}},
		{Name: "name", Field: field.Field{Source: "Name", Kind: field.Text}},
		{Name: "email", Field: field.Field{Source: "Email", Kind: field.Text, Optional: true, Unique: true}},
		{Name: "state", Field: field.Field{Source: "State", Kind: USState, Optional: true}},
		{Name: "newsletter", Field: field.Field{Source: "Newsletter", Kind: field.Bool, Optional: true, Default: field.Static(false)}},
		{Name: "balance", Field: field.Field{Source: "Balance", Kind: field.Numeric, Optional: true}},
	},
}
