package i18n

// messages.go holds the message tables used by fields and sheets.
//
// Placeholders use the {name} form and are filled from Params. Every key
// must exist in English; other languages fall back to English per key.

// message is a translation string plus an optional translator comment.
type message struct {
	text    string
	comment string
}

var messages = map[Language]map[string]message{
	EN: {
		"field.wrong_type": {
			text: "Field {field} should be of type {target_type}, but it’s of type {actual_type}",
		},
		"field.is_required": {
			text: "Field {field} is required",
		},
		"field.timecode_parse_error": {
			text:    "Field {field} has an invalid format: {timecode}",
			comment: "timecode is the raw cell text, e.g. 00:13:06,9",
		},
		"field.invalid_choice": {
			text: "Field {field} must be one of {choices}, but it’s {value}",
		},
		"field.related_does_not_exist": {
			text: "Related object identified by {value} on field {field} does not exist",
		},
		"field.related_multiple_objects_returned": {
			text: "More than one related object identified by {value} on field {field}",
		},
		"sheet.row_info": {
			text:    "Sheet {sheet}, row {row}: {message}",
			comment: "row is the 1-based line in the spreadsheet, header rows included",
		},
		"sheet.skipped_row": {
			text: "Skipped row",
		},
		"sheet.column_missing": {
			text: "Column {column} not present in sheet",
		},
		"sheet.sheet_missing": {
			text: "Sheet {sheet} not present in document",
		},
		"sheet.unique_violation": {
			text: "“{column}” must contain unique values only, but “{value}” occurs {count} times",
		},
	},
	DE: {
		"field.wrong_type": {
			text: "Das Feld {field} sollte den Typ {target_type} haben, aber der Typ ist {actual_type}",
		},
		"field.is_required": {
			text: "Das Feld {field} muss ausgefüllt sein",
		},
		"field.timecode_parse_error": {
			text: "Das Feld {field} hat ein ungültiges Format: {timecode}",
		},
		"field.invalid_choice": {
			text: "Das Feld {field} muss einen der Werte {choices} enthalten, enthält aber {value}",
		},
		"field.related_does_not_exist": {
			text: "Ein Objekt mit {value} beim Feld {field} existiert nicht",
		},
		"field.related_multiple_objects_returned": {
			text: "Mehr als ein Objekt mit {value} beim Feld {field} gefunden",
		},
		"sheet.row_info": {
			text: "Blatt {sheet}, Zeile {row}: {message}",
		},
		"sheet.skipped_row": {
			text: "Zeile übersprungen",
		},
		"sheet.column_missing": {
			text: "Die Spalte {column} fehlt im Blatt",
		},
		"sheet.sheet_missing": {
			text: "Das Blatt {sheet} ist nicht vorhanden",
		},
		"sheet.unique_violation": {
			text: "„{column}“ darf nur eindeutige Werte enthalten, aber „{value}“ kommt {count} Mal vor",
		},
	},
}
