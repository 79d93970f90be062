package dataset

import "aitools.app/recommender/internal/model"

// Field is a canonical ToolRecord column.
type Field string

const (
	FieldName            Field = "name"
	FieldDifficultyLevel Field = "difficulty_level"
	FieldSubcategory     Field = "subcategory"
	FieldDescription     Field = "description"
	FieldLink            Field = "link"
	FieldTutorial        Field = "tutorial"
)

// Fields lists the canonical columns in output order.
var Fields = []Field{
	FieldName,
	FieldDifficultyLevel,
	FieldSubcategory,
	FieldDescription,
	FieldLink,
	FieldTutorial,
}

// aliases maps each canonical field to the source column names it accepts.
// Order is priority order; matching is exact and case-sensitive.
var aliases = map[Field][]string{
	FieldName: {
		"name", "Name", "NAME",
		"tool name", "Tool Name", "Tool name",
		"nombre", "Nombre", "NOMBRE", "Nombre de la herramienta",
	},
	FieldDifficultyLevel: {
		"difficulty_level", "difficulty level", "Difficulty Level",
		"difficulty", "Difficulty",
		"nivel de dificultad", "Nivel de dificultad",
		"nivel", "Nivel", "NIVEL",
	},
	FieldSubcategory: {
		"subcategory", "Subcategory", "SUBCATEGORY",
		"subcategoria", "Subcategoria", "SUBCATEGORIA",
		"subcategoría", "Subcategoría", "Subcategorías",
	},
	FieldDescription: {
		"description", "Description", "DESCRIPTION",
		"descripción", "descripcion", "Descripcion", "Descripción", "DESCRIPCION",
	},
	FieldLink: {
		"link", "Link", "LINK",
		"url", "URL",
		"enlace", "Enlace", "ENLACE",
	},
	FieldTutorial: {
		"tutorial", "Tutorial", "TUTORIAL",
		"tutorial link", "Tutorial Link",
		"video tutorial", "Video tutorial",
	},
}

// RawRecord is one source row keyed by its original column names.
type RawRecord map[string]string

// Aliases returns a copy of the accepted source names for f.
func Aliases(f Field) []string {
	return append([]string(nil), aliases[f]...)
}

// Resolve returns the value of the first alias of f that is present and
// non-empty in raw, or "" when none is.
func Resolve(raw RawRecord, f Field) string {
	for _, key := range aliases[f] {
		if v := raw[key]; v != "" {
			return v
		}
	}
	return ""
}

// Normalize maps a raw source row to the canonical record shape.
func Normalize(raw RawRecord) model.ToolRecord {
	return model.ToolRecord{
		Name:            Resolve(raw, FieldName),
		DifficultyLevel: Resolve(raw, FieldDifficultyLevel),
		Subcategory:     Resolve(raw, FieldSubcategory),
		Description:     Resolve(raw, FieldDescription),
		Link:            Resolve(raw, FieldLink),
		Tutorial:        Resolve(raw, FieldTutorial),
	}
}

// zipRecord pairs a header row with a data row. Missing cells are left out,
// extra cells are dropped, and a repeated header keeps its last value.
func zipRecord(header, row []string) RawRecord {
	rec := make(RawRecord, len(header))
	for i, key := range header {
		if i >= len(row) {
			break
		}
		rec[key] = row[i]
	}
	return rec
}
