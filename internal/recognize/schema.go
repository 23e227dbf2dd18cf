package recognize

import "github.com/campuscerts/cert-tracker/constants"

// BuildCertificateJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Nothing is required: absent fields degrade to a partial result,
// they do not fail validation. The schema still pins formats so garbage cannot
// masquerade as a field value.
func BuildCertificateJSONSchema() map[string]any {
	props := map[string]any{
		constants.FieldDepartment:      map[string]any{"type": "string"},
		constants.FieldCompetitionName: map[string]any{"type": "string"},
		constants.FieldStudentID:       map[string]any{"type": "string", "pattern": `^\d{13}$`},
		constants.FieldStudentName:     map[string]any{"type": "string", "minLength": 1},
		constants.FieldAwardCategory: map[string]any{
			"type": "string",
			"enum": constants.AwardCategoriesAsStrings(),
		},
		constants.FieldAwardLevel: map[string]any{
			"type": "string",
			"enum": constants.AwardLevelsAsStrings(),
		},
		constants.FieldCompetitionType: map[string]any{
			"type": "string",
			"enum": constants.CompetitionTypes,
		},
		constants.FieldOrganizer: map[string]any{"type": "string"},
		constants.FieldAwardDate: map[string]any{"type": "string", "minLength": 4},
		constants.FieldAdvisor:   map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
