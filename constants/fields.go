package constants

import (
	"strings"
)

// Certificate field names as they appear on the wire and in the extraction
// schema. These are part of the compatibility contract for export tooling.
const (
	FieldStudentID       = "student_id"
	FieldStudentName     = "student_name"
	FieldDepartment      = "department"
	FieldCompetitionName = "competition_name"
	FieldAwardCategory   = "award_category"
	FieldAwardLevel      = "award_level"
	FieldCompetitionType = "competition_type"
	FieldOrganizer       = "organizer"
	FieldAwardDate       = "award_date"
	FieldAdvisor         = "advisor"
)

// ExtractionFields lists every field the recognition service is asked for,
// in prompt order.
var ExtractionFields = []string{
	FieldDepartment,
	FieldCompetitionName,
	FieldStudentID,
	FieldStudentName,
	FieldAwardCategory,
	FieldAwardLevel,
	FieldCompetitionType,
	FieldOrganizer,
	FieldAwardDate,
	FieldAdvisor,
}

// AwardCategory is the closed set of award scopes.
type AwardCategory string

const (
	CategoryNational   AwardCategory = "国家级"
	CategoryProvincial AwardCategory = "省级"
)

var allAwardCategories = []AwardCategory{CategoryNational, CategoryProvincial}

// AwardLevel is the closed set of award grades.
type AwardLevel string

const (
	LevelFirst      AwardLevel = "一等奖"
	LevelSecond     AwardLevel = "二等奖"
	LevelThird      AwardLevel = "三等奖"
	LevelGold       AwardLevel = "金奖"
	LevelSilver     AwardLevel = "银奖"
	LevelBronze     AwardLevel = "铜奖"
	LevelHonourable AwardLevel = "优秀奖"
)

var allAwardLevels = []AwardLevel{
	LevelFirst, LevelSecond, LevelThird,
	LevelGold, LevelSilver, LevelBronze,
	LevelHonourable,
}

// CompetitionTypes holds the recognized competition classes.
var CompetitionTypes = []string{"A类", "B类"}

// AwardCategoriesAsStrings returns the category vocabulary for schema building.
func AwardCategoriesAsStrings() []string {
	result := make([]string, len(allAwardCategories))
	for i, c := range allAwardCategories {
		result[i] = string(c)
	}
	return result
}

// AwardLevelsAsStrings returns the level vocabulary for schema building.
func AwardLevelsAsStrings() []string {
	result := make([]string, len(allAwardLevels))
	for i, l := range allAwardLevels {
		result[i] = string(l)
	}
	return result
}

// CanonicalizeAwardLevel maps free-form extraction output onto the level
// vocabulary. Returns ("", false) when the input matches nothing.
func CanonicalizeAwardLevel(input string) (AwardLevel, bool) {
	normalized := strings.TrimSpace(input)
	if normalized == "" {
		return "", false
	}

	// synonyms the recognition service tends to produce
	synonyms := map[string]AwardLevel{
		"特等奖": LevelFirst,
		"第一名": LevelFirst,
		"第二名": LevelSecond,
		"第三名": LevelThird,
		"优胜奖": LevelHonourable,
		"鼓励奖": LevelHonourable,
	}
	if lvl, ok := synonyms[normalized]; ok {
		return lvl, true
	}

	for _, lvl := range allAwardLevels {
		if normalized == string(lvl) {
			return lvl, true
		}
	}
	return "", false
}

// CanonicalizeAwardCategory maps free-form extraction output onto the category
// vocabulary.
func CanonicalizeAwardCategory(input string) (AwardCategory, bool) {
	normalized := strings.TrimSpace(input)
	synonyms := map[string]AwardCategory{
		"国家":  CategoryNational,
		"全国":  CategoryNational,
		"国际级": CategoryNational,
		"省部级": CategoryProvincial,
		"省":   CategoryProvincial,
	}
	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}
	for _, cat := range allAwardCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	return "", false
}
