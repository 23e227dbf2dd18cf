package recognize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/campuscerts/cert-tracker/constants"
)

var (
	reJSONFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	reStudentID = regexp.MustCompile(`^\d{13}$`)
)

// field-by-field fallback patterns for replies that are not valid JSON
var regexFallback = map[string]*regexp.Regexp{
	constants.FieldDepartment:      regexp.MustCompile(`学院[：:]\s*([^\n,，]+)`),
	constants.FieldCompetitionName: regexp.MustCompile(`竞赛[项目]*[名称]*[：:]\s*([^\n,，]+)`),
	constants.FieldStudentID:       regexp.MustCompile(`学号[：:]\s*(\d{13})`),
	constants.FieldStudentName:     regexp.MustCompile(`[学生]*姓名[：:]\s*([^\n,，]+)`),
	constants.FieldAwardCategory:   regexp.MustCompile(`[获奖]*类别[：:]\s*(国家级|省级)`),
	constants.FieldAwardLevel:      regexp.MustCompile(`[获奖]*等级[：:]\s*([一二三]等奖|[金银铜]奖|优秀奖)`),
	constants.FieldCompetitionType: regexp.MustCompile(`[竞赛]*类型[：:]\s*([AB]类)`),
	constants.FieldOrganizer:       regexp.MustCompile(`主办[单位]*[：:]\s*([^\n,，]+)`),
	constants.FieldAwardDate:       regexp.MustCompile(`[获奖]*时间[：:]\s*(\d{4}[年\-/.]\d{1,2}[月\-/.]\d{1,2}日?)`),
	constants.FieldAdvisor:         regexp.MustCompile(`指导教师[：:]\s*([^\n,，]+)`),
}

// DecodeResponse turns the model's reply into a Result. It never fails on
// malformed content: undecodable JSON degrades to regex extraction, and a
// reply yielding nothing at all is a partial result whose notes carry the raw
// text for diagnosis.
func DecodeResponse(content string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	jsonPart := content
	if m := reJSONFence.FindStringSubmatch(content); m != nil {
		jsonPart = m[1]
	}

	var m map[string]any
	var notes []string
	if err := json.Unmarshal([]byte(jsonPart), &m); err != nil {
		logger.Warn("recognize.decode.json_failed", "error", err, "content_bytes", len(content))
		notes = append(notes, fmt.Sprintf("json decode failed: %v", err))
		m = regexExtract(content)
	}

	fields, dropped := sanitizeFields(m)
	notes = append(notes, dropped...)

	status := StatusOK
	if missing := fields.Missing(); len(missing) > 0 {
		status = StatusPartial
		logger.Debug("recognize.decode.partial", "missing", missing)
	}

	return Result{
		Status: status,
		Fields: fields,
		Notes:  strings.Join(notes, "; "),
	}
}

// regexExtract pulls individual fields out of free-form text.
func regexExtract(text string) map[string]any {
	m := make(map[string]any, len(regexFallback))
	for field, re := range regexFallback {
		if match := re.FindStringSubmatch(text); match != nil {
			m[field] = strings.TrimSpace(match[1])
		}
	}
	return m
}

// sanitizeFields maps the decoded object onto CertificateFields, dropping
// values that cannot possibly be right. Each drop is reported so the caller
// can attach it as a diagnostic note.
func sanitizeFields(m map[string]any) (CertificateFields, []string) {
	var dropped []string

	get := func(key string) string {
		v, ok := m[key]
		if !ok || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			dropped = append(dropped, key+"(type)")
			return ""
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "null") {
			return ""
		}
		return s
	}

	var f CertificateFields
	f.Department = get(constants.FieldDepartment)
	f.CompetitionName = get(constants.FieldCompetitionName)
	f.StudentName = get(constants.FieldStudentName)
	f.Organizer = get(constants.FieldOrganizer)
	f.AwardDate = get(constants.FieldAwardDate)
	f.Advisor = get(constants.FieldAdvisor)

	// student_id must be 13 digits regardless of model confidence
	if sid := get(constants.FieldStudentID); sid != "" {
		if reStudentID.MatchString(sid) {
			f.StudentID = sid
		} else {
			dropped = append(dropped, constants.FieldStudentID+"(format)")
		}
	}

	// vocabulary fields are canonicalized; unknown labels are dropped, not guessed
	if cat := get(constants.FieldAwardCategory); cat != "" {
		if canon, ok := constants.CanonicalizeAwardCategory(cat); ok {
			f.AwardCategory = string(canon)
		} else {
			dropped = append(dropped, constants.FieldAwardCategory+"(unknown:"+cat+")")
		}
	}
	if lvl := get(constants.FieldAwardLevel); lvl != "" {
		if canon, ok := constants.CanonicalizeAwardLevel(lvl); ok {
			f.AwardLevel = string(canon)
		} else {
			dropped = append(dropped, constants.FieldAwardLevel+"(unknown:"+lvl+")")
		}
	}
	if ct := get(constants.FieldCompetitionType); ct != "" {
		switch ct {
		case "A类", "B类":
			f.CompetitionType = ct
		case "A", "B":
			f.CompetitionType = ct + "类"
		default:
			dropped = append(dropped, constants.FieldCompetitionType+"(unknown:"+ct+")")
		}
	}

	return f, dropped
}
