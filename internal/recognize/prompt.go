package recognize

import "strings"

// BuildExtractionPrompt composes the fixed instruction sent with every
// certificate image. The model is told to answer with bare JSON; the decoder
// still tolerates fenced and chatty replies.
func BuildExtractionPrompt() string {
	parts := []string{
		"请仔细分析这张竞赛证书图片，提取以下信息：",
		"",
		"1. 学生所在学院",
		"2. 竞赛项目名称",
		"3. 学号（13位数字）",
		"4. 学生姓名",
		"5. 获奖类别（国家级/省级）",
		"6. 获奖等级（一等奖/二等奖/三等奖/金奖/银奖/铜奖/优秀奖等）",
		"7. 竞赛类型（A类/B类）",
		"8. 主办单位",
		"9. 获奖时间（日期格式）",
		"10. 指导教师姓名",
		"",
		"请按照以下JSON格式返回结果，如果某个字段无法识别，请设置为null：",
		"",
		"```json",
		"{",
		`    "department": "学院名称",`,
		`    "competition_name": "竞赛项目名称",`,
		`    "student_id": "13位学号",`,
		`    "student_name": "学生姓名",`,
		`    "award_category": "国家级或省级",`,
		`    "award_level": "获奖等级",`,
		`    "competition_type": "A类或B类",`,
		`    "organizer": "主办单位",`,
		`    "award_date": "获奖时间",`,
		`    "advisor": "指导教师"`,
		"}",
		"```",
		"",
		"请直接返回JSON，不要添加其他说明文字。",
	}
	return strings.Join(parts, "\n")
}
