package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/recognize"
)

func studentIdentity() entity.Identity {
	return entity.Identity{
		AccountID:   "2024010101001",
		DisplayName: "李明",
		Role:        constants.RoleStudent,
		Department:  "计算机学院",
	}
}

func teacherIdentity() entity.Identity {
	return entity.Identity{
		AccountID:   "20240001",
		DisplayName: "王芳",
		Role:        constants.RoleTeacher,
		Department:  "数学学院",
	}
}

func TestReconcileStudentIdentityOverridesExtraction(t *testing.T) {
	r := New(nil)

	// the certificate names a different student than the logged-in account
	res := recognize.Result{
		Status: recognize.StatusOK,
		Fields: recognize.CertificateFields{
			StudentID:       "9999999999999",
			StudentName:     "别人",
			Department:      "外语学院",
			CompetitionName: "全国大学生数学竞赛",
			AwardLevel:      "一等奖",
		},
	}

	cert, err := r.Reconcile(res, studentIdentity(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cert.StudentID != "2024010101001" {
		t.Errorf("student_id = %q, want account id", cert.StudentID)
	}
	if cert.StudentName != "李明" {
		t.Errorf("student_name = %q, want account name", cert.StudentName)
	}
	if cert.Department != "计算机学院" {
		t.Errorf("department = %q, want account department", cert.Department)
	}
	if cert.CompetitionName != "全国大学生数学竞赛" {
		t.Errorf("competition_name = %q, extraction value should survive", cert.CompetitionName)
	}
	if cert.Advisor != "" {
		t.Errorf("advisor = %q, student identity must not supply advisor", cert.Advisor)
	}
	if cert.Status != constants.StatusDraft {
		t.Errorf("status = %q, want draft", cert.Status)
	}
}

func TestReconcileTeacherIdentitySuppliesAdvisor(t *testing.T) {
	r := New(nil)

	res := recognize.Result{
		Status: recognize.StatusPartial,
		Fields: recognize.CertificateFields{
			StudentID:   "2023120101001",
			StudentName: "赵一",
			Advisor:     "某老师",
		},
	}

	cert, err := r.Reconcile(res, teacherIdentity(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cert.Advisor != "王芳" {
		t.Errorf("advisor = %q, want teacher account name", cert.Advisor)
	}
	// teacher submissions keep the extracted student fields
	if cert.StudentID != "2023120101001" || cert.StudentName != "赵一" {
		t.Errorf("student fields = (%q, %q), extraction values should survive", cert.StudentID, cert.StudentName)
	}
}

func TestReconcileRerunNeverClobbersPriorValues(t *testing.T) {
	r := New(nil)

	prior := &entity.Certificate{
		SubmitterAccountID: "20240001",
		SubmitterRole:      constants.RoleTeacher,
		Status:             constants.StatusDraft,
		CompetitionName:    "手工修正过的竞赛名",
		StudentName:        "赵一",
	}
	res := recognize.Result{
		Status: recognize.StatusOK,
		Fields: recognize.CertificateFields{
			CompetitionName: "识别出来的竞赛名",
			Organizer:       "教育部",
		},
	}

	cert, err := r.Reconcile(res, teacherIdentity(), prior)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cert.CompetitionName != "手工修正过的竞赛名" {
		t.Errorf("competition_name = %q, prior value must win over extraction", cert.CompetitionName)
	}
	if cert.Organizer != "教育部" {
		t.Errorf("organizer = %q, empty prior field should be filled", cert.Organizer)
	}
	// the prior record must not be mutated
	if prior.Organizer != "" {
		t.Errorf("prior record mutated: organizer = %q", prior.Organizer)
	}
}

func TestReconcileNormalizesAwardDate(t *testing.T) {
	r := New(nil)
	res := recognize.Result{
		Fields: recognize.CertificateFields{AwardDate: "2024年05月18日"},
	}
	cert, err := r.Reconcile(res, studentIdentity(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cert.AwardDate != "2024-05-18" {
		t.Errorf("award_date = %q, want 2024-05-18", cert.AwardDate)
	}
}

func TestReconcileRejectsAdminRole(t *testing.T) {
	r := New(nil)
	admin := entity.Identity{AccountID: "admin", DisplayName: "管理员", Role: constants.RoleAdmin}
	if _, err := r.Reconcile(recognize.Result{}, admin, nil); !errors.Is(err, ErrRoleCannotSubmit) {
		t.Fatalf("error = %v, want ErrRoleCannotSubmit", err)
	}
}

func TestApplyEditsAuthority(t *testing.T) {
	r := New(nil)

	cert := &entity.Certificate{
		SubmitterAccountID: "2024010101001",
		SubmitterRole:      constants.RoleStudent,
		Status:             constants.StatusDraft,
		StudentID:          "2024010101001",
	}

	// identity-owned field rejected for the owning role
	err := r.ApplyEdits(cert, map[string]string{constants.FieldStudentID: "1111111111111"})
	var authErr FieldAuthorityError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want FieldAuthorityError", err)
	}
	if authErr.Field != constants.FieldStudentID {
		t.Errorf("authority error field = %q", authErr.Field)
	}

	// unknown field rejected
	if err := r.ApplyEdits(cert, map[string]string{"status": "submitted"}); err == nil {
		t.Fatal("expected unknown-field rejection")
	}

	// legitimate edits applied verbatim
	changes := map[string]string{
		constants.FieldCompetitionName: "蓝桥杯",
		constants.FieldAwardLevel:      "二等奖",
	}
	if err := r.ApplyEdits(cert, changes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cert.CompetitionName != "蓝桥杯" || cert.AwardLevel != "二等奖" {
		t.Errorf("edits not applied: %q %q", cert.CompetitionName, cert.AwardLevel)
	}
}

func TestApplyEditsTeacherMayFixStudentFields(t *testing.T) {
	r := New(nil)
	cert := &entity.Certificate{
		SubmitterAccountID: "20240001",
		SubmitterRole:      constants.RoleTeacher,
		Status:             constants.StatusDraft,
	}

	// teachers own only the advisor field; student fields are editable
	if err := r.ApplyEdits(cert, map[string]string{constants.FieldStudentID: "2024010101001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.ApplyEdits(cert, map[string]string{constants.FieldAdvisor: "别的老师"}); err == nil {
		t.Fatal("expected advisor edit rejection for teacher")
	}
}

func TestRequiredMissing(t *testing.T) {
	tests := []struct {
		name string
		cert entity.Certificate
		want []string
	}{
		{
			name: "all present",
			cert: entity.Certificate{StudentID: "2024010101001", StudentName: "李明", Advisor: "王芳"},
			want: nil,
		},
		{
			name: "advisor missing",
			cert: entity.Certificate{StudentID: "2024010101001", StudentName: "李明"},
			want: []string{constants.FieldAdvisor},
		},
		{
			name: "all missing",
			cert: entity.Certificate{},
			want: []string{constants.FieldStudentID, constants.FieldStudentName, constants.FieldAdvisor},
		},
		{
			name: "student id malformed",
			cert: entity.Certificate{StudentID: "12345", StudentName: "李明", Advisor: "王芳"},
			want: []string{constants.FieldStudentID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredMissing(&tt.cert)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RequiredMissing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
