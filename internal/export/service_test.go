package export

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/repository"
)

func exportEnv(t *testing.T) (*Service, repository.CertificateRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.Migrate(context.Background(), db, slog.Default()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepository(db, slog.Default())
	if err := users.CreateUser(context.Background(), &entity.User{
		AccountID: "2024010101001", Name: "李明", Role: constants.RoleStudent,
		Department: "计算机学院", Email: "liming@example.edu", IsActive: true,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	certs := repository.NewCertificateRepository(db, slog.Default())
	return NewService(certs, users, slog.Default()), certs
}

func TestExportCertificatesXLSX(t *testing.T) {
	svc, certs := exportEnv(t)
	ctx := context.Background()

	at := time.Date(2026, 6, 1, 10, 30, 0, 0, time.Local)
	submitted := &entity.Certificate{
		ID:                 uuid.New(),
		SubmitterAccountID: "2024010101001",
		SubmitterRole:      constants.RoleStudent,
		StudentID:          "2024010101001",
		StudentName:        "李明",
		Department:         "计算机学院",
		CompetitionName:    "全国大学生数学竞赛",
		AwardCategory:      "国家级",
		AwardLevel:         "一等奖",
		CompetitionType:    "A类",
		Organizer:          "中国数学会",
		AwardDate:          "2024-05-18",
		Advisor:            "王芳",
		FilePath:           "uploads/x.png",
		FileID:             uuid.New(),
		Status:             constants.StatusSubmitted,
		SubmittedAt:        &at,
	}
	draft := &entity.Certificate{
		ID:                 uuid.New(),
		SubmitterAccountID: "2024010101001",
		SubmitterRole:      constants.RoleStudent,
		FilePath:           "uploads/y.png",
		FileID:             uuid.New(),
		Status:             constants.StatusDraft,
	}
	for _, c := range []*entity.Certificate{submitted, draft} {
		if err := certs.CreateCertificate(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	data, rows, err := svc.ExportCertificatesXLSX(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1 (drafts excluded)", rows)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows("Certificates")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("sheet rows = %d, want header + 1", len(got))
	}
	if got[0][0] != "证书ID" || got[0][1] != "提交者学（工）号" {
		t.Errorf("headers = %v", got[0][:2])
	}

	row := got[1]
	wantCells := map[int]string{
		1:  "2024010101001",
		2:  "李明",
		3:  "学生",
		5:  "李明",
		7:  "全国大学生数学竞赛",
		8:  "国家级",
		9:  "一等奖",
		13: "王芳",
		14: "2026-06-01 10:30:00",
	}
	for col, want := range wantCells {
		if row[col] != want {
			t.Errorf("column %d = %q, want %q", col, row[col], want)
		}
	}
}

func TestWorkbookFilename(t *testing.T) {
	at := time.Date(2026, 6, 1, 10, 30, 5, 0, time.Local)
	if got := WorkbookFilename(at); got != "证书数据导出_20260601_103005.xlsx" {
		t.Errorf("filename = %q", got)
	}
}
