package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shelter-caller/internal/model"
	"shelter-caller/internal/repository"
	"shelter-caller/pkg/businessday"
	pkgerrors "shelter-caller/pkg/errors"
)

func textOrigin() Origin {
	return Origin{From: "+19075550100", ContactType: model.ContactIncomingText, Input: "12"}
}

// ── Upsert ──

func TestLedgerUpsert_AfterCutoffGoesToNextDay(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)
	sh := env.addShelter("Bean's Cafe", "1213", "+19075550100", 40)

	res, err := svc.Ledger.Upsert(context.Background(), CountWrite{
		ShelterID:   sh.ID,
		PersonCount: "12",
		Origin:      textOrigin(),
	})
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if res.Day != "2019-05-22" {
		t.Errorf("23:00 上报期望归入 2019-05-22，实际=%s", res.Day)
	}
	if *res.PersonCount != 12 || *res.BedCount != 28 {
		t.Errorf("期望 person=12 bed=28，实际 person=%d bed=%d", *res.PersonCount, *res.BedCount)
	}

	stored, err := env.counts.Get(context.Background(), sh.ID, businessday.Date{Year: 2019, Month: time.May, Day: 22})
	if err != nil {
		t.Fatalf("期望已写入人数行: %v", err)
	}
	if *stored.BedCount != 28 {
		t.Errorf("期望空床 28，实际=%d", *stored.BedCount)
	}

	logs := env.logs.all()
	if len(logs) != 1 {
		t.Fatalf("期望 1 条审计日志，实际=%d", len(logs))
	}
	if logs[0].Action != model.ActionSaveCount || logs[0].Error != nil {
		t.Errorf("审计日志不正确: %+v", logs[0])
	}
	if logs[0].ShelterID == nil || *logs[0].ShelterID != sh.ID {
		t.Error("审计日志应关联收容所")
	}
}

func TestLedgerUpsert_BeforeCutoffStaysSameDay(t *testing.T) {
	env := newTestEnv(anchorageAt(21, 59))
	svc := env.service(nil)
	sh := env.addShelter("Brother Francis", "2001", "", 100)

	res, err := svc.Ledger.Upsert(context.Background(), CountWrite{ShelterID: sh.ID, PersonCount: "5", Origin: textOrigin()})
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if res.Day != "2019-05-21" {
		t.Errorf("期望 2019-05-21，实际=%s", res.Day)
	}
}

func TestLedgerUpsert_LatestWins(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)
	sh := env.addShelter("Bean's Cafe", "1213", "", 40)
	ctx := context.Background()

	for _, n := range []string{"10", "15"} {
		if _, err := svc.Ledger.Upsert(ctx, CountWrite{ShelterID: sh.ID, PersonCount: n, Origin: textOrigin()}); err != nil {
			t.Fatalf("Upsert(%s) 失败: %v", n, err)
		}
	}

	counts, _ := env.counts.ListByDay(ctx, businessday.Date{Year: 2019, Month: time.May, Day: 22})
	if len(counts) != 1 {
		t.Fatalf("同一业务日期望 1 行，实际=%d", len(counts))
	}
	if *counts[0].PersonCount != 15 || *counts[0].BedCount != 25 {
		t.Errorf("期望以最后一次为准 person=15 bed=25，实际 person=%d bed=%d", *counts[0].PersonCount, *counts[0].BedCount)
	}
	if n := len(env.logs.all()); n != 2 {
		t.Errorf("每次尝试一条日志，期望 2，实际=%d", n)
	}
}

func TestLedgerUpsert_OverCapacityYieldsNegativeBeds(t *testing.T) {
	env := newTestEnv(anchorageAt(21, 0))
	svc := env.service(nil)
	sh := env.addShelter("Small", "3001", "", 10)

	res, err := svc.Ledger.Upsert(context.Background(), CountWrite{ShelterID: sh.ID, PersonCount: "12", Origin: textOrigin()})
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if *res.BedCount != -2 {
		t.Errorf("超员期望空床 -2，实际=%d", *res.BedCount)
	}
}

func TestLedgerUpsert_ExplicitDay(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)
	sh := env.addShelter("Bean's Cafe", "1213", "", 40)
	day := businessday.Date{Year: 2019, Month: time.May, Day: 1}

	res, err := svc.Ledger.Upsert(context.Background(), CountWrite{ShelterID: sh.ID, Day: day, PersonCount: "3", Origin: textOrigin()})
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if res.Day != "2019-05-01" {
		t.Errorf("期望使用指定日期 2019-05-01，实际=%s", res.Day)
	}
}

func TestLedgerUpsert_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		shelterID uint
		raw       string
		wantErr   error
		wantAudit string
	}{
		{"非数字", 1, "twelve", ErrBadCount, auditBadInput},
		{"负数", 1, "-3", ErrBadCount, auditBadInput},
		{"空", 1, "  ", ErrBadCount, auditBadInput},
		{"缺少收容所", 0, "12", ErrMissingShelter, auditMissingShelter},
		{"收容所不存在", 99, "12", ErrUnknownShelter, auditUnknownShelter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(anchorageAt(23, 0))
			svc := env.service(nil)
			env.addShelter("Bean's Cafe", "1213", "", 40)

			_, err := svc.Ledger.Upsert(context.Background(), CountWrite{ShelterID: tt.shelterID, PersonCount: tt.raw, Origin: textOrigin()})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望 %v，实际=%v", tt.wantErr, err)
			}
			if !errors.Is(err, pkgerrors.ErrValidation) {
				t.Error("校验失败应归类为 ErrValidation")
			}
			if len(env.counts.counts) != 0 {
				t.Error("校验失败不应写入人数")
			}

			logs := env.logs.all()
			if len(logs) != 1 {
				t.Fatalf("期望 1 条审计日志，实际=%d", len(logs))
			}
			if logs[0].Error == nil || !strings.Contains(*logs[0].Error, tt.wantAudit) {
				t.Errorf("期望审计错误包含 %q，实际=%v", tt.wantAudit, logs[0].Error)
			}
			if tt.wantErr == ErrUnknownShelter && logs[0].ShelterID != nil {
				t.Error("收容所不存在时审计行不应引用其 ID")
			}
		})
	}
}

func TestLedgerUpsert_ForeignKeyConflict(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)
	sh := env.addShelter("Bean's Cafe", "1213", "", 40)
	env.counts.upsertErr = errors.Join(repository.ErrForeignKey, errors.New("FOREIGN KEY constraint failed"))

	_, err := svc.Ledger.Upsert(context.Background(), CountWrite{ShelterID: sh.ID, PersonCount: "12", Origin: textOrigin()})
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("期望 ErrConflict，实际=%v", err)
	}

	logs := env.logs.all()
	if len(logs) != 1 {
		t.Fatalf("期望 1 条审计日志，实际=%d", len(logs))
	}
	if logs[0].ShelterID != nil {
		t.Error("冲突时审计行不应引用已删除的收容所")
	}
}

func TestLedgerUpsert_AuditFailureDoesNotBlockRejection(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)
	env.logs.createErr = errors.New("disk full")

	_, err := svc.Ledger.Upsert(context.Background(), CountWrite{ShelterID: 0, PersonCount: "1", Origin: textOrigin()})
	if !errors.Is(err, ErrMissingShelter) {
		t.Errorf("审计写入失败不应改变返回的错误，实际=%v", err)
	}
}

// ── Delete ──

func TestLedgerDelete(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)
	sh := env.addShelter("Bean's Cafe", "1213", "", 40)
	ctx := context.Background()
	day := businessday.Date{Year: 2019, Month: time.May, Day: 20}
	admin := Origin{From: model.FromWeb, ContactType: model.ContactAdmin}

	if _, err := svc.Ledger.Upsert(ctx, CountWrite{ShelterID: sh.ID, Day: day, PersonCount: "4", Origin: admin}); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if err := svc.Ledger.Delete(ctx, sh.ID, day, admin); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := env.counts.Get(ctx, sh.ID, day); err == nil {
		t.Error("删除后人数行应不存在")
	}

	// 再删一次不报错
	if err := svc.Ledger.Delete(ctx, sh.ID, day, admin); err != nil {
		t.Errorf("重复删除应成功: %v", err)
	}

	logs := env.logs.all()
	if len(logs) != 3 {
		t.Fatalf("期望 3 条审计日志，实际=%d", len(logs))
	}
	last := logs[2]
	if last.Action != model.ActionDeleteCount || last.InputText != "-" || last.ContactType != model.ContactAdmin {
		t.Errorf("删除审计不正确: %+v", last)
	}
}

func TestLedgerDelete_UnknownShelter(t *testing.T) {
	env := newTestEnv(anchorageAt(23, 0))
	svc := env.service(nil)

	err := svc.Ledger.Delete(context.Background(), 42, businessday.Date{Year: 2019, Month: time.May, Day: 20}, Origin{})
	if !errors.Is(err, ErrUnknownShelter) {
		t.Errorf("期望 ErrUnknownShelter，实际=%v", err)
	}
}
