package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	attendanceService "educenter_backend/internals/features/attendance/service"
	model "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrNoGroup         = errors.New("student has no group")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)

/* =========================================================
   ROW MATH
========================================================= */

// ApplyCharge menghitung ulang satu baris tagihan secara in-place dan
// mengembalikan balance siswa yang baru.
//
//	total_due      = charge + carried
//	cash           = amount - overpaid (kelebihan dipindah ke balance)
//	available      = balance + credit_applied lama
//	credit_applied = min(available, total_due - cash)
//	debt           = total_due - cash - credit_applied
func ApplyCharge(row *model.PaymentModel, charge, carried, balance float64) float64 {
	row.PaymentTotalDue = helper.Round2(charge + carried)

	cash := row.PaymentAmount - row.PaymentOverpaid
	if cash > row.PaymentTotalDue {
		extra := cash - row.PaymentTotalDue
		row.PaymentOverpaid = helper.Round2(row.PaymentOverpaid + extra)
		balance += extra
		cash = row.PaymentTotalDue
	}

	available := balance + row.PaymentCreditApplied
	credit := math.Max(0, math.Min(available, row.PaymentTotalDue-cash))
	row.PaymentCreditApplied = helper.Round2(credit)

	settle(row)
	return helper.Round2(math.Max(0, available-credit))
}

// settle: debt & status dari total_due, cash, dan credit yang sudah final.
func settle(row *model.PaymentModel) {
	debt := row.PaymentTotalDue - row.CashApplied() - row.PaymentCreditApplied
	row.PaymentDebtAmount = helper.Round2(math.Max(0, debt))

	switch {
	case row.PaymentDebtAmount <= 0:
		row.PaymentStatus = constants.PaymentPaid
	case row.PaymentDebtAmount < row.PaymentTotalDue:
		row.PaymentStatus = constants.PaymentPartial
	default:
		row.PaymentStatus = constants.PaymentUnpaid
	}
}

// ApplyCash membukukan pembayaran tunai X ke baris yang sudah direkonsiliasi.
// Mengembalikan excess yang harus ditambahkan ke balance siswa.
func ApplyCash(row *model.PaymentModel, x float64) float64 {
	outstanding := row.PaymentDebtAmount
	excess := math.Max(0, x-outstanding)

	row.PaymentAmount = helper.Round2(row.PaymentAmount + x)
	row.PaymentOverpaid = helper.Round2(row.PaymentOverpaid + excess)
	settle(row)
	return helper.Round2(excess)
}

// Charge: harga penuh kalau ada pertemuan yang ditagih, selain itu 0.
func Charge(price float64, counts attendanceService.Counts) float64 {
	if counts.Chargeable() == 0 {
		return 0
	}
	return helper.Round2(price)
}

/* =========================================================
   LOOKUPS
========================================================= */

func lockStudent(tx *gorm.DB, id uuid.UUID) (*userModel.UserModel, error) {
	var s userModel.UserModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ? AND role = ?", id, constants.RoleStudent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

func loadGroup(tx *gorm.DB, id uuid.UUID) (*groupModel.GroupModel, error) {
	var g groupModel.GroupModel
	if err := tx.Preload("Course").First(&g, "group_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func groupPrice(g *groupModel.GroupModel) float64 {
	if g.Course == nil {
		return 0
	}
	return g.Course.CoursePrice
}

// CarriedDebt: debt baris terakhir (student, group) sebelum month.
func CarriedDebt(tx *gorm.DB, studentID, groupID uuid.UUID, month string) (float64, error) {
	var prev []model.PaymentModel
	if err := tx.
		Where("payment_student_id = ? AND payment_group_id = ? AND payment_month < ?", studentID, groupID, month).
		Order("payment_month DESC").
		Limit(1).
		Find(&prev).Error; err != nil {
		return 0, err
	}
	if len(prev) == 0 {
		return 0, nil
	}
	return prev[0].PaymentDebtAmount, nil
}

func findOrNewRow(tx *gorm.DB, studentID, groupID uuid.UUID, month string) (*model.PaymentModel, error) {
	var rows []model.PaymentModel
	if err := tx.
		Where("payment_student_id = ? AND payment_group_id = ? AND payment_month = ?", studentID, groupID, month).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	return &model.PaymentModel{
		PaymentStudentID: studentID,
		PaymentGroupID:   groupID,
		PaymentMonth:     month,
		PaymentStatus:    constants.PaymentUnpaid,
		PaymentDueDate:   helper.DueDate(month, constants.DueDayOfMonth),
	}, nil
}

func saveRow(tx *gorm.DB, row *model.PaymentModel) error {
	if row.PaymentID == uuid.Nil {
		return tx.Create(row).Error
	}
	return tx.Save(row).Error
}

func saveBalance(tx *gorm.DB, studentID uuid.UUID, balance float64) error {
	return tx.Model(&userModel.UserModel{}).
		Where("id = ?", studentID).
		Update("balance", helper.Round2(balance)).Error
}

/* =========================================================
   RECONCILE
========================================================= */

// reconcile menjalankan rekonsiliasi penuh untuk satu (student, group, month).
// Harus dipanggil di dalam transaksi; student sudah dikunci.
func reconcile(ctx context.Context, tx *gorm.DB, s *userModel.UserModel, g *groupModel.GroupModel, month string) (*model.PaymentModel, error) {
	counts, err := attendanceService.MonthCounts(ctx, tx, s.ID, g.GroupID, month)
	if err != nil {
		return nil, err
	}
	carried, err := CarriedDebt(tx, s.ID, g.GroupID, month)
	if err != nil {
		return nil, err
	}
	row, err := findOrNewRow(tx, s.ID, g.GroupID, month)
	if err != nil {
		return nil, err
	}

	balance := ApplyCharge(row, Charge(groupPrice(g), counts), carried, s.Balance)
	if err := saveRow(tx, row); err != nil {
		return nil, err
	}
	if err := saveBalance(tx, s.ID, balance); err != nil {
		return nil, err
	}
	s.Balance = balance
	return row, nil
}

// RecomputeStudent merekonsiliasi satu baris tagihan di dalam transaksinya sendiri.
func RecomputeStudent(ctx context.Context, db *gorm.DB, studentID, groupID uuid.UUID, month string) (*model.PaymentModel, error) {
	var out *model.PaymentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockStudent(tx, studentID)
		if err != nil {
			return err
		}
		g, err := loadGroup(tx, groupID)
		if err != nil {
			return err
		}
		out, err = reconcile(ctx, tx, s, g, month)
		return err
	})
	return out, err
}

/* =========================================================
   MONTHLY RUN
========================================================= */

type GroupResult struct {
	GroupID   uuid.UUID `json:"group_id"`
	GroupName string    `json:"group_name"`
	Price     float64   `json:"price"`
	PerLesson float64   `json:"per_lesson"`
	Students  int       `json:"students"`
	TotalDebt float64   `json:"total_debt"`
	Error     string    `json:"error,omitempty"`
}

type RunResult struct {
	Month     string        `json:"month"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped_groups"`
	Groups    []GroupResult `json:"groups"`
}

// CalculateMonthly merekonsiliasi semua siswa aktif di semua grup berbayar.
// Satu transaksi per grup: grup yang gagal tidak membatalkan grup sebelumnya.
func CalculateMonthly(ctx context.Context, db *gorm.DB, month string) (*RunResult, error) {
	var groups []groupModel.GroupModel
	if err := db.WithContext(ctx).Preload("Course").Order("group_name ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	res := &RunResult{Month: month, Groups: []GroupResult{}}
	var firstErr error

	for i := range groups {
		g := &groups[i]
		price := groupPrice(g)
		if price <= 0 {
			res.Skipped++
			continue
		}

		gr := GroupResult{
			GroupID:   g.GroupID,
			GroupName: g.GroupName,
			Price:     price,
			PerLesson: helper.Round2(price / constants.DefaultLessonsPerMonth),
		}

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var ids []uuid.UUID
			if err := tx.Table("group_students").
				Select("group_student_student_id").
				Where("group_student_group_id = ?", g.GroupID).
				Pluck("group_student_student_id", &ids).Error; err != nil {
				return err
			}
			for _, sid := range ids {
				s, err := lockStudent(tx, sid)
				if errors.Is(err, ErrStudentNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				if isInactive(s) {
					continue
				}
				row, err := reconcile(ctx, tx, s, g, month)
				if err != nil {
					return fmt.Errorf("student %s: %w", sid, err)
				}
				gr.Students++
				gr.TotalDebt = helper.Round2(gr.TotalDebt + row.PaymentDebtAmount)
			}
			return nil
		})
		if err != nil {
			log.Printf("[BILLING] ❌ grup %s (%s) gagal: %v", g.GroupName, month, err)
			gr.Error = err.Error()
			gr.Students, gr.TotalDebt = 0, 0
			if firstErr == nil {
				firstErr = err
			}
		}
		res.Processed += gr.Students
		res.Groups = append(res.Groups, gr)
	}

	log.Printf("[BILLING] ✅ %s: %d siswa diproses, %d grup dilewati", month, res.Processed, res.Skipped)
	return res, firstErr
}

func isInactive(s *userModel.UserModel) bool {
	st := s.StatusValue()
	for _, x := range constants.InactiveStudentStatuses {
		if st == x {
			return true
		}
	}
	return false
}

/* =========================================================
   POSTING
========================================================= */

type PostInput struct {
	StudentID   uuid.UUID
	GroupID     *uuid.UUID
	Month       string
	Amount      float64
	Description *string
}

// PostPayment: rekonsiliasi baris (dibuat kalau belum ada) lalu bukukan pembayaran tunai.
func PostPayment(ctx context.Context, db *gorm.DB, in PostInput) (*model.PaymentModel, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var out *model.PaymentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockStudent(tx, in.StudentID)
		if err != nil {
			return err
		}
		groupID := in.GroupID
		if groupID == nil {
			groupID = s.GroupID
		}
		if groupID == nil {
			return ErrNoGroup
		}
		g, err := loadGroup(tx, *groupID)
		if err != nil {
			return err
		}
		row, err := reconcile(ctx, tx, s, g, in.Month)
		if err != nil {
			return err
		}
		if in.Description != nil {
			row.PaymentDescription = in.Description
		}
		out, err = postCash(tx, s, row, in.Amount, constants.ReceiptCash, nil)
		return err
	})
	return out, err
}

// PostToRow membukukan pembayaran ke baris yang sudah ada (mark-paid).
func PostToRow(ctx context.Context, db *gorm.DB, paymentID uuid.UUID, amount float64, source string) (*model.PaymentModel, error) {
	var out *model.PaymentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = postToRowTx(ctx, tx, paymentID, amount, source, nil)
		return err
	})
	return out, err
}

// postToRowTx: versi PostToRow di dalam transaksi milik caller (webhook gateway).
func postToRowTx(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID, amount float64, source string, orderID *string) (*model.PaymentModel, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var existing model.PaymentModel
	if err := tx.First(&existing, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	s, err := lockStudent(tx, existing.PaymentStudentID)
	if err != nil {
		return nil, err
	}
	g, err := loadGroup(tx, existing.PaymentGroupID)
	if err != nil {
		return nil, err
	}
	row, err := reconcile(ctx, tx, s, g, existing.PaymentMonth)
	if err != nil {
		return nil, err
	}
	return postCash(tx, s, row, amount, source, orderID)
}

// postCash menambah cash ke baris dan mencatat satu receipt untuk uang yang masuk.
func postCash(tx *gorm.DB, s *userModel.UserModel, row *model.PaymentModel, amount float64, source string, orderID *string) (*model.PaymentModel, error) {
	excess := ApplyCash(row, amount)
	now := time.Now().UTC()
	row.PaymentPaidAt = &now
	if err := saveRow(tx, row); err != nil {
		return nil, err
	}
	if excess > 0 {
		s.Balance = helper.Round2(s.Balance + excess)
		if err := saveBalance(tx, s.ID, s.Balance); err != nil {
			return nil, err
		}
	}
	if err := tx.Create(&model.PaymentReceiptModel{
		ReceiptPaymentID:  row.PaymentID,
		ReceiptStudentID:  row.PaymentStudentID,
		ReceiptGroupID:    row.PaymentGroupID,
		ReceiptMonth:      row.PaymentMonth,
		ReceiptAmount:     helper.Round2(amount),
		ReceiptSource:     source,
		ReceiptOrderID:    orderID,
		ReceiptReceivedAt: now,
	}).Error; err != nil {
		return nil, err
	}
	return row, nil
}
