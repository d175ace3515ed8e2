package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter_backend/internals/constants"
	attendanceService "educenter_backend/internals/features/attendance/service"
	model "educenter_backend/internals/features/finance/payments/model"
)

func TestCharge(t *testing.T) {
	assert.Equal(t, 0.0, Charge(100, attendanceService.Counts{}))
	assert.Equal(t, 0.0, Charge(100, attendanceService.Counts{Excused: 3, Total: 3}))
	assert.Equal(t, 100.0, Charge(100, attendanceService.Counts{Present: 1, Total: 1}))
	assert.Equal(t, 100.0, Charge(100, attendanceService.Counts{Absent: 1, Total: 1}))
}

func TestApplyCharge(t *testing.T) {
	tests := []struct {
		name        string
		row         model.PaymentModel
		charge      float64
		carried     float64
		balance     float64
		wantDebt    float64
		wantCredit  float64
		wantStatus  string
		wantBalance float64
	}{
		{name: "nothing due", wantStatus: constants.PaymentPaid},
		{name: "full charge", charge: 100, wantDebt: 100, wantStatus: constants.PaymentUnpaid},
		{name: "carried debt", charge: 100, carried: 40, wantDebt: 140, wantStatus: constants.PaymentUnpaid},
		{name: "partial credit", charge: 100, balance: 30, wantDebt: 70, wantCredit: 30, wantStatus: constants.PaymentPartial},
		{name: "credit covers all", charge: 100, balance: 150, wantCredit: 100, wantStatus: constants.PaymentPaid, wantBalance: 50},
		{
			name:        "cash above due moves to balance",
			row:         model.PaymentModel{PaymentAmount: 150},
			charge:      100,
			wantStatus:  constants.PaymentPaid,
			wantBalance: 50,
		},
		{
			name:       "partial cash",
			row:        model.PaymentModel{PaymentAmount: 40},
			charge:     100,
			wantDebt:   60,
			wantStatus: constants.PaymentPartial,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.row
			bal := ApplyCharge(&row, tt.charge, tt.carried, tt.balance)
			assert.Equal(t, tt.wantDebt, row.PaymentDebtAmount)
			assert.Equal(t, tt.wantCredit, row.PaymentCreditApplied)
			assert.Equal(t, tt.wantStatus, row.PaymentStatus)
			assert.Equal(t, tt.wantBalance, bal)
			assert.GreaterOrEqual(t, bal, 0.0)

			// menghitung ulang dengan input yang sama tidak mengubah hasil
			again := row
			bal2 := ApplyCharge(&again, tt.charge, tt.carried, bal)
			assert.Equal(t, row.PaymentDebtAmount, again.PaymentDebtAmount)
			assert.Equal(t, bal, bal2)
		})
	}
}

func TestApplyCash(t *testing.T) {
	row := model.PaymentModel{}
	ApplyCharge(&row, 100, 0, 0)

	excess := ApplyCash(&row, 40)
	assert.Equal(t, 0.0, excess)
	assert.Equal(t, 60.0, row.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentPartial, row.PaymentStatus)

	excess = ApplyCash(&row, 100)
	assert.Equal(t, 40.0, excess)
	assert.Equal(t, 0.0, row.PaymentDebtAmount)
	assert.Equal(t, 140.0, row.PaymentAmount)
	assert.Equal(t, 40.0, row.PaymentOverpaid)
	assert.Equal(t, constants.PaymentPaid, row.PaymentStatus)
}

func TestCalculateMonthly_ZeroAttendanceIsPaid(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()

	res, err := CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	p := f.row(t, f.student.ID, "2024-03")
	assert.Equal(t, 0.0, p.PaymentTotalDue)
	assert.Equal(t, 0.0, p.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentPaid, p.PaymentStatus)
	assert.Equal(t, "2024-03-10", p.PaymentDueDate.UTC().Format("2006-01-02"))
}

func TestCalculateMonthly_ExcusedOnlyIsFree(t *testing.T) {
	f := newFixture(t, 100)
	f.mark(t, f.student.ID, "2024-03-05", false, constants.ReasonExcused)

	_, err := CalculateMonthly(context.Background(), f.db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.row(t, f.student.ID, "2024-03").PaymentDebtAmount)
}

func TestFullAttendanceThenPay(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")
	f.mark(t, f.student.ID, "2024-03-12", false, "")

	_, err := CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	p := f.row(t, f.student.ID, "2024-03")
	assert.Equal(t, 100.0, p.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentUnpaid, p.PaymentStatus)

	paid, err := PostPayment(ctx, f.db, PostInput{StudentID: f.student.ID, Month: "2024-03", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, p.PaymentID, paid.PaymentID)
	assert.Equal(t, 0.0, paid.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentPaid, paid.PaymentStatus)
	assert.NotNil(t, paid.PaymentPaidAt)
	assert.Equal(t, 0.0, f.balance(t, f.student.ID))
}

func TestOverpaymentCreditsNextMonth(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")
	f.mark(t, f.student.ID, "2024-04-02", true, "")

	_, err := PostPayment(ctx, f.db, PostInput{StudentID: f.student.ID, Month: "2024-03", Amount: 150})
	require.NoError(t, err)
	assert.Equal(t, 50.0, f.balance(t, f.student.ID))

	_, err = CalculateMonthly(ctx, f.db, "2024-04")
	require.NoError(t, err)
	apr := f.row(t, f.student.ID, "2024-04")
	assert.Equal(t, 100.0, apr.PaymentTotalDue)
	assert.Equal(t, 50.0, apr.PaymentCreditApplied)
	assert.Equal(t, 50.0, apr.PaymentDebtAmount)
	assert.Equal(t, constants.PaymentPartial, apr.PaymentStatus)
	assert.Equal(t, 0.0, f.balance(t, f.student.ID))

	// bulan sebelumnya dihitung ulang: kredit tidak dipakai dua kali
	_, err = CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.row(t, f.student.ID, "2024-03").PaymentDebtAmount)
	assert.Equal(t, 0.0, f.balance(t, f.student.ID))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")
	require.NoError(t, f.db.Model(&f.student).Update("balance", 30).Error)

	first, err := RecomputeStudent(ctx, f.db, f.student.ID, f.group.GroupID, "2024-03")
	require.NoError(t, err)
	second, err := RecomputeStudent(ctx, f.db, f.student.ID, f.group.GroupID, "2024-03")
	require.NoError(t, err)

	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Equal(t, 70.0, second.PaymentDebtAmount)
	assert.Equal(t, first.PaymentDebtAmount, second.PaymentDebtAmount)
	assert.Equal(t, first.PaymentCreditApplied, second.PaymentCreditApplied)
	assert.Equal(t, 0.0, f.balance(t, f.student.ID))

	var n int64
	require.NoError(t, f.db.Model(&model.PaymentModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDebtCarriesOver(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")
	f.mark(t, f.student.ID, "2024-04-02", true, "")

	_, err := CalculateMonthly(ctx, f.db, "2024-03")
	require.NoError(t, err)
	_, err = CalculateMonthly(ctx, f.db, "2024-04")
	require.NoError(t, err)

	apr := f.row(t, f.student.ID, "2024-04")
	assert.Equal(t, 200.0, apr.PaymentTotalDue)
	assert.Equal(t, 200.0, apr.PaymentDebtAmount)
}

func TestCalculateMonthly_SkipsInactiveAndFreeGroups(t *testing.T) {
	f := newFixture(t, 100)
	left := f.addStudent(t, "student2", constants.StudentLeft)
	f.mark(t, left.ID, "2024-03-05", true, "")

	res, err := CalculateMonthly(context.Background(), f.db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	var n int64
	require.NoError(t, f.db.Model(&model.PaymentModel{}).Where("payment_student_id = ?", left.ID).Count(&n).Error)
	assert.Zero(t, n)

	free := newFixture(t, 0)
	res, err = CalculateMonthly(context.Background(), free.db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Processed)
}

func TestPostPayment_Errors(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&f.student).Update("group_id", nil).Error)
	_, err := PostPayment(ctx, f.db, PostInput{StudentID: f.student.ID, Month: "2024-03", Amount: 50})
	assert.ErrorIs(t, err, ErrNoGroup)

	_, err = PostPayment(ctx, f.db, PostInput{StudentID: f.student.ID, Month: "2024-03", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = PostPayment(ctx, f.db, PostInput{StudentID: f.group.GroupID, Month: "2024-03", Amount: 10})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestEachPostingWritesReceipt(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.mark(t, f.student.ID, "2024-03-05", true, "")

	_, err := PostPayment(ctx, f.db, PostInput{StudentID: f.student.ID, Month: "2024-03", Amount: 60})
	require.NoError(t, err)
	p := f.row(t, f.student.ID, "2024-03")
	_, err = PostToRow(ctx, f.db, p.PaymentID, 70, constants.ReceiptMarkPaid)
	require.NoError(t, err)

	var receipts []model.PaymentReceiptModel
	require.NoError(t, f.db.Order("receipt_created_at ASC, receipt_amount ASC").Find(&receipts).Error)
	require.Len(t, receipts, 2)

	bySource := map[string]float64{}
	for _, r := range receipts {
		assert.Equal(t, p.PaymentID, r.ReceiptPaymentID)
		assert.Equal(t, f.group.GroupID, r.ReceiptGroupID)
		assert.Equal(t, "2024-03", r.ReceiptMonth)
		bySource[r.ReceiptSource] += r.ReceiptAmount
	}
	// receipt mencatat uang yang diterima, termasuk kelebihan yang masuk ke balance
	assert.Equal(t, map[string]float64{constants.ReceiptCash: 60, constants.ReceiptMarkPaid: 70}, bySource)
	assert.Equal(t, 130.0, f.row(t, f.student.ID, "2024-03").PaymentAmount)
	assert.Equal(t, 30.0, f.balance(t, f.student.ID))

	_, err = PostToRow(ctx, f.db, p.PaymentID, 0, constants.ReceiptMarkPaid)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
