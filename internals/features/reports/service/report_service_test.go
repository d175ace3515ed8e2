package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	database "educenter_backend/internals/databases"
	helper "educenter_backend/internals/helpers"
)

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)
	today := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	for period, want := range map[string]time.Time{
		"":        today,
		"daily":   today,
		"weekly":  today.AddDate(0, 0, -7),
		"monthly": today.AddDate(0, 0, -30),
	} {
		got, err := PeriodStart(period, now)
		require.NoError(t, err, period)
		assert.Equal(t, want, got, period)
	}

	_, err := PeriodStart("yearly", now)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSummaryTrendAndExport(t *testing.T) {
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Now().UTC()

	studying, interested := constants.StudentStudying, constants.StudentInterested
	s1 := userModel.UserModel{UserName: "s1", FullName: "S1", Password: "x", Role: constants.RoleStudent, Status: &studying, IsActive: true}
	s2 := userModel.UserModel{UserName: "s2", FullName: "S2", Password: "x", Role: constants.RoleStudent, Status: &interested, IsActive: true}
	require.NoError(t, db.Create(&s1).Error)
	require.NoError(t, db.Create(&s2).Error)

	g := groupModel.GroupModel{GroupName: "G1"}
	require.NoError(t, db.Create(&g).Error)

	// baris kumulatif 150: 100 diterima 40 hari lalu, 50 hari ini
	paidAt := now
	month := helper.MonthOf(now)
	row := paymentModel.PaymentModel{
		PaymentStudentID:  s1.ID,
		PaymentGroupID:    g.GroupID,
		PaymentMonth:      month,
		PaymentTotalDue:   200,
		PaymentAmount:     150,
		PaymentDebtAmount: 50,
		PaymentStatus:     constants.PaymentPartial,
		PaymentDueDate:    helper.DueDate(month, constants.DueDayOfMonth),
		PaymentPaidAt:     &paidAt,
	}
	require.NoError(t, db.Create(&row).Error)
	for _, rc := range []struct {
		amount float64
		at     time.Time
	}{
		{100, now.AddDate(0, 0, -40)},
		{50, now},
	} {
		require.NoError(t, db.Create(&paymentModel.PaymentReceiptModel{
			ReceiptPaymentID:  row.PaymentID,
			ReceiptStudentID:  s1.ID,
			ReceiptGroupID:    g.GroupID,
			ReceiptMonth:      month,
			ReceiptAmount:     rc.amount,
			ReceiptSource:     constants.ReceiptCash,
			ReceiptReceivedAt: rc.at,
		}).Error)
	}

	debtors, err := Debtors(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, debtors)

	sum, err := BuildSummary(ctx, db, "weekly", now)
	require.NoError(t, err)
	assert.Equal(t, "weekly", sum.Period)
	assert.Equal(t, int64(2), sum.Students.Total)
	assert.Equal(t, int64(1), sum.Students.Leads)
	assert.Equal(t, 100.0, sum.Students.ConversionRate)
	// hanya uang yang diterima minggu ini
	assert.Equal(t, 50.0, sum.Payments.TotalAmount)
	assert.Equal(t, 50.0, sum.Payments.AveragePayment)
	assert.Equal(t, int64(1), sum.Groups.ActiveGroups)

	trend, err := Trend(ctx, db, now)
	require.NoError(t, err)
	require.Len(t, trend, 7)
	assert.Equal(t, now.Format("2006-01-02"), trend[6].Date)
	assert.Equal(t, 50.0, trend[6].Total)
	assert.Equal(t, 0.0, trend[0].Total)

	buf, err := ExportExcel(sum)
	require.NoError(t, err)
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(reportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Metric", header)
	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, len(SummaryRows(sum))+1)
	assert.Equal(t, []string{"Period", "weekly"}, rows[1])
}
