package constants

// Status siswa
const (
	StudentInterested = "interested"
	StudentStudying   = "studying"
	StudentLeft       = "left"
	StudentGraduated  = "graduated"
)

// Status kehadiran & alasan absen
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"

	ReasonExcused   = "excused"
	ReasonUnexcused = "unexcused"
)

// Status tagihan bulanan
const (
	PaymentPaid    = "paid"
	PaymentPartial = "partial"
	PaymentUnpaid  = "unpaid"
)

// Sumber uang masuk (payment_receipts)
const (
	ReceiptCash     = "cash"
	ReceiptMarkPaid = "mark_paid"
	ReceiptGateway  = "gateway"
)

// Status payroll
const (
	PayrollPending = "pending"
	PayrollPaid    = "paid"
)

// Default persentase gaji (dipakai saat salary_settings belum ada)
const (
	DefaultTeacherPercent       = 50.0
	DefaultManagerActivePercent = 10.0
	DefaultManagerNewPercent    = 25.0
)

// Jumlah pertemuan per bulan (informasi per_lesson di laporan billing)
const DefaultLessonsPerMonth = 12

// Tanggal jatuh tempo tagihan setiap bulan
const DueDayOfMonth = 10

// Siswa dengan status ini tidak ditagih lagi
var InactiveStudentStatuses = []string{StudentLeft, StudentGraduated}

var StudentStatuses = []string{StudentInterested, StudentStudying, StudentLeft, StudentGraduated}
