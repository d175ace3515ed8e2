package helper

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const MonthLayout = "2006-01"

// ParseMonth menerima "YYYY-MM"; kosong = bulan berjalan (UTC).
func ParseMonth(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CurrentMonth(), nil
	}
	t, err := time.Parse(MonthLayout, raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Format bulan harus YYYY-MM, bukan %q", raw))
	}
	return t.Format(MonthLayout), nil
}

func CurrentMonth() string {
	return time.Now().UTC().Format(MonthLayout)
}

// MonthRange: [awal bulan, awal bulan berikutnya) dalam UTC.
// month diasumsikan sudah lolos ParseMonth.
func MonthRange(month string) (time.Time, time.Time) {
	start, _ := time.Parse(MonthLayout, month)
	start = start.UTC()
	return start, start.AddDate(0, 1, 0)
}

func MonthOf(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// DueDate: tanggal jatuh tempo tagihan bulan tsb.
func DueDate(month string, day int) time.Time {
	start, _ := MonthRange(month)
	return start.AddDate(0, 0, day-1)
}

// ParseDate menerima "YYYY-MM-DD" dan mengembalikan tengah malam UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Format tanggal harus YYYY-MM-DD")
	}
	return t.UTC(), nil
}

func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Round2 membulatkan nominal uang ke 2 desimal.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
