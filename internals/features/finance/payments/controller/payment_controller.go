package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/academics/groups/model"
	groupService "educenter_backend/internals/features/academics/groups/service"
	dto "educenter_backend/internals/features/finance/payments/dto"
	model "educenter_backend/internals/features/finance/payments/model"
	service "educenter_backend/internals/features/finance/payments/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// mapServiceError menerjemahkan sentinel service ke status HTTP.
func mapServiceError(err error) error {
	var fe *fiber.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, service.ErrStudentNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	case errors.Is(err, service.ErrGroupNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Group not found")
	case errors.Is(err, service.ErrPaymentNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Payment not found")
	case errors.Is(err, service.ErrNoGroup):
		return fiber.NewError(fiber.StatusBadRequest, "Student has no group")
	case errors.Is(err, service.ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than zero")
	case errors.Is(err, service.ErrNothingToPay):
		return fiber.NewError(fiber.StatusBadRequest, "Nothing to pay")
	case errors.Is(err, service.ErrGatewayDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway is not configured")
	case errors.Is(err, service.ErrInvalidSignature):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
	}
	return helper.MapPGError(err, "")
}

// decorate menambahkan nama siswa & grup ke response.
func (h *PaymentController) decorate(c *fiber.Ctx, rows []model.PaymentModel) []dto.PaymentResponse {
	now := time.Now().UTC()
	out := make([]dto.PaymentResponse, 0, len(rows))
	if len(rows) == 0 {
		return out
	}

	studentIDs := make([]uuid.UUID, 0, len(rows))
	groupIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		studentIDs = append(studentIDs, r.PaymentStudentID)
		groupIDs = append(groupIDs, r.PaymentGroupID)
	}

	ctx := c.UserContext()
	var students []userModel.UserModel
	if err := h.DB.WithContext(ctx).Select("id", "full_name").Where("id IN ?", studentIDs).Find(&students).Error; err != nil {
		log.Printf("[WARN] payments: gagal memuat nama siswa: %v", err)
	}
	var groups []groupModel.GroupModel
	if err := h.DB.WithContext(ctx).Select("group_id", "group_name").Where("group_id IN ?", groupIDs).Find(&groups).Error; err != nil {
		log.Printf("[WARN] payments: gagal memuat nama grup: %v", err)
	}

	names := make(map[uuid.UUID]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FullName
	}
	gnames := make(map[uuid.UUID]string, len(groups))
	for _, g := range groups {
		gnames[g.GroupID] = g.GroupName
	}

	for _, r := range rows {
		resp := dto.FromModel(r, now)
		resp.StudentName = names[r.PaymentStudentID]
		resp.GroupName = gnames[r.PaymentGroupID]
		out = append(out, resp)
	}
	return out
}

/* ======================== LIST ======================== */
// GET /api/payments?month=&status=&student_id=&group_id=&overdue=true
// student: miliknya; teacher: grup yang diajar; admin/manager: semua
func (h *PaymentController) List(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	q := h.DB.WithContext(ctx).Model(&model.PaymentModel{})

	switch role {
	case constants.RoleStudent:
		q = q.Where("payment_student_id = ?", callerID)
	case constants.RoleTeacher:
		ids, err := groupService.TeacherGroupIDs(ctx, h.DB, callerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if len(ids) == 0 {
			return helper.JsonList(c, "ok", []dto.PaymentResponse{}, nil)
		}
		q = q.Where("payment_group_id IN ?", ids)
	}

	if m := strings.TrimSpace(c.Query("month")); m != "" {
		month, err := helper.ParseMonth(m)
		if err != nil {
			return err
		}
		q = q.Where("payment_month = ?", month)
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		q = q.Where("payment_status = ?", s)
	}
	for _, f := range []struct{ param, col string }{
		{"student_id", "payment_student_id"},
		{"group_id", "payment_group_id"},
	} {
		if raw := strings.TrimSpace(c.Query(f.param)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, f.param+" tidak valid")
			}
			q = q.Where(f.col+" = ?", id)
		}
	}
	if c.QueryBool("overdue", false) {
		q = q.Where("payment_status <> ? AND payment_due_date < ?", constants.PaymentPaid, helper.TruncateDay(time.Now()))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	paging := helper.ResolvePaging(c, 50, 500)
	var rows []model.PaymentModel
	if err := q.Order("payment_month DESC, payment_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := h.decorate(c, rows)
	pg := helper.BuildPagination(total, paging, len(out))
	return helper.JsonList(c, "ok", out, &pg)
}

/* ======================= CREATE ======================= */
// POST /api/payments (admin, manager, teacher)
func (h *PaymentController) Create(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := helper.Validator().Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	month, err := helper.ParseMonth(req.Month)
	if err != nil {
		return err
	}

	row, err := service.PostPayment(c.UserContext(), h.DB, service.PostInput{
		StudentID:   req.StudentID,
		GroupID:     req.GroupID,
		Month:       month,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return helper.JsonCreated(c, "Payment recorded", h.decorate(c, []model.PaymentModel{*row})[0])
}

/* ================== CALCULATE MONTHLY ================== */
// POST /api/payments/calculate-monthly (admin, manager), body/query month opsional
func (h *PaymentController) CalculateMonthly(c *fiber.Ctx) error {
	var req dto.CalculateMonthlyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	raw := req.Month
	if raw == "" {
		raw = c.Query("month")
	}
	month, err := helper.ParseMonth(raw)
	if err != nil {
		return err
	}

	ctx, cancel := helper.BatchContext(c)
	defer cancel()

	res, err := service.CalculateMonthly(ctx, h.DB, month)
	if err != nil && res == nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Sebagian grup gagal dihitung: "+err.Error())
	}
	return helper.JsonOK(c, "Monthly payments calculated", res)
}

/* ======================= MARK PAID ======================= */
// PUT /api/payments/mark-paid/:id (admin, manager)
func (h *PaymentController) MarkPaid(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.MarkPaidRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
		if err := helper.Validator().Struct(req); err != nil {
			return helper.ValidationError(c, err)
		}
	}

	ctx := c.UserContext()
	amount := 0.0
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		var p model.PaymentModel
		if err := h.DB.WithContext(ctx).First(&p, "payment_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Payment not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		fresh, err := service.RecomputeStudent(ctx, h.DB, p.PaymentStudentID, p.PaymentGroupID, p.PaymentMonth)
		if err != nil {
			return mapServiceError(err)
		}
		if fresh.PaymentDebtAmount <= 0 {
			return helper.JsonOK(c, "Payment already settled", h.decorate(c, []model.PaymentModel{*fresh})[0])
		}
		amount = fresh.PaymentDebtAmount
	}

	row, err := service.PostToRow(ctx, h.DB, id, amount, constants.ReceiptMarkPaid)
	if err != nil {
		return mapServiceError(err)
	}
	return helper.JsonUpdated(c, "Payment marked as paid", h.decorate(c, []model.PaymentModel{*row})[0])
}

/* ======================= HISTORY ======================= */
// GET /api/payments/student/:id/history (admin, manager, atau siswa itu sendiri)
func (h *PaymentController) History(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}
	studentID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if role != constants.RoleAdmin && role != constants.RoleManager && callerID != studentID {
		return fiber.NewError(fiber.StatusForbidden, "Not allowed")
	}

	ctx := c.UserContext()
	var student userModel.UserModel
	if err := h.DB.WithContext(ctx).First(&student, "id = ? AND role = ?", studentID, constants.RoleStudent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.PaymentModel
	if err := h.DB.WithContext(ctx).
		Where("payment_student_id = ?", studentID).
		Order("payment_month DESC").
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	groupIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		groupIDs = append(groupIDs, r.PaymentGroupID)
	}
	var groups []groupModel.GroupModel
	if len(groupIDs) > 0 {
		if err := h.DB.WithContext(ctx).Preload("Course").Where("group_id IN ?", groupIDs).Find(&groups).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}
	byID := make(map[uuid.UUID]*groupModel.GroupModel, len(groups))
	for i := range groups {
		byID[groups[i].GroupID] = &groups[i]
	}

	now := helper.TruncateDay(time.Now())
	resp := dto.HistoryResponse{
		StudentID:   student.ID,
		StudentName: student.FullName,
		Balance:     student.Balance,
		History:     make([]dto.HistoryItem, 0, len(rows)),
	}
	// debt sudah membawa tunggakan sebelumnya: cukup ambil baris terbaru per grup
	latestSeen := map[uuid.UUID]bool{}
	for _, r := range rows {
		item := dto.HistoryItem{
			PaymentID:  r.PaymentID,
			Month:      r.PaymentMonth,
			Amount:     r.PaymentAmount,
			DebtAmount: r.PaymentDebtAmount,
			Status:     r.PaymentStatus,
			DueDate:    r.PaymentDueDate.UTC().Format("2006-01-02"),
			IsOverdue:  r.IsOverdue(now),
		}
		if g := byID[r.PaymentGroupID]; g != nil {
			name := g.GroupName
			item.GroupName = &name
			if g.Course != nil {
				title := g.Course.CourseTitle
				item.CourseName = &title
			}
		}
		resp.TotalPaid = helper.Round2(resp.TotalPaid + r.PaymentAmount)
		if !latestSeen[r.PaymentGroupID] {
			latestSeen[r.PaymentGroupID] = true
			resp.TotalDebt = helper.Round2(resp.TotalDebt + r.PaymentDebtAmount)
		}
		resp.History = append(resp.History, item)
	}
	return helper.JsonOK(c, "ok", resp)
}

/* ======================= CHECKOUT ======================= */
// POST /api/payments/:id/checkout (siswa pemilik, admin, manager)
func (h *PaymentController) Checkout(c *fiber.Ctx) error {
	callerID, role, err := helper.GetCaller(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	var p model.PaymentModel
	if err := h.DB.WithContext(ctx).First(&p, "payment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	switch role {
	case constants.RoleAdmin, constants.RoleManager:
	case constants.RoleStudent:
		if p.PaymentStudentID != callerID {
			return fiber.NewError(fiber.StatusForbidden, "Not allowed")
		}
	default:
		return fiber.NewError(fiber.StatusForbidden, "Not allowed")
	}

	res, err := service.Checkout(ctx, h.DB, id)
	if err != nil {
		return mapServiceError(err)
	}
	return helper.JsonCreated(c, "Checkout created", res)
}

/* ===================== NOTIFICATION ===================== */
// POST /api/payments/notification (publik, diverifikasi via signature)
func (h *PaymentController) Notification(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	raw := append([]byte(nil), c.Body()...)

	res, err := service.HandleNotification(c.UserContext(), h.DB, n, raw)
	if err != nil {
		return mapServiceError(err)
	}
	return helper.JsonOK(c, res.Status, res)
}
