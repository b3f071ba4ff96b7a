package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/model"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

const (
	DefaultCurrency = "NGN"
	OrderPrefix     = "SUB"
)

var errGatewayDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway is not configured")

type SubscriptionService struct {
	DB        *gorm.DB
	Gateway   SnapGateway
	ServerKey string
}

// NewSubscriptionService wires checkout and the webhook. A nil gateway or an
// empty server key disables both with 503.
func NewSubscriptionService(db *gorm.DB, gateway SnapGateway, serverKey string) *SubscriptionService {
	return &SubscriptionService{DB: db, Gateway: gateway, ServerKey: serverKey}
}

/* =========================================================
   Checkout
========================================================= */

// Checkout opens a Snap transaction for the school's configured plan.
func (s *SubscriptionService) Checkout(ctx context.Context, schoolID uuid.UUID, userID *uuid.UUID) (*model.SubscriptionPaymentModel, error) {
	if s.Gateway == nil || s.ServerKey == "" {
		return nil, errGatewayDisabled
	}
	school, err := schoolService.NewSchoolService(s.DB).Get(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	cfg, ok, err := school.SubscriptionConfig()
	if err != nil {
		return nil, helper.ErrStorage("read subscription config", err)
	}
	if !ok || cfg.Plan == schoolModel.PlanTrial || !cfg.Price.IsPositive() {
		return nil, helper.ErrValidation("No paid plan is configured for this school")
	}

	p := &model.SubscriptionPaymentModel{
		PaymentSchoolID:   schoolID,
		PaymentUserID:     userID,
		PaymentPlan:       cfg.Plan,
		PaymentAmount:     cfg.Price.Decimal,
		PaymentCurrency:   strings.ToUpper(defaultString(cfg.Currency, DefaultCurrency)),
		PaymentExternalID: GenOrderID(OrderPrefix),
	}
	req, err := BuildSnapRequest(p, school.SchoolName, s.customer(ctx, userID))
	if err != nil {
		return nil, helper.ErrValidation(err.Error())
	}
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, helper.ErrStorage("create subscription payment", err)
	}

	resp, gerr := s.Gateway.CreateTransaction(req)
	if gerr != nil {
		log.Printf("[ERROR] midtrans checkout order=%s: %v", p.PaymentExternalID, gerr)
		msg := gerr.Message
		_ = s.DB.WithContext(ctx).Model(p).Updates(map[string]any{
			"payment_status":         model.PaymentStatusFailed,
			"payment_gateway_status": truncate(msg, 40),
		}).Error
		return nil, fiber.NewError(fiber.StatusBadGateway, "Payment gateway error")
	}

	p.PaymentSnapToken = &resp.Token
	p.PaymentRedirectURL = &resp.RedirectURL
	if err := s.DB.WithContext(ctx).Model(p).Updates(map[string]any{
		"payment_snap_token":   resp.Token,
		"payment_redirect_url": resp.RedirectURL,
	}).Error; err != nil {
		return nil, helper.ErrStorage("store snap token", err)
	}
	log.Printf("[INFO] subscription checkout school=%s order=%s amount=%s", schoolID, p.PaymentExternalID, p.PaymentAmount)
	return p, nil
}

func (s *SubscriptionService) customer(ctx context.Context, userID *uuid.UUID) CustomerInput {
	if userID == nil {
		return CustomerInput{}
	}
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("first_name", "last_name", "email", "phone").
		Where("id = ?", *userID).Take(&u).Error; err != nil {
		return CustomerInput{}
	}
	in := CustomerInput{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	if u.Phone != nil {
		in.Phone = *u.Phone
	}
	return in
}

// Payments lists a school's checkouts, newest first.
func (s *SubscriptionService) Payments(ctx context.Context, schoolID uuid.UUID, p helper.Paging) ([]model.SubscriptionPaymentModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.SubscriptionPaymentModel{}).Where("payment_school_id = ?", schoolID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count subscription payments", err)
	}
	var rows []model.SubscriptionPaymentModel
	if err := q.Order("payment_created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list subscription payments", err)
	}
	return rows, total, nil
}

/* =========================================================
   Webhook
========================================================= */

// HandleNotification verifies and applies one Midtrans HTTP notification.
// Every call is written to payment_gateway_events, including rejected ones.
func (s *SubscriptionService) HandleNotification(ctx context.Context, n dto.MidtransNotification, raw []byte) (*dto.NotificationResult, error) {
	if s.ServerKey == "" {
		return nil, errGatewayDisabled
	}
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || want != Signature(n.OrderID, n.StatusCode, n.GrossAmount, s.ServerKey) {
		s.logEvent(ctx, nil, n, raw, model.GatewayEventFailed, "invalid signature")
		return nil, helper.ErrUnauthorized("Invalid signature")
	}

	var p model.SubscriptionPaymentModel
	if err := s.DB.WithContext(ctx).Where("payment_external_id = ?", n.OrderID).Take(&p).Error; err != nil {
		if !helper.IsNotFound(err) {
			return nil, helper.ErrStorage("find payment by order", err)
		}
		// 200 so the gateway stops retrying an order we never issued
		log.Printf("[WARN] midtrans notification for unknown order=%s", n.OrderID)
		s.logEvent(ctx, nil, n, raw, model.GatewayEventIgnored, "payment not found")
		return &dto.NotificationResult{Status: "ignored", Reason: "payment not found", TransactionStatus: n.TransactionStatus}, nil
	}

	result := &dto.NotificationResult{PaymentID: &p.PaymentID, TransactionStatus: n.TransactionStatus}
	if p.PaymentStatus.IsFinal() {
		s.logEvent(ctx, &p.PaymentID, n, raw, model.GatewayEventIgnored, "payment already "+string(p.PaymentStatus))
		result.Status, result.Reason, result.PaymentStatus = "ignored", "payment already final", &p.PaymentStatus
		return result, nil
	}
	if gross, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount)); err == nil && !gross.Equal(p.PaymentAmount.Round(0)) {
		s.logEvent(ctx, &p.PaymentID, n, raw, model.GatewayEventFailed, "gross amount mismatch")
		return nil, helper.ErrValidation("Gross amount does not match the payment")
	}

	next := MapMidtransStatus(p.PaymentStatus, n.TransactionStatus, n.FraudStatus)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"payment_status":         next,
			"payment_gateway_status": truncate(n.TransactionStatus, 40),
			"payment_gateway_raw":    datatypes.JSON(raw),
		}
		if next == model.PaymentStatusPaid {
			updates["payment_paid_at"] = dbtime.Now()
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return helper.ErrStorage("update payment status", err)
		}
		status, ok := SchoolStatusFor(next)
		if !ok {
			return nil
		}
		return schoolService.NewSchoolService(tx).SetSubscriptionStatus(ctx, p.PaymentSchoolID, status)
	})
	if err != nil {
		s.logEvent(ctx, &p.PaymentID, n, raw, model.GatewayEventFailed, err.Error())
		return nil, err
	}

	s.logEvent(ctx, &p.PaymentID, n, raw, model.GatewayEventProcessed, "")
	log.Printf("[INFO] midtrans order=%s %s -> %s", n.OrderID, n.TransactionStatus, next)
	result.Status, result.PaymentStatus = "ok", &next
	return result, nil
}

func (s *SubscriptionService) logEvent(ctx context.Context, paymentID *uuid.UUID, n dto.MidtransNotification, raw []byte, status model.GatewayEventStatus, errMsg string) {
	ev := &model.PaymentGatewayEventModel{
		GatewayEventPaymentID:  paymentID,
		GatewayEventProvider:   model.PaymentProviderMidtrans,
		GatewayEventType:       nonEmpty(n.TransactionStatus),
		GatewayEventExternalID: nonEmpty(n.OrderID),
		GatewayEventPayload:    datatypes.JSON(raw),
		GatewayEventSignature:  nonEmpty(n.SignatureKey),
		GatewayEventStatus:     status,
		GatewayEventError:      nonEmpty(errMsg),
	}
	if status == model.GatewayEventProcessed {
		now := dbtime.Now()
		ev.GatewayEventProcessedAt = &now
	}
	if err := s.DB.WithContext(ctx).Create(ev).Error; err != nil {
		log.Printf("[WARN] log gateway event order=%s: %v", n.OrderID, err)
	}
}

/* =========================================================
   Helpers
========================================================= */

// Signature is SHA512(order_id + status_code + gross_amount + server_key), hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// MapMidtransStatus converts a transaction_status/fraud_status pair.
// Unknown statuses keep the current value.
func MapMidtransStatus(current model.PaymentStatus, transactionStatus, fraudStatus string) model.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture":
		switch strings.ToLower(strings.TrimSpace(fraudStatus)) {
		case "accept", "":
			return model.PaymentStatusPaid
		case "challenge":
			return model.PaymentStatusPending
		}
		return model.PaymentStatusFailed
	case "settlement":
		return model.PaymentStatusPaid
	case "pending":
		return model.PaymentStatusPending
	case "deny", "failure":
		return model.PaymentStatusFailed
	case "cancel":
		return model.PaymentStatusCancelled
	case "expire":
		return model.PaymentStatusExpired
	}
	return current
}

// SchoolStatusFor is the subscription status a payment outcome moves the school to.
func SchoolStatusFor(p model.PaymentStatus) (schoolModel.SubscriptionStatus, bool) {
	switch p {
	case model.PaymentStatusPaid:
		return schoolModel.SubscriptionActive, true
	case model.PaymentStatusExpired, model.PaymentStatusCancelled:
		return schoolModel.SubscriptionPastDue, true
	}
	return "", false
}

// GenOrderID builds PREFIX-YYYYMMDD-HHMMSS-XXXXXXXX.
func GenOrderID(prefix string) string {
	now := dbtime.Now().Format("20060102-150405")
	u := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + "-" + now + "-" + u[:8]
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
