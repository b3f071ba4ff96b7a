package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolhub_backend/internals/databases/testdb"
	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/model"
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

const serverKey = "SB-Mid-server-test"

type stubSnap struct {
	last *snap.Request
	fail bool
}

func (s *stubSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	s.last = req
	if s.fail {
		return nil, &midtrans.Error{Message: "gateway down", StatusCode: 500}
	}
	return &snap.Response{Token: "snap-token-1", RedirectURL: "https://app.sandbox.midtrans.com/snap/v3/redirection/snap-token-1"}, nil
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, code, fe.Code, fe.Message)
}

func paidSchool(t *testing.T, db *gorm.DB, name string) *schoolModel.SchoolModel {
	t.Helper()
	s, err := schoolService.NewSchoolService(db).Create(context.Background(),
		schoolDTO.CreateSchoolRequest{Name: name, SchoolType: "senior"})
	require.NoError(t, err)
	require.NoError(t, s.SetSubscriptionConfig(&schoolModel.SubscriptionConfig{
		Plan:     "standard",
		Price:    schoolModel.NewMoney(decimal.NewFromInt(150000)),
		Currency: "ngn",
	}))
	require.NoError(t, db.Model(s).Update("school_subscription_config", s.SchoolSubscriptionConfig).Error)
	return s
}

func notify(orderID, status, gross string) (dto.MidtransNotification, []byte) {
	n := dto.MidtransNotification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: status,
		TransactionID:     uuid.NewString(),
		SignatureKey:      Signature(orderID, "200", gross, serverKey),
	}
	raw, _ := json.Marshal(n)
	return n, raw
}

func TestCheckout(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	school := paidSchool(t, db, "Crestview College")
	admin := &userModel.UserModel{FirstName: "Ngozi", LastName: "Eze", Email: "ngozi@crestview.ng", Password: "x"}
	require.NoError(t, db.Create(admin).Error)

	t.Run("gateway disabled", func(t *testing.T) {
		_, err := NewSubscriptionService(db, nil, "").Checkout(ctx, school.SchoolID, nil)
		requireStatus(t, err, fiber.StatusServiceUnavailable)
	})

	t.Run("no paid plan", func(t *testing.T) {
		free, err := schoolService.NewSchoolService(db).Create(ctx, schoolDTO.CreateSchoolRequest{Name: "Free Academy", SchoolType: "primary"})
		require.NoError(t, err)
		_, err = NewSubscriptionService(db, &stubSnap{}, serverKey).Checkout(ctx, free.SchoolID, nil)
		requireStatus(t, err, fiber.StatusBadRequest)
	})

	t.Run("creates pending payment", func(t *testing.T) {
		gw := &stubSnap{}
		p, err := NewSubscriptionService(db, gw, serverKey).Checkout(ctx, school.SchoolID, &admin.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, p.PaymentStatus)
		assert.Equal(t, "NGN", p.PaymentCurrency)
		assert.Equal(t, "standard", p.PaymentPlan)
		assert.Regexp(t, `^SUB-\d{8}-\d{6}-[0-9A-F]{8}$`, p.PaymentExternalID)
		require.NotNil(t, p.PaymentSnapToken)
		assert.Equal(t, "snap-token-1", *p.PaymentSnapToken)

		require.NotNil(t, gw.last)
		assert.Equal(t, p.PaymentExternalID, gw.last.TransactionDetails.OrderID)
		assert.EqualValues(t, 150000, gw.last.TransactionDetails.GrossAmt)
		require.NotNil(t, gw.last.CustomerDetail)
		assert.Equal(t, "ngozi@crestview.ng", gw.last.CustomerDetail.Email)

		var stored model.SubscriptionPaymentModel
		require.NoError(t, db.First(&stored, "payment_id = ?", p.PaymentID).Error)
		require.NotNil(t, stored.PaymentSnapToken)
	})

	t.Run("gateway failure", func(t *testing.T) {
		_, err := NewSubscriptionService(db, &stubSnap{fail: true}, serverKey).Checkout(ctx, school.SchoolID, nil)
		requireStatus(t, err, fiber.StatusBadGateway)

		var failed int64
		require.NoError(t, db.Model(&model.SubscriptionPaymentModel{}).
			Where("payment_status = ?", model.PaymentStatusFailed).Count(&failed).Error)
		assert.EqualValues(t, 1, failed)
	})
}

func TestHandleNotification(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	svc := NewSubscriptionService(db, &stubSnap{}, serverKey)
	school := paidSchool(t, db, "Riverside High")

	checkout := func() *model.SubscriptionPaymentModel {
		p, err := svc.Checkout(ctx, school.SchoolID, nil)
		require.NoError(t, err)
		return p
	}
	schoolStatus := func() schoolModel.SubscriptionStatus {
		var m schoolModel.SchoolModel
		require.NoError(t, db.First(&m, "school_id = ?", school.SchoolID).Error)
		return m.SchoolSubscriptionStatus
	}
	events := func(status model.GatewayEventStatus) int64 {
		var n int64
		require.NoError(t, db.Model(&model.PaymentGatewayEventModel{}).
			Where("gateway_event_status = ?", status).Count(&n).Error)
		return n
	}

	t.Run("bad signature", func(t *testing.T) {
		n, raw := notify("SUB-x", "settlement", "150000.00")
		n.SignatureKey = "deadbeef"
		_, err := svc.HandleNotification(ctx, n, raw)
		requireStatus(t, err, fiber.StatusUnauthorized)
		assert.EqualValues(t, 1, events(model.GatewayEventFailed))
	})

	t.Run("unknown order", func(t *testing.T) {
		n, raw := notify("SUB-unknown", "settlement", "150000.00")
		out, err := svc.HandleNotification(ctx, n, raw)
		require.NoError(t, err)
		assert.Equal(t, "ignored", out.Status)
		assert.EqualValues(t, 1, events(model.GatewayEventIgnored))
	})

	t.Run("settlement activates school", func(t *testing.T) {
		p := checkout()
		n, raw := notify(p.PaymentExternalID, "settlement", "150000.00")
		out, err := svc.HandleNotification(ctx, n, raw)
		require.NoError(t, err)
		assert.Equal(t, "ok", out.Status)
		require.NotNil(t, out.PaymentStatus)
		assert.Equal(t, model.PaymentStatusPaid, *out.PaymentStatus)
		assert.Equal(t, schoolModel.SubscriptionActive, schoolStatus())

		var stored model.SubscriptionPaymentModel
		require.NoError(t, db.First(&stored, "payment_id = ?", p.PaymentID).Error)
		assert.NotNil(t, stored.PaymentPaidAt)
		assert.EqualValues(t, 1, events(model.GatewayEventProcessed))

		again, err := svc.HandleNotification(ctx, n, raw)
		require.NoError(t, err)
		assert.Equal(t, "ignored", again.Status)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		p := checkout()
		n, raw := notify(p.PaymentExternalID, "settlement", "1000.00")
		_, err := svc.HandleNotification(ctx, n, raw)
		requireStatus(t, err, fiber.StatusBadRequest)
	})

	t.Run("expire moves school to past_due", func(t *testing.T) {
		p := checkout()
		n, raw := notify(p.PaymentExternalID, "pending", "150000.00")
		out, err := svc.HandleNotification(ctx, n, raw)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, *out.PaymentStatus)
		assert.Equal(t, schoolModel.SubscriptionActive, schoolStatus())

		n, raw = notify(p.PaymentExternalID, "expire", "150000.00")
		out, err = svc.HandleNotification(ctx, n, raw)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusExpired, *out.PaymentStatus)
		assert.Equal(t, schoolModel.SubscriptionPastDue, schoolStatus())
	})

	t.Run("gateway disabled", func(t *testing.T) {
		n, raw := notify("SUB-x", "settlement", "150000.00")
		_, err := NewSubscriptionService(db, nil, "").HandleNotification(ctx, n, raw)
		requireStatus(t, err, fiber.StatusServiceUnavailable)
	})
}

func TestMapMidtransStatus(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          model.PaymentStatus
	}{
		{"capture", "accept", model.PaymentStatusPaid},
		{"capture", "challenge", model.PaymentStatusPending},
		{"capture", "deny", model.PaymentStatusFailed},
		{"settlement", "", model.PaymentStatusPaid},
		{"PENDING", "", model.PaymentStatusPending},
		{"deny", "", model.PaymentStatusFailed},
		{"cancel", "", model.PaymentStatusCancelled},
		{"expire", "", model.PaymentStatusExpired},
		{"refund", "", model.PaymentStatusPending},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapMidtransStatus(model.PaymentStatusPending, tc.status, tc.fraud), tc.status+"/"+tc.fraud)
	}

	st, ok := SchoolStatusFor(model.PaymentStatusCancelled)
	assert.True(t, ok)
	assert.Equal(t, schoolModel.SubscriptionPastDue, st)
	_, ok = SchoolStatusFor(model.PaymentStatusFailed)
	assert.False(t, ok)
}

func TestSignature(t *testing.T) {
	sig := Signature("SUB-1", "200", "150000.00", serverKey)
	assert.Len(t, sig, 128)
	assert.NotEqual(t, sig, Signature("SUB-1", "200", "150000.01", serverKey))
}
