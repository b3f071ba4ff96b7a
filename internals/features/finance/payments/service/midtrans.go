package service

import (
	"errors"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"schoolhub_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Snap gateway
========================================================= */

// SnapGateway is the part of the Midtrans Snap client checkout needs.
type SnapGateway interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// NewSnapGateway builds a Snap client for sandbox or production.
func NewSnapGateway(serverKey string, useProduction bool) SnapGateway {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	var c snap.Client
	c.New(serverKey, env)
	return &c
}

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// BuildSnapRequest turns a pending payment into a Snap transaction request.
// The order id doubles as the item id so the dashboard shows one line per plan.
func BuildSnapRequest(p *model.SubscriptionPaymentModel, schoolName string, cust CustomerInput) (*snap.Request, error) {
	amount := p.PaymentAmount.Round(0).IntPart()
	if amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	if strings.TrimSpace(p.PaymentExternalID) == "" {
		return nil, errors.New("payment external id is required")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  p.PaymentExternalID,
			GrossAmt: amount,
		},
		CustomField1: truncate(schoolName, 40),
		CustomField2: p.PaymentSchoolID.String(),
	}
	req.Items = &[]midtrans.ItemDetails{{
		ID:       p.PaymentExternalID,
		Name:     truncate("Subscription "+p.PaymentPlan, 50),
		Price:    amount,
		Qty:      1,
		Category: "subscription",
	}}
	if cust.Email != "" {
		req.CustomerDetail = &midtrans.CustomerDetails{
			FName: cust.FirstName,
			LName: cust.LastName,
			Email: cust.Email,
			Phone: cust.Phone,
		}
	}
	return req, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
