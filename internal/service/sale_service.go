package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/apierror"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService owns the sale lifecycle: draft, item mutation, payment capture,
// finalize and cancel. Status is always derived from (paid, total); Finalize
// and Cancel are explicit terminal transitions layered on top of it. Every
// mutation runs in a single transaction, recomputes totals from the full
// current item/payment set and appends to the sale's event trail.
type SaleService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*model.Sale, error)
	AddItem(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID uuid.UUID, req dto.AddSaleItemRequest) (*model.Sale, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID, itemID uuid.UUID, req dto.UpdateSaleItemRequest) (*model.Sale, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, saleID, itemID uuid.UUID) (*model.Sale, error)
	AddPayment(ctx context.Context, userID uuid.UUID, saleID uuid.UUID, req dto.AddSalePaymentRequest) (*model.Sale, error)
	Finalize(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID uuid.UUID, req dto.FinalizeSaleRequest) (*model.Sale, error)
	Cancel(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID uuid.UUID, req dto.CancelSaleRequest) (*model.Sale, error)

	GetDetail(ctx context.Context, saleID uuid.UUID) (*model.Sale, error)
	GetBalance(ctx context.Context, saleID uuid.UUID) (*dto.SaleBalanceResponse, error)
}

type saleService struct {
	sales     repository.SaleRepository
	cash      repository.CashRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	overrides OverrideService
}

func NewSaleService(
	sales repository.SaleRepository,
	cash repository.CashRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	overrides OverrideService,
) SaleService {
	return &saleService{
		sales:     sales,
		cash:      cash,
		products:  products,
		customers: customers,
		overrides: overrides,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// The sale is pinned to the session open right now; it does not float to
// whatever session is open later.

func (s *saleService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*model.Sale, error) {
	registerID, err := uuid.Parse(req.CashRegisterID)
	if err != nil {
		return nil, apierror.Validation("cash_register_id is not a valid uuid")
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apierror.Validation("customer_id is not a valid uuid")
	}

	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierror.NotFound("customer not found")
	}

	session, err := s.cash.FindOpenSessionByRegister(ctx, registerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Conflict("cash register has no open session")
		}
		return nil, err
	}

	now := time.Now().UTC()
	sale := &model.Sale{
		Status:          model.SaleDraft,
		CashRegisterID:  registerID,
		CashSessionID:   session.ID,
		CustomerID:      customerID,
		CreatedByUserID: userID,
		CreatedAt:       now,
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return err
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventCreated, nil, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── AddItem ───────────────────────────────────────────────────────────────────
// Original price is read from the catalog at call time. Any price concession
// by a non-admin (final differs from original, or a line discount) must be
// supervisor-approved through a cash-movement override code.

func (s *saleService) AddItem(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID uuid.UUID, req dto.AddSaleItemRequest) (*model.Sale, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("product_id is not a valid uuid")
	}

	sale, err := s.findEditable(ctx, saleID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apierror.Validation("product is inactive")
	}

	now := time.Now().UTC()
	line, err := s.buildLine(ctx, userID, isAdmin, product.SalePrice, req.Quantity, req.UnitPriceFinal, req.DiscountAmount, req.OverrideCode, now)
	if err != nil {
		return nil, err
	}
	line.SaleID = sale.ID
	line.ProductID = productID
	line.CreatedByUserID = userID
	line.CreatedAt = now

	detail := fmt.Sprintf("product=%s qty=%s original=%s final=%s discount=%s",
		productID, line.Quantity, line.UnitPriceOriginal, line.UnitPriceFinal, line.DiscountAmount)

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.CreateItemTx(tx, line); err != nil {
			// Unique index on (sale_id, product_id): the product already has
			// a line on this sale, even under a concurrent add.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("product already has a line on this sale; update the item instead")
			}
			return err
		}
		if err := s.recalculateTx(tx, sale, userID, now); err != nil {
			return err
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventItemAdded, &detail, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── UpdateItem ────────────────────────────────────────────────────────────────
// Concession gating compares against the item's ORIGINAL price, not its
// previous final price. Omitting unit_price_final resets the line to the
// original price.

func (s *saleService) UpdateItem(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID, itemID uuid.UUID, req dto.UpdateSaleItemRequest) (*model.Sale, error) {
	sale, err := s.findEditable(ctx, saleID)
	if err != nil {
		return nil, err
	}

	item, err := s.sales.FindItem(ctx, saleID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("sale item not found")
		}
		return nil, err
	}

	now := time.Now().UTC()
	line, err := s.buildLine(ctx, userID, isAdmin, item.UnitPriceOriginal, req.Quantity, req.UnitPriceFinal, req.DiscountAmount, req.OverrideCode, now)
	if err != nil {
		return nil, err
	}
	item.Quantity = line.Quantity
	item.UnitPriceFinal = line.UnitPriceFinal
	item.DiscountAmount = line.DiscountAmount
	item.LineTotalAmount = line.LineTotalAmount
	item.UpdatedByUserID = &userID
	item.UpdatedAt = &now

	detail := fmt.Sprintf("item=%s qty=%s original=%s final=%s discount=%s",
		item.ID, item.Quantity, item.UnitPriceOriginal, item.UnitPriceFinal, item.DiscountAmount)

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.UpdateItemTx(tx, item); err != nil {
			return err
		}
		if err := s.recalculateTx(tx, sale, userID, now); err != nil {
			return err
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventItemUpdated, &detail, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── RemoveItem ────────────────────────────────────────────────────────────────
// No override required to remove a line.

func (s *saleService) RemoveItem(ctx context.Context, userID uuid.UUID, saleID, itemID uuid.UUID) (*model.Sale, error) {
	sale, err := s.findEditable(ctx, saleID)
	if err != nil {
		return nil, err
	}

	item, err := s.sales.FindItem(ctx, saleID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("sale item not found")
		}
		return nil, err
	}

	now := time.Now().UTC()
	detail := fmt.Sprintf("item=%s product=%s", item.ID, item.ProductID)

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.DeleteItemTx(tx, item); err != nil {
			return err
		}
		if err := s.recalculateTx(tx, sale, userID, now); err != nil {
			return err
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventItemRemoved, &detail, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── AddPayment ────────────────────────────────────────────────────────────────
// Paid is recomputed by summing every payment row, never by incrementing the
// running counter, so concurrent captures converge.

func (s *saleService) AddPayment(ctx context.Context, userID uuid.UUID, saleID uuid.UUID, req dto.AddSalePaymentRequest) (*model.Sale, error) {
	method := model.SalePaymentMethod(req.Method)
	if !method.Valid() {
		return nil, apierror.Validation("unknown payment method: " + req.Method)
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("payment amount must be positive")
	}

	sale, err := s.findEditable(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !sale.TotalAmount.IsPositive() {
		return nil, apierror.Validation("sale has no items to pay")
	}

	now := time.Now().UTC()
	payment := &model.SalePayment{
		SaleID:            sale.ID,
		Method:            method,
		Amount:            req.Amount,
		AuthorizationCode: req.AuthorizationCode,
		CreatedByUserID:   userID,
		CreatedAt:         now,
	}
	if method == model.PaymentCash {
		if req.AmountReceived == nil {
			return nil, apierror.Validation("amount_received is required for cash payments")
		}
		if req.AmountReceived.LessThan(req.Amount) {
			return nil, apierror.Validation("amount_received cannot be less than the payment amount")
		}
		change := req.AmountReceived.Sub(req.Amount)
		payment.AmountReceived = req.AmountReceived
		payment.ChangeGiven = &change
	} else {
		payment.AmountReceived = req.AmountReceived
	}

	detail := fmt.Sprintf("method=%s amount=%s", method, req.Amount)

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.CreatePaymentTx(tx, payment); err != nil {
			return err
		}
		paid, err := s.sales.SumPaymentsTx(tx, sale.ID)
		if err != nil {
			return err
		}
		sale.PaidAmount = paid
		sale.Status = model.DeriveSaleStatus(paid, sale.TotalAmount)
		sale.UpdatedByUserID = &userID
		sale.UpdatedAt = &now
		if err := s.sales.UpdateTx(tx, sale); err != nil {
			return err
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventPaymentAdded, &detail, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── Finalize ──────────────────────────────────────────────────────────────────
// A non-admin applying a sale-level discount presents a close-session purpose
// code: the purpose tag is reused from the session domain as a generic
// "supervisor approval". Cash payments, if any, post a Supply movement into
// the sale's pinned session; card/PIX/etc never touch the till.

func (s *saleService) Finalize(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID uuid.UUID, req dto.FinalizeSaleRequest) (*model.Sale, error) {
	sale, err := s.findEditable(ctx, saleID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	saleDiscount := sale.SaleDiscountAmount
	if req.SaleDiscountAmount != nil {
		if req.SaleDiscountAmount.IsNegative() {
			return nil, apierror.Validation("sale discount cannot be negative")
		}
		saleDiscount = *req.SaleDiscountAmount
	}
	if !isAdmin && saleDiscount.IsPositive() {
		if err := s.consumeGate(ctx, req.OverrideCode, model.PurposeCloseSession, userID, now); err != nil {
			return nil, err
		}
	}

	session, err := s.cash.FindSessionByID(ctx, sale.CashSessionID)
	if err != nil {
		return nil, err
	}
	if session.ClosedAt != nil {
		return nil, apierror.Conflict("sale's cash session is already closed")
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		sale.SaleDiscountAmount = saleDiscount
		if err := s.recalculateTx(tx, sale, userID, now); err != nil {
			return err
		}
		if !sale.TotalAmount.IsPositive() {
			return apierror.Conflict("sale has no payable total")
		}
		if sale.PaidAmount.LessThan(sale.TotalAmount) {
			return apierror.Conflict("sale is not fully paid")
		}

		sale.FinalizedByUserID = &userID
		sale.FinalizedAt = &now
		if err := s.sales.UpdateTx(tx, sale); err != nil {
			return err
		}

		cash, err := s.sales.SumCashPaymentsTx(tx, sale.ID)
		if err != nil {
			return err
		}
		if cash.IsPositive() {
			note := fmt.Sprintf("cash received for sale %d", sale.Code)
			mov := &model.CashMovement{
				CashSessionID:   sale.CashSessionID,
				Type:            model.MovementSupply,
				Amount:          cash,
				Notes:           &note,
				CreatedByUserID: userID,
				CreatedAt:       now,
			}
			if err := s.cash.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventFinalized, nil, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// Cancellation reverses recorded cash by posting a Withdrawal for the summed
// cash payments. The withdrawal happens on every cancel with cash recorded,
// finalized or not, mirroring the Supply posted at finalize only in the
// finalized case.

func (s *saleService) Cancel(ctx context.Context, userID uuid.UUID, isAdmin bool, saleID uuid.UUID, req dto.CancelSaleRequest) (*model.Sale, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apierror.Validation("cancel reason is required")
	}

	sale, err := s.find(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == model.SaleCancelled {
		return nil, apierror.Conflict("sale is already cancelled")
	}

	now := time.Now().UTC()
	// Cancellation is as sensitive as reopening a session; the reopen purpose
	// doubles as the approval tag here.
	if !isAdmin {
		if err := s.consumeGate(ctx, req.OverrideCode, model.PurposeReopenSession, userID, now); err != nil {
			return nil, err
		}
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		cash, err := s.sales.SumCashPaymentsTx(tx, sale.ID)
		if err != nil {
			return err
		}
		if cash.IsPositive() {
			note := fmt.Sprintf("cash returned for cancelled sale %d", sale.Code)
			mov := &model.CashMovement{
				CashSessionID:   sale.CashSessionID,
				Type:            model.MovementWithdrawal,
				Amount:          cash,
				Notes:           &note,
				CreatedByUserID: userID,
				CreatedAt:       now,
			}
			if err := s.cash.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}

		sale.Status = model.SaleCancelled
		sale.CancelledByUserID = &userID
		sale.CancelledAt = &now
		sale.CancelReason = &reason
		if err := s.sales.UpdateTx(tx, sale); err != nil {
			return err
		}
		return s.sales.CreateEventTx(tx, saleEvent(sale.ID, model.EventCancelled, &reason, userID, now))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ── Read surface ──────────────────────────────────────────────────────────────

func (s *saleService) GetDetail(ctx context.Context, saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindDetail(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("sale not found")
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) GetBalance(ctx context.Context, saleID uuid.UUID) (*dto.SaleBalanceResponse, error) {
	sale, err := s.find(ctx, saleID)
	if err != nil {
		return nil, err
	}
	remaining := sale.TotalAmount.Sub(sale.PaidAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &dto.SaleBalanceResponse{
		Total:     sale.TotalAmount,
		Paid:      sale.PaidAmount,
		Remaining: remaining,
	}, nil
}

// ── Internals ─────────────────────────────────────────────────────────────────

func (s *saleService) find(ctx context.Context, saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("sale not found")
		}
		return nil, err
	}
	return sale, nil
}

// findEditable loads the sale and rejects cancelled or finalized ones.
func (s *saleService) findEditable(ctx context.Context, saleID uuid.UUID) (*model.Sale, error) {
	sale, err := s.find(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == model.SaleCancelled {
		return nil, apierror.Conflict("sale is cancelled")
	}
	if sale.FinalizedAt != nil {
		return nil, apierror.Conflict("sale is finalized")
	}
	return sale, nil
}

// buildLine validates a line mutation against the original catalog price and
// runs the concession gate. The returned item carries only the priced fields.
func (s *saleService) buildLine(ctx context.Context, userID uuid.UUID, isAdmin bool, original, qty decimal.Decimal, finalPrice, discount *decimal.Decimal, overrideCode *string, now time.Time) (*model.SaleItem, error) {
	if !qty.IsPositive() {
		return nil, apierror.Validation("quantity must be positive")
	}

	final := original
	if finalPrice != nil {
		final = *finalPrice
	}
	if final.IsNegative() {
		return nil, apierror.Validation("unit price cannot be negative")
	}

	disc := decimal.Zero
	if discount != nil {
		disc = *discount
	}
	if disc.IsNegative() {
		return nil, apierror.Validation("discount cannot be negative")
	}

	lineTotal := final.Mul(qty).Sub(disc)
	if lineTotal.IsNegative() {
		return nil, apierror.Validation("line total cannot be negative")
	}

	if !isAdmin && (!final.Equal(original) || disc.IsPositive()) {
		if err := s.consumeGate(ctx, overrideCode, model.PurposeCashMovement, userID, now); err != nil {
			return nil, err
		}
	}

	return &model.SaleItem{
		Quantity:          qty,
		UnitPriceOriginal: original,
		UnitPriceFinal:    final,
		DiscountAmount:    disc,
		LineTotalAmount:   lineTotal,
	}, nil
}

// recalculateTx re-derives the sale's monetary fields and status from the
// full current item set. Total floors at zero.
func (s *saleService) recalculateTx(tx *gorm.DB, sale *model.Sale, userID uuid.UUID, now time.Time) error {
	items, err := s.sales.ListItemsTx(tx, sale.ID)
	if err != nil {
		return err
	}

	subtotal := decimal.Zero
	itemDiscounts := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPriceFinal.Mul(it.Quantity))
		itemDiscounts = itemDiscounts.Add(it.DiscountAmount)
	}
	total := subtotal.Sub(itemDiscounts).Sub(sale.SaleDiscountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	sale.SubtotalAmount = subtotal
	sale.ItemDiscountTotalAmount = itemDiscounts
	sale.TotalAmount = total
	sale.Status = model.DeriveSaleStatus(sale.PaidAmount, total)
	sale.UpdatedByUserID = &userID
	sale.UpdatedAt = &now
	return s.sales.UpdateTx(tx, sale)
}

func (s *saleService) consumeGate(ctx context.Context, code *string, purpose model.OverridePurpose, userID uuid.UUID, now time.Time) error {
	if code == nil || strings.TrimSpace(*code) == "" {
		return apierror.Unauthorized("admin override code required")
	}
	_, err := s.overrides.ValidateAndConsume(ctx, *code, purpose, userID, now)
	return err
}

func saleEvent(saleID uuid.UUID, typ model.SaleEventType, detail *string, userID uuid.UUID, now time.Time) *model.SaleEvent {
	return &model.SaleEvent{
		SaleID:            saleID,
		Type:              typ,
		Details:           detail,
		PerformedByUserID: userID,
		PerformedAt:       now,
	}
}
