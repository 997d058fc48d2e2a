package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/pricing"
	"github.com/dessertshop/storefront-api/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrNothingToCheckOut is the soft "empty cart" condition at checkout
	// start; nothing has been charged and nothing is mutated.
	ErrNothingToCheckOut = errors.New("nothing to check out")
	// ErrOrderCreationFailed means payment was captured but the
	// order-creation transaction failed. The user must be told to contact
	// the administrator; automatic refunds are out of scope.
	ErrOrderCreationFailed = errors.New("order creation failed after successful payment")
	// ErrCheckoutAlreadyProcessed guards replayed success callbacks for a
	// payment session that already produced an order.
	ErrCheckoutAlreadyProcessed = errors.New("checkout session already processed")
)

// PaymentGateway abstracts the hosted-payment provider. The orchestrator
// builds a session; the gateway returns the URL the customer must be
// redirected to.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, session CheckoutSession) (paymentURL string, err error)
}

type CheckoutSession struct {
	CustomerEmail string
	CustomerName  string
	Items         []CheckoutItem
	// TaxRatePercent is the tax rate expressed as a percentage (7 for 7%),
	// registered once per session as a line-level tax rate.
	TaxRatePercent float64
	// ShippingFeeMinor is the flat shipping fee in minor currency units.
	ShippingFeeMinor int64
	SuccessURL       string
	CancelURL        string
}

type CheckoutItem struct {
	// Name carries the product name, suffixed with the lowercased unit
	// description unless the unit is the implicit "EA".
	Name            string
	UnitAmountMinor int64
	Quantity        int
}

// MailPublisher queues outbound email jobs for the mailer worker.
type MailPublisher interface {
	PublishEmail(ctx context.Context, job model.EmailJob) error
}

// CheckoutService turns an authenticated user's cart into a paid order. The
// payment provider's success callback is a fresh request that shares no
// in-memory state with Begin.
type CheckoutService struct {
	userRepo    repository.UserRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	gateway     PaymentGateway
	mail        MailPublisher
	redisClient *redis.Client
	rates       pricing.Rates
	taxPercent  float64
	siteDomain  string
	log         *slog.Logger
}

func NewCheckoutService(
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	mail MailPublisher,
	redisClient *redis.Client,
	rates pricing.Rates,
	siteDomain string,
	log *slog.Logger,
) *CheckoutService {
	taxPercent, _ := rates.Tax.Mul(decimal.NewFromInt(100)).Float64()
	return &CheckoutService{
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		mail:        mail,
		redisClient: redisClient,
		rates:       rates,
		taxPercent:  taxPercent,
		siteDomain:  siteDomain,
		log:         log,
	}
}

// Begin validates the cart against live stock and opens a hosted payment
// session. It mutates nothing; the caller redirects the customer to the
// returned URL.
func (s *CheckoutService) Begin(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return "", ErrNothingToCheckOut
	}

	// Stock may have moved since the lines were written; re-check every
	// line against the live product record.
	items := make([]CheckoutItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return "", fmt.Errorf("get product %d: %w", line.ProductID, err)
		}
		if product == nil {
			return "", repository.ErrProductVanished
		}
		if line.Quantity > product.QtyInStock {
			return "", &model.StockShortage{
				ProductName: product.Name,
				Available:   product.QtyInStock,
				UnitCode:    product.UnitCode,
				UnitDesc:    product.UnitDesc,
			}
		}
		items = append(items, CheckoutItem{
			Name:            checkoutItemName(&line),
			UnitAmountMinor: toMinorUnits(line.UnitPrice),
			Quantity:        line.Quantity,
		})
	}

	totals := pricing.Calculate(lines, s.rates)

	paymentURL, err := s.gateway.CreateCheckoutSession(ctx, CheckoutSession{
		CustomerEmail:    user.Email,
		CustomerName:     user.Name,
		Items:            items,
		TaxRatePercent:   s.taxPercent,
		ShippingFeeMinor: toMinorUnits(totals.Shipping),
		SuccessURL:       s.siteDomain + "/api/v1/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        s.siteDomain + "/api/v1/checkout/cancel",
	})
	if err != nil {
		return "", fmt.Errorf("create payment session: %w", err)
	}
	return paymentURL, nil
}

// Confirm handles the provider's success callback: payment is already
// captured, so the only remaining step is the order-creation transaction.
// Replays of the same session id are answered with
// ErrCheckoutAlreadyProcessed instead of a second order.
func (s *CheckoutService) Confirm(ctx context.Context, userID int64, sessionID string) (int64, error) {
	if sessionID != "" && s.redisClient != nil {
		exists, err := s.redisClient.Exists(ctx, sessionKey(sessionID)).Result()
		if err != nil {
			s.log.Error("check checkout idempotency key", "error", err)
		} else if exists > 0 {
			return 0, ErrCheckoutAlreadyProcessed
		}
	}

	orderID, err := s.orderRepo.CreateFromCart(ctx, userID, s.rates)
	if err != nil {
		// Payment went through; this is the consistency failure the design
		// escalates rather than compensates.
		s.log.Error("order creation failed after payment",
			"user_id", userID, "session_id", sessionID, "error", err)
		return 0, ErrOrderCreationFailed
	}

	if sessionID != "" && s.redisClient != nil {
		if err := s.redisClient.Set(ctx, sessionKey(sessionID), orderID, 24*time.Hour).Err(); err != nil {
			s.log.Error("set checkout idempotency key", "error", err)
		}
	}

	s.sendConfirmation(ctx, userID, orderID)
	return orderID, nil
}

func (s *CheckoutService) sendConfirmation(ctx context.Context, userID, orderID int64) {
	if s.mail == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		s.log.Error("load user for confirmation email", "user_id", userID, "error", err)
		return
	}
	job := model.EmailJob{
		ID:      uuid.NewString(),
		To:      user.Email,
		Subject: fmt.Sprintf("Your order #%d is confirmed", orderID),
		Body: fmt.Sprintf("Hi %s,\n\nThank you for your order! Your order ID is %d.\n",
			user.Name, orderID),
	}
	if err := s.mail.PublishEmail(ctx, job); err != nil {
		// The order stands either way; a lost confirmation email is not
		// worth failing the checkout over.
		s.log.Error("publish confirmation email", "order_id", orderID, "error", err)
	}
}

func sessionKey(sessionID string) string {
	return "checkout_session:" + sessionID
}

func checkoutItemName(line *model.CartLine) string {
	if line.UnitCode == model.EachUnitCode {
		return line.ProductName
	}
	return fmt.Sprintf("%s (%s)", line.ProductName, strings.ToLower(line.UnitDesc))
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
