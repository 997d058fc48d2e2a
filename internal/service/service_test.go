package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/pricing"
	"github.com/dessertshop/storefront-api/internal/repository"
)

// Map-backed mocks shared by the service tests.

var testRates = pricing.Rates{
	Tax:      decimal.NewFromFloat(0.07),
	Shipping: decimal.NewFromFloat(0.10),
}

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

type mockCategoryRepo struct {
	categories map[int64]*model.Category
	nextID     int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[int64]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, cat *model.Category) error {
	m.nextID++
	cat.ID = m.nextID
	cp := *cat
	m.categories[cat.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int64) (*model.Category, error) {
	cat, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *cat
	return &cp, nil
}

func (m *mockCategoryRepo) GetByName(_ context.Context, name string) (*model.Category, error) {
	for _, cat := range m.categories {
		if cat.Name == name {
			cp := *cat
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, cat := range m.categories {
		out = append(out, *cat)
	}
	return out, nil
}

func (m *mockCategoryRepo) ListActive(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, cat := range m.categories {
		if cat.Active {
			out = append(out, *cat)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, cat *model.Category) error {
	cp := *cat
	m.categories[cat.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.categories, id)
	return nil
}

type mockUnitRepo struct {
	units  map[int64]*model.Unit
	nextID int64
}

func newMockUnitRepo() *mockUnitRepo {
	return &mockUnitRepo{units: make(map[int64]*model.Unit)}
}

func (m *mockUnitRepo) Create(_ context.Context, unit *model.Unit) error {
	m.nextID++
	unit.ID = m.nextID
	cp := *unit
	m.units[unit.ID] = &cp
	return nil
}

func (m *mockUnitRepo) GetByID(_ context.Context, id int64) (*model.Unit, error) {
	unit, ok := m.units[id]
	if !ok {
		return nil, nil
	}
	cp := *unit
	return &cp, nil
}

func (m *mockUnitRepo) GetByCode(_ context.Context, code string) (*model.Unit, error) {
	for _, unit := range m.units {
		if unit.Code == code {
			cp := *unit
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUnitRepo) List(_ context.Context) ([]model.Unit, error) {
	var out []model.Unit
	for _, unit := range m.units {
		out = append(out, *unit)
	}
	return out, nil
}

func (m *mockUnitRepo) Update(_ context.Context, unit *model.Unit) error {
	cp := *unit
	m.units[unit.ID] = &cp
	return nil
}

func (m *mockUnitRepo) Delete(_ context.Context, id int64) error {
	delete(m.units, id)
	return nil
}

type mockProductRepo struct {
	products map[int64]*model.Product
	nextID   int64

	// repriced records cart-line reprice requests made through Update.
	repriced map[int64]decimal.Decimal
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[int64]*model.Product),
		repriced: make(map[int64]decimal.Decimal),
	}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	m.nextID++
	product.ID = m.nextID
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*model.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *product
	return &cp, nil
}

func (m *mockProductRepo) GetByName(_ context.Context, name string) (*model.Product, error) {
	for _, product := range m.products {
		if product.Name == name {
			cp := *product
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockProductRepo) List(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, product := range m.products {
		out = append(out, *product)
	}
	return out, nil
}

func (m *mockProductRepo) ListActiveByCategory(_ context.Context, categoryID int64) ([]model.Product, error) {
	var out []model.Product
	for _, product := range m.products {
		if product.Active && product.CategoryID == categoryID {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product, reprice bool, newPrice decimal.Decimal) error {
	cp := *product
	m.products[product.ID] = &cp
	if reprice {
		m.repriced[product.ID] = newPrice
	}
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	n := 0
	for _, product := range m.products {
		if product.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepo) CountByUnit(_ context.Context, unitID int64) (int, error) {
	n := 0
	for _, product := range m.products {
		if product.UnitID == unitID {
			n++
		}
	}
	return n, nil
}

type mockCartRepo struct {
	lines  map[int64]*model.CartLine
	nextID int64
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{lines: make(map[int64]*model.CartLine)}
}

func (m *mockCartRepo) ListByUser(_ context.Context, userID int64) ([]model.CartLine, error) {
	var out []model.CartLine
	for _, line := range m.lines {
		if line.UserID == userID {
			out = append(out, *line)
		}
	}
	return out, nil
}

func (m *mockCartRepo) GetLine(_ context.Context, lineID int64) (*model.CartLine, error) {
	line, ok := m.lines[lineID]
	if !ok {
		return nil, nil
	}
	cp := *line
	return &cp, nil
}

// AddOrIncrement mirrors the upsert: an existing (user, product) line gains
// the quantity and keeps its unit-price snapshot.
func (m *mockCartRepo) AddOrIncrement(_ context.Context, line *model.CartLine) error {
	for _, existing := range m.lines {
		if existing.UserID == line.UserID && existing.ProductID == line.ProductID {
			existing.Quantity += line.Quantity
			existing.LineAmount = existing.UnitPrice.Mul(decimal.NewFromInt(int64(existing.Quantity)))
			*line = *existing
			return nil
		}
	}
	m.nextID++
	line.ID = m.nextID
	cp := *line
	m.lines[line.ID] = &cp
	return nil
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, lineID int64, quantity int) error {
	line, ok := m.lines[lineID]
	if !ok {
		return nil
	}
	line.Quantity = quantity
	line.LineAmount = line.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return nil
}

func (m *mockCartRepo) DeleteLine(_ context.Context, lineID int64) error {
	delete(m.lines, lineID)
	return nil
}

func (m *mockCartRepo) ClearUser(_ context.Context, userID int64) error {
	for id, line := range m.lines {
		if line.UserID == userID {
			delete(m.lines, id)
		}
	}
	return nil
}

func (m *mockCartRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, line := range m.lines {
		if line.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockCartRepo) CountByProduct(_ context.Context, productID int64) (int, error) {
	n := 0
	for _, line := range m.lines {
		if line.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (m *mockCartRepo) CountByUnit(_ context.Context, unitID int64) (int, error) {
	n := 0
	for _, line := range m.lines {
		if line.UnitID == unitID {
			n++
		}
	}
	return n, nil
}

// mockOrderRepo emulates the order-creation transaction against the mock
// cart and product stores so the checkout flow is testable end to end.
type mockOrderRepo struct {
	cartRepo    *mockCartRepo
	productRepo *mockProductRepo

	orders  map[int64]*model.Order
	nextID  int64
	failErr error
}

func newMockOrderRepo(cartRepo *mockCartRepo, productRepo *mockProductRepo) *mockOrderRepo {
	return &mockOrderRepo{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orders:      make(map[int64]*model.Order),
	}
}

func (m *mockOrderRepo) CreateFromCart(ctx context.Context, userID int64, rates pricing.Rates) (int64, error) {
	if m.failErr != nil {
		return 0, m.failErr
	}
	lines, _ := m.cartRepo.ListByUser(ctx, userID)
	if len(lines) == 0 {
		return 0, repository.ErrEmptyCart
	}
	for _, line := range lines {
		product := m.productRepo.products[line.ProductID]
		if product == nil {
			return 0, repository.ErrProductVanished
		}
		if line.Quantity > product.QtyInStock {
			return 0, &model.StockShortage{
				ProductName: product.Name, Available: product.QtyInStock,
				UnitCode: product.UnitCode, UnitDesc: product.UnitDesc,
			}
		}
	}

	totals := pricing.Calculate(lines, rates)
	m.nextID++
	order := &model.Order{
		ID: m.nextID, UserID: userID,
		Subtotal: totals.Subtotal, TaxAmount: totals.Tax,
		ShippingAmount: totals.Shipping, TotalAmount: totals.Total,
	}
	for _, line := range lines {
		m.productRepo.products[line.ProductID].QtyInStock -= line.Quantity
		order.Lines = append(order.Lines, model.OrderLine{
			OrderID: order.ID, ProductID: line.ProductID, UnitID: line.UnitID,
			Quantity: line.Quantity, UnitPrice: line.UnitPrice, LineAmount: line.LineAmount,
		})
	}
	m.orders[order.ID] = order
	_ = m.cartRepo.ClearUser(ctx, userID)
	return order.ID, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*model.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	var out []model.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, order := range m.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateAdminFields(_ context.Context, order *model.Order) error {
	existing, ok := m.orders[order.ID]
	if !ok {
		return nil
	}
	existing.DatePaid = order.DatePaid
	existing.DateShipped = order.DateShipped
	existing.Notes = order.Notes
	return nil
}

func (m *mockOrderRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, order := range m.orders {
		if order.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockOrderRepo) CountLinesByProduct(_ context.Context, productID int64) (int, error) {
	n := 0
	for _, order := range m.orders {
		for _, line := range order.Lines {
			if line.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

func (m *mockOrderRepo) CountLinesByUnit(_ context.Context, unitID int64) (int, error) {
	n := 0
	for _, order := range m.orders {
		for _, line := range order.Lines {
			if line.UnitID == unitID {
				n++
			}
		}
	}
	return n, nil
}

type mockGateway struct {
	sessions []CheckoutSession
	url      string
	err      error
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, cs CheckoutSession) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sessions = append(m.sessions, cs)
	return m.url, nil
}

type mockPublisher struct {
	jobs []model.EmailJob
}

func (m *mockPublisher) PublishEmail(_ context.Context, job model.EmailJob) error {
	m.jobs = append(m.jobs, job)
	return nil
}
