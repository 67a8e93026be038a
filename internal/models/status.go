package models

// Order and payment statuses are closed string enums. Every legal transition
// is listed in an explicit table; anything not in the table is rejected.

type SupplierOrderStatus string

const (
	SupplierOrderProcessing SupplierOrderStatus = "processing"
	SupplierOrderArrived    SupplierOrderStatus = "arrived"
	SupplierOrderCompleted  SupplierOrderStatus = "completed"
)

var supplierOrderTransitions = map[SupplierOrderStatus][]SupplierOrderStatus{
	SupplierOrderProcessing: {SupplierOrderArrived},
	SupplierOrderArrived:    {SupplierOrderCompleted},
	SupplierOrderCompleted:  {},
}

func (s SupplierOrderStatus) Valid() bool {
	_, ok := supplierOrderTransitions[s]
	return ok
}

func (s SupplierOrderStatus) CanTransitionTo(next SupplierOrderStatus) bool {
	for _, allowed := range supplierOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type CustomerOrderStatus string

const (
	CustomerOrderPending    CustomerOrderStatus = "pending"
	CustomerOrderProcessing CustomerOrderStatus = "processing"
	CustomerOrderCompleted  CustomerOrderStatus = "completed"
	CustomerOrderCancelled  CustomerOrderStatus = "cancelled"
)

var customerOrderTransitions = map[CustomerOrderStatus][]CustomerOrderStatus{
	CustomerOrderPending:    {CustomerOrderProcessing, CustomerOrderCancelled},
	CustomerOrderProcessing: {CustomerOrderCompleted, CustomerOrderCancelled},
	CustomerOrderCompleted:  {},
	CustomerOrderCancelled:  {},
}

func (s CustomerOrderStatus) Valid() bool {
	_, ok := customerOrderTransitions[s]
	return ok
}

func (s CustomerOrderStatus) CanTransitionTo(next CustomerOrderStatus) bool {
	for _, allowed := range customerOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s CustomerOrderStatus) Terminal() bool {
	return len(customerOrderTransitions[s]) == 0 && s.Valid()
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    {},
	PaymentRefunded:  {},
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEWallet      PaymentMethod = "e_wallet"
)

var paymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodCash:         {},
	PaymentMethodCreditCard:   {},
	PaymentMethodDebitCard:    {},
	PaymentMethodBankTransfer: {},
	PaymentMethodEWallet:      {},
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethods[m]
	return ok
}

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)
