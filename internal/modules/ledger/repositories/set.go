package repositories

import "gorm.io/gorm"

// Set bundles every ledger repository behind one value for wiring
type Set struct {
	Transactions TransactionRepo
	Customers    CustomerRepo
	Items        ItemRepo
	Inventory    InventoryRepo
	Movements    StockMovementRepo
	Chat         ChatRepo
	Usage        AIUsageRepo
}

// NewSet builds the GORM-backed repositories
func NewSet(db *gorm.DB) *Set {
	return &Set{
		Transactions: NewTransactionRepo(db),
		Customers:    NewCustomerRepo(db),
		Items:        NewItemRepo(db),
		Inventory:    NewInventoryRepo(db),
		Movements:    NewStockMovementRepo(db),
		Chat:         NewChatRepo(db),
		Usage:        NewAIUsageRepo(db),
	}
}
