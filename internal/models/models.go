package models

import (
	"time"

	"github.com/google/uuid"
)

type ExpenseCategory string

type BudgetPeriod string

type Priority string

type ApprovalStatus string

type AdjustmentType string

type ExpiryStatus string

type Urgency string

type GatewayProvider string

type GatewayEnvironment string

const (
	CategoryIngredients ExpenseCategory = "ingredients"
	CategoryUtilities   ExpenseCategory = "utilities"
	CategoryRent        ExpenseCategory = "rent"
	CategorySalaries    ExpenseCategory = "salaries"
	CategoryEquipment   ExpenseCategory = "equipment"
	CategoryMarketing   ExpenseCategory = "marketing"
	CategoryOther       ExpenseCategory = "other"

	PeriodDaily     BudgetPeriod = "daily"
	PeriodWeekly    BudgetPeriod = "weekly"
	PeriodMonthly   BudgetPeriod = "monthly"
	PeriodQuarterly BudgetPeriod = "quarterly"
	PeriodYearly    BudgetPeriod = "yearly"

	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"

	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"

	AdjustmentPurchase   AdjustmentType = "purchase"
	AdjustmentWaste      AdjustmentType = "waste"
	AdjustmentCorrection AdjustmentType = "correction"
	AdjustmentTransfer   AdjustmentType = "transfer"

	ExpiryNone     ExpiryStatus = "none"
	ExpiryWarning  ExpiryStatus = "warning"
	ExpiryCritical ExpiryStatus = "critical"
	ExpiryToday    ExpiryStatus = "today"
	ExpiryExpired  ExpiryStatus = "expired"

	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"

	ProviderStripe GatewayProvider = "stripe"
	ProviderSquare GatewayProvider = "square"
	ProviderPayPal GatewayProvider = "paypal"

	EnvironmentSandbox GatewayEnvironment = "sandbox"
	EnvironmentLive    GatewayEnvironment = "live"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ExpenseType struct {
	ID                     uuid.UUID       `json:"id"`
	Name                   string          `json:"name"`
	Category               ExpenseCategory `json:"category"`
	Color                  string          `json:"color"`
	BudgetLimitCents       int64           `json:"budget_limit_cents"`
	BudgetPeriod           BudgetPeriod    `json:"budget_period"`
	IsActive               bool            `json:"is_active"`
	TaxDeductible          bool            `json:"tax_deductible"`
	RequiresApproval       bool            `json:"requires_approval"`
	ApprovalThresholdCents int64           `json:"approval_threshold_cents"`
	AutoRecurring          bool            `json:"auto_recurring"`
	NotificationThreshold  int             `json:"notification_threshold"`
	AllowOverBudget        bool            `json:"allow_over_budget"`
	DefaultVendors         []string        `json:"default_vendors"`
	Priority               Priority        `json:"priority"`
	RestrictedUsers        []uuid.UUID     `json:"restricted_users"`
	Tags                   []string        `json:"tags"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

type Expense struct {
	ID              uuid.UUID      `json:"id"`
	ExpenseTypeID   uuid.UUID      `json:"expense_type_id"`
	AmountCents     int64          `json:"amount_cents"`
	ExpenseDate     time.Time      `json:"expense_date"`
	Vendor          string         `json:"vendor"`
	ReceiptNumber   *string        `json:"receipt_number,omitempty"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	ApprovedBy      *uuid.UUID     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	PaymentMethod   string         `json:"payment_method"`
	Tags            []string       `json:"tags"`
	CreatedBy       uuid.UUID      `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ExpenseTypeRule хранится и отображается, но не исполняется: condition и
// action выбираются из закрытых каталогов шаблонов.
type ExpenseTypeRule struct {
	ID        uuid.UUID `json:"id"`
	TypeID    uuid.UUID `json:"type_id"`
	Condition string    `json:"condition"`
	Action    string    `json:"action"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Ingredient struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Unit             string     `json:"unit"`
	CurrentStock     float64    `json:"current_stock"`
	MinimumStock     float64    `json:"minimum_stock"`
	MaximumStock     float64    `json:"maximum_stock"`
	CostPerUnitCents int64      `json:"cost_per_unit_cents"`
	Supplier         string     `json:"supplier"`
	LeadTimeDays     int        `json:"lead_time_days"`
	DailyUsage       float64    `json:"daily_usage"`
	IsPerishable     bool       `json:"is_perishable"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	StorageLocation  string     `json:"storage_location"`
	Allergens        []string   `json:"allergens"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// StockAdjustment — неизменяемая запись журнала движения остатков.
type StockAdjustment struct {
	ID             uuid.UUID      `json:"id"`
	IngredientID   uuid.UUID      `json:"ingredient_id"`
	AdjustmentType AdjustmentType `json:"adjustment_type"`
	Quantity       float64        `json:"quantity"`
	PreviousStock  float64        `json:"previous_stock"`
	NewStock       float64        `json:"new_stock"`
	Reference      string         `json:"reference"`
	Note           string         `json:"note"`
	CreatedBy      uuid.UUID      `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

type PaymentGatewayConfig struct {
	ID                  uuid.UUID          `json:"id"`
	Provider            GatewayProvider    `json:"provider"`
	APIKey              string             `json:"api_key"`
	Secret              string             `json:"-"`
	WebhookURL          string             `json:"webhook_url"`
	Environment         GatewayEnvironment `json:"environment"`
	MinTransactionCents int64              `json:"min_transaction_cents"`
	MaxTransactionCents int64              `json:"max_transaction_cents"`
	IsActive            bool               `json:"is_active"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

type StaffMember struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

// ValidCategory проверяет категорию расходов по закрытому списку.
func ValidCategory(c ExpenseCategory) bool {
	switch c {
	case CategoryIngredients, CategoryUtilities, CategoryRent, CategorySalaries,
		CategoryEquipment, CategoryMarketing, CategoryOther:
		return true
	}
	return false
}

// ValidBudgetPeriod проверяет период бюджета.
func ValidBudgetPeriod(p BudgetPeriod) bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// ValidAdjustmentType проверяет тип корректировки остатка.
func ValidAdjustmentType(t AdjustmentType) bool {
	switch t {
	case AdjustmentPurchase, AdjustmentWaste, AdjustmentCorrection, AdjustmentTransfer:
		return true
	}
	return false
}
