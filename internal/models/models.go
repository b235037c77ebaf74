package models

import "time"

// Roles. Admins have company-wide authority: their ledger entries take effect
// immediately and they have the final say on pending reviews. Team leads may
// credit/debit their people, but everything they submit waits for admin review.
const (
	RoleAdmin    = "admin"
	RoleTeamLead = "team_lead"
	RoleMember   = "member"
)

// Ledger entry kinds. Earn is always positive, spend always negative,
// adjust is non-zero and carries its sign (+ credits, - debits).
const (
	KindEarn   = "earn"
	KindSpend  = "spend"
	KindAdjust = "adjust"
)

// Ledger entry statuses. Only approved entries count toward a balance.
const (
	EntryPending  = "pending"
	EntryApproved = "approved"
	EntryRejected = "rejected"
)

// Redemption statuses.
const (
	RedemptionPending  = "pending"
	RedemptionApproved = "approved"
	RedemptionRejected = "rejected"
	RedemptionIssued   = "issued"
)

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Team struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	TeamID       *string   `json:"team_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type ShopItem struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type EarningRule struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerEntry is one signed coin movement. Rows are append-only: amount,
// kind and owner never change after insert, and the status moves at most
// once, from pending to approved or rejected.
type LedgerEntry struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	UserID     string     `json:"user_id"`
	Amount     int64      `json:"amount"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason"`
	RefType    *string    `json:"ref_type,omitempty"`
	RefID      *string    `json:"ref_id,omitempty"`
	CreatedBy  string     `json:"created_by"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Redemption is a request to exchange coins for a shop item. Price is a
// snapshot taken at creation time so later catalog edits cannot change
// what the requester is charged or refunded.
type Redemption struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	UserID     string     `json:"user_id"`
	ShopItemID string     `json:"shop_item_id"`
	Price      int64      `json:"price"`
	Comment    string     `json:"comment"`
	Status     string     `json:"status"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	IssuedBy   *string    `json:"issued_by,omitempty"`
	IssuedAt   *time.Time `json:"issued_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// InviteToken is a bounded-use capability for self-registration. The usage
// count never exceeds the limit; exhaustion flips active to false.
type InviteToken struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	TeamID     *string    `json:"team_id,omitempty"`
	Token      string     `json:"token"`
	CreatedBy  string     `json:"created_by"`
	UsageLimit int        `json:"usage_limit"`
	UsageCount int        `json:"usage_count"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RefRedemption marks a ledger entry as the debit or refund of a redemption.
const RefRedemption = "redemption"

// IsApprover reports whether a role may review redemptions.
func IsApprover(role string) bool {
	return role == RoleAdmin || role == RoleTeamLead
}
