package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, both to PostgREST numeric columns
	// and to the dashboard.
	decimal.MarshalJSONWithoutQuotes = true
}

// ============================================================
// Categories
// ============================================================

// CategoryID identifies a donation / fund category.
type CategoryID string

const (
	CategoryZakat     CategoryID = "zakat"
	CategorySadqah    CategoryID = "sadqah"
	CategoryEducation CategoryID = "education"
	CategoryHealth    CategoryID = "health"
	CategoryEmergency CategoryID = "emergency"
	CategoryGaza      CategoryID = "gaza"
)

// Category is a static catalog entry shown on the donation and fund forms.
type Category struct {
	ID          CategoryID      `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Color       string          `json:"color"`
	MinAmount   decimal.Decimal `json:"minAmount"`
}

var categories = []Category{
	{ID: CategoryZakat, Title: "Zakat", Description: "Fulfill your religious obligation by giving Zakat to those in need.", Icon: "Heart", Color: "#22c55e", MinAmount: decimal.NewFromInt(50)},
	{ID: CategorySadqah, Title: "Sadqah", Description: "Voluntary charity to earn blessings and help the less fortunate.", Icon: "HandHeart", Color: "#f59e0b", MinAmount: decimal.NewFromInt(10)},
	{ID: CategoryEducation, Title: "Education", Description: "Support underprivileged students with scholarships and resources.", Icon: "BookOpen", Color: "#3b82f6", MinAmount: decimal.NewFromInt(25)},
	{ID: CategoryHealth, Title: "Health", Description: "Fund medical treatments and healthcare for those who cannot afford it.", Icon: "Stethoscope", Color: "#ef4444", MinAmount: decimal.NewFromInt(30)},
	{ID: CategoryEmergency, Title: "Emergency Relief", Description: "Provide immediate aid to disaster victims and crisis situations.", Icon: "AlertTriangle", Color: "#8b5cf6", MinAmount: decimal.NewFromInt(20)},
	{ID: CategoryGaza, Title: "Gaza Funds", Description: "Provide immediate aid to Gaza civilians and rebuild resources.", Icon: "AlertTriangle", Color: "#8b5cf6", MinAmount: decimal.NewFromInt(20)},
}

// Categories returns a copy of the category catalog.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the catalog entry for id.
func LookupCategory(id CategoryID) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// ValidCategory reports whether id is a known category.
func ValidCategory(id CategoryID) bool {
	_, ok := LookupCategory(id)
	return ok
}

// ============================================================
// Payment methods
// ============================================================

const (
	PaymentCash         = "Cash"
	PaymentOnlineWallet = "Online Wallet"
	PaymentBankTransfer = "Bank Transfer"
)

var paymentMethods = []string{PaymentCash, PaymentOnlineWallet, PaymentBankTransfer}

// PaymentMethods returns the accepted payment methods.
func PaymentMethods() []string {
	out := make([]string, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	for _, pm := range paymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// ============================================================
// Roles
// ============================================================

// Role determines which dashboard pages and actions are reachable.
type Role string

const (
	RoleFinanceOfficer       Role = "Finance Officer"
	RoleFinanceAdministrator Role = "Finance Administrator"
	RoleProgramManager       Role = "Program Manager"
)

var roles = []Role{RoleFinanceOfficer, RoleFinanceAdministrator, RoleProgramManager}

var dashboardPaths = map[Role]string{
	RoleFinanceOfficer:       "/dashboard/officer",
	RoleFinanceAdministrator: "/dashboard/admin",
	RoleProgramManager:       "/dashboard/manager",
}

// Roles returns every known role.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// ParseRole converts s into a known Role.
func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// DashboardPath is the landing page of a role after login.
func DashboardPath(r Role) string {
	if p, ok := dashboardPaths[r]; ok {
		return p
	}
	return "/dashboard"
}

// Catalog is returned by GET /v1/catalog.
type Catalog struct {
	Categories     []Category `json:"categories"`
	PaymentMethods []string   `json:"paymentMethods"`
	Roles          []Role     `json:"roles"`
}

// NewCatalog assembles the static lookup data.
func NewCatalog() Catalog {
	return Catalog{
		Categories:     Categories(),
		PaymentMethods: PaymentMethods(),
		Roles:          Roles(),
	}
}
