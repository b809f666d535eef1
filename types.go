package brandcommit

import "time"

// Company is a tenant. Every other row in the app store hangs off a company;
// provisioning happens outside the request path (setup tooling, tests).
type Company struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Member is the owner of one digital business-card page.
type Member struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	Avatar    string    `json:"avatar"` // relative path under the uploads dir, "" if none
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuideSection is one entry of the brand-guideline knowledge base.
// Kind scopes it to a tab of the guide screen.
type GuideSection struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Sort      int       `json:"sort"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Guide section kinds.
const (
	KindMission = "mission"
	KindVision  = "vision"
	KindValues  = "values"
	KindPersona = "persona"
	KindVisual  = "visual"
	KindVerbal  = "verbal"
)

// BrandColor is one swatch of the visual identity palette.
type BrandColor struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Hex       string `json:"hex"`
	Sort      int    `json:"sort"`
}

// TimelinePost is an announcement on the internal timeline.
type TimelinePost struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`

	// Filled by list queries, not stored.
	AuthorName string `json:"author_name,omitempty"`
	LikeCount  int    `json:"like_count"`
	ReadCount  int    `json:"read_count"`
}

// CardPage is the public view of one member's business card, passed to the
// card template (or serialized when the server runs headless).
type CardPage struct {
	Member  Member `json:"member"`
	Company string `json:"company"`
	CardURL string `json:"card_url"`
}
