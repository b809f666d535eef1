package brandcommit

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrSlugTaken is returned when a member save would claim a slug another
// member already holds.
var ErrSlugTaken = errors.New("slug is already in use")

// Store wraps the app SQLite database: companies, members, brand guide,
// and the timeline. View events live in the separate analytics store.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write, busy timeout so writers wait instead of
	// failing with SQLITE_BUSY, synchronous=NORMAL is safe under WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL REFERENCES companies(id),
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    website TEXT NOT NULL DEFAULT '',
    avatar TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_members_company ON members(company_id);

CREATE TABLE IF NOT EXISTS guide_sections (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL REFERENCES companies(id),
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    sort INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_guide_sections_company_kind ON guide_sections(company_id, kind);

CREATE TABLE IF NOT EXISTS brand_colors (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL REFERENCES companies(id),
    name TEXT NOT NULL,
    hex TEXT NOT NULL,
    sort INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_brand_colors_company ON brand_colors(company_id);

CREATE TABLE IF NOT EXISTS timeline_posts (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL REFERENCES companies(id),
    author_id TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    pinned INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_timeline_posts_company ON timeline_posts(company_id);

CREATE TABLE IF NOT EXISTS timeline_likes (
    post_id TEXT NOT NULL REFERENCES timeline_posts(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (post_id, member_id)
);

CREATE TABLE IF NOT EXISTS timeline_reads (
    post_id TEXT NOT NULL REFERENCES timeline_posts(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL,
    read_at DATETIME NOT NULL,
    PRIMARY KEY (post_id, member_id)
);
`)
	return err
}

// ---- companies ----

// CreateCompany inserts a new tenant. The caller provides an already-hashed
// password; see HashPassword. An empty ID is assigned.
func (s *Store) CreateCompany(c Company) (Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO companies (id, slug, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Name, c.PasswordHash, c.CreatedAt)
	if err != nil {
		return Company{}, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

// GetCompanyBySlug returns a company by its slug.
func (s *Store) GetCompanyBySlug(slug string) (Company, error) {
	var c Company
	err := s.db.QueryRow(`SELECT id, slug, name, password_hash, created_at FROM companies WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Slug, &c.Name, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

// GetCompany returns a company by id.
func (s *Store) GetCompany(id string) (Company, error) {
	var c Company
	err := s.db.QueryRow(`SELECT id, slug, name, password_hash, created_at FROM companies WHERE id = ?`, id).
		Scan(&c.ID, &c.Slug, &c.Name, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

// ---- members ----

const memberCols = `id, company_id, slug, name, title, email, phone, website, avatar, published, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (Member, error) {
	var m Member
	var published int
	err := row.Scan(&m.ID, &m.CompanyID, &m.Slug, &m.Name, &m.Title, &m.Email,
		&m.Phone, &m.Website, &m.Avatar, &published, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Member{}, err
	}
	m.Published = published == 1
	return m, nil
}

// SaveMember upserts a member. An empty ID gets one assigned; an empty slug
// is derived from the name. Slugs are globally unique; a slug already held by
// another member is an ErrSlugTaken, never a replacement of the holder's row.
// Updates only touch rows the given company owns.
func (s *Store) SaveMember(m Member) (Member, error) {
	if m.Slug == "" {
		m.Slug = Slugify(m.Name)
	}
	now := time.Now().UTC()
	m.UpdatedAt = now

	// The slug check and the write share one transaction so two concurrent
	// saves cannot both claim the same slug.
	tx, err := s.db.Begin()
	if err != nil {
		return Member{}, fmt.Errorf("save member: %w", err)
	}
	defer tx.Rollback()

	var holder string
	err = tx.QueryRow(`SELECT id FROM members WHERE slug = ? AND id != ?`, m.Slug, m.ID).Scan(&holder)
	switch {
	case err == nil:
		return Member{}, ErrSlugTaken
	case err != sql.ErrNoRows:
		return Member{}, fmt.Errorf("save member: %w", err)
	}

	published := 0
	if m.Published {
		published = 1
	}
	if m.ID != "" {
		res, err := tx.Exec(`UPDATE members SET slug = ?, name = ?, title = ?, email = ?, phone = ?, website = ?, avatar = ?, published = ?, updated_at = ?
			WHERE id = ? AND company_id = ?`,
			m.Slug, m.Name, m.Title, m.Email, m.Phone, m.Website, m.Avatar, published, m.UpdatedAt, m.ID, m.CompanyID)
		if err != nil {
			return Member{}, fmt.Errorf("save member: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Member{}, fmt.Errorf("save member: %w", err)
		}
		if n > 0 {
			if err := tx.Commit(); err != nil {
				return Member{}, fmt.Errorf("save member: %w", err)
			}
			return m, nil
		}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	_, err = tx.Exec(`INSERT INTO members (`+memberCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CompanyID, m.Slug, m.Name, m.Title, m.Email, m.Phone, m.Website, m.Avatar, published, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return Member{}, fmt.Errorf("save member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Member{}, fmt.Errorf("save member: %w", err)
	}
	return m, nil
}

// GetMember returns a member by id, scoped to a company.
func (s *Store) GetMember(companyID, id string) (Member, error) {
	return scanMember(s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE company_id = ? AND id = ?`, companyID, id))
}

// GetMemberBySlug returns a published member by slug, for the public card page.
func (s *Store) GetMemberBySlug(slug string) (Member, error) {
	return scanMember(s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE slug = ? AND published = 1`, slug))
}

// ListMembers returns all members of a company, name ascending.
func (s *Store) ListMembers(companyID string) ([]Member, error) {
	rows, err := s.db.Query(`SELECT `+memberCols+` FROM members WHERE company_id = ? ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListPublishedMembers returns the company's published members, name ascending.
func (s *Store) ListPublishedMembers(companyID string) ([]Member, error) {
	rows, err := s.db.Query(`SELECT `+memberCols+` FROM members WHERE company_id = ? AND published = 1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListAllPublishedMembers returns every published member across tenants,
// slug ascending. Used by the sitemap.
func (s *Store) ListAllPublishedMembers() ([]Member, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM members WHERE published = 1 ORDER BY slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MemberCompanyID returns the owning company of a member id.
func (s *Store) MemberCompanyID(memberID string) (string, error) {
	var companyID string
	err := s.db.QueryRow(`SELECT company_id FROM members WHERE id = ?`, memberID).Scan(&companyID)
	return companyID, err
}

// DeleteMember removes a member, scoped to a company.
func (s *Store) DeleteMember(companyID, id string) error {
	_, err := s.db.Exec(`DELETE FROM members WHERE company_id = ? AND id = ?`, companyID, id)
	return err
}

// ---- brand guide ----

// SaveGuideSection upserts a guide section. An empty ID gets one assigned.
// Updates only touch rows the given company owns; an id held by another
// tenant surfaces as a constraint error, never a replacement.
func (s *Store) SaveGuideSection(g GuideSection) (GuideSection, error) {
	g.UpdatedAt = time.Now().UTC()
	if g.ID != "" {
		res, err := s.db.Exec(`UPDATE guide_sections SET kind = ?, title = ?, body = ?, sort = ?, updated_at = ? WHERE id = ? AND company_id = ?`,
			g.Kind, g.Title, g.Body, g.Sort, g.UpdatedAt, g.ID, g.CompanyID)
		if err != nil {
			return GuideSection{}, fmt.Errorf("save guide section: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return g, nil
		}
	} else {
		g.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO guide_sections (id, company_id, kind, title, body, sort, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.CompanyID, g.Kind, g.Title, g.Body, g.Sort, g.UpdatedAt)
	if err != nil {
		return GuideSection{}, fmt.Errorf("save guide section: %w", err)
	}
	return g, nil
}

// ListGuideSections returns a company's guide sections, optionally filtered
// by kind, ordered by sort then title.
func (s *Store) ListGuideSections(companyID, kind string) ([]GuideSection, error) {
	var rows *sql.Rows
	var err error
	if kind == "" {
		rows, err = s.db.Query(`SELECT id, company_id, kind, title, body, sort, updated_at FROM guide_sections WHERE company_id = ? ORDER BY kind, sort, title`, companyID)
	} else {
		rows, err = s.db.Query(`SELECT id, company_id, kind, title, body, sort, updated_at FROM guide_sections WHERE company_id = ? AND kind = ? ORDER BY sort, title`, companyID, kind)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []GuideSection
	for rows.Next() {
		var g GuideSection
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.Kind, &g.Title, &g.Body, &g.Sort, &g.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, g)
	}
	return sections, rows.Err()
}

// GetGuideSection returns one guide section, scoped to a company.
func (s *Store) GetGuideSection(companyID, id string) (GuideSection, error) {
	var g GuideSection
	err := s.db.QueryRow(`SELECT id, company_id, kind, title, body, sort, updated_at FROM guide_sections WHERE company_id = ? AND id = ?`, companyID, id).
		Scan(&g.ID, &g.CompanyID, &g.Kind, &g.Title, &g.Body, &g.Sort, &g.UpdatedAt)
	if err != nil {
		return GuideSection{}, err
	}
	return g, nil
}

// DeleteGuideSection removes a guide section, scoped to a company.
func (s *Store) DeleteGuideSection(companyID, id string) error {
	_, err := s.db.Exec(`DELETE FROM guide_sections WHERE company_id = ? AND id = ?`, companyID, id)
	return err
}

// SaveBrandColor upserts a palette color. An empty ID gets one assigned.
// Updates only touch rows the given company owns.
func (s *Store) SaveBrandColor(c BrandColor) (BrandColor, error) {
	if c.ID != "" {
		res, err := s.db.Exec(`UPDATE brand_colors SET name = ?, hex = ?, sort = ? WHERE id = ? AND company_id = ?`,
			c.Name, c.Hex, c.Sort, c.ID, c.CompanyID)
		if err != nil {
			return BrandColor{}, fmt.Errorf("save brand color: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return c, nil
		}
	} else {
		c.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO brand_colors (id, company_id, name, hex, sort) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.CompanyID, c.Name, c.Hex, c.Sort)
	if err != nil {
		return BrandColor{}, fmt.Errorf("save brand color: %w", err)
	}
	return c, nil
}

// ListBrandColors returns a company's palette ordered by sort then name.
func (s *Store) ListBrandColors(companyID string) ([]BrandColor, error) {
	rows, err := s.db.Query(`SELECT id, company_id, name, hex, sort FROM brand_colors WHERE company_id = ? ORDER BY sort, name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colors []BrandColor
	for rows.Next() {
		var c BrandColor
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Hex, &c.Sort); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// GetBrandColor returns one palette color, scoped to a company.
func (s *Store) GetBrandColor(companyID, id string) (BrandColor, error) {
	var c BrandColor
	err := s.db.QueryRow(`SELECT id, company_id, name, hex, sort FROM brand_colors WHERE company_id = ? AND id = ?`, companyID, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Hex, &c.Sort)
	if err != nil {
		return BrandColor{}, err
	}
	return c, nil
}

// DeleteBrandColor removes a palette color, scoped to a company.
func (s *Store) DeleteBrandColor(companyID, id string) error {
	_, err := s.db.Exec(`DELETE FROM brand_colors WHERE company_id = ? AND id = ?`, companyID, id)
	return err
}

// ---- timeline ----

// CreateTimelinePost inserts a new announcement.
func (s *Store) CreateTimelinePost(p TimelinePost) (TimelinePost, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	pinned := 0
	if p.Pinned {
		pinned = 1
	}
	_, err := s.db.Exec(`INSERT INTO timeline_posts (id, company_id, author_id, title, body, pinned, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.AuthorID, p.Title, p.Body, pinned, p.CreatedAt)
	if err != nil {
		return TimelinePost{}, fmt.Errorf("create timeline post: %w", err)
	}
	return p, nil
}

// ListTimelinePosts returns a company's posts, pinned first then newest,
// with author name and like/read counts joined in.
func (s *Store) ListTimelinePosts(companyID string) ([]TimelinePost, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.company_id, p.author_id, p.title, p.body, p.pinned, p.created_at,
		       COALESCE(m.name, ''),
		       (SELECT COUNT(*) FROM timeline_likes l WHERE l.post_id = p.id),
		       (SELECT COUNT(*) FROM timeline_reads r WHERE r.post_id = p.id)
		FROM timeline_posts p
		LEFT JOIN members m ON m.id = p.author_id
		WHERE p.company_id = ?
		ORDER BY p.pinned DESC, p.created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []TimelinePost
	for rows.Next() {
		var p TimelinePost
		var pinned int
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.AuthorID, &p.Title, &p.Body, &pinned, &p.CreatedAt,
			&p.AuthorName, &p.LikeCount, &p.ReadCount); err != nil {
			return nil, err
		}
		p.Pinned = pinned == 1
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetTimelinePost returns one post, scoped to a company.
func (s *Store) GetTimelinePost(companyID, id string) (TimelinePost, error) {
	var p TimelinePost
	var pinned int
	err := s.db.QueryRow(`SELECT id, company_id, author_id, title, body, pinned, created_at FROM timeline_posts WHERE company_id = ? AND id = ?`, companyID, id).
		Scan(&p.ID, &p.CompanyID, &p.AuthorID, &p.Title, &p.Body, &pinned, &p.CreatedAt)
	if err != nil {
		return TimelinePost{}, err
	}
	p.Pinned = pinned == 1
	return p, nil
}

// DeleteTimelinePost removes a post and, via cascade, its likes and reads.
func (s *Store) DeleteTimelinePost(companyID, id string) error {
	_, err := s.db.Exec(`DELETE FROM timeline_posts WHERE company_id = ? AND id = ?`, companyID, id)
	return err
}

// LikeTimelinePost records a like. Idempotent per (post, member).
func (s *Store) LikeTimelinePost(postID, memberID string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO timeline_likes (post_id, member_id, created_at) VALUES (?, ?, ?)`,
		postID, memberID, time.Now().UTC())
	return err
}

// UnlikeTimelinePost removes a like. No error if it was never there.
func (s *Store) UnlikeTimelinePost(postID, memberID string) error {
	_, err := s.db.Exec(`DELETE FROM timeline_likes WHERE post_id = ? AND member_id = ?`, postID, memberID)
	return err
}

// MarkTimelinePostRead records that a member read a post. Idempotent; the
// first read wins so read_at stays the first-seen time.
func (s *Store) MarkTimelinePostRead(postID, memberID string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO timeline_reads (post_id, member_id, read_at) VALUES (?, ?, ?)`,
		postID, memberID, time.Now().UTC())
	return err
}

// ListTimelineReaders returns the names of members who read a post.
func (s *Store) ListTimelineReaders(postID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT m.name FROM timeline_reads r
		JOIN members m ON m.id = r.member_id
		WHERE r.post_id = ?
		ORDER BY r.read_at ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UnreadTimelineCount returns how many of the company's posts a member has
// not read yet.
func (s *Store) UnreadTimelineCount(companyID, memberID string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM timeline_posts p
		WHERE p.company_id = ?
		  AND NOT EXISTS (SELECT 1 FROM timeline_reads r WHERE r.post_id = p.id AND r.member_id = ?)`,
		companyID, memberID).Scan(&n)
	return n, err
}
