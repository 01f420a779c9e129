package database

import (
	"time"

	"gorm.io/datatypes"
)

// Model is the shared base for every record. There is no DeletedAt column:
// deletion is permanent.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID exposes the primary key to code handling models generically.
func (m Model) GetID() uint {
	return m.ID
}

// User is an admin-panel account. Role is one of editor, admin, superadmin.
type User struct {
	Model
	Username     string `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         string `gorm:"size:32;default:'editor'" json:"role"`
	Active       bool   `gorm:"default:true" json:"active"`
}

// Blog is a published article, addressed publicly by slug.
type Blog struct {
	Model
	Title        string `gorm:"size:255;not null" json:"title"`
	Slug         string `gorm:"uniqueIndex;size:255" json:"slug"`
	Excerpt      string `gorm:"size:512" json:"excerpt"`
	Content      string `gorm:"type:text" json:"content"`
	Image        string `gorm:"size:512" json:"image"`
	AuthorID     uint   `gorm:"index" json:"author_id"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// Project is a portfolio entry with an optional set of extra images.
type Project struct {
	Model
	Title        string         `gorm:"size:255;not null" json:"title"`
	Slug         string         `gorm:"uniqueIndex;size:255" json:"slug"`
	Description  string         `gorm:"size:512" json:"description"`
	Content      string         `gorm:"type:text" json:"content"`
	Client       string         `gorm:"size:255" json:"client"`
	Image        string         `gorm:"size:512" json:"image"`
	Images       datatypes.JSON `json:"images"`
	Active       bool           `gorm:"default:true" json:"active"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
}

// Service describes one offering on the services page.
type Service struct {
	Model
	Title        string `gorm:"size:255;not null" json:"title"`
	Slug         string `gorm:"uniqueIndex;size:255" json:"slug"`
	Description  string `gorm:"size:512" json:"description"`
	Content      string `gorm:"type:text" json:"content"`
	Icon         string `gorm:"size:512" json:"icon"`
	Image        string `gorm:"size:512" json:"image"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// Career is an open position. It carries no image fields.
type Career struct {
	Model
	Title          string `gorm:"size:255;not null" json:"title"`
	Slug           string `gorm:"uniqueIndex;size:255" json:"slug"`
	Description    string `gorm:"type:text" json:"description"`
	Location       string `gorm:"size:255" json:"location"`
	EmploymentType string `gorm:"size:64" json:"employment_type"`
	Active         bool   `gorm:"default:true" json:"active"`
	DisplayOrder   int    `gorm:"default:0" json:"display_order"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	Model
	Name         string `gorm:"size:255;not null" json:"name"`
	Role         string `gorm:"size:255" json:"role"`
	Company      string `gorm:"size:255" json:"company"`
	Quote        string `gorm:"type:text" json:"quote"`
	Rating       int    `gorm:"default:5" json:"rating"`
	Avatar       string `gorm:"size:512" json:"avatar"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// GalleryImage is one entry of the public gallery.
type GalleryImage struct {
	Model
	Title        string `gorm:"size:255" json:"title"`
	Category     string `gorm:"size:128;index" json:"category"`
	Image        string `gorm:"size:512" json:"image"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// HeroSection is a rotating banner on the landing page.
type HeroSection struct {
	Model
	Title        string `gorm:"size:255;not null" json:"title"`
	Subtitle     string `gorm:"size:512" json:"subtitle"`
	ButtonText   string `gorm:"size:128" json:"button_text"`
	ButtonLink   string `gorm:"size:512" json:"button_link"`
	Image        string `gorm:"size:512" json:"image"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// TeamMember appears on the team page.
type TeamMember struct {
	Model
	Name         string `gorm:"size:255;not null" json:"name"`
	Role         string `gorm:"size:255" json:"role"`
	Bio          string `gorm:"type:text" json:"bio"`
	Photo        string `gorm:"size:512" json:"photo"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// Technology is an item of the technology marquee.
type Technology struct {
	Model
	Name         string `gorm:"size:255;not null" json:"name"`
	Category     string `gorm:"size:128;index" json:"category"`
	Logo         string `gorm:"size:512" json:"logo"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// ClientLogo is a logo shown in the clients strip.
type ClientLogo struct {
	Model
	Name         string `gorm:"size:255;not null" json:"name"`
	Website      string `gorm:"size:512" json:"website"`
	Logo         string `gorm:"size:512" json:"logo"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// FAQ is a question/answer pair.
type FAQ struct {
	Model
	Question     string `gorm:"size:512;not null" json:"question"`
	Answer       string `gorm:"type:text" json:"answer"`
	Active       bool   `gorm:"default:true" json:"active"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

// Inquiry is a contact-form submission from the public site.
type Inquiry struct {
	Model
	Name            string `gorm:"size:255;not null" json:"name"`
	Email           string `gorm:"size:255;not null" json:"email"`
	Phone           string `gorm:"size:64" json:"phone"`
	Subject         string `gorm:"size:512" json:"subject"`
	Message         string `gorm:"type:text" json:"message"`
	ServiceInterest string `gorm:"size:255" json:"service_interest"`
	Read            bool   `gorm:"default:false" json:"read"`
}

// HomePage holds the single row of landing-page copy.
type HomePage struct {
	Model
	Headline    string `gorm:"size:512" json:"headline"`
	Subheadline string `gorm:"size:512" json:"subheadline"`
	CTAText     string `gorm:"size:128" json:"cta_text"`
	CTALink     string `gorm:"size:512" json:"cta_link"`
	Image       string `gorm:"size:512" json:"image"`
}

// AboutPage holds the single row of about-page copy.
type AboutPage struct {
	Model
	Title   string `gorm:"size:255" json:"title"`
	Content string `gorm:"type:text" json:"content"`
	Mission string `gorm:"type:text" json:"mission"`
	Vision  string `gorm:"type:text" json:"vision"`
	Image   string `gorm:"size:512" json:"image"`
}

// ContactPage holds the single row of contact-page details.
type ContactPage struct {
	Model
	Address     string `gorm:"size:512" json:"address"`
	Phone       string `gorm:"size:64" json:"phone"`
	Email       string `gorm:"size:255" json:"email"`
	MapEmbedURL string `gorm:"size:1024" json:"map_embed_url"`
}

// AllModels lists every model handed to AutoMigrate.
func AllModels() []any {
	return []any{
		&User{},
		&Blog{},
		&Project{},
		&Service{},
		&Career{},
		&Testimonial{},
		&GalleryImage{},
		&HeroSection{},
		&TeamMember{},
		&Technology{},
		&ClientLogo{},
		&FAQ{},
		&Inquiry{},
		&HomePage{},
		&AboutPage{},
		&ContactPage{},
	}
}

// NewModelForTable returns a fresh model pointer for a content table, used by
// the generic controller to persist typed records.
func NewModelForTable(table string) any {
	switch table {
	case "blogs":
		return &Blog{}
	case "projects":
		return &Project{}
	case "services":
		return &Service{}
	case "careers":
		return &Career{}
	case "testimonials":
		return &Testimonial{}
	case "gallery_images":
		return &GalleryImage{}
	case "hero_sections":
		return &HeroSection{}
	case "team_members":
		return &TeamMember{}
	case "technologies":
		return &Technology{}
	case "client_logos":
		return &ClientLogo{}
	case "faqs":
		return &FAQ{}
	case "home_pages":
		return &HomePage{}
	case "about_pages":
		return &AboutPage{}
	case "contact_pages":
		return &ContactPage{}
	}
	return nil
}
