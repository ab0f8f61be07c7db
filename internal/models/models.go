package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	CompanyName  *string   `gorm:"size:255" json:"company_name,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Companies  []Company   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	XMLUploads []XMLUpload `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reports    []Report    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Company holds a partial MAPA registration, e.g. "PR-12345".
type Company struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"index:ix_company_user_name;not null" json:"user_id"`
	CompanyName      string    `gorm:"size:500;index:ix_company_user_name;not null" json:"company_name"`
	MapaRegistration string    `gorm:"size:100;not null" json:"mapa_registration"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

// Product carries the product part of the registration, e.g. "6.000001".
// Full registration = Company.MapaRegistration + "-" + Product.MapaRegistration.
type Product struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID        uint      `gorm:"index:ix_product_company_name;not null" json:"company_id"`
	ProductName      string    `gorm:"size:500;index:ix_product_company_name;not null" json:"product_name"`
	MapaRegistration string    `gorm:"size:100;not null" json:"mapa_registration"`
	ProductReference *string   `gorm:"size:500" json:"product_reference,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const (
	UploadStatusPending   = "pending"
	UploadStatusProcessed = "processed"
	UploadStatusError     = "error"
)

type XMLUpload struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index:ix_upload_user_nfe;not null" json:"user_id"`
	Filename     string    `gorm:"size:500;not null" json:"filename"`
	StorageKey   string    `gorm:"size:1000;not null" json:"-"`
	UploadDate   time.Time `gorm:"autoCreateTime" json:"upload_date"`
	Period       string    `gorm:"size:20;index" json:"period,omitempty"`
	NFEKey       string    `gorm:"size:44;index:ix_upload_user_nfe" json:"nfe_key,omitempty"`
	Status       string    `gorm:"size:50;default:pending" json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

type Report struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	ReportPeriod string    `gorm:"size:20;not null" json:"report_period"`
	GeneratedAt  time.Time `gorm:"autoCreateTime" json:"generated_at"`
	TotalNFEs    int       `json:"total_nfes"`
	Rows         JSONB     `gorm:"type:jsonb;default:'[]'" json:"rows"`
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Action    string    `gorm:"not null" json:"action"`
	Metadata  JSONB     `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
