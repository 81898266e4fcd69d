package entity

import "time"

// Role роль пользователя
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User представляет пользователя платформы
type User struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Не показываем в JSON
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// EnrollmentStatus статус записи на обучение
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "PENDING"
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentActive, EnrollmentCompleted, EnrollmentCancelled:
		return true
	}
	return false
}

// PaymentStatus статус оплаты. Не зависит от EnrollmentStatus:
// запись может быть ACTIVE и UNPAID одновременно.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Enrollment запись пользователя на одно обучение
type Enrollment struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	TrainingID    string           `json:"trainingId"`
	Status        EnrollmentStatus `json:"status"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	Amount        int64            `json:"amount"`
	Motivation    string           `json:"motivation,omitempty"`
	Training      *Training        `json:"training,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Category категория обучений или книг
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Training обучение (курс) института
type Training struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"categoryId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	DurationHours int       `json:"durationHours"`
	Seats         int       `json:"seats"`
	StartDate     time.Time `json:"startDate"`
	IsPublished   bool      `json:"isPublished"`
}

// GalleryItem фотография галереи
type GalleryItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactMessage сообщение из формы обратной связи
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Book цифровая книга библиотеки
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
	CategoryID   string    `json:"categoryId"`
	Language     string    `json:"language"`
	FileType     string    `json:"fileType"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	Price        int64     `json:"price"`
	IsFree       bool      `json:"isFree"`
	IsBookmarked bool      `json:"isBookmarked"`
	PublishedAt  time.Time `json:"publishedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PaymentMethodKind способ оплаты
type PaymentMethodKind string

const (
	MethodMobileMoney PaymentMethodKind = "MOBILE_MONEY"
	MethodCard        PaymentMethodKind = "CARD"
)

// Payment платежная сессия по записи
type Payment struct {
	ID            string            `json:"id"`
	TransactionID string            `json:"transactionId"`
	EnrollmentID  string            `json:"enrollmentId"`
	UserID        string            `json:"userId"`
	Amount        int64             `json:"amount"`
	Method        PaymentMethodKind `json:"method"`
	Operator      string            `json:"operator,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	CardLast4     string            `json:"cardLast4,omitempty"`
	Status        PaymentStatus     `json:"status"`
	IsSimulation  bool              `json:"isSimulation"`
	RedirectURL   string            `json:"paymentUrl,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Session сессия refresh-токена
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	IsRevoked bool      `json:"isRevoked"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerificationCode код двухфакторной проверки, отправленный по email
type VerificationCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Pagination параметры страницы в ответе списка
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	Limit       int `json:"limit,omitempty"`
}

// BookQuery фильтры списка книг
type BookQuery struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	SortBy     string `json:"sortBy"`
	SortOrder  string `json:"sortOrder"`
	Search     string `json:"search"`
	CategoryID string `json:"categoryId"`
	Author     string `json:"author"`
	Language   string `json:"language"`
	FileType   string `json:"fileType"`
}
