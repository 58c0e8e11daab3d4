package dto

// RegisterRequest — запрос регистрации.
type RegisterRequest struct {
	Email       string   `json:"email" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	FullName    string   `json:"full_name" binding:"required"`
	Phone       string   `json:"phone"`
	Role        string   `json:"role" binding:"required"`
	CompanyName string   `json:"company_name"`
	CategoryIDs []string `json:"category_ids"`
}

// LoginRequest — запрос входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — запрос обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateJobRequest — запрос создания заявки. Сумма и фотографии передаются
// multipart-форме, поэтому запрос биндится из form-значений.
type CreateJobRequest struct {
	CategoryID  string `form:"category_id" binding:"required"`
	AddressID   string `form:"address_id"`
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
}

// SubmitOfferRequest — запрос подачи ценового предложения.
// Amount задаётся строкой в основных единицах валюты ("150.00").
type SubmitOfferRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Message string `json:"message"`
}

// TopUpRequest — запрос пополнения кошелька.
type TopUpRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// WithdrawRequest — запрос вывода средств.
type WithdrawRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SubmitReviewRequest — запрос отзыва по завершённой заявке.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SaveAddressRequest — запрос сохранения адреса.
type SaveAddressRequest struct {
	Label     string   `json:"label"`
	City      string   `json:"city" binding:"required"`
	District  string   `json:"district"`
	Street    string   `json:"street" binding:"required"`
	Details   string   `json:"details"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IsDefault bool     `json:"is_default"`
}

// AddCompanyTechnicianRequest — запрос прикрепления мастера к компании.
type AddCompanyTechnicianRequest struct {
	TechnicianID string `json:"technician_id" binding:"required"`
}

// SetSkillsRequest — запрос смены категорий мастера.
type SetSkillsRequest struct {
	CategoryIDs []string `json:"category_ids" binding:"required"`
}
