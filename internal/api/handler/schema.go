package handler

import "github.com/civicportal/admin-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Name       string `json:"name"     validate:"required"`
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Avatar     string `json:"avatar"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// --- Issues ---

type locationRequest struct {
	Address     string    `json:"address"`
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"`
}

type reporterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type feedbackRequest struct {
	Rating  float64 `json:"rating"  validate:"gte=0,lte=5"`
	Comment string  `json:"comment"`
}

type createIssueRequest struct {
	Title       string           `json:"title"       validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category"    validate:"required,oneof=infrastructure sanitation utilities safety environment"`
	Priority    string           `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	Status      string           `json:"status"      validate:"omitempty,oneof=pending acknowledged in_progress resolved rejected"`
	Location    locationRequest  `json:"location"`
	Reporter    reporterRequest  `json:"reporter"`
	AssignedTo  string           `json:"assignedTo"`
	Department  string           `json:"department"`
	Images      []string         `json:"images"`
	Feedback    *feedbackRequest `json:"feedback"`
}

// updateIssueRequest carries a partial update: absent fields stay untouched.
type updateIssueRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"   validate:"omitempty,oneof=infrastructure sanitation utilities safety environment"`
	Priority    *string          `json:"priority"   validate:"omitempty,oneof=low medium high urgent"`
	Status      *string          `json:"status"     validate:"omitempty,oneof=pending acknowledged in_progress resolved rejected"`
	Location    *locationRequest `json:"location"`
	Reporter    *reporterRequest `json:"reporter"`
	AssignedTo  *string          `json:"assignedTo"`
	Department  *string          `json:"department"`
	Images      []string         `json:"images"`
	Feedback    *feedbackRequest `json:"feedback"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending acknowledged in_progress resolved rejected"`
}

type assignRequest struct {
	AssignedTo *string `json:"assignedTo"`
	Department *string `json:"department"`
}

// --- Users ---

type createUserRequest struct {
	Name       string `json:"name"     validate:"required"`
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role"     validate:"omitempty,oneof=admin user department_officer field_worker"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Avatar     string `json:"avatar"`
	Bio        string `json:"bio"`
	Status     string `json:"status"   validate:"omitempty,oneof=active inactive"`
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	Bio        *string `json:"bio"`
}
