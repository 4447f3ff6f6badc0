package models

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	District  string `json:"district"`
	ClassName string `json:"className"`
	Guest     bool   `json:"guest"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	District  string `json:"district"`
	ClassName string `json:"className"`
	OTP       string `json:"otp,omitempty"`
}

type OtpRequest struct {
	Email string `json:"email"`
}

type OtpVerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type OtpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AuthData struct {
	Token  string `json:"token"`
	Type   string `json:"type"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Guest  bool   `json:"guest"`
}

type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *AuthData `json:"data,omitempty"`
}

// SessionUser is the minimal projection persisted next to the token.
func (d *AuthData) SessionUser() User {
	return User{
		ID:    d.UserID,
		Name:  d.Name,
		Email: d.Email,
		Phone: d.Phone,
		Guest: d.Guest,
	}
}
